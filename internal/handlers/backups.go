package handlers

import (
	"log"

	"folio/internal/backup"

	"github.com/gofiber/fiber/v2"
)

func ListBackups(bm *backup.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		backups, err := bm.ListBackups()
		if err != nil {
			log.Printf("failed to list backups: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list backups"})
		}
		if backups == nil {
			backups = []backup.BackupInfo{}
		}
		return c.JSON(fiber.Map{"backups": backups})
	}
}

func CreateBackup(bm *backup.Manager, dbPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bi, err := bm.BackupDatabase(dbPath)
		if err != nil {
			log.Printf("database backup failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database backup failed"})
		}

		log.Printf("database backup created: %s (%s)", bi.Name, backup.FormatSize(bi.Size))
		return c.Status(fiber.StatusCreated).JSON(bi)
	}
}

// RestoreBackup overwrites the live database file from a named backup. The
// running process keeps its page cache, so a restart after restore is on
// the operator.
func RestoreBackup(bm *backup.Manager, dbPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Backup name required"})
		}

		if err := bm.RestoreDatabase(name, dbPath); err != nil {
			log.Printf("failed to restore backup %s: %v", name, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Printf("database restored from %s", name)
		return c.JSON(fiber.Map{"success": true})
	}
}

func DeleteBackup(bm *backup.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Backup name required"})
		}

		if err := bm.DeleteBackup(name); err != nil {
			log.Printf("failed to delete backup %s: %v", name, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to delete backup"})
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func DownloadBackup(bm *backup.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		if name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Backup name required"})
		}

		backups, err := bm.ListBackups()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list backups"})
		}

		for _, b := range backups {
			if b.Name == name {
				return c.Download(b.Path, b.Name)
			}
		}

		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Backup not found"})
	}
}
