package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/auth"
	"folio/internal/backup"
	"folio/internal/config"
	"folio/internal/contact"
	"folio/internal/db"
	"folio/internal/handlers"
	"folio/internal/health"
	"folio/internal/metrics"
	"folio/internal/models"
	"folio/internal/site"
	"folio/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if err := models.EnsureAdminExists(database, cfg.AdminUser, cfg.AdminPass); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	validator := validate.New(cfg.Validator)
	relay := contact.NewRelay(cfg.ContactEndpoint, time.Duration(cfg.RelayTimeoutSec)*time.Second)
	ctrl := contact.NewController(validator, relay)

	backups := backup.NewManager(cfg.BackupDir)

	// Start background endpoint checker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	checker := health.NewChecker(database, cfg.ContactEndpoint, time.Duration(cfg.EndpointCheckMinutes)*time.Minute, cfg.AlertThreshold)
	checker.Webhook = health.NewWebhookSender(cfg.WebhookURL, cfg.WebhookFormat)
	checker.Email = health.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.AlertEmail, cfg.SMTPUsername, cfg.SMTPPassword)
	checker.RetentionDays = cfg.CheckRetentionDays
	go checker.Start(ctx)

	go maintenanceLoop(ctx, database, backups, cfg.SubmissionRetentionDays)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).SendString(err.Error())
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}
	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: "GET,POST",
			AllowHeaders: "Content-Type",
		}))
	}

	// Rate limit on the contact form
	contactLimiter := limiter.New(limiter.Config{
		Max:        cfg.ContactRateMax,
		Expiration: time.Duration(cfg.ContactRateWindowMin) * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})

	// Rate limit on login
	loginLimiter := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})

	lockout := auth.NewLockoutTracker(cfg.LockoutMaxAttempts, time.Duration(cfg.LockoutDurationMin)*time.Minute)

	// Public routes
	app.Post("/api/contact", contactLimiter, handlers.ContactPost(database, ctrl))
	app.Get("/api/health", handlers.PublicHealth(database))
	app.Post("/admin/login", loginLimiter, handlers.LoginPost(database, cfg, lockout))
	app.Post("/admin/login/totp", loginLimiter, handlers.LoginTOTP(database, cfg, lockout))

	// Protected routes
	protected := app.Group("/admin", auth.AuthMiddleware(cfg.JWTSecret, database))

	// General rate limiter for protected routes
	protected.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	// CSRF protection
	protected.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "csrf_token",
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		Expiration:     1 * time.Hour,
	}))

	// Session
	protected.Post("/logout", handlers.Logout(database))
	protected.Post("/password", handlers.ChangePassword(database))

	// Two-factor enrollment
	protected.Post("/totp/setup", handlers.TOTPSetup(database, cfg))
	protected.Post("/totp/enable", handlers.TOTPEnable(database))
	protected.Post("/totp/disable", handlers.TOTPDisable(database))

	// Submission journal. Export is registered before :id so the static
	// segment wins.
	protected.Get("/submissions", handlers.ListSubmissions(database))
	protected.Get("/submissions/export", handlers.ExportSubmissionsCSV(database))
	protected.Get("/submissions/:id", handlers.GetSubmission(database))
	protected.Post("/submissions/:id/ack", handlers.AcknowledgeSubmission(database))
	protected.Delete("/submissions/:id", handlers.DeleteSubmission(database))
	protected.Get("/stats", handlers.Stats(database))

	// Backups
	protected.Get("/backups", handlers.ListBackups(backups))
	protected.Post("/backups", handlers.CreateBackup(backups, cfg.DBPath))
	protected.Get("/backups/:name/download", handlers.DownloadBackup(backups))
	protected.Post("/backups/:name/restore", handlers.RestoreBackup(backups, cfg.DBPath))
	protected.Delete("/backups/:name", handlers.DeleteBackup(backups))

	// The embedded site is registered last so it only serves paths no
	// route above claimed.
	siteFS, err := site.FS()
	if err != nil {
		log.Fatalf("Failed to load embedded site: %v", err)
	}
	app.Use(filesystem.New(filesystem.Config{
		Root:  http.FS(siteFS),
		Index: "index.html",
	}))

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	log.Printf("Folio starting on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// maintenanceLoop prunes aged journal rows, expired revoked tokens, and
// old backup archives once a day.
func maintenanceLoop(ctx context.Context, database *sql.DB, backups *backup.Manager, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	runMaintenance(database, backups, retentionDays)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runMaintenance(database, backups, retentionDays)
		}
	}
}

func runMaintenance(database *sql.DB, backups *backup.Manager, retentionDays int) {
	if retentionDays > 0 {
		if n, err := models.PruneSubmissions(database, retentionDays); err != nil {
			log.Printf("Failed to prune submissions: %v", err)
		} else if n > 0 {
			log.Printf("Pruned %d aged submissions", n)
		}
	}
	auth.CleanupExpiredTokens(database)
	if n := backups.CleanOldBackups(); n > 0 {
		log.Printf("Removed %d expired backups", n)
	}
}
