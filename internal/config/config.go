package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	ContactEndpoint string
	RelayTimeoutSec int
	Validator       string

	DBPath         string
	DBMaxOpenConns int
	DBMaxIdleConns int

	JWTSecret      string
	JWTExpiryHours int
	AdminUser      string
	AdminPass      string
	SecureCookies  bool
	TOTPIssuer     string

	LockoutMaxAttempts int
	LockoutDurationMin int

	ContactRateMax       int
	ContactRateWindowMin int
	CORSOrigins          string

	EndpointCheckMinutes int
	AlertThreshold       int
	WebhookURL           string
	WebhookFormat        string

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	AlertEmail   string

	MetricsEnabled bool
	BackupDir      string

	SubmissionRetentionDays int
	CheckRetentionDays      int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("APP_PORT", "3000"),
		ContactEndpoint: getEnv("CONTACT_ENDPOINT", ""),
		RelayTimeoutSec: getEnvInt("RELAY_TIMEOUT_SECONDS", 10),
		Validator:       getEnv("VALIDATOR", "strict"),

		DBPath:         getEnv("DB_PATH", "./folio.db"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		AdminUser:      getEnv("ADMIN_USER", "admin"),
		AdminPass:      getEnv("ADMIN_PASS", ""),
		SecureCookies:  getEnv("SECURE_COOKIES", "false") == "true",
		TOTPIssuer:     getEnv("TOTP_ISSUER", "folio"),

		LockoutMaxAttempts: getEnvInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDurationMin: getEnvInt("LOCKOUT_DURATION_MIN", 15),

		ContactRateMax:       getEnvInt("CONTACT_RATE_MAX", 5),
		ContactRateWindowMin: getEnvInt("CONTACT_RATE_WINDOW_MIN", 1),
		CORSOrigins:          getEnv("CORS_ORIGINS", ""),

		EndpointCheckMinutes: getEnvInt("ENDPOINT_CHECK_MINUTES", 5),
		AlertThreshold:       getEnvInt("ALERT_THRESHOLD", 3),
		WebhookURL:           getEnv("WEBHOOK_URL", ""),
		WebhookFormat:        getEnv("WEBHOOK_FORMAT", "discord"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		AlertEmail:   getEnv("ALERT_EMAIL", ""),

		MetricsEnabled: getEnv("METRICS_ENABLED", "false") == "true",
		BackupDir:      getEnv("BACKUP_DIR", "./backups"),

		SubmissionRetentionDays: getEnvInt("SUBMISSION_RETENTION_DAYS", 90),
		CheckRetentionDays:      getEnvInt("CHECK_RETENTION_DAYS", 30),
	}

	if cfg.ContactEndpoint == "" {
		return nil, fmt.Errorf("CONTACT_ENDPOINT is required")
	}
	if u, err := url.Parse(cfg.ContactEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("CONTACT_ENDPOINT %q is not an absolute URL", cfg.ContactEndpoint)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminPass == "" {
		return nil, fmt.Errorf("ADMIN_PASS is required")
	}
	if cfg.Validator != "strict" && cfg.Validator != "basic" {
		return nil, fmt.Errorf("VALIDATOR must be \"strict\" or \"basic\", got %q", cfg.Validator)
	}

	if len(cfg.AdminPass) < 8 {
		log.Println("WARNING: ADMIN_PASS is shorter than 8 characters, use a stronger password in production")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters, use a longer secret in production")
	}

	if cfg.BackupDir != "" {
		if err := os.MkdirAll(cfg.BackupDir, 0750); err != nil {
			log.Printf("WARNING: could not create BACKUP_DIR %q: %v", cfg.BackupDir, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
