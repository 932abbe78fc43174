package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string
	BaseURL string // public URL embedded in verification links

	SQLitePath      string
	KeystoreBackend string // "sqlite" | "dynamo"

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	KeyStoreTable  string

	RegistrationSecret string // signs verification-link tokens; required
	SessionSecret      string // signs login session tokens
	OTPTTL             time.Duration
	LinkTTL            time.Duration
	SessionTTL         time.Duration

	MailDomain string // appended to roll numbers to derive the inbox

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	RosterCSVPath string

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
// It fails when REGISTRATION_SECRET is unset: verification tokens signed
// with a well-known default would let anyone forge a registration link.
func Load() (*Config, error) {
	secret := os.Getenv("REGISTRATION_SECRET")
	if secret == "" {
		return nil, errors.New("REGISTRATION_SECRET must be set")
	}

	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),
		BaseURL: getEnv("BASE_URL", "http://localhost:3000"),

		SQLitePath:      getEnv("SQLITE_PATH", "./membership.db"),
		KeystoreBackend: getEnv("KEYSTORE_BACKEND", "sqlite"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		KeyStoreTable:  getEnv("DYNAMO_TABLE_KEY_STORE", "key_store"),

		RegistrationSecret: secret,
		SessionSecret:      getEnv("SESSION_SECRET", secret),
		OTPTTL:             time.Duration(getEnvInt("OTP_TTL_MINUTES", 10)) * time.Minute,
		LinkTTL:            time.Duration(getEnvInt("LINK_TTL_MINUTES", 15)) * time.Minute,
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,

		MailDomain: getEnv("MAIL_DOMAIN", "nitkkr.ac.in"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@anantnitkkr.in"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		RosterCSVPath: getEnv("ROSTER_CSV_PATH", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
