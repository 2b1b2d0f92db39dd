package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the storefront reads from the environment.
type Config struct {
	Port       string
	GinMode    string
	LogLevel   string
	CORSOrigin string

	DBDriver string
	DBDSN    string

	JWTSecret string

	GatewaySecretKey string
	GatewayBaseURL   string
	GatewayCurrency  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	StaffEmail   string

	ShopName string
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	cfg := Config{
		Port:       EnvDefault("PORT", "8080"),
		GinMode:    EnvDefault("GIN_MODE", "debug"),
		LogLevel:   EnvDefault("LOG_LEVEL", "info"),
		CORSOrigin: EnvDefault("CORS_ORIGIN", "http://127.0.0.1:5500"),

		DBDriver: strings.ToLower(EnvDefault("DB_DRIVER", "mysql")),
		DBDSN:    os.Getenv("DB_DSN"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GatewaySecretKey: os.Getenv("GATEWAY_SECRET_KEY"),
		GatewayBaseURL:   strings.TrimRight(EnvDefault("GATEWAY_BASE_URL", "https://api.stripe.com"), "/"),
		GatewayCurrency:  strings.ToLower(EnvDefault("GATEWAY_CURRENCY", "cad")),

		SMTPHost:     EnvDefault("SMTP_HOST", "localhost"),
		SMTPPort:     EnvIntDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		StaffEmail:   os.Getenv("STAFF_EMAIL"),

		ShopName: EnvDefault("SHOP_NAME", "Coffee Order"),
	}

	// Staff mailbox doubles as the sender when MAIL_FROM is not set.
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.StaffEmail
	}

	return cfg
}

// Warnings lists settings that are missing for a production run.
func (c Config) Warnings() []string {
	required := map[string]string{
		"JWT_SECRET":         c.JWTSecret,
		"GATEWAY_SECRET_KEY": c.GatewaySecretKey,
		"STAFF_EMAIL":        c.StaffEmail,
		"DB_DSN":             c.DBDSN,
	}

	var missing []string
	for _, key := range []string{"JWT_SECRET", "GATEWAY_SECRET_KEY", "STAFF_EMAIL", "DB_DSN"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
