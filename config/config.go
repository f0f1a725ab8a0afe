package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"storefront-auth/logger"
)

// Config carries the policy knobs the auth services are constructed with.
// Everything here is read once at startup; services never reach into the
// environment themselves.
type Config struct {
	// OTP policy
	OTPLifetime   time.Duration
	OTPCodeLength int

	// Password reset capability tokens
	ResetTokenLifetime time.Duration

	// Password hashing
	BcryptCost int

	// Session
	JWTSecret       string
	SessionLifetime time.Duration

	// Messaging
	SMSGatewayURL string
	SMSAPIKey     string
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	MailFrom      string
}

// Load reads the .env file (if present) and builds the runtime config with
// defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file loaded, using environment defaults")
	}

	return &Config{
		OTPLifetime:        envDuration("OTP_LIFETIME_MINUTES", 10),
		OTPCodeLength:      envInt("OTP_CODE_LENGTH", 6),
		ResetTokenLifetime: envDuration("RESET_TOKEN_LIFETIME_MINUTES", 15),
		BcryptCost:         envInt("BCRYPT_COST", bcrypt.DefaultCost),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SessionLifetime:    envDuration("SESSION_LIFETIME_MINUTES", 8*60),
		SMSGatewayURL:      os.Getenv("SMS_GATEWAY_URL"),
		SMSAPIKey:          os.Getenv("SMS_API_KEY"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           envInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		MailFrom:           envString("MAIL_FROM", "no-reply@storefront.local"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warning("Invalid integer for " + key + ", using default")
		return fallback
	}
	return n
}

func envDuration(key string, fallbackMinutes int) time.Duration {
	return time.Duration(envInt(key, fallbackMinutes)) * time.Minute
}
