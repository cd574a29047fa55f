// Package config gathers the process configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/notify"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/database"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/mailer"
	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

const (
	TransportSMTP = "smtp"
	TransportLog  = "log"
)

// Config holds all configuration for the application.
type Config struct {
	Port               string
	CORSAllowedOrigins []string
	RedisURL           string
	RateLimitPerMinute int
	MailTransport      string
	// TrustProxy enables X-Forwarded-For/X-Real-IP for the client address.
	// Only set it behind a proxy that overwrites those headers.
	TrustProxy bool

	Database database.Config
	Logger   utilities.Config
	SMTP     mailer.SMTPConfig
	Notify   notify.Config
}

// Load reads configuration from environment variables. EMAIL_USER and
// SUPPORT_EMAIL are required.
func Load() (*Config, error) {
	smtpCfg := mailer.ConfigFromEnv()
	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RedisURL:           os.Getenv("REDIS_URL"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		MailTransport:      strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSMTP)),
		TrustProxy:         getEnvBool("TRUST_PROXY", false),
		Database:           database.ConfigFromEnv(),
		Logger:             utilities.ConfigFromEnv(),
		SMTP:               smtpCfg,
		Notify: notify.Config{
			FromName:     getEnv("MAIL_FROM_NAME", "Coinova"),
			FromAddress:  smtpCfg.Username,
			SupportEmail: os.Getenv("SUPPORT_EMAIL"),
			LogoURL:      os.Getenv("BRAND_LOGO_URL"),
		},
	}

	var errs []error
	if cfg.SMTP.Username == "" {
		errs = append(errs, errors.New("EMAIL_USER is required"))
	}
	if cfg.Notify.SupportEmail == "" {
		errs = append(errs, errors.New("SUPPORT_EMAIL is required"))
	}
	if cfg.MailTransport != TransportSMTP && cfg.MailTransport != TransportLog {
		errs = append(errs, errors.New("MAIL_TRANSPORT must be smtp or log"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
