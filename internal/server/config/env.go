package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays environment variables onto the Config. It runs last, so
// the environment has the final say; in particular the pepper is expected to
// arrive via PEPPER in any real deployment.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SESSION_SECRET, SESSION_TTL
// (Go duration string), PEPPER, BASE_URL, SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS, SMTP_FROM.
func parseEnv(config *Config) {
	config.EndpointAddr = getenv("ADDRESS", config.EndpointAddr)
	config.DatabaseDSN = getenv("DATABASE_DSN", config.DatabaseDSN)
	config.SessionSecret = getenv("SESSION_SECRET", config.SessionSecret)
	config.SessionTTL = getdur("SESSION_TTL", config.SessionTTL)
	config.Pepper = getenv("PEPPER", config.Pepper)
	config.BaseURL = getenv("BASE_URL", config.BaseURL)

	config.SMTPHost = getenv("SMTP_HOST", config.SMTPHost)
	config.SMTPPort = getint("SMTP_PORT", config.SMTPPort)
	config.SMTPUser = getenv("SMTP_USER", config.SMTPUser)
	config.SMTPPass = getenv("SMTP_PASS", config.SMTPPass)
	config.SMTPFrom = getenv("SMTP_FROM", config.SMTPFrom)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
