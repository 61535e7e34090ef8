package config

import (
	"encoding/json"
	"os"
	"time"

	"siams/internal/flagx"
	"siams/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing
// both string values such as "30m" and integer nanoseconds. After
// unmarshalling, its fields are copied into the runtime Config.
//
// The pepper deliberately has no JSON field: it is a secret and comes from
// the environment or a flag only.
type JsonConfig struct {
	EndpointAddr  string         `json:"endpoint_addr"`
	DatabaseDSN   string         `json:"database_dsn"`
	SessionSecret string         `json:"session_secret"`
	SessionTTL    timex.Duration `json:"session_ttl"`
	BaseURL       string         `json:"base_url"`

	Argon2Time    uint32 `json:"argon2_time"`
	Argon2Memory  uint32 `json:"argon2_memory"`
	Argon2Threads uint8  `json:"argon2_threads"`

	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	SMTPUser string `json:"smtp_user"`
	SMTPPass string `json:"smtp_pass"`
	SMTPFrom string `json:"smtp_from"`

	LoginRatePerMinute int `json:"login_rate_per_minute"`
	LoginRateBurst     int `json:"login_rate_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. Unset JSON fields keep
// the defaults already present in the Config.
//
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SessionSecret != "" {
		config.SessionSecret = c.SessionSecret
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	}
	if c.BaseURL != "" {
		config.BaseURL = c.BaseURL
	}

	if c.Argon2Time != 0 {
		config.HashParams.Time = c.Argon2Time
	}
	if c.Argon2Memory != 0 {
		config.HashParams.Memory = c.Argon2Memory
	}
	if c.Argon2Threads != 0 {
		config.HashParams.Threads = c.Argon2Threads
	}

	if c.SMTPHost != "" {
		config.SMTPHost = c.SMTPHost
	}
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.SMTPUser != "" {
		config.SMTPUser = c.SMTPUser
	}
	if c.SMTPPass != "" {
		config.SMTPPass = c.SMTPPass
	}
	if c.SMTPFrom != "" {
		config.SMTPFrom = c.SMTPFrom
	}

	if c.LoginRatePerMinute != 0 {
		config.LoginRatePerMinute = c.LoginRatePerMinute
	}
	if c.LoginRateBurst != 0 {
		config.LoginRateBurst = c.LoginRateBurst
	}
}
