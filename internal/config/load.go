// internal/config/load.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultIntervalSeconds = 300
	DefaultStatusFile      = "session_keeper_status.json"
	DefaultStopWaitMs      = 1000
	DefaultSessionTimeout  = 10000
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 5
	DefaultSMTPPort        = 587
	DefaultEmailPerHour    = 12
	DefaultEmailBurst      = 3
	DefaultStartSeconds    = 300
	DefaultMaxSeconds      = 86400
	DefaultMultiplier      = 1.5
	DefaultTimeoutLogFile  = "session_timeout_test.log"
	DefaultSaveCookies     = "cookies.json"
)

// Load reads the YAML file at path (empty path: defaults only), overlays the
// env file and process environment, and fills defaults.
// Variables already set in the environment win over the env file.
// It does not validate.
func Load(path, envFile string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	hydrateDefaults(cfg)
	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Session.Username, "SESSION_USERNAME")
	setString(&cfg.Session.Password, "SESSION_PASSWORD")
	setString(&cfg.Session.LoginURL, "SESSION_LOGIN_URL")
	setString(&cfg.Session.ProbeURL, "SESSION_PROBE_URL")

	e := &cfg.Notify.Email
	setString(&e.Server, "SMTP_SERVER")
	setString(&e.User, "SMTP_USER")
	setString(&e.Pass, "SMTP_PASS")
	setString(&e.From, "SMTP_FROM")
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SMTP_PORT %q: %w", v, err)
		}
		e.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func hydrateDefaults(cfg *Config) {
	k := &cfg.Keeper
	if k.IntervalSeconds == 0 {
		k.IntervalSeconds = DefaultIntervalSeconds
	}
	if k.StatusFile == "" {
		k.StatusFile = DefaultStatusFile
	}
	if k.StopWaitMs == 0 {
		k.StopWaitMs = DefaultStopWaitMs
	}

	if cfg.Session.TimeoutMs == 0 {
		cfg.Session.TimeoutMs = DefaultSessionTimeout
	}

	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = DefaultLogMaxBackups
	}

	e := &cfg.Notify.Email
	if e.Port == 0 {
		e.Port = DefaultSMTPPort
	}
	if e.PerHour == 0 {
		e.PerHour = DefaultEmailPerHour
	}
	if e.Burst == 0 {
		e.Burst = DefaultEmailBurst
	}

	tt := &cfg.TimeoutTest
	if tt.StartSeconds == 0 {
		tt.StartSeconds = DefaultStartSeconds
	}
	if tt.MaxSeconds == 0 {
		tt.MaxSeconds = DefaultMaxSeconds
	}
	if tt.Multiplier == 0 {
		tt.Multiplier = DefaultMultiplier
	}
	if tt.LogFile == "" {
		tt.LogFile = DefaultTimeoutLogFile
	}
	if tt.SaveCookies == "" {
		tt.SaveCookies = DefaultSaveCookies
	}
}
