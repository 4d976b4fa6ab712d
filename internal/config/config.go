// internal/config/config.go
package config

type Config struct {
	Keeper      KeeperConfig      `yaml:"keeper"`
	Session     SessionConfig     `yaml:"session"`
	Log         LogConfig         `yaml:"log"`
	Notify      NotifyConfig      `yaml:"notify"`
	TimeoutTest TimeoutTestConfig `yaml:"timeout_test"`
}

// ---- KEEPER ----

type KeeperConfig struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	MonitorCookies  bool   `yaml:"monitor_cookies"`
	StatusFile      string `yaml:"status_file"`
	HistoryDB       string `yaml:"history_db"` // empty disables the journal
	StopWaitMs      int    `yaml:"stop_wait_ms"`
}

// ---- SESSION ----

type SessionConfig struct {
	Username string `yaml:"username"` // SESSION_USERNAME
	Password string `yaml:"password"` // SESSION_PASSWORD

	LoginURL      string            `yaml:"login_url"` // SESSION_LOGIN_URL; defaults to probe_url
	ProbeURL      string            `yaml:"probe_url"` // SESSION_PROBE_URL
	UsernameField string            `yaml:"username_field"`
	PasswordField string            `yaml:"password_field"`
	ExtraFields   map[string]string `yaml:"extra_fields"`
	TimeoutMs     int               `yaml:"timeout_ms"`

	CookiesFile string `yaml:"cookies_file"`
}

// ---- LOG ----

type LogConfig struct {
	File       string `yaml:"file"` // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Verbose    bool   `yaml:"verbose"`
}

// ---- NOTIFY ----

type NotifyConfig struct {
	Disabled bool        `yaml:"disabled"`
	Desktop  string      `yaml:"desktop"` // "", "notify-send" or "osascript"
	File     string      `yaml:"file"`    // JSON lines; empty disables
	Email    EmailConfig `yaml:"email"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	To      string `yaml:"to"`
	Server  string `yaml:"server"` // SMTP_SERVER
	Port    int    `yaml:"port"`   // SMTP_PORT
	User    string `yaml:"user"`   // SMTP_USER
	Pass    string `yaml:"pass"`   // SMTP_PASS
	From    string `yaml:"from"`   // SMTP_FROM
	PerHour int    `yaml:"per_hour"`
	Burst   int    `yaml:"burst"`
}

// ---- TIMEOUT TEST ----

type TimeoutTestConfig struct {
	Adaptive     bool    `yaml:"adaptive"`
	StartSeconds int     `yaml:"start_seconds"`
	MaxSeconds   int     `yaml:"max_seconds"`
	Multiplier   float64 `yaml:"multiplier"`
	LogFile      string  `yaml:"log_file"`
	SaveCookies  string  `yaml:"save_cookies"` // where the fresh login's cookies go
}
