package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// public base url, used in emails and for secure cookies
	SiteURL  string `toml:"site_url"`
	SiteName string `toml:"site_name"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// storage
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	RedisHost      string `toml:"redis_host"`
	RedisPort      string `toml:"redis_port"`

	// sessions
	SessionLifetimeMinutes int  `toml:"session_lifetime_minutes"`
	SecureCookies          bool `toml:"secure_cookies"`
	AdminUserID            int  `toml:"admin_user_id"`

	// email
	SMTPHost     string `toml:"smtp_host"`
	SMTPPort     int    `toml:"smtp_port"`
	SMTPUsername string `toml:"smtp_username"`
	SiteEmail    string `toml:"site_email"`

	// appointments
	AppointmentsTimezone  string `toml:"appointments_timezone"`
	AppointmentsFirstHour int    `toml:"appointments_first_hour"`
	AppointmentsLastHour  int    `toml:"appointments_last_hour"`

	// rate limiting, requests per minute per client
	LoginRateLimitAllowedPerMin   int `toml:"login_rate_limit_allowed_per_min"`
	ContactRateLimitAllowedPerMin int `toml:"contact_rate_limit_allowed_per_min"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}

	return cfg, nil
}

// Load reads the TOML file at path and returns the config of the given env, with defaults filled in
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.SessionLifetimeMinutes == 0 {
		c.SessionLifetimeMinutes = 30
	}
	if c.AdminUserID == 0 {
		c.AdminUserID = 1
	}
	if c.SMTPHost == "" {
		c.SMTPHost = "smtp.gmail.com"
	}
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.SMTPUsername == "" {
		c.SMTPUsername = c.SiteEmail
	}
	if c.AppointmentsTimezone == "" {
		c.AppointmentsTimezone = "America/Argentina/Buenos_Aires"
	}
	if c.AppointmentsFirstHour == 0 && c.AppointmentsLastHour == 0 {
		c.AppointmentsFirstHour = 9
		c.AppointmentsLastHour = 19
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 10
	}
	if c.ContactRateLimitAllowedPerMin == 0 {
		c.ContactRateLimitAllowedPerMin = 5
	}
	if c.SiteName == "" {
		c.SiteName = "Caminemos Juntos Counseling"
	}
}

func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be set")
	}
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		return errors.New("postgres host and db name cannot be empty")
	}
	if c.RedisHost == "" {
		return errors.New("redis host cannot be empty")
	}
	if c.SiteEmail == "" {
		return errors.New("site email cannot be empty")
	}
	if c.AppointmentsFirstHour < 0 || c.AppointmentsLastHour > 23 || c.AppointmentsFirstHour > c.AppointmentsLastHour {
		return fmt.Errorf("invalid appointments window [%d, %d]", c.AppointmentsFirstHour, c.AppointmentsLastHour)
	}
	if _, err := time.LoadLocation(c.AppointmentsTimezone); err != nil {
		return fmt.Errorf("appointments timezone: %w", err)
	}
	return nil
}

func (c *Config) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeMinutes) * time.Minute
}

// AppointmentsLocation is safe to call after Validate
func (c *Config) AppointmentsLocation() *time.Location {
	loc, err := time.LoadLocation(c.AppointmentsTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
