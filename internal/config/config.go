package config

import (
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/spf13/viper"

	applog "vinylhub/internal/log"
)

type Config struct {
	Env      string
	Port     string
	DBDSN    string
	LogFile  string
	LogLevel string

	AdminUser     string
	AdminPass     string
	SessionSecret string
	SessionTTL    time.Duration

	TemplatesDir string
	StaticDir    string
	Timezone     string

	// Requests per minute per IP; 0 disables the limiter.
	RateLimit int
	// Login attempts per 10 minutes per IP; 0 disables the throttle.
	LoginRateLimit int
}

// Load reads the configuration from the environment. A .env file, when present,
// is loaded by the binaries before calling Load.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "production")
	v.SetDefault("PORT", "3000")
	v.SetDefault("DB_DSN", "data.sqlite") // sqlite file in project root
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS", "1234")
	v.SetDefault("SESSION_SECRET", "devsecret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("TIMEZONE", "America/Santiago")
	v.SetDefault("RATE_LIMIT", 60)
	v.SetDefault("LOGIN_RATE_LIMIT", 5)

	cfg := Config{
		Env:            v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		DBDSN:          v.GetString("DB_DSN"),
		LogFile:        v.GetString("LOG_FILE"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		AdminUser:      v.GetString("ADMIN_USER"),
		AdminPass:      v.GetString("ADMIN_PASS"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		TemplatesDir:   v.GetString("TEMPLATES_DIR"),
		StaticDir:      v.GetString("STATIC_DIR"),
		Timezone:       v.GetString("TIMEZONE"),
		RateLimit:      v.GetInt("RATE_LIMIT"),
		LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return cfg
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		applog.Logger().Warn().Str("timezone", c.Timezone).Err(err).Msg("config.timezone.fallback")
		return time.Local
	}
	return loc
}

// LogSummary writes the effective settings, leaving secrets out.
func (c Config) LogSummary() {
	applog.Logger().Info().
		Str("env", c.Env).
		Str("port", c.Port).
		Str("db_dsn", c.DBDSN).
		Str("log_file", c.LogFile).
		Str("templates", c.TemplatesDir).
		Str("timezone", c.Timezone).
		Int("rate_limit", c.RateLimit).
		Msg("config")
}
