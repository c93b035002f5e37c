package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds environment-driven configuration.
type Config struct {
	VaultAPI struct {
		BaseURL string // default: http://localhost:5000
		Timeout time.Duration
	}
	HTTP struct {
		Addr      string
		SecureDev bool // relax HSTS and SSL redirect for local work
	}
	Session struct {
		Secret     string
		TTL        time.Duration
		JWTSecret  string // empty disables token checks
		RevealRate string // ulule format, e.g. 30-M
	}
	MySQL struct {
		DSN string // e.g., user:pass@tcp(host:3306)/vault?parseTime=true&multiStatements=true
	}
	Mirror struct {
		Timezone string // e.g., UTC (default), Asia/Kolkata
	}
	Report struct {
		Issuer          string
		BankDetails     string
		Footer          string
		DefaultCurrency string
	}
}

func defaults(v *viper.Viper) {
	v.SetDefault("VAULT_API_URL", "http://localhost:5000")
	v.SetDefault("VAULT_API_TIMEOUT", "30s")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("REVEAL_RATE", "30-M")
	v.SetDefault("MIRROR_TZ", "UTC")
	v.SetDefault("REPORT_ISSUER", "AssetVault Portfolio Management")
	v.SetDefault("REPORT_FOOTER", "This is a computer-generated document.")
	v.SetDefault("DEFAULT_CURRENCY", "INR")
}

// Load reads configuration from the environment, a .env file in the
// working directory, and the file named by CONFIG_FILE, in that order of
// precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read %s: %w", p, err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	var cfg Config

	cfg.VaultAPI.BaseURL = v.GetString("VAULT_API_URL")
	timeout, err := time.ParseDuration(v.GetString("VAULT_API_TIMEOUT"))
	if err != nil {
		return cfg, errors.New("VAULT_API_TIMEOUT must be a duration")
	}
	cfg.VaultAPI.Timeout = timeout

	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	cfg.HTTP.SecureDev = v.GetBool("SECURE_DEV")

	cfg.Session.Secret = v.GetString("SESSION_SECRET")
	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return cfg, errors.New("SESSION_TTL must be a duration")
	}
	cfg.Session.TTL = ttl
	cfg.Session.JWTSecret = v.GetString("AUTH_JWT_SECRET")
	cfg.Session.RevealRate = v.GetString("REVEAL_RATE")

	cfg.MySQL.DSN = v.GetString("MYSQL_DSN")

	cfg.Mirror.Timezone = v.GetString("MIRROR_TZ")
	if _, err := time.LoadLocation(cfg.Mirror.Timezone); err != nil {
		return cfg, fmt.Errorf("MIRROR_TZ: %w", err)
	}

	cfg.Report.Issuer = v.GetString("REPORT_ISSUER")
	cfg.Report.BankDetails = v.GetString("REPORT_BANK_DETAILS")
	cfg.Report.Footer = v.GetString("REPORT_FOOTER")
	cfg.Report.DefaultCurrency = v.GetString("DEFAULT_CURRENCY")

	return cfg, nil
}

// RequireServe checks the keys only the HTTP server needs.
func (c Config) RequireServe() error {
	if len(c.Session.Secret) < 32 {
		return errors.New("SESSION_SECRET is required (at least 32 bytes)")
	}
	return nil
}
