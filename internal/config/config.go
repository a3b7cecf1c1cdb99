package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSMode   string
	FromName  string
	FromEmail string
	Timeout   time.Duration
}

type Config struct {
	Env        string
	Addr       string
	PublicURL  *url.URL
	DBDSN      string
	DBMaxConns int32
	LogLevel   string

	TokenSecret   string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration

	RateLimitWindow time.Duration
	RateLimitMax    int

	SMTP SMTP

	AdminBootstrapEmail    string
	AdminBootstrapName     string
	AdminBootstrapPassword string
}

func Load() (Config, error) {
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:         getenv("APP_ENV"),
		Addr:        getenv("APP_ADDR"),
		DBDSN:       getenv("APP_DB_DSN"),
		LogLevel:    getenv("APP_LOG_LEVEL"),
		TokenSecret: getenv("APP_TOKEN_SECRET"),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	var err error
	cfg.TokenTTL, err = parseDuration(getenv("APP_TOKEN_TTL"), 24*time.Hour, "APP_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	cfg.ResetTokenTTL, err = parseDuration(getenv("APP_RESET_TOKEN_TTL"), 10*time.Minute, "APP_RESET_TOKEN_TTL")
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitWindow, err = parseDuration(getenv("APP_RATE_LIMIT_WINDOW"), 5*time.Minute, "APP_RATE_LIMIT_WINDOW")
	if err != nil {
		return Config{}, err
	}
	cfg.RateLimitMax, err = parseInt(getenv("APP_RATE_LIMIT_MAX"), 10, "APP_RATE_LIMIT_MAX")
	if err != nil {
		return Config{}, err
	}

	maxConns, err := parseInt(getenv("APP_DB_MAX_CONNS"), 0, "APP_DB_MAX_CONNS")
	if err != nil {
		return Config{}, err
	}
	cfg.DBMaxConns = int32(maxConns)

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	cfg.SMTP, err = loadSMTP(getenv)
	if err != nil {
		return Config{}, err
	}

	cfg.AdminBootstrapEmail = strings.TrimSpace(strings.ToLower(getenv("APP_ADMIN_BOOTSTRAP_EMAIL")))
	cfg.AdminBootstrapName = strings.TrimSpace(getenv("APP_ADMIN_BOOTSTRAP_NAME"))
	cfg.AdminBootstrapPassword = getenv("APP_ADMIN_BOOTSTRAP_PASSWORD")

	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapEmail == "" {
		return Config{}, errors.New("APP_ADMIN_BOOTSTRAP_EMAIL: required when APP_ADMIN_BOOTSTRAP_PASSWORD is set")
	}
	if cfg.AdminBootstrapPassword != "" && cfg.AdminBootstrapName == "" {
		cfg.AdminBootstrapName = "Administrator"
	}

	if cfg.IsProd() {
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if len(cfg.TokenSecret) < 32 {
			return Config{}, errors.New("APP_TOKEN_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func loadSMTP(getenv func(string) string) (SMTP, error) {
	s := SMTP{
		Host:      getenv("APP_SMTP_HOST"),
		Username:  getenv("APP_SMTP_USERNAME"),
		Password:  getenv("APP_SMTP_PASSWORD"),
		TLSMode:   getenv("APP_SMTP_TLS_MODE"),
		FromName:  getenv("APP_SMTP_FROM_NAME"),
		FromEmail: strings.TrimSpace(strings.ToLower(getenv("APP_SMTP_FROM_EMAIL"))),
	}

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		s.Port = 587
	} else {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 || port > 65535 {
			return SMTP{}, errors.New("APP_SMTP_PORT: must be a valid port")
		}
		s.Port = port
	}

	timeout, err := parseDuration(getenv("APP_SMTP_TIMEOUT"), 10*time.Second, "APP_SMTP_TIMEOUT")
	if err != nil {
		return SMTP{}, err
	}
	s.Timeout = timeout

	if s.Host != "" && s.FromEmail == "" {
		return SMTP{}, errors.New("APP_SMTP_FROM_EMAIL: required when APP_SMTP_HOST is set")
	}
	return s, nil
}

func parseInt(raw string, fallback int, name string) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: must be a non-negative integer", name)
	}
	return n, nil
}

func parseDuration(raw string, fallback time.Duration, name string) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be > 0", name)
	}
	return d, nil
}
