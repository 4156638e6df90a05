package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServiceFeePercent   = "4"
	defaultCancellationCutoff  = "1h"
	defaultSweeperInterval     = "15m"
	defaultSweeperMaxAttempts  = "3"
	defaultPaymentLinkTTL      = "30m"
	defaultJWTAccessTTL        = "24h"
	defaultTimezone            = "UTC"
	defaultJWTSecret           = "change-me-jwt-secret"
	defaultPaymentWebhookToken = "change-me-webhook-secret"
)

// Config is the process-wide runtime configuration, loaded from the
// environment. The service fee and the customer cancellation cutoff are
// business policy and deliberately configurable; the reference defaults are
// 4% and one hour.
type Config struct {
	AppEnv      string
	DatabaseURL string
	ListenAddr  string

	JWTSecret    string
	JWTAccessTTL time.Duration

	ServiceFeePercent  float64
	CancellationCutoff time.Duration
	PaymentLinkTTL     time.Duration
	DefaultTimezone    string

	SweeperInterval    time.Duration
	SweeperMaxAttempts int

	PaymentWebhookSecret string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.PaymentWebhookSecret = strings.TrimSpace(getEnv("PAYMENT_WEBHOOK_SECRET", defaultPaymentWebhookToken))
	cfg.DefaultTimezone = getEnv("DEFAULT_TIMEZONE", defaultTimezone)
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.CancellationCutoff, err = parseDurationEnv("CANCELLATION_CUTOFF", defaultCancellationCutoff); err != nil {
		return nil, err
	}
	if cfg.SweeperInterval, err = parseDurationEnv("SWEEPER_INTERVAL", defaultSweeperInterval); err != nil {
		return nil, err
	}
	if cfg.PaymentLinkTTL, err = parseDurationEnv("PAYMENT_LINK_TTL", defaultPaymentLinkTTL); err != nil {
		return nil, err
	}
	if cfg.ServiceFeePercent, err = parseFloatEnv("SERVICE_FEE_PERCENT", defaultServiceFeePercent); err != nil {
		return nil, err
	}
	if cfg.SweeperMaxAttempts, err = parseIntEnv("SWEEPER_MAX_ATTEMPTS", defaultSweeperMaxAttempts); err != nil {
		return nil, err
	}

	if cfg.ServiceFeePercent < 0 || cfg.ServiceFeePercent >= 100 {
		return nil, fmt.Errorf("SERVICE_FEE_PERCENT out of range: %v", cfg.ServiceFeePercent)
	}
	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return d, nil
}

func parseFloatEnv(name, def string) (float64, error) {
	raw := getEnv(name, def)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return f, nil
}

func parseIntEnv(name, def string) (int, error) {
	raw := getEnv(name, def)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", name, raw, err)
	}
	return n, nil
}
