package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects the tunables the services depend on. Values come from the
// environment (godotenv loads .env in main); every policy knob has the default
// the business runs with today.
type Config struct {
	HTTPPort    string
	DatabaseURL string

	JWTSecret    string
	JWTExpiresIn time.Duration

	// COMPLIANT when completed/planned meets this ratio.
	ComplianceThreshold float64

	// Failed-login alerting policy.
	FailedLoginThreshold int
	FailedLoginWindow    time.Duration

	// Sessions idle past the timeout are force-expired by the sweep.
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
}

func Load() Config {
	return Config{
		HTTPPort:             getenv("HTTP_PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTExpiresIn:         duration("JWT_EXPIRES_IN", 24*time.Hour),
		ComplianceThreshold:  float("COMPLIANCE_THRESHOLD", 0.8),
		FailedLoginThreshold: integer("FAILED_LOGIN_THRESHOLD", 5),
		FailedLoginWindow:    duration("FAILED_LOGIN_WINDOW", 15*time.Minute),
		SessionIdleTimeout:   duration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionSweepInterval: duration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return def
}

func float(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}

func integer(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
