package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"HTTP_PORT", "COMPLIANCE_THRESHOLD", "FAILED_LOGIN_THRESHOLD",
		"FAILED_LOGIN_WINDOW", "SESSION_IDLE_TIMEOUT", "JWT_EXPIRES_IN",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 0.8, cfg.ComplianceThreshold)
	assert.Equal(t, 5, cfg.FailedLoginThreshold)
	assert.Equal(t, 15*time.Minute, cfg.FailedLoginWindow)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("COMPLIANCE_THRESHOLD", "0.9")
	t.Setenv("FAILED_LOGIN_THRESHOLD", "3")
	t.Setenv("FAILED_LOGIN_WINDOW", "5m")

	cfg := Load()
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 0.9, cfg.ComplianceThreshold)
	assert.Equal(t, 3, cfg.FailedLoginThreshold)
	assert.Equal(t, 5*time.Minute, cfg.FailedLoginWindow)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("COMPLIANCE_THRESHOLD", "most of them")
	t.Setenv("FAILED_LOGIN_WINDOW", "soon")

	cfg := Load()
	assert.Equal(t, 0.8, cfg.ComplianceThreshold)
	assert.Equal(t, 15*time.Minute, cfg.FailedLoginWindow)
}
