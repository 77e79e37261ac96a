package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

// AlertEngine derives security alerts from login attempt patterns.
type AlertEngine struct {
	db        *gorm.DB
	lg        *zap.SugaredLogger
	attempts  *AttemptRecorder
	threshold int
	window    time.Duration
}

func NewAlertEngine(db *gorm.DB, lg *zap.SugaredLogger, attempts *AttemptRecorder, failureThreshold int, window time.Duration) *AlertEngine {
	return &AlertEngine{db: db, lg: lg, attempts: attempts, threshold: failureThreshold, window: window}
}

// AfterFailedAttempt inspects the trailing failure count for the identifier
// and raises a MULTIPLE_FAILED_LOGINS alert once the threshold is crossed.
// While an unresolved alert of that type exists for the identifier no second
// one is created. Failures here are logged and swallowed; alerting never
// blocks authentication.
func (e *AlertEngine) AfterFailedAttempt(ctx context.Context, email, ip string, userID *string) {
	count, err := e.attempts.RecentFailures(ctx, email, e.window)
	if err != nil {
		e.lg.Errorw("failure count unavailable", "email", email, "error", err)
		return
	}
	if count < int64(e.threshold) {
		return
	}
	var existing int64
	if err := e.db.WithContext(ctx).Model(&models.SecurityAlert{}).
		Where("type = ? AND identifier = ? AND NOT is_resolved", models.AlertMultipleFailedLogins, email).
		Count(&existing).Error; err != nil {
		e.lg.Errorw("alert dedup check failed", "email", email, "error", err)
		return
	}
	if existing > 0 {
		return
	}
	a := models.SecurityAlert{
		Type:        models.AlertMultipleFailedLogins,
		Severity:    severityFor(count),
		Description: fmt.Sprintf("%d failed login attempts for %s within %s", count, email, e.window),
		Identifier:  email,
		IPAddress:   ip,
		UserID:      userID,
	}
	if err := e.db.WithContext(ctx).Create(&a).Error; err != nil {
		e.lg.Errorw("security alert not created", "email", email, "error", err)
		return
	}
	e.lg.Warnw("security alert raised", "type", a.Type, "severity", a.Severity, "identifier", email, "failures", count)
}

// Resolve closes an alert. Resolution is explicit and one-way.
func (e *AlertEngine) Resolve(ctx context.Context, id int64) (*models.SecurityAlert, error) {
	var a models.SecurityAlert
	if err := e.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("alert %d not found", id)
		}
		return nil, err
	}
	if a.IsResolved {
		return nil, apperr.InvalidState("alert %d is already resolved", id)
	}
	now := time.Now()
	a.IsResolved = true
	a.ResolvedAt = &now
	if err := e.db.WithContext(ctx).Save(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns alerts, newest first; unresolvedOnly narrows to open ones.
func (e *AlertEngine) List(ctx context.Context, unresolvedOnly bool) ([]models.SecurityAlert, error) {
	q := e.db.WithContext(ctx).Order("created_at desc").Limit(200)
	if unresolvedOnly {
		q = q.Where("NOT is_resolved")
	}
	var as []models.SecurityAlert
	err := q.Find(&as).Error
	return as, err
}

// severityFor escalates with the failure count: 5-9 MEDIUM, 10-19 HIGH,
// 20+ CRITICAL.
func severityFor(failures int64) models.AlertSeverity {
	switch {
	case failures >= 20:
		return models.SeverityCritical
	case failures >= 10:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}
