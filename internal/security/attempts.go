// Package security covers the authentication audit trail: login attempt
// recording, session lifecycle, and the alerting that watches both.
package security

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/models"
)

// AttemptRecorder persists login attempts. Recording is fire-and-forget with
// respect to the authentication decision: a store failure is logged and
// swallowed, never surfaced to the caller.
type AttemptRecorder struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewAttemptRecorder(db *gorm.DB, lg *zap.SugaredLogger) *AttemptRecorder {
	return &AttemptRecorder{db: db, lg: lg}
}

// Record appends one attempt. userID is nil when the identifier did not
// resolve to an account; reason is empty on success.
func (r *AttemptRecorder) Record(ctx context.Context, userID *string, username, email string, status models.AttemptStatus, ip, userAgent, reason string) {
	a := models.LoginAttempt{
		UserID:      userID,
		Username:    username,
		Email:       email,
		Status:      status,
		IPAddress:   ip,
		UserAgent:   userAgent,
		AttemptedAt: time.Now(),
	}
	if reason != "" {
		a.Reason = &reason
	}
	if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
		r.lg.Errorw("login attempt not recorded", "email", email, "status", status, "error", err)
	}
}

// RecentFailures counts failed attempts for the identifier within the
// trailing window.
func (r *AttemptRecorder) RecentFailures(ctx context.Context, email string, window time.Duration) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.LoginAttempt{}).
		Where("email = ? AND status IN ? AND attempted_at >= ?",
			email,
			[]models.AttemptStatus{models.AttemptFailed, models.AttemptInvalidCredentials},
			time.Now().Add(-window)).
		Count(&n).Error
	return n, err
}

// ListRecent returns the newest attempts, optionally filtered by email.
func (r *AttemptRecorder) ListRecent(ctx context.Context, email string, limit int) ([]models.LoginAttempt, error) {
	if limit <= 0 {
		limit = 200
	}
	q := r.db.WithContext(ctx).Order("attempted_at desc").Limit(limit)
	if email != "" {
		q = q.Where("email = ?", email)
	}
	var as []models.LoginAttempt
	err := q.Find(&as).Error
	return as, err
}
