package security

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
)

// SessionTracker owns session records. A user holds at most one active
// session; creating a new one retires the previous one in the same
// transaction rather than in a separate sweep.
type SessionTracker struct {
	db *gorm.DB
	lg *zap.SugaredLogger
}

func NewSessionTracker(db *gorm.DB, lg *zap.SugaredLogger) *SessionTracker {
	return &SessionTracker{db: db, lg: lg}
}

func (t *SessionTracker) Create(ctx context.Context, userID, ip, userAgent, deviceType string) (*models.UserSession, error) {
	now := time.Now()
	s := models.UserSession{
		Token:        uuid.NewString(),
		UserID:       userID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		DeviceType:   deviceType,
		LoginTime:    now,
		LastActivity: now,
		IsActive:     true,
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.UserSession{}).
			Where("user_id = ? AND is_active", userID).
			Updates(map[string]any{"is_active": false, "logout_time": now}).Error; err != nil {
			return err
		}
		return tx.Create(&s).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the session for a token regardless of liveness.
func (t *SessionTracker) Get(ctx context.Context, token string) (*models.UserSession, error) {
	var s models.UserSession
	if err := t.db.WithContext(ctx).First(&s, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session not found")
		}
		return nil, err
	}
	return &s, nil
}

// Touch refreshes last_activity for an active session.
func (t *SessionTracker) Touch(ctx context.Context, token string) error {
	return t.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("token = ? AND is_active", token).
		Update("last_activity", time.Now()).Error
}

// Logout retires the session. Idempotent: logging out an already-closed
// session is a no-op.
func (t *SessionTracker) Logout(ctx context.Context, token string) error {
	now := time.Now()
	return t.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("token = ? AND is_active", token).
		Updates(map[string]any{"is_active": false, "logout_time": now}).Error
}

// ExpireStale force-logs-out active sessions idle past the timeout. Driven by
// the sweep ticker in cmd/api.
func (t *SessionTracker) ExpireStale(ctx context.Context, idleTimeout time.Duration) (int64, error) {
	now := time.Now()
	res := t.db.WithContext(ctx).Model(&models.UserSession{}).
		Where("is_active AND last_activity < ?", now.Add(-idleTimeout)).
		Updates(map[string]any{"is_active": false, "logout_time": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		t.lg.Infow("expired stale sessions", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// ListActive returns active sessions, optionally narrowed to one user.
func (t *SessionTracker) ListActive(ctx context.Context, userID string) ([]models.UserSession, error) {
	q := t.db.WithContext(ctx).Where("is_active").Order("login_time desc")
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var ss []models.UserSession
	err := q.Find(&ss).Error
	return ss, err
}
