package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/models"
	"planboard/internal/security"
)

// Post-login redirect targets. One canonical path per role.
const (
	RedirectAdmin      = "/admin/adminDashboard"
	RedirectManager    = "/project-manager/pmDashboard"
	RedirectUser       = "/user/userDashboard"
	RedirectLogin      = "/api/auth/login"
	RedirectLoginError = "/api/auth/login?error=true"
)

// Gate is the composition root for login: credential check, attempt
// recording, session creation, alerting, and the redirect decision.
type Gate struct {
	db       *gorm.DB
	lg       *zap.SugaredLogger
	attempts *security.AttemptRecorder
	sessions *security.SessionTracker
	alerts   *security.AlertEngine
	secret   []byte
	tokenTTL time.Duration
}

func NewGate(db *gorm.DB, lg *zap.SugaredLogger, attempts *security.AttemptRecorder, sessions *security.SessionTracker, alerts *security.AlertEngine, jwtSecret []byte, tokenTTL time.Duration) *Gate {
	return &Gate{db: db, lg: lg, attempts: attempts, sessions: sessions, alerts: alerts, secret: jwtSecret, tokenTTL: tokenTTL}
}

// LoginResult is what the boundary needs to answer the caller: the bearer
// token, the session cookie value, and where to send the browser.
type LoginResult struct {
	Token        string
	SessionToken string
	RedirectPath string
	User         *models.User
}

// Login authenticates email+password. Every outcome is recorded as a
// LoginAttempt; audit failures never change the decision. The error returned
// on any credential problem is the same generic AuthenticationError, so a
// caller cannot probe which emails exist.
func (g *Gate) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	var user models.User
	err := g.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		g.fail(ctx, nil, "", email, models.AttemptInvalidCredentials, ip, userAgent, "unknown account")
		return nil, apperr.Authentication()
	}
	if !user.IsActive {
		g.fail(ctx, &user.ID, user.Username, email, models.AttemptLocked, ip, userAgent, "account disabled")
		return nil, apperr.Authentication()
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		g.fail(ctx, &user.ID, user.Username, email, models.AttemptInvalidCredentials, ip, userAgent, err.Error())
		return nil, apperr.Authentication()
	}

	g.attempts.Record(ctx, &user.ID, user.Username, email, models.AttemptSuccess, ip, userAgent, "")

	res := &LoginResult{RedirectPath: redirectFor(user.Role), User: &user}

	// Session or token trouble is an operator problem, not a login failure;
	// the redirect decision stands either way.
	sess, err := g.sessions.Create(ctx, user.ID, ip, userAgent, DeviceType(userAgent))
	if err != nil {
		g.lg.Errorw("session not created", "user_id", user.ID, "error", err)
		return res, nil
	}
	res.SessionToken = sess.Token
	tok, err := Sign(g.secret, g.tokenTTL, user.ID, user.Role, sess.Token)
	if err != nil {
		g.lg.Errorw("token not signed", "user_id", user.ID, "error", err)
		return res, nil
	}
	res.Token = tok
	return res, nil
}

func (g *Gate) fail(ctx context.Context, userID *string, username, email string, status models.AttemptStatus, ip, userAgent, reason string) {
	g.attempts.Record(ctx, userID, username, email, status, ip, userAgent, reason)
	g.alerts.AfterFailedAttempt(ctx, email, ip, userID)
}

// redirectFor maps the role to its dashboard. An unrecognized role falls back
// to the login page; a provisioned account should never hit that branch.
func redirectFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return RedirectAdmin
	case models.RoleProjectManager:
		return RedirectManager
	case models.RoleUser:
		return RedirectUser
	default:
		return RedirectLogin
	}
}
