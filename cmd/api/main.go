package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"planboard/internal/auth"
	"planboard/internal/config"
	"planboard/internal/httpserver"
	"planboard/internal/logger"
	"planboard/internal/models"
	"planboard/internal/planning"
	"planboard/internal/security"
)

func main() {
	_ = godotenv.Load()
	lg := logger.New()
	defer lg.Sync()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		lg.Fatalw("JWT_SECRET is empty")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Task{},
		&models.LoginAttempt{}, &models.UserSession{}, &models.SecurityAlert{},
		&models.WeeklyPlanning{}, &models.DailyTaskSchedule{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedDefaultAdmin(db, lg)

	attempts := security.NewAttemptRecorder(db, lg)
	sessions := security.NewSessionTracker(db, lg)
	alerts := security.NewAlertEngine(db, lg, attempts, cfg.FailedLoginThreshold, cfg.FailedLoginWindow)
	gate := auth.NewGate(db, lg, attempts, sessions, alerts, []byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	plannings := planning.NewService(db, lg, cfg.ComplianceThreshold)
	schedules := planning.NewScheduleService(db, lg, cfg.ComplianceThreshold)

	go sweepSessions(sessions, cfg.SessionSweepInterval, cfg.SessionIdleTimeout, lg)

	router := httpserver.NewRouter(httpserver.Deps{
		DB: db, Log: lg, Cfg: cfg,
		Gate: gate, Attempts: attempts, Sessions: sessions, Alerts: alerts,
		Plannings: plannings, Schedules: schedules,
	})
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}

// seedDefaultAdmin provisions the bootstrap administrator. The id comes from
// the store's uuid default, never from an application-side generator.
func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, _ := auth.HashPassword("admin1234")
	u := models.User{
		Email:        "admin@planboard.local",
		Username:     "admin",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Errorw("admin seed failed", "error", err)
		return
	}
	lg.Infow("seeded default admin", "email", u.Email)
}

func sweepSessions(sessions *security.SessionTracker, every, idleTimeout time.Duration, lg *zap.SugaredLogger) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		if _, err := sessions.ExpireStale(context.Background(), idleTimeout); err != nil {
			lg.Errorw("session sweep failed", "error", err)
		}
	}
}
