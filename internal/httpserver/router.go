package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/auth"
	"planboard/internal/config"
	"planboard/internal/httpserver/handlers"
	"planboard/internal/models"
	"planboard/internal/planning"
	"planboard/internal/security"
)

// Deps bundles the wired services the router hands to handlers.
type Deps struct {
	DB        *gorm.DB
	Log       *zap.SugaredLogger
	Cfg       config.Config
	Gate      *auth.Gate
	Attempts  *security.AttemptRecorder
	Sessions  *security.SessionTracker
	Alerts    *security.AlertEngine
	Plannings *planning.Service
	Schedules *planning.ScheduleService
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/api/auth/login", handlers.Login(d.Gate, d.Log))
	r.Post("/api/auth/register", handlers.Register(d.DB, d.Log))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth([]byte(d.Cfg.JWTSecret), d.Sessions, d.Cfg.SessionIdleTimeout, d.Log))

		protected.Post("/api/auth/logout", handlers.Logout(d.Sessions))
		protected.Get("/api/auth/me", handlers.Me(d.DB, d.Log))
		protected.Post("/api/auth/password", handlers.ChangePassword(d.DB, d.Log))

		protected.Route("/api/plannings", func(p chi.Router) {
			p.Post("/", handlers.CreatePlanning(d.Plannings, d.Log))
			p.Get("/", handlers.ListPlannings(d.Plannings, d.Log))
			p.Get("/compliant-count", handlers.CompliantCount(d.Plannings, d.Log))
			p.Get("/{id}", handlers.GetPlanning(d.Plannings, d.Log))
			p.Patch("/{id}", handlers.UpdatePlanning(d.Plannings, d.Log))
			p.Delete("/{id}", handlers.DeletePlanning(d.Plannings, d.Log))
			p.Post("/{id}/submit", handlers.SubmitPlanning(d.Plannings, d.Log))
			p.Post("/{id}/compliance", handlers.RecalculateCompliance(d.Plannings, d.Log))
			p.Get("/{id}/counts", handlers.ScheduleCounts(d.Schedules, d.Log))

			p.Group(func(review chi.Router) {
				review.Use(auth.RequireRole(models.RoleProjectManager, models.RoleAdmin))
				review.Get("/pending", handlers.PendingPlannings(d.Plannings, d.Log))
				review.Post("/{id}/approve", handlers.ApprovePlanning(d.Plannings, d.Log))
				review.Post("/{id}/reject", handlers.RejectPlanning(d.Plannings, d.Log))
			})
		})

		protected.Route("/api/schedules", func(s chi.Router) {
			s.Post("/", handlers.CreateSchedule(d.Schedules, d.Log))
			s.Get("/", handlers.ListSchedules(d.Schedules, d.Log))
			s.Get("/{id}", handlers.GetSchedule(d.Schedules, d.Log))
			s.Patch("/{id}", handlers.UpdateSchedule(d.Schedules, d.Log))
			s.Delete("/{id}", handlers.DeleteSchedule(d.Schedules, d.Log))
			s.Post("/{id}/complete", handlers.CompleteSchedule(d.Schedules, d.Log))
			s.Post("/{id}/incomplete", handlers.UncompleteSchedule(d.Schedules, d.Log))
		})

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(models.RoleAdmin))
			admin.Get("/api/admin/users", handlers.ListUsers(d.DB, d.Log))
			admin.Post("/api/admin/users", handlers.CreateUser(d.DB, d.Log))
			admin.Patch("/api/admin/users/{id}", handlers.UpdateUser(d.DB, d.Log))
			admin.Delete("/api/admin/users/{id}", handlers.DeleteUser(d.DB, d.Log))
			admin.Get("/api/admin/login-attempts", handlers.ListLoginAttempts(d.Attempts, d.Log))
			admin.Get("/api/admin/sessions", handlers.ListSessions(d.Sessions, d.Log))
			admin.Get("/api/admin/alerts", handlers.ListAlerts(d.Alerts, d.Log))
			admin.Post("/api/admin/alerts/{id}/resolve", handlers.ResolveAlert(d.Alerts, d.Log))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
