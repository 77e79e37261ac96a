package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planboard/internal/security"
)

func ListLoginAttempts(attempts *security.AttemptRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		as, err := attempts.ListRecent(r.Context(), r.URL.Query().Get("email"), limit)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, as)
	}
}

func ListSessions(sessions *security.SessionTracker, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ss, err := sessions.ListActive(r.Context(), r.URL.Query().Get("user_id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, ss)
	}
}

func ListAlerts(alerts *security.AlertEngine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := alerts.List(r.Context(), r.URL.Query().Get("unresolved") == "1")
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, as)
	}
}

func ResolveAlert(alerts *security.AlertEngine, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		a, err := alerts.Resolve(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		lg.Infow("alert resolved", "id", a.ID, "type", a.Type)
		respondJSON(w, a)
	}
}
