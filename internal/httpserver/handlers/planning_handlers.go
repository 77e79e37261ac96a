package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"planboard/internal/auth"
	"planboard/internal/models"
	"planboard/internal/planning"
)

func planningID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func CreatePlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID            string `json:"user_id"`
			WeekNumber        int    `json:"week_number"`
			Year              int    `json:"year"`
			TotalTasksPlanned int    `json:"total_tasks_planned"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Non-admins plan only for themselves.
		claims := auth.FromContext(r.Context())
		if req.UserID == "" || (claims.Role == models.RoleUser && req.UserID != claims.Subject) {
			req.UserID = claims.Subject
		}
		p, err := svc.Create(r.Context(), req.UserID, req.WeekNumber, req.Year, req.TotalTasksPlanned)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

// ListPlannings serves the query surface off one endpoint: ?user_id, ?week +
// ?year, ?date, ?status, ?from + ?to, defaulting to the caller's own rows.
func ListPlannings(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		claims := auth.FromContext(r.Context())
		userID := q.Get("user_id")
		if userID == "" || claims.Role == models.RoleUser {
			userID = claims.Subject
		}
		switch {
		case q.Get("week") != "" && q.Get("year") != "":
			week, _ := strconv.Atoi(q.Get("week"))
			year, _ := strconv.Atoi(q.Get("year"))
			p, err := svc.GetByUserWeek(r.Context(), userID, week, year)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, p)
		case q.Get("date") != "":
			date, err := time.Parse("2006-01-02", q.Get("date"))
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			p, err := svc.GetByDate(r.Context(), userID, date)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, p)
		case q.Get("status") != "":
			ps, err := svc.ListByStatus(r.Context(), models.ComplianceStatus(q.Get("status")))
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ps)
		case q.Get("from") != "" && q.Get("to") != "":
			from, err1 := time.Parse("2006-01-02", q.Get("from"))
			to, err2 := time.Parse("2006-01-02", q.Get("to"))
			if err1 != nil || err2 != nil {
				http.Error(w, "from/to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			ps, err := svc.ListInRange(r.Context(), from, to)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ps)
		case q.Get("approved") == "1":
			ps, err := svc.ListApprovedByUser(r.Context(), userID)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ps)
		default:
			ps, err := svc.ListByUser(r.Context(), userID)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ps)
		}
	}
}

func GetPlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		p, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

func UpdatePlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		var req struct {
			TotalTasksPlanned int `json:"total_tasks_planned"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := svc.Update(r.Context(), id, req.TotalTasksPlanned)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

func SubmitPlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		p, err := svc.Submit(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

func ApprovePlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		p, err := svc.Approve(r.Context(), id, auth.Subject(r.Context()))
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

func RejectPlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		var req struct {
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := svc.Reject(r.Context(), id, auth.Subject(r.Context()), req.Reason)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, p)
	}
}

func RecalculateCompliance(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		status, err := svc.CalculateCompliance(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, map[string]any{"id": id, "compliance_status": status})
	}
}

func DeletePlanning(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := planningID(r)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}

func PendingPlannings(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := svc.ListPendingApproval(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, ps)
	}
}

func CompliantCount(svc *planning.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		userID := r.URL.Query().Get("user_id")
		if userID == "" || claims.Role == models.RoleUser {
			userID = claims.Subject
		}
		n, err := svc.CountCompliantByUser(r.Context(), userID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, map[string]any{"user_id": userID, "compliant": n})
	}
}
