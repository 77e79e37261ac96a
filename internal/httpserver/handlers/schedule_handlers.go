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

func CreateSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlanningID int64            `json:"planning_id"`
			DayOfWeek  models.DayOfWeek `json:"day_of_week"`
			TaskID     *int64           `json:"task_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d, err := svc.Create(r.Context(), req.PlanningID, req.DayOfWeek, req.TaskID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, d)
	}
}

// ListSchedules serves ?planning_id, ?date, ?date + mine, ?week + ?year, or
// everything (admin use).
func ListSchedules(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("planning_id") != "":
			pid, err := strconv.ParseInt(q.Get("planning_id"), 10, 64)
			if err != nil {
				http.Error(w, "invalid planning_id", http.StatusBadRequest)
				return
			}
			ds, err := svc.ListByPlanning(r.Context(), pid)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ds)
		case q.Get("week") != "" && q.Get("year") != "":
			week, _ := strconv.Atoi(q.Get("week"))
			year, _ := strconv.Atoi(q.Get("year"))
			ds, err := svc.ListByUserAndWeek(r.Context(), auth.Subject(r.Context()), week, year)
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ds)
		case q.Get("date") != "":
			date, err := time.Parse("2006-01-02", q.Get("date"))
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			var ds []models.DailyTaskSchedule
			if q.Get("all") == "1" && auth.FromContext(r.Context()).HasRole(models.RoleAdmin) {
				ds, err = svc.ListByDate(r.Context(), date)
			} else {
				ds, err = svc.ListByUserAndDate(r.Context(), auth.Subject(r.Context()), date)
			}
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ds)
		default:
			ds, err := svc.ListAll(r.Context())
			if err != nil {
				respondError(w, err)
				return
			}
			respondJSON(w, ds)
		}
	}
}

func GetSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		d, err := svc.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, d)
	}
}

func UpdateSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		var req struct {
			DayOfWeek models.DayOfWeek `json:"day_of_week"`
			TaskID    *int64           `json:"task_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d, err := svc.Update(r.Context(), id, req.DayOfWeek, req.TaskID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, d)
	}
}

func DeleteSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
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

func CompleteSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return setCompletion(svc, true)
}

func UncompleteSchedule(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return setCompletion(svc, false)
}

func setCompletion(svc *planning.ScheduleService, completed bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		var d *models.DailyTaskSchedule
		if completed {
			d, err = svc.MarkCompleted(r.Context(), id)
		} else {
			d, err = svc.MarkIncomplete(r.Context(), id)
		}
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, d)
	}
}

func ScheduleCounts(svc *planning.ScheduleService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		done, err := svc.CountCompleted(r.Context(), pid)
		if err != nil {
			respondError(w, err)
			return
		}
		pending, err := svc.CountPending(r.Context(), pid)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, map[string]any{"planning_id": pid, "completed": done, "pending": pending})
	}
}
