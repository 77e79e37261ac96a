package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"planboard/internal/apperr"
	"planboard/internal/auth"
	"planboard/internal/models"
	"planboard/internal/security"
)

// sessionCookie is the name the surrounding stack expects; cleared on logout.
const sessionCookie = "JSESSIONID"

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login drives the authentication gate. A credential failure answers with the
// error-flagged login redirect and nothing else, regardless of cause.
func Login(gate *auth.Gate, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := gate.Login(r.Context(), req.Email, req.Password, auth.ClientIP(r), r.UserAgent())
		if err != nil {
			var ae *apperr.AuthenticationError
			if errors.As(err, &ae) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{"redirect": auth.RedirectLoginError})
				return
			}
			respondError(w, err)
			return
		}
		if res.SessionToken != "" {
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    res.SessionToken,
				Path:     "/",
				HttpOnly: true,
			})
		}
		respondJSON(w, map[string]any{
			"token":     res.Token,
			"redirect":  res.RedirectPath,
			"role":      res.User.Role,
			"authority": res.User.Role.Authority(),
		})
	}
}

func Logout(sessions *security.SessionTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tok := auth.FromContext(r.Context()).SessionToken; tok != "" {
			_ = sessions.Logout(r.Context(), tok)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		respondJSON(w, map[string]any{"redirect": auth.RedirectLogin})
	}
}

func Register(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(req.Email)
		req.Username = strings.TrimSpace(req.Username)
		if req.Email == "" || req.Username == "" || req.Password == "" {
			http.Error(w, "email, username and password required", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		u := models.User{Email: req.Email, Username: req.Username, PasswordHash: hash, Role: models.RoleUser, IsActive: true}
		if err := db.Create(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, map[string]any{"id": u.ID, "email": u.Email, "role": u.Role})
	}
}

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.First(&u, "id = ?", auth.Subject(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, u)
	}
}

func ChangePassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Current string `json:"current_password"`
			New     string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.New == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", auth.Subject(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Current); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		hash, err := auth.HashPassword(req.New)
		if err != nil {
			http.Error(w, "hash error", http.StatusInternalServerError)
			return
		}
		u.PasswordHash = hash
		u.UpdatedAt = time.Now()
		if err := db.Save(&u).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]any{"updated": true})
	}
}
