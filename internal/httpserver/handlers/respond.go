package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"planboard/internal/apperr"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError maps the apperr taxonomy onto HTTP statuses. Anything outside
// the taxonomy is an internal error with a generic body.
func respondError(w http.ResponseWriter, err error) {
	var (
		ve *apperr.ValidationError
		nf *apperr.NotFoundError
		is *apperr.InvalidStateError
		ae *apperr.AuthenticationError
	)
	switch {
	case errors.As(err, &ve):
		http.Error(w, ve.Msg, http.StatusBadRequest)
	case errors.As(err, &nf):
		http.Error(w, nf.Msg, http.StatusNotFound)
	case errors.As(err, &is):
		http.Error(w, is.Msg, http.StatusConflict)
	case errors.As(err, &ae):
		http.Error(w, ae.Msg, http.StatusUnauthorized)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
