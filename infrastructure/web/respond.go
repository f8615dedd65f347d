package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"chatline/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the core error taxonomy onto HTTP statuses.
// Anything unrecognized is a persistence or internal failure and becomes a
// 500; the core guarantees those are surfaced, never swallowed.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "Username already exists")
	case stderrors.Is(err, errors.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case stderrors.Is(err, errors.ErrEmptyBody),
		stderrors.Is(err, errors.ErrMissingRecipient),
		stderrors.Is(err, errors.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
