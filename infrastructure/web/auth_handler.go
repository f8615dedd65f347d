package web

import (
	"encoding/json"
	"net/http"
	"time"

	"chatline/services"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthHandler struct {
	Auth      services.IAuthService
	SessionTT time.Duration
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.Auth.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSession(w, token)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.Auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.setSession(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"user":    creds.Username,
	})
}

// Status reports the username bound to the current session. Mounted behind
// the session middleware, so reaching it means the token already validated.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	username, ok := UsernameFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": username})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token services.Token) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    string(token),
		Path:     "/",
		MaxAge:   int(h.SessionTT.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
