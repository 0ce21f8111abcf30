package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/sessions"

	"daylog-go/internal/models"
)

var (
	sessionStore = sessions.NewCookieStore([]byte("secret-key-change-in-production"))
	sessionName  = "daylog-session"
)

// InitSessions replaces the default cookie signing key. Called from main
// with the configured secret before any request is served.
func InitSessions(secret string) {
	sessionStore = sessions.NewCookieStore([]byte(secret))
}

// RegisterHandler creates a new account
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		http.Error(w, "Username and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		http.Error(w, "Failed to create user", http.StatusConflict)
		return
	}

	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Save(r, w)

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": user})
}

// LoginHandler handles login. Accounts with 2FA enabled must also supply
// a valid TOTP code.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !user.CheckPassword(req.Password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if user.TOTPEnabled {
		if req.Code == "" {
			writeJSON(w, http.StatusOK, map[string]any{"requires_2fa": true})
			return
		}
		if !models.ValidTOTPCode(user.TOTPSecret, req.Code) {
			http.Error(w, "Invalid verification code", http.StatusUnauthorized)
			return
		}
	}

	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// LogoutHandler handles logout
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = nil
	session.Options.MaxAge = -1
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// AuthMiddleware checks if user is authenticated
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := CurrentUserID(r)
		if !ok || userID == 0 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// CurrentUserID returns the session user, if any.
func CurrentUserID(r *http.Request) (int, bool) {
	session, _ := sessionStore.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int)
	return userID, ok
}
