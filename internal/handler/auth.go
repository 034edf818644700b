package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/service"
)

// AuthHandler manages the Google OAuth login flow and session management.
type AuthHandler struct {
	google *auth.GoogleProvider
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(google *auth.GoogleProvider, authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		google: google,
		auth:   authSvc,
		logger: logger,
	}
}

// HandleGoogleLogin redirects the browser to Google's authorization page.
//
// HTTP: GET /auth/google/login
//
// A random state value goes into a short-lived HttpOnly cookie; the
// callback verifies it to tie the response to this browser.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the OAuth login: verifies state, exchanges
// the code for a Google profile, registers-or-loads the local profile, and
// sets the JWT cookie.
//
// HTTP: GET /auth/google/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: Google exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.auth.LoginWithGoogle(r.Context(), gu)
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user authenticated",
		slog.String("uid", result.User.UID),
		slog.String("email", result.User.Email),
	)

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the JWT cookie. The token itself stays valid until it
// expires; without the cookie the browser can no longer send it.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /auth/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	user, err := h.auth.Me(r.Context(), id.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
