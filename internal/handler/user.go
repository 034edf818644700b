package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/service"
)

// UserHandler serves profiles and the follow graph.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleGetProfile returns the profile for a uid supplied in the JSON body.
//
// HTTP: GET /api/user/profile
// BODY: {"uid": "..."}
//
// The uid rides in the body of a GET — a long-standing client contract this
// endpoint keeps honoring.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetProfile(r.Context(), req.UID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateProfile updates the authenticated caller's name and picture.
//
// HTTP: PUT /api/user/profile
// Auth: required
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	var req struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), id.UID, req.Name, req.Picture)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleRegister creates a profile from the authenticated identity's claims.
//
// HTTP: POST /api/user/register
// Auth: required
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	user, err := h.users.Register(r.Context(), *id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleFollow creates a follow edge from the current user to the other.
//
// HTTP: POST /api/user/follow/{currentUserId}/{otherUserId}
// Auth: required
func (h *UserHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := pathID(r, "currentUserId")
	if err != nil {
		writeError(w, err)
		return
	}
	otherUserID, err := pathID(r, "otherUserId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Follow(r.Context(), currentUserID, otherUserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Successfully followed the user"})
}

// HandleUnfollow removes the follow edge.
//
// HTTP: DELETE /api/user/unfollow/{currentUserId}/{otherUserId}
// Auth: required
func (h *UserHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := pathID(r, "currentUserId")
	if err != nil {
		writeError(w, err)
		return
	}
	otherUserID, err := pathID(r, "otherUserId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.Unfollow(r.Context(), currentUserID, otherUserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully unfollowed the user"})
}
