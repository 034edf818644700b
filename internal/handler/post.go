package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sakif/bazaar/internal/apperror"
	"github.com/sakif/bazaar/internal/auth"
	"github.com/sakif/bazaar/internal/model"
	"github.com/sakif/bazaar/internal/repository"
	"github.com/sakif/bazaar/internal/service"
)

// PostHandler serves the feed: post CRUD, likes, and liker listings.
type PostHandler struct {
	posts  *service.PostService
	users  *service.UserService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, users *service.UserService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, users: users, logger: logger}
}

// HandleCreate creates a post from a multipart form.
//
// HTTP: POST /api/posts
// Auth: required
// FORM: author (document id), description, items (JSON array), isBuySell,
// up to 5 files under "images".
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	images, cleanup, err := formUploads(r, "images", maxImagesPerUpload)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cleanup()

	author, err := primitive.ObjectIDFromHex(r.FormValue("author"))
	if err != nil {
		writeError(w, apperror.ValidationFailed("author", "Invalid author"))
		return
	}

	var items []model.Item
	if raw := r.FormValue("items"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			writeError(w, apperror.ValidationFailed("items", "Invalid items JSON"))
			return
		}
	}
	isBuySell, _ := strconv.ParseBool(r.FormValue("isBuySell"))

	post, err := h.posts.Create(r.Context(), author, r.FormValue("description"), items, isBuySell, images)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleList returns all posts with likeCount and isLikedByCurrentUser
// computed for the viewer.
//
// HTTP: GET /api/posts
// BODY: optional {"userId": "..."} — the viewer id rides in the body of a
// GET (kept client contract); falls back to the authenticated identity.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	viewer := h.viewerID(r)

	views, err := h.posts.List(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleGet returns one post with its author resolved.
//
// HTTP: GET /api/posts/{postId}
// Auth: required
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.posts.Get(r.Context(), id, h.viewerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleUpdate merges the JSON patch into the caller's own post.
//
// HTTP: PUT /api/posts/{postId}
// Auth: required
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	var req struct {
		Description *string       `json:"description"`
		Images      *[]string     `json:"images"`
		Items       *[]model.Item `json:"items"`
		IsBuySell   *bool         `json:"isBuySell"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.posts.Update(r.Context(), identity.UID, id, repository.PostPatch{
		Description: req.Description,
		Images:      req.Images,
		Items:       req.Items,
		IsBuySell:   req.IsBuySell,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete deletes the caller's own post.
//
// HTTP: DELETE /api/posts/{postId}
// Auth: required
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Missing authentication"))
		return
	}

	if err := h.posts.Delete(r.Context(), identity.UID, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// HandleLike records a like on the post for the user named in the body.
//
// HTTP: POST /api/posts/{postId}/like
// Auth: required
// BODY: {"userId": "..."}
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, apperror.ValidationFailed("userId", "Invalid userId"))
		return
	}

	like, err := h.posts.Like(r.Context(), postID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, like)
}

// HandleUnlike removes a like edge from the post.
//
// HTTP: DELETE /api/posts/{postId}/unlike/{likeId}
// Auth: required
func (h *PostHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}
	likeID, err := pathID(r, "likeId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Unlike(r.Context(), postID, likeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post unliked successfully"})
}

// HandleLikedUsers returns the users who liked the post.
//
// HTTP: GET /api/posts/{postId}/likedusers
func (h *PostHandler) HandleLikedUsers(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId")
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.posts.Likers(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// viewerID resolves the caller's document id for like-flag projection: the
// body's userId when supplied, otherwise the authenticated identity's
// profile. Zero means anonymous.
func (h *PostHandler) viewerID(r *http.Request) primitive.ObjectID {
	var req struct {
		UserID string `json:"userId"`
	}
	// The body is optional; a missing or malformed one means anonymous.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.UserID != "" {
		if id, err := primitive.ObjectIDFromHex(req.UserID); err == nil {
			return id
		}
	}

	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		if user, err := h.users.GetProfile(r.Context(), identity.UID); err == nil {
			return user.ID
		}
	}
	return primitive.NilObjectID
}
