package handlers

import (
	"net/http"

	"fitfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	followService *services.FollowService
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService *services.FollowService) *FollowHandler {
	return &FollowHandler{followService: followService}
}

// Follow handles POST /api/follow/{username}
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	follow, err := h.followService.Follow(r.Context(), userID, chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err, "follow user")
		return
	}
	respondJSON(w, http.StatusCreated, follow)
}

// Unfollow handles DELETE /api/follow/{username}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), userID, chi.URLParam(r, "username")); err != nil {
		respondServiceError(w, r, err, "unfollow user")
		return
	}
	respondMessage(w, "Unfollowed successfully")
}

// Following handles GET /api/users/{username}/following
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	names, err := h.followService.Following(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err, "list following")
		return
	}
	respondJSON(w, http.StatusOK, names)
}

// Followers handles GET /api/users/{username}/followers
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	names, err := h.followService.Followers(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err, "list followers")
		return
	}
	respondJSON(w, http.StatusOK, names)
}
