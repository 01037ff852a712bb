package handlers

import (
	"net/http"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/services"
)

// InteractionHandler handles comments and likes
type InteractionHandler struct {
	commentService *services.CommentService
	likeService    *services.LikeService
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(commentService *services.CommentService, likeService *services.LikeService) *InteractionHandler {
	return &InteractionHandler{
		commentService: commentService,
		likeService:    likeService,
	}
}

// LikeResponse is returned when a like is created
type LikeResponse struct {
	Message string       `json:"message"`
	Like    *models.Like `json:"like"`
}

// CreateComment handles POST /api/comments
func (h *InteractionHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, r, err, "create comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/comments/{id}
func (h *InteractionHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.commentService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err, "delete comment")
		return
	}
	respondMessage(w, "Comment deleted successfully")
}

// Like handles POST /api/posts/{id}/likes
func (h *InteractionHandler) Like(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	like, err := h.likeService.Like(r.Context(), userID, postID)
	if err != nil {
		respondServiceError(w, r, err, "like post")
		return
	}
	respondJSON(w, http.StatusCreated, LikeResponse{Message: "Post liked", Like: like})
}

// Unlike handles DELETE /api/posts/{id}/likes
func (h *InteractionHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.likeService.Unlike(r.Context(), userID, postID); err != nil {
		respondServiceError(w, r, err, "unlike post")
		return
	}
	respondMessage(w, "Like removed successfully")
}

// ListLikes handles GET /api/posts/{id}/likes
func (h *InteractionHandler) ListLikes(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	postID, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	likes, err := h.likeService.List(r.Context(), postID)
	if err != nil {
		respondServiceError(w, r, err, "list likes")
		return
	}
	respondJSON(w, http.StatusOK, likes)
}
