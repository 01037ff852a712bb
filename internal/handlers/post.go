package handlers

import (
	"errors"
	"net/http"

	"fitfeed-backend/internal/services"
)

// PostHandler handles post and feed HTTP requests
type PostHandler struct {
	postService *services.PostService
	maxMemory   int64
}

// NewPostHandler creates a new post handler. maxMemory bounds the part of a
// multipart body kept in memory; the rest spills to temp files.
func NewPostHandler(postService *services.PostService, maxMemory int64) *PostHandler {
	return &PostHandler{
		postService: postService,
		maxMemory:   maxMemory,
	}
}

// CreatePost handles POST /api/posts (multipart/form-data)
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := services.CreatePostInput{
		AuthorID: userID,
		Content:  r.FormValue("content"),
		Location: r.FormValue("location"),
		Workouts: r.FormValue("workouts"),
		Images:   r.MultipartForm.File["images"],
	}

	post, err := h.postService.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		respondServiceError(w, r, err, "create post")
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

// GetPost handles GET /api/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "get post")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{id}
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), userID, id); err != nil {
		respondServiceError(w, r, err, "delete post")
		return
	}
	respondMessage(w, "Post deleted successfully")
}

// Feed handles GET /api/feed
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	posts, err := h.postService.Feed(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err, "get feed")
		return
	}
	respondJSON(w, http.StatusOK, posts)
}
