package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fitfeed-backend/internal/middleware"
	"fitfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse represents a confirmation response
type MessageResponse struct {
	Message string `json:"message"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: message})
}

// errorStatus maps service errors to an HTTP status and client message
func errorStatus(err error) (int, string) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Message
	case errors.Is(err, services.ErrUserTaken),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrAlreadyLiked),
		errors.Is(err, services.ErrAlreadyFollowing),
		errors.Is(err, services.ErrSelfFollow):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrCommentNotFound),
		errors.Is(err, services.ErrLikeNotFound),
		errors.Is(err, services.ErrNotFollowing):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrNoPosts):
		return http.StatusNotFound, "No posts found"
	}
	return http.StatusInternalServerError, ""
}

// respondServiceError writes the mapped status. Unexpected errors are
// logged and hidden behind "Failed to <action>".
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, message := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Msg("Failed to " + action)
		message = "Failed to " + action
	}
	respondError(w, message, status)
}

// currentUser returns the authenticated user ID or writes a 401
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// idParam parses a numeric URL parameter or writes a 400
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
