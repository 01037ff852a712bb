package handlers

import (
	"net/http"
	"strconv"
	"time"

	"fitfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService  *services.UserService
	statsService *services.StatsService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, statsService *services.StatsService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		statsService: statsService,
	}
}

// RenameRequest is the body of PATCH /api/users/{username}
type RenameRequest struct {
	Username string `json:"username"`
}

// PushTokenRequest is the body of PUT /api/users/{username}/push-token
type PushTokenRequest struct {
	PushToken string `json:"push_token"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "create user")
		return
	}

	log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User created")
	respondJSON(w, http.StatusCreated, user)
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// SignIn handles POST /api/signin
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.userService.SignIn(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "sign in")
		return
	}

	log.Info().Int64("user_id", resp.User.ID).Msg("User signed in")
	respondJSON(w, http.StatusOK, resp)
}

// GetProfile handles GET /api/users/{username}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err, "get profile")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Rename handles PATCH /api/users/{username}
func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req RenameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.Rename(r.Context(), userID, chi.URLParam(r, "username"), req.Username)
	if err != nil {
		respondServiceError(w, r, err, "update username")
		return
	}

	log.Info().Int64("user_id", userID).Str("username", user.Username).Msg("Username updated")
	respondJSON(w, http.StatusOK, user)
}

// SetPushToken handles PUT /api/users/{username}/push-token
func (h *UserHandler) SetPushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req PushTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.userService.SetPushToken(r.Context(), userID, chi.URLParam(r, "username"), req.PushToken); err != nil {
		respondServiceError(w, r, err, "update push token")
		return
	}
	respondMessage(w, "Push token updated")
}

// Heatmap handles GET /api/users/{username}/posts?year=YYYY
func (h *UserHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 9999 {
			respondError(w, "Invalid year", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	days, err := h.statsService.Heatmap(r.Context(), chi.URLParam(r, "username"), year)
	if err != nil {
		respondServiceError(w, r, err, "get post activity")
		return
	}
	respondJSON(w, http.StatusOK, days)
}

// WorkoutStats handles GET /api/users/{username}/workout-stats
func (h *UserHandler) WorkoutStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	stats, err := h.statsService.WorkoutStats(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		respondServiceError(w, r, err, "get workout stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
