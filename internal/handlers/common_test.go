package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitfeed-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &services.ValidationError{Message: "content or workouts are required"}, http.StatusBadRequest, "content or workouts are required"},
		{"taken", services.ErrUserTaken, http.StatusBadRequest, services.ErrUserTaken.Error()},
		{"already liked wrapped", fmt.Errorf("like: %w", services.ErrAlreadyLiked), http.StatusBadRequest, "like: " + services.ErrAlreadyLiked.Error()},
		{"self follow", services.ErrSelfFollow, http.StatusBadRequest, services.ErrSelfFollow.Error()},
		{"forbidden", services.ErrForbidden, http.StatusUnauthorized, services.ErrForbidden.Error()},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, services.ErrInvalidCredentials.Error()},
		{"post not found", services.ErrPostNotFound, http.StatusNotFound, services.ErrPostNotFound.Error()},
		{"not following", services.ErrNotFollowing, http.StatusNotFound, services.ErrNotFollowing.Error()},
		{"empty feed", services.ErrNoPosts, http.StatusNotFound, "No posts found"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestRespondServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)

	respondServiceError(rec, req, errors.New("pq: relation does not exist"), "get feed")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to get feed"}`, rec.Body.String())
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		raw string
		id  int64
		ok  bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()

			id, ok := idParam(rec, req, "id")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			}
		})
	}
}
