package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// PostService handles posts, their uploads and the feed
type PostService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
	images   ImageStore
}

// NewPostService creates a new post service
func NewPostService(
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	images ImageStore,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		images:   images,
	}
}

// CreatePostInput is the parsed multipart form of POST /api/posts
type CreatePostInput struct {
	AuthorID int64
	Content  string
	Location string
	Workouts string
	Images   []*multipart.FileHeader
}

// ParseWorkouts decodes the workouts form field and checks required fields
func ParseWorkouts(raw string) ([]*models.Workout, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []*models.Workout{}, nil
	}

	var workouts []*models.Workout
	if err := json.Unmarshal([]byte(raw), &workouts); err != nil {
		return nil, invalid("workouts must be a JSON array")
	}
	for i, w := range workouts {
		if w == nil || strings.TrimSpace(w.Type) == "" {
			return nil, invalid(fmt.Sprintf("workout %d: type is required", i))
		}
		if w.Exercises == nil {
			w.Exercises = []*models.Exercise{}
		}
		for j, e := range w.Exercises {
			if e == nil || strings.TrimSpace(e.Name) == "" {
				return nil, invalid(fmt.Sprintf("workout %d exercise %d: name is required", i, j))
			}
		}
	}
	return workouts, nil
}

// Create stores the uploads and writes the post with all children in one
// transaction. Files stored by this call are removed if anything fails.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	workouts, err := ParseWorkouts(in.Workouts)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(in.Content)
	if content == "" && len(workouts) == 0 {
		return nil, invalid("content or workouts are required")
	}

	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	post := &models.Post{
		AuthorID: author.ID,
		Author:   models.UserRef{ID: author.ID, Username: author.Username},
		Content:  content,
		Workouts: workouts,
		Images:   []*models.Image{},
		Comments: []*models.Comment{},
		Likes:    []*models.Like{},
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		post.Location = &loc
	}

	var stored []string
	for _, fh := range in.Images {
		path, err := s.images.Save(ctx, fh)
		if err != nil {
			s.removeFiles(ctx, stored)
			return nil, fmt.Errorf("failed to store image %q: %w", fh.Filename, err)
		}
		stored = append(stored, path)
		post.Images = append(post.Images, &models.Image{Path: path})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.removeFiles(ctx, stored)
		return nil, err
	}

	log.Info().
		Int64("post_id", post.ID).
		Int64("user_id", post.AuthorID).
		Int("workouts", len(post.Workouts)).
		Int("images", len(post.Images)).
		Msg("Post created")
	return post, nil
}

// Get returns one post with nested relations
func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	return post, err
}

// Delete removes a post owned by actorID together with its stored images
func (s *PostService) Delete(ctx context.Context, actorID, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	paths := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		paths = append(paths, img.Path)
	}
	s.removeFiles(ctx, paths)

	log.Info().Int64("post_id", id).Int64("user_id", actorID).Msg("Post deleted")
	return nil
}

// Feed returns posts by userID and everyone userID follows, newest first
func (s *PostService) Feed(ctx context.Context, userID int64) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	posts, err := s.postRepo.ListFeed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}
	return posts, nil
}

func (s *PostService) removeFiles(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := s.images.Remove(ctx, p); err != nil {
			log.Warn().Err(err).Str("path", p).Msg("Failed to remove stored image")
		}
	}
}
