package services

import (
	"context"
	"errors"
	"strings"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"
)

// CommentService handles comments on posts
type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	userRepo    *repository.UserRepository
	notifier    *Notifier
}

// NewCommentService creates a new comment service
func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	notifier *Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// CreateCommentRequest is the body of POST /api/comments
type CreateCommentRequest struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

// Create adds a comment by actorID and notifies the post author
func (s *CommentService) Create(ctx context.Context, actorID int64, req CreateCommentRequest) (*models.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if req.PostID <= 0 || content == "" {
		return nil, invalid("post_id and content are required")
	}

	postAuthorID, err := s.postRepo.GetAuthorID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		AuthorID: actorID,
		Author:   models.UserRef{ID: author.ID, Username: author.Username},
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, postAuthorID, Notification{
		Type:      NotificationCommented,
		ActorID:   actorID,
		Actor:     author.Username,
		PostID:    comment.PostID,
		CommentID: comment.ID,
	})
	return comment, nil
}

// Delete removes a comment. The comment author and the post author may do it.
func (s *CommentService) Delete(ctx context.Context, actorID, id int64) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.AuthorID != actorID {
		postAuthorID, err := s.postRepo.GetAuthorID(ctx, comment.PostID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if postAuthorID != actorID {
			return ErrForbidden
		}
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}
