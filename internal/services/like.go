package services

import (
	"context"
	"errors"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"
)

// LikeService handles likes. A user likes a post at most once.
type LikeService struct {
	likeRepo *repository.LikeRepository
	postRepo *repository.PostRepository
	notifier *Notifier
}

// NewLikeService creates a new like service
func NewLikeService(
	likeRepo *repository.LikeRepository,
	postRepo *repository.PostRepository,
	notifier *Notifier,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
		notifier: notifier,
	}
}

// Like records actorID's like on postID
func (s *LikeService) Like(ctx context.Context, actorID, postID int64) (*models.Like, error) {
	postAuthorID, err := s.postAuthor(ctx, postID)
	if err != nil {
		return nil, err
	}

	exists, err := s.likeRepo.Exists(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyLiked
	}

	like := &models.Like{PostID: postID, AuthorID: actorID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyLiked
		}
		return nil, err
	}
	like.Author.ID = actorID

	s.notifier.Notify(ctx, postAuthorID, Notification{
		Type:    NotificationLiked,
		ActorID: actorID,
		PostID:  postID,
	})
	return like, nil
}

// Unlike removes actorID's like on postID
func (s *LikeService) Unlike(ctx context.Context, actorID, postID int64) error {
	if err := s.likeRepo.Delete(ctx, postID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrLikeNotFound
		}
		return err
	}
	return nil
}

// List returns the likes on postID
func (s *LikeService) List(ctx context.Context, postID int64) ([]*models.Like, error) {
	if _, err := s.postAuthor(ctx, postID); err != nil {
		return nil, err
	}
	return s.likeRepo.ListByPost(ctx, postID)
}

func (s *LikeService) postAuthor(ctx context.Context, postID int64) (int64, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrPostNotFound
	}
	return authorID, err
}
