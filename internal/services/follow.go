package services

import (
	"context"
	"errors"
	"fmt"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// FollowService handles the directed follow graph
type FollowService struct {
	followRepo *repository.FollowRepository
	userRepo   *repository.UserRepository
	notifier   *Notifier
}

// NewFollowService creates a new follow service
func NewFollowService(
	followRepo *repository.FollowRepository,
	userRepo *repository.UserRepository,
	notifier *Notifier,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Follow makes actorID follow the user called username
func (s *FollowService) Follow(ctx context.Context, actorID int64, username string) (*models.Follow, error) {
	target, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == actorID {
		return nil, ErrSelfFollow
	}

	exists, err := s.followRepo.Exists(ctx, actorID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyFollowing
	}

	follow, err := s.followRepo.Create(ctx, actorID, target.ID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyFollowing
		}
		return nil, fmt.Errorf("failed to follow: %w", err)
	}

	log.Info().Int64("follower_id", actorID).Int64("following_id", target.ID).Msg("User followed")
	s.notifier.Notify(ctx, target.ID, Notification{Type: NotificationFollowed, ActorID: actorID})
	return follow, nil
}

// Unfollow removes the edge actorID -> username
func (s *FollowService) Unfollow(ctx context.Context, actorID int64, username string) error {
	target, err := s.lookup(ctx, username)
	if err != nil {
		return err
	}

	if err := s.followRepo.Delete(ctx, actorID, target.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFollowing
		}
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	return nil
}

// Following lists the usernames the named user follows
func (s *FollowService) Following(ctx context.Context, username string) ([]string, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.FollowingUsernames(ctx, user.ID)
}

// Followers lists the usernames following the named user
func (s *FollowService) Followers(ctx context.Context, username string) ([]string, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.followRepo.FollowerUsernames(ctx, user.ID)
}

func (s *FollowService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
