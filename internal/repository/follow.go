package repository

import (
	"context"
	"fmt"

	"fitfeed-backend/internal/database"
	"fitfeed-backend/internal/models"
)

// FollowRepository handles database operations for follow edges
type FollowRepository struct {
	db database.Querier
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db database.Querier) *FollowRepository {
	return &FollowRepository{db: db}
}

// Create inserts the edge followerID -> followingID
func (r *FollowRepository) Create(ctx context.Context, followerID, followingID int64) (*models.Follow, error) {
	query := `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	err := r.db.QueryRow(ctx, query, followerID, followingID).Scan(&follow.ID, &follow.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}
	return follow, nil
}

// Exists checks whether followerID follows followingID
func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, followerID, followingID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// Delete removes the edge followerID -> followingID
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID int64) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// FollowingUsernames lists the usernames userID follows
func (r *FollowRepository) FollowingUsernames(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT u.username
		FROM follows f
		JOIN users u ON u.id = f.following_id
		WHERE f.follower_id = $1
		ORDER BY u.username
	`
	return r.usernames(ctx, query, userID)
}

// FollowerUsernames lists the usernames following userID
func (r *FollowRepository) FollowerUsernames(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT u.username
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.following_id = $1
		ORDER BY u.username
	`
	return r.usernames(ctx, query, userID)
}

func (r *FollowRepository) usernames(ctx context.Context, query string, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan username: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follows: %w", err)
	}
	return names, nil
}
