package repository

import (
	"context"
	"fmt"

	"fitfeed-backend/internal/database"
	"fitfeed-backend/internal/models"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db database.Querier
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db database.Querier) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like. A second like by the same author on the same post
// returns ErrConflict.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	query := `
		INSERT INTO likes (post_id, author_id)
		VALUES ($1, $2)
		RETURNING id, timestamp
	`
	err := r.db.QueryRow(ctx, query, like.PostID, like.AuthorID).Scan(&like.ID, &like.Timestamp)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

// Exists checks whether authorID already liked postID
func (r *LikeRepository) Exists(ctx context.Context, postID, authorID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = $1 AND author_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, postID, authorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return exists, nil
}

// Delete removes authorID's like on postID
func (r *LikeRepository) Delete(ctx context.Context, postID, authorID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM likes WHERE post_id = $1 AND author_id = $2`, postID, authorID)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPost returns the likes on a post, oldest first
func (r *LikeRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Like, error) {
	likes, err := loadLikes(ctx, r.db, []int64{postID})
	if err != nil {
		return nil, err
	}
	return orEmpty(likes[postID]), nil
}

func loadLikes(ctx context.Context, db database.Querier, postIDs []int64) (map[int64][]*models.Like, error) {
	rows, err := db.Query(ctx, `
		SELECT l.id, l.post_id, l.author_id, u.username, l.timestamp
		FROM likes l
		JOIN users u ON u.id = l.author_id
		WHERE l.post_id = ANY($1)
		ORDER BY l.timestamp, l.id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]*models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.ID, &l.PostID, &l.AuthorID, &l.Author.Username, &l.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		l.Author.ID = l.AuthorID
		byPost[l.PostID] = append(byPost[l.PostID], &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}
	return byPost, nil
}
