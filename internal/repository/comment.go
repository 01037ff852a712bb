package repository

import (
	"context"
	"errors"
	"fmt"

	"fitfeed-backend/internal/database"
	"fitfeed-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db database.Querier
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db database.Querier) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a comment and fills its ID and Timestamp
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, timestamp
	`
	err := r.db.QueryRow(ctx, query, comment.PostID, comment.AuthorID, comment.Content).
		Scan(&comment.ID, &comment.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.timestamp
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`
	var c models.Comment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Author.Username, &c.Content, &c.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	c.Author.ID = c.AuthorID
	return &c, nil
}

// Delete removes a comment by ID
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func loadComments(ctx context.Context, db database.Querier, postIDs []int64) (map[int64][]*models.Comment, error) {
	rows, err := db.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.timestamp
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.timestamp, c.id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author.Username, &c.Content, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.Author.ID = c.AuthorID
		byPost[c.PostID] = append(byPost[c.PostID], &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return byPost, nil
}
