package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitfeed-backend/internal/database"
	"fitfeed-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const postSelect = `
	SELECT p.id, p.author_id, u.username, p.content, p.location, p.timestamp
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

// PostRepository handles database operations for posts and their children
type PostRepository struct {
	db database.Querier
}

// NewPostRepository creates a new post repository
func NewPostRepository(db database.Querier) *PostRepository {
	return &PostRepository{db: db}
}

// Create inserts a post with its workouts, exercises and images in one
// transaction and fills every generated ID.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO posts (author_id, content, location)
			VALUES ($1, $2, $3)
			RETURNING id, timestamp
		`, post.AuthorID, post.Content, post.Location).Scan(&post.ID, &post.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}

		for _, workout := range post.Workouts {
			workout.PostID = post.ID
			if err := insertWorkout(ctx, tx, workout); err != nil {
				return err
			}
		}

		for _, image := range post.Images {
			image.PostID = post.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO images (post_id, path) VALUES ($1, $2) RETURNING id`,
				image.PostID, image.Path,
			).Scan(&image.ID)
			if err != nil {
				return fmt.Errorf("failed to create image: %w", err)
			}
		}
		return nil
	})
}

func insertWorkout(ctx context.Context, tx pgx.Tx, workout *models.Workout) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO workouts (post_id, type, subtype) VALUES ($1, $2, $3) RETURNING id`,
		workout.PostID, workout.Type, workout.Subtype,
	).Scan(&workout.ID)
	if err != nil {
		return fmt.Errorf("failed to create workout: %w", err)
	}

	for _, exercise := range workout.Exercises {
		exercise.WorkoutID = workout.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO exercises (workout_id, name, sets, reps, distance, pace, weight, duration)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`,
			exercise.WorkoutID, exercise.Name, exercise.Sets, exercise.Reps,
			exercise.Distance, exercise.Pace, exercise.Weight, exercise.Duration,
		).Scan(&exercise.ID)
		if err != nil {
			return fmt.Errorf("failed to create exercise: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a post with all nested relations
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.db.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id).Scan(
		&post.ID, &post.AuthorID, &post.Author.Username, &post.Content, &post.Location, &post.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	post.Author.ID = post.AuthorID

	posts := []*models.Post{&post}
	if err := r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}
	return &post, nil
}

// Exists checks whether a post exists
func (r *PostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check post: %w", err)
	}
	return exists, nil
}

// GetAuthorID returns the author of a post
func (r *PostRepository) GetAuthorID(ctx context.Context, id int64) (int64, error) {
	var authorID int64
	if err := r.db.QueryRow(ctx, `SELECT author_id FROM posts WHERE id = $1`, id).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get post author: %w", err)
	}
	return authorID, nil
}

// ListFeed returns posts written by userID or by anyone userID follows,
// newest first.
func (r *PostRepository) ListFeed(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := postSelect + `
		WHERE p.author_id = $1
		   OR p.author_id IN (SELECT following_id FROM follows WHERE follower_id = $1)
		ORDER BY p.timestamp DESC, p.id DESC
	`
	return r.list(ctx, query, userID)
}

// ListByAuthor returns the posts of one author, newest first
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*models.Post, error) {
	query := postSelect + `
		WHERE p.author_id = $1
		ORDER BY p.timestamp DESC, p.id DESC
	`
	return r.list(ctx, query, authorID)
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		var post models.Post
		err := rows.Scan(
			&post.ID, &post.AuthorID, &post.Author.Username, &post.Content, &post.Location, &post.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		post.Author.ID = post.AuthorID
		posts = append(posts, &post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	if err := r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post; children go with it through ON DELETE CASCADE
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TimestampsBetween returns the timestamps of authorID's posts in [from, to)
func (r *PostRepository) TimestampsBetween(ctx context.Context, authorID int64, from, to time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `
		SELECT timestamp FROM posts
		WHERE author_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp
	`, authorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list post timestamps: %w", err)
	}
	defer rows.Close()

	var stamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, fmt.Errorf("failed to scan timestamp: %w", err)
		}
		stamps = append(stamps, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timestamps: %w", err)
	}
	return stamps, nil
}

// WorkoutKindsByAuthor returns the (type, subtype) of every workout authorID posted
func (r *PostRepository) WorkoutKindsByAuthor(ctx context.Context, authorID int64) ([]models.WorkoutKind, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.type, w.subtype
		FROM workouts w
		JOIN posts p ON p.id = w.post_id
		WHERE p.author_id = $1
	`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}
	defer rows.Close()

	var kinds []models.WorkoutKind
	for rows.Next() {
		var kind models.WorkoutKind
		if err := rows.Scan(&kind.Type, &kind.Subtype); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		kinds = append(kinds, kind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workouts: %w", err)
	}
	return kinds, nil
}

// attachRelations loads children for all posts with one query per relation
func (r *PostRepository) attachRelations(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	for i, post := range posts {
		ids[i] = post.ID
	}

	workouts, err := loadWorkouts(ctx, r.db, ids)
	if err != nil {
		return err
	}
	images, err := loadImages(ctx, r.db, ids)
	if err != nil {
		return err
	}
	comments, err := loadComments(ctx, r.db, ids)
	if err != nil {
		return err
	}
	likes, err := loadLikes(ctx, r.db, ids)
	if err != nil {
		return err
	}

	for _, post := range posts {
		post.Workouts = orEmpty(workouts[post.ID])
		post.Images = orEmpty(images[post.ID])
		post.Comments = orEmpty(comments[post.ID])
		post.Likes = orEmpty(likes[post.ID])
	}
	return nil
}

func loadWorkouts(ctx context.Context, db database.Querier, postIDs []int64) (map[int64][]*models.Workout, error) {
	rows, err := db.Query(ctx, `
		SELECT id, post_id, type, subtype
		FROM workouts WHERE post_id = ANY($1)
		ORDER BY id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load workouts: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]*models.Workout{}
	var workoutIDs []int64
	var all []*models.Workout
	for rows.Next() {
		var w models.Workout
		if err := rows.Scan(&w.ID, &w.PostID, &w.Type, &w.Subtype); err != nil {
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		byPost[w.PostID] = append(byPost[w.PostID], &w)
		workoutIDs = append(workoutIDs, w.ID)
		all = append(all, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workouts: %w", err)
	}
	if len(workoutIDs) == 0 {
		return byPost, nil
	}

	exercises, err := loadExercises(ctx, db, workoutIDs)
	if err != nil {
		return nil, err
	}
	for _, w := range all {
		w.Exercises = orEmpty(exercises[w.ID])
	}
	return byPost, nil
}

func loadExercises(ctx context.Context, db database.Querier, workoutIDs []int64) (map[int64][]*models.Exercise, error) {
	rows, err := db.Query(ctx, `
		SELECT id, workout_id, name, sets, reps, distance, pace, weight, duration
		FROM exercises WHERE workout_id = ANY($1)
		ORDER BY id
	`, workoutIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}
	defer rows.Close()

	byWorkout := map[int64][]*models.Exercise{}
	for rows.Next() {
		var e models.Exercise
		err := rows.Scan(&e.ID, &e.WorkoutID, &e.Name, &e.Sets, &e.Reps, &e.Distance, &e.Pace, &e.Weight, &e.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		byWorkout[e.WorkoutID] = append(byWorkout[e.WorkoutID], &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercises: %w", err)
	}
	return byWorkout, nil
}

func loadImages(ctx context.Context, db database.Querier, postIDs []int64) (map[int64][]*models.Image, error) {
	rows, err := db.Query(ctx, `
		SELECT id, post_id, path
		FROM images WHERE post_id = ANY($1)
		ORDER BY id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	defer rows.Close()

	byPost := map[int64][]*models.Image{}
	for rows.Next() {
		var img models.Image
		if err := rows.Scan(&img.ID, &img.PostID, &img.Path); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		byPost[img.PostID] = append(byPost[img.PostID], &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return byPost, nil
}
