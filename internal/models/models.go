package models

import "time"

// User represents an account in the system
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Height       *float64  `json:"height,omitempty"`
	Weight       *float64  `json:"weight,omitempty"`
	BodyFat      *float64  `json:"body_fat,omitempty"`
	PushToken    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the public projection of a user embedded in other entities
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Follow is a directed edge: the follower sees the followee's posts
type Follow struct {
	ID          int64     `json:"id"`
	FollowerID  int64     `json:"follower_id"`
	FollowingID int64     `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post represents a workout post
type Post struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Author    UserRef    `json:"author"`
	Content   string     `json:"content"`
	Location  *string    `json:"location,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Workouts  []*Workout `json:"workouts"`
	Images    []*Image   `json:"images"`
	Comments  []*Comment `json:"comments"`
	Likes     []*Like    `json:"likes"`
}

// Workout is an exercise session nested under a post
type Workout struct {
	ID        int64       `json:"id"`
	PostID    int64       `json:"post_id"`
	Type      string      `json:"type"`
	Subtype   *string     `json:"subtype,omitempty"`
	Exercises []*Exercise `json:"exercises"`
}

// Exercise belongs to a workout. Which attributes are populated depends on
// the kind of exercise.
type Exercise struct {
	ID        int64    `json:"id"`
	WorkoutID int64    `json:"workout_id"`
	Name      string   `json:"name"`
	Sets      *int     `json:"sets,omitempty"`
	Reps      *int     `json:"reps,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
	Pace      *float64 `json:"pace,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
}

// Image is an uploaded picture attached to a post
type Image struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"post_id"`
	Path   string `json:"path"`
}

// Comment represents a comment on a post
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Author    UserRef   `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Like represents a user's like on a post
type Like struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Author    UserRef   `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkoutKind is the (type, subtype) pair of a stored workout
type WorkoutKind struct {
	Type    string
	Subtype *string
}

// WorkoutStat counts workouts of one (type, subtype) pair
type WorkoutStat struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype"`
	Count   int    `json:"count"`
}

// HeatmapDay counts posts published on one calendar day
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
