package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"fitfeed-backend/internal/models"
	"fitfeed-backend/internal/repository"
)

const otherSubtype = "Other"

// StatsService computes per-user activity statistics
type StatsService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
}

// NewStatsService creates a new stats service
func NewStatsService(postRepo *repository.PostRepository, userRepo *repository.UserRepository) *StatsService {
	return &StatsService{postRepo: postRepo, userRepo: userRepo}
}

// WorkoutStats counts the named user's workouts by (type, subtype)
func (s *StatsService) WorkoutStats(ctx context.Context, username string) ([]models.WorkoutStat, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	kinds, err := s.postRepo.WorkoutKindsByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return AggregateWorkoutStats(kinds), nil
}

// Heatmap counts the named user's posts per UTC day of year
func (s *StatsService) Heatmap(ctx context.Context, username string, year int) ([]models.HeatmapDay, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	stamps, err := s.postRepo.TimestampsBetween(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}
	return BucketByDay(stamps), nil
}

func (s *StatsService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// AggregateWorkoutStats groups kinds by (type, subtype), reporting a missing
// subtype as "Other". Output is sorted by type then subtype.
func AggregateWorkoutStats(kinds []models.WorkoutKind) []models.WorkoutStat {
	type key struct{ typ, subtype string }
	counts := map[key]int{}
	for _, k := range kinds {
		subtype := otherSubtype
		if k.Subtype != nil && *k.Subtype != "" {
			subtype = *k.Subtype
		}
		counts[key{k.Type, subtype}]++
	}

	stats := make([]models.WorkoutStat, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, models.WorkoutStat{Type: k.typ, Subtype: k.subtype, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Type != stats[j].Type {
			return stats[i].Type < stats[j].Type
		}
		return stats[i].Subtype < stats[j].Subtype
	})
	return stats
}

// BucketByDay counts timestamps per UTC calendar day, sorted by date
func BucketByDay(stamps []time.Time) []models.HeatmapDay {
	counts := map[string]int{}
	for _, ts := range stamps {
		counts[ts.UTC().Format(time.DateOnly)]++
	}

	days := make([]models.HeatmapDay, 0, len(counts))
	for date, n := range counts {
		days = append(days, models.HeatmapDay{Date: date, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}
