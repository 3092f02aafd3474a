package gamification

import (
	"context"
	"time"

	"github.com/geostash/geostash/models"
)

// UserProgressStore persists per-user experience state.
type UserProgressStore interface {
	// GetOrCreate loads the user's progress row, creating it at its defaults
	// when this is the user's first scoring event. Returns ErrNotFound when
	// the user id does not resolve to an account.
	GetOrCreate(ctx context.Context, userID uint) (*models.UserProgress, error)
	// Save writes experience, level, and total points as a single row update.
	Save(ctx context.Context, progress *models.UserProgress) error
}

// AchievementStore persists achievement definitions and per-user progress.
type AchievementStore interface {
	// ActiveDefinitions returns all active definitions for a requirement type.
	ActiveDefinitions(ctx context.Context, requirementType string) ([]models.AchievementDefinition, error)
	// Progress returns the user's progress toward one achievement, or nil
	// when no contribution has been recorded yet.
	Progress(ctx context.Context, userID, achievementID uint) (*models.AchievementProgress, error)
	// SaveProgress upserts a progress row.
	SaveProgress(ctx context.Context, progress *models.AchievementProgress) error
}

// LeaderboardStore persists per-bucket point totals and ranks.
type LeaderboardStore interface {
	// AddPoints accumulates delta into the (user, periodType, periodStart)
	// entry, creating it when absent.
	AddPoints(ctx context.Context, userID uint, periodType string, periodStart time.Time, delta int) error
	// Partition returns every entry of one bucket ordered by points
	// descending, then user id ascending.
	Partition(ctx context.Context, periodType string, periodStart time.Time) ([]models.LeaderboardEntry, error)
	// SaveRanks persists recomputed rank values only; point totals are left alone.
	SaveRanks(ctx context.Context, entries []models.LeaderboardEntry) error
	// Top returns the highest ranked entries of one bucket.
	Top(ctx context.Context, periodType string, periodStart time.Time, limit int) ([]models.LeaderboardEntry, error)
	// Entry returns one user's entry in a bucket, or nil when the user has
	// not scored there yet.
	Entry(ctx context.Context, userID uint, periodType string, periodStart time.Time) (*models.LeaderboardEntry, error)
}

// ActivityStore reads the discovery activity log for streak calculation.
type ActivityStore interface {
	// RecentActivity returns up to limit activity timestamps for the user,
	// most recent first.
	RecentActivity(ctx context.Context, userID uint, limit int) ([]time.Time, error)
}
