package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/geostash/geostash/models"
)

// DefaultLeaderboardLimit is the entry cap when a caller passes no limit.
const DefaultLeaderboardLimit = 50

// MaxLeaderboardLimit caps how many entries one query may return.
const MaxLeaderboardLimit = 100

type bucket struct {
	periodType  string
	periodStart time.Time
}

func (b bucket) key() string {
	return b.periodType + "/" + b.periodStart.Format("2006-01-02")
}

// activeBuckets returns the four canonical buckets containing the instant now.
func (s *Service) activeBuckets(now time.Time) []bucket {
	return []bucket{
		{models.PeriodDaily, startOfDay(now)},
		{models.PeriodWeekly, startOfWeek(now)},
		{models.PeriodMonthly, startOfMonth(now)},
		{models.PeriodAllTime, s.epoch},
	}
}

// bucketFor resolves the current bucket start for one period type.
func (s *Service) bucketFor(periodType string, now time.Time) (time.Time, error) {
	switch periodType {
	case models.PeriodDaily:
		return startOfDay(now), nil
	case models.PeriodWeekly:
		return startOfWeek(now), nil
	case models.PeriodMonthly:
		return startOfMonth(now), nil
	case models.PeriodAllTime:
		return s.epoch, nil
	default:
		return time.Time{}, fmt.Errorf("%w: unknown period type %q", ErrValidation, periodType)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek uses ISO weeks: Monday is the first day.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return startOfDay(t).AddDate(0, 0, -(weekday - 1))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// foldPoints accumulates a point delta into every active bucket, then
// recomputes ranks for each touched partition. Both steps are best-effort:
// a failed bucket or recompute is logged and never disturbs totals already
// written.
func (s *Service) foldPoints(ctx context.Context, userID uint, points int) {
	buckets := s.activeBuckets(s.now())

	for _, b := range buckets {
		if err := s.leaderboard.AddPoints(ctx, userID, b.periodType, b.periodStart, points); err != nil {
			s.log.Warnw("leaderboard fold failed",
				"user_id", userID, "period", b.periodType, "error", err)
		}
	}

	for _, b := range buckets {
		if err := s.recomputeRanks(ctx, b); err != nil {
			s.log.Warnw("leaderboard rank recompute failed",
				"period", b.periodType, "period_start", b.periodStart, "error", err)
		}
	}
}

// recomputeRanks rescans one partition and assigns sequential 1-based ranks.
// Ordering is points descending with ties broken by user id ascending, so the
// assignment is deterministic. The partition lock keeps two concurrent
// recomputes from interleaving their writes.
func (s *Service) recomputeRanks(ctx context.Context, b bucket) error {
	lock := s.partitionLock(b.key())
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.leaderboard.Partition(ctx, b.periodType, b.periodStart)
	if err != nil {
		return persistErr("load leaderboard partition", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if err := s.leaderboard.SaveRanks(ctx, entries); err != nil {
		return persistErr("save leaderboard ranks", err)
	}
	return nil
}

// Leaderboard returns the top entries of the current bucket for a period
// type, ordered by rank ascending.
func (s *Service) Leaderboard(ctx context.Context, periodType string, limit int) ([]models.LeaderboardEntry, error) {
	periodStart, err := s.bucketFor(periodType, s.now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}
	entries, err := s.leaderboard.Top(ctx, periodType, periodStart, limit)
	if err != nil {
		return nil, persistErr("load leaderboard", err)
	}
	return entries, nil
}

// UserRank returns the user's entry in the current bucket of a period type.
// A user with no entry yet yields (nil, nil): having no rank is not an error.
func (s *Service) UserRank(ctx context.Context, userID uint, periodType string) (*models.LeaderboardEntry, error) {
	periodStart, err := s.bucketFor(periodType, s.now())
	if err != nil {
		return nil, err
	}
	entry, err := s.leaderboard.Entry(ctx, userID, periodType, periodStart)
	if err != nil {
		return nil, persistErr("load leaderboard entry", err)
	}
	return entry, nil
}
