package gamification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostash/geostash/models"
)

func TestFoldAccumulatesAcrossAllBuckets(t *testing.T) {
	f := newFixture(Config{}, 1)
	ctx := context.Background()

	_, err := f.svc.AwardExperience(ctx, 1, 30, ReasonRareTreasureFound)
	require.NoError(t, err)
	_, err = f.svc.AwardExperience(ctx, 1, 20, ReasonTreasureFound)
	require.NoError(t, err)

	day := startOfDay(f.now)
	week := startOfWeek(f.now)
	month := startOfMonth(f.now)
	epoch := time.Unix(0, 0).UTC()

	assert.Equal(t, 50, f.leaderboard.points(models.PeriodDaily, day, 1))
	assert.Equal(t, 50, f.leaderboard.points(models.PeriodWeekly, week, 1))
	assert.Equal(t, 50, f.leaderboard.points(models.PeriodMonthly, month, 1))
	assert.Equal(t, 50, f.leaderboard.points(models.PeriodAllTime, epoch, 1))
}

func TestRankRecomputeDeterministicTieBreak(t *testing.T) {
	f := newFixture(Config{}, 1, 2, 3)
	ctx := context.Background()

	// user 2 and user 1 tie at 50, user 3 trails at 30.
	_, err := f.svc.AwardExperience(ctx, 2, 50, ReasonTreasureFound)
	require.NoError(t, err)
	_, err = f.svc.AwardExperience(ctx, 1, 50, ReasonTreasureFound)
	require.NoError(t, err)
	_, err = f.svc.AwardExperience(ctx, 3, 30, ReasonTreasureFound)
	require.NoError(t, err)

	entries, err := f.svc.Leaderboard(ctx, models.PeriodDaily, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Ties broken by user id ascending, ranks assigned sequentially.
	assert.Equal(t, uint(1), entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, uint(2), entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, uint(3), entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestRankRecomputeFailureKeepsPoints(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.leaderboard.ranksErr = errors.New("rank table locked")
	ctx := context.Background()

	// Award succeeds even though rank recompute fails.
	res, err := f.svc.AwardExperience(ctx, 1, 40, ReasonTreasureFound)
	require.NoError(t, err)
	assert.Equal(t, 40, res.NewExperience)

	day := startOfDay(f.now)
	assert.Equal(t, 40, f.leaderboard.points(models.PeriodDaily, day, 1))
}

func TestLeaderboardLimits(t *testing.T) {
	f := newFixture(Config{}, 1, 2, 3)
	ctx := context.Background()
	for id := uint(1); id <= 3; id++ {
		_, err := f.svc.AwardExperience(ctx, id, int(id)*10, ReasonTreasureFound)
		require.NoError(t, err)
	}

	entries, err := f.svc.Leaderboard(ctx, models.PeriodWeekly, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint(3), entries[0].UserID, "highest points first")

	// Zero or negative limit falls back to the default.
	entries, err = f.svc.Leaderboard(ctx, models.PeriodWeekly, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestLeaderboardUnknownPeriod(t *testing.T) {
	f := newFixture(Config{}, 1)

	_, err := f.svc.Leaderboard(context.Background(), "fortnightly", 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.UserRank(context.Background(), 1, "fortnightly")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserRankNoEntryIsNotAnError(t *testing.T) {
	f := newFixture(Config{}, 1)

	entry, err := f.svc.UserRank(context.Background(), 1, models.PeriodMonthly)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestBucketBoundaries(t *testing.T) {
	// Saturday 2025-03-15.
	now := time.Date(2025, 3, 15, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), startOfDay(now))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), startOfWeek(now), "ISO week starts Monday")
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), startOfMonth(now))

	// Sunday folds into the week that started the previous Monday.
	sunday := time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))

	// Monday starts its own week.
	monday := time.Date(2025, 3, 17, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), startOfWeek(monday))
}

func TestFoldBucketFailureDoesNotAbortOthers(t *testing.T) {
	f := newFixture(Config{}, 1)
	ctx := context.Background()

	// Injected add failure: the award itself still succeeds.
	f.leaderboard.addErr = errors.New("partition offline")
	res, err := f.svc.AwardExperience(ctx, 1, 15, ReasonFirstToFind)
	require.NoError(t, err)
	assert.Equal(t, 15, res.NewExperience)

	// Recovery: later folds work again and only include their own delta.
	f.leaderboard.addErr = nil
	_, err = f.svc.AwardExperience(ctx, 1, 5, ReasonDailyStreak)
	require.NoError(t, err)
	day := startOfDay(f.now)
	assert.Equal(t, 5, f.leaderboard.points(models.PeriodDaily, day, 1))
}
