package gamification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostash/geostash/models"
)

func TestAwardExperienceAdditive(t *testing.T) {
	f := newFixture(Config{}, 1)
	ctx := context.Background()

	res, err := f.svc.AwardExperience(ctx, 1, 100, ReasonTreasureFound)
	require.NoError(t, err)
	assert.Equal(t, 100, res.NewExperience)
	assert.Equal(t, 100, res.PointsEarned)

	res, err = f.svc.AwardExperience(ctx, 1, 150, ReasonTreasureFound)
	require.NoError(t, err)
	assert.Equal(t, 250, res.NewExperience)
	assert.Equal(t, f.svc.Levels().LevelOf(250), res.NewLevel)

	row := f.progress.row(1)
	assert.Equal(t, 250, row.Experience)
	assert.Equal(t, 250, row.TotalPoints)
	assert.Equal(t, f.svc.Levels().LevelOf(250), row.Level)
}

func TestAwardExperienceZeroIsNoOpButFolds(t *testing.T) {
	f := newFixture(Config{}, 1)
	ctx := context.Background()

	res, err := f.svc.AwardExperience(ctx, 1, 0, ReasonCommentPosted)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewExperience)
	assert.Equal(t, 1, res.NewLevel)
	assert.False(t, res.LeveledUp)

	// A zero-point fold still creates the bucket entries.
	entry, err := f.svc.UserRank(ctx, 1, models.PeriodDaily)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 0, entry.Points)
	assert.Equal(t, 1, entry.Rank)
}

func TestAwardExperienceUnknownUser(t *testing.T) {
	f := newFixture(Config{}, 1)

	_, err := f.svc.AwardExperience(context.Background(), 99, 10, ReasonTreasureFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAwardExperiencePersistenceFailureIsAtomic(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.progress.saveErr = errors.New("disk on fire")

	_, err := f.svc.AwardExperience(context.Background(), 1, 100, ReasonTreasureFound)
	assert.ErrorIs(t, err, ErrPersistence)

	// Failed primary mutation must not reach the leaderboard either.
	day := startOfDay(f.now)
	assert.Equal(t, 0, f.leaderboard.points(models.PeriodDaily, day, 1))
}

func TestAwardExperienceNegativeClamped(t *testing.T) {
	f := newFixture(Config{ClampExperience: true}, 1)
	ctx := context.Background()

	_, err := f.svc.AwardExperience(ctx, 1, 30, ReasonTreasureFound)
	require.NoError(t, err)

	res, err := f.svc.AwardExperience(ctx, 1, -100, ReasonChallengeCompleted)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewExperience)
	assert.Equal(t, 1, res.NewLevel)
	assert.Equal(t, 0, f.progress.row(1).TotalPoints)
}

func TestAwardExperienceNegativeUnclamped(t *testing.T) {
	f := newFixture(Config{ClampExperience: false}, 1)
	ctx := context.Background()

	res, err := f.svc.AwardExperience(ctx, 1, -40, ReasonChallengeCompleted)
	require.NoError(t, err)
	assert.Equal(t, -40, res.NewExperience)
	assert.Equal(t, 1, res.NewLevel, "below the first threshold still maps to level 1")
}

func TestAwardExperienceLevelUpChecksSpecialOnce(t *testing.T) {
	f := newFixture(Config{LevelThresholds: []int{0, 100, 250, 500}}, 1)
	ctx := context.Background()

	// Crossing two levels in one award still triggers a single check, for
	// the final level only.
	res, err := f.svc.AwardExperience(ctx, 1, 300, ReasonTreasureFound)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, []string{models.RequirementSpecial}, f.achievements.checkedTypes)
}

func TestAwardExperienceNoLevelUpNoCheck(t *testing.T) {
	f := newFixture(Config{}, 1)

	res, err := f.svc.AwardExperience(context.Background(), 1, 10, ReasonLikeReceived)
	require.NoError(t, err)
	assert.False(t, res.LeveledUp)
	assert.Empty(t, f.achievements.checkedTypes)
}

func TestAwardForUsesConfiguredPoints(t *testing.T) {
	f := newFixture(Config{RewardPoints: map[Reason]int{ReasonTreasureFound: 42}}, 1)

	res, err := f.svc.AwardFor(context.Background(), 1, ReasonTreasureFound)
	require.NoError(t, err)
	assert.Equal(t, 42, res.PointsEarned)
	assert.Equal(t, 42, res.NewExperience)
}

func TestLevelUpCrossingThresholdEndToEnd(t *testing.T) {
	thresholds := []int{0, 100, 250, 500, 1000}
	f := newFixture(Config{LevelThresholds: thresholds}, 1)
	f.achievements.definitions = []models.AchievementDefinition{{
		ID:               7,
		Name:             "Seasoned Hunter",
		RequirementType:  models.RequirementSpecial,
		RequirementValue: 5,
		RewardPoints:     50,
		IsActive:         true,
	}}
	ctx := context.Background()

	// Sit just below the level-5 threshold, then cross it.
	_, err := f.svc.AwardExperience(ctx, 1, 999, ReasonTreasureFound)
	require.NoError(t, err)

	res, err := f.svc.AwardExperience(ctx, 1, 10, ReasonTreasureFound)
	require.NoError(t, err)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 5, res.NewLevel)

	// The special check fired with value 5 and completed the achievement,
	// whose reward was then credited.
	unlockedRow := f.achievements.row(1, 7)
	require.NotNil(t, unlockedRow)
	assert.True(t, unlockedRow.Completed)
	assert.Equal(t, 5, unlockedRow.Progress)
	assert.Equal(t, 999+10+50, f.progress.row(1).TotalPoints)
}

func TestConcurrentAwardsSameUserNoLostUpdates(t *testing.T) {
	f := newFixture(Config{}, 1)
	ctx := context.Background()

	const workers = 16
	const perWorker = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				_, err := f.svc.AwardExperience(ctx, 1, 1, ReasonLikeReceived)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, f.progress.row(1).Experience)
	day := startOfDay(f.now)
	assert.Equal(t, workers*perWorker, f.leaderboard.points(models.PeriodDaily, day, 1))
}

func TestCalculateStreakReadsActivity(t *testing.T) {
	f := newFixture(Config{}, 1)
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 18, 0, 0, 0, time.UTC)
	}
	f.activity.stamps = []time.Time{day(15), day(14), day(13), day(11)}

	streak, err := f.svc.CalculateStreak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestCalculateStreakPersistenceError(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.activity.err = errors.New("gone")

	_, err := f.svc.CalculateStreak(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPersistence)
}
