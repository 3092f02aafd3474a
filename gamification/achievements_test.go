package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geostash/geostash/models"
)

func defsFixture() []models.AchievementDefinition {
	return []models.AchievementDefinition{
		{
			ID:               1,
			Name:             "Five Finds",
			RequirementType:  models.RequirementTreasuresFound,
			RequirementValue: 5,
			RewardPoints:     25,
			IsActive:         true,
		},
		{
			ID:               2,
			Name:             "Collector",
			RequirementType:  models.RequirementTreasuresFound,
			RequirementValue: 20,
			RewardPoints:     100,
			IsActive:         true,
		},
		{
			ID:               3,
			Name:             "Retired",
			RequirementType:  models.RequirementTreasuresFound,
			RequirementValue: 1,
			RewardPoints:     999,
			IsActive:         false,
		},
	}
}

func TestCheckAchievementsProgressClampsAndCompletesOnce(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.achievements.definitions = defsFixture()
	ctx := context.Background()

	unlocked, err := f.svc.CheckAchievements(ctx, 1, models.RequirementTreasuresFound, 3)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 3, f.achievements.row(1, 1).Progress)

	unlocked, err = f.svc.CheckAchievements(ctx, 1, models.RequirementTreasuresFound, 4)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, uint(1), unlocked[0].AchievementID)
	assert.Equal(t, 25, unlocked[0].RewardPoints)

	row := f.achievements.row(1, 1)
	assert.True(t, row.Completed)
	assert.Equal(t, 5, row.Progress, "progress clamps at the requirement value")
	require.NotNil(t, row.CompletedAt)
	assert.Equal(t, f.now, *row.CompletedAt)

	// Reward credited exactly once.
	assert.Equal(t, 25, f.progress.row(1).TotalPoints)

	// Further contributions are ignored for the completed achievement.
	unlocked, err = f.svc.CheckAchievements(ctx, 1, models.RequirementTreasuresFound, 10)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.True(t, f.achievements.row(1, 1).Completed)
	assert.Equal(t, 5, f.achievements.row(1, 1).Progress)
	assert.Equal(t, 25, f.progress.row(1).TotalPoints)
}

func TestCheckAchievementsInactiveSkipped(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.achievements.definitions = defsFixture()

	unlocked, err := f.svc.CheckAchievements(context.Background(), 1, models.RequirementTreasuresFound, 1)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Nil(t, f.achievements.row(1, 3), "inactive definitions never accrue progress")
}

func TestCheckAchievementsUnknownUser(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.achievements.definitions = defsFixture()

	_, err := f.svc.CheckAchievements(context.Background(), 42, models.RequirementTreasuresFound, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckAchievementsPartialFailureIsolation(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.achievements.definitions = defsFixture()
	f.achievements.failSaveFor = 1

	// Achievement 1 fails to save; achievement 2 must still be processed.
	unlocked, err := f.svc.CheckAchievements(context.Background(), 1, models.RequirementTreasuresFound, 6)
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Nil(t, f.achievements.row(1, 1))
	require.NotNil(t, f.achievements.row(1, 2))
	assert.Equal(t, 6, f.achievements.row(1, 2).Progress)
}

func TestAchievementRewardCascadesThroughLevelUp(t *testing.T) {
	f := newFixture(Config{LevelThresholds: []int{0, 20, 50}}, 1)
	f.achievements.definitions = []models.AchievementDefinition{
		{
			ID:               1,
			Name:             "First Find",
			RequirementType:  models.RequirementTreasuresFound,
			RequirementValue: 1,
			RewardPoints:     30,
			IsActive:         true,
		},
		{
			ID:               2,
			Name:             "Level Two",
			RequirementType:  models.RequirementSpecial,
			RequirementValue: 2,
			RewardPoints:     10,
			IsActive:         true,
		},
	}
	ctx := context.Background()

	// Completing "First Find" awards 30 points, which crosses the level-2
	// threshold and cascades into the "special" check unlocking "Level Two".
	unlocked, err := f.svc.CheckAchievements(ctx, 1, models.RequirementTreasuresFound, 1)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	levelRow := f.achievements.row(1, 2)
	require.NotNil(t, levelRow)
	assert.True(t, levelRow.Completed)

	// 30 from First Find plus 10 from the cascaded Level Two reward.
	assert.Equal(t, 40, f.progress.row(1).TotalPoints)
	assert.Equal(t, 2, f.progress.row(1).Level)
}

func TestCheckAchievementsRewardZeroSkipsAward(t *testing.T) {
	f := newFixture(Config{}, 1)
	f.achievements.definitions = []models.AchievementDefinition{{
		ID:               1,
		Name:             "Honorary",
		RequirementType:  models.RequirementFriends,
		RequirementValue: 1,
		RewardPoints:     0,
		IsActive:         true,
	}}

	unlocked, err := f.svc.CheckAchievements(context.Background(), 1, models.RequirementFriends, 1)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, 0, f.progress.row(1).TotalPoints)
}
