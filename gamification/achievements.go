package gamification

import (
	"context"

	"github.com/geostash/geostash/models"
)

// CheckAchievements adds value to the user's progress for every active
// achievement of the given requirement type. Newly completed achievements are
// awarded their reward points with reason achievement_unlocked. One failing
// achievement does not abort the rest of the batch.
func (s *Service) CheckAchievements(ctx context.Context, userID uint, requirementType string, value int) ([]UnlockedAchievement, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.checkAchievements(ctx, userID, requirementType, value, 0)
}

// checkAchievements is the lock-free core of CheckAchievements; callers must
// hold the user's lock.
func (s *Service) checkAchievements(ctx context.Context, userID uint, requirementType string, value int, depth int) ([]UnlockedAchievement, error) {
	if depth > maxCascadeDepth {
		s.log.Warnw("achievement cascade depth exceeded, stopping",
			"user_id", userID, "requirement_type", requirementType, "depth", depth)
		return nil, nil
	}

	// Resolves the user and creates the progress row on first contact;
	// unknown users surface as ErrNotFound here.
	if _, err := s.progress.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	definitions, err := s.achievements.ActiveDefinitions(ctx, requirementType)
	if err != nil {
		return nil, persistErr("load achievement definitions", err)
	}

	var unlocked []UnlockedAchievement
	for _, def := range definitions {
		completed, err := s.applyAchievementProgress(ctx, userID, def, value)
		if err != nil {
			s.log.Warnw("achievement check failed",
				"user_id", userID, "achievement_id", def.ID, "error", err)
			continue
		}
		if !completed {
			continue
		}

		unlocked = append(unlocked, UnlockedAchievement{
			AchievementID: def.ID,
			Name:          def.Name,
			RewardPoints:  def.RewardPoints,
		})

		// The completion above is already persisted, so even if this reward
		// triggers another level-up the same achievement is skipped as done.
		if def.RewardPoints != 0 {
			if _, err := s.award(ctx, userID, def.RewardPoints, ReasonAchievementUnlocked, depth+1); err != nil {
				s.log.Warnw("achievement reward award failed",
					"user_id", userID, "achievement_id", def.ID, "error", err)
			}
		}
	}
	return unlocked, nil
}

// applyAchievementProgress folds value into one (user, achievement) progress
// row and reports whether this contribution completed it. Completed rows are
// skipped so rewards are issued at most once.
func (s *Service) applyAchievementProgress(ctx context.Context, userID uint, def models.AchievementDefinition, value int) (bool, error) {
	progress, err := s.achievements.Progress(ctx, userID, def.ID)
	if err != nil {
		return false, persistErr("load achievement progress", err)
	}
	if progress == nil {
		progress = &models.AchievementProgress{
			UserID:        userID,
			AchievementID: def.ID,
		}
	}
	if progress.Completed {
		return false, nil
	}

	progress.Progress += value
	if progress.Progress > def.RequirementValue {
		progress.Progress = def.RequirementValue
	}
	if progress.Progress < 0 {
		progress.Progress = 0
	}

	justCompleted := progress.Progress >= def.RequirementValue
	if justCompleted {
		progress.Completed = true
		completedAt := s.now()
		progress.CompletedAt = &completedAt
	}

	if err := s.achievements.SaveProgress(ctx, progress); err != nil {
		return false, persistErr("save achievement progress", err)
	}
	return justCompleted, nil
}
