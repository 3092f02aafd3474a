package gamification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/geostash/geostash/models"
)

// Stores bundles the gorm-backed repositories for wiring the service.
type Stores struct {
	Progress     UserProgressStore
	Achievements AchievementStore
	Leaderboard  LeaderboardStore
	Activity     ActivityStore
}

// NewGormStores builds all repositories over one gorm connection.
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Progress:     &gormProgressStore{db: db},
		Achievements: &gormAchievementStore{db: db},
		Leaderboard:  &gormLeaderboardStore{db: db},
		Activity:     &gormActivityStore{db: db},
	}
}

type gormProgressStore struct {
	db *gorm.DB
}

func (s *gormProgressStore) GetOrCreate(ctx context.Context, userID uint) (*models.UserProgress, error) {
	// The progress row is created lazily, but only for accounts that exist.
	var exists int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
		return nil, persistErr("resolve user", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	progress := models.UserProgress{UserID: userID, Level: 1}
	if err := s.db.WithContext(ctx).
		Where(models.UserProgress{UserID: userID}).
		Attrs(models.UserProgress{Level: 1}).
		FirstOrCreate(&progress).Error; err != nil {
		return nil, persistErr("load user progress", err)
	}
	return &progress, nil
}

func (s *gormProgressStore) Save(ctx context.Context, progress *models.UserProgress) error {
	// Single-row UPDATE of experience, level, and total points together, so
	// readers never observe a partial write.
	return s.db.WithContext(ctx).Model(&models.UserProgress{}).
		Where("id = ?", progress.ID).
		Updates(map[string]interface{}{
			"experience":   progress.Experience,
			"level":        progress.Level,
			"total_points": progress.TotalPoints,
			"updated_at":   time.Now(),
		}).Error
}

type gormAchievementStore struct {
	db *gorm.DB
}

func (s *gormAchievementStore) ActiveDefinitions(ctx context.Context, requirementType string) ([]models.AchievementDefinition, error) {
	var definitions []models.AchievementDefinition
	err := s.db.WithContext(ctx).
		Where("requirement_type = ? AND is_active = ?", requirementType, true).
		Order("id ASC").
		Find(&definitions).Error
	return definitions, err
}

func (s *gormAchievementStore) Progress(ctx context.Context, userID, achievementID uint) (*models.AchievementProgress, error) {
	var progress models.AchievementProgress
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *gormAchievementStore) SaveProgress(ctx context.Context, progress *models.AchievementProgress) error {
	return s.db.WithContext(ctx).Save(progress).Error
}

type gormLeaderboardStore struct {
	db *gorm.DB
}

func (s *gormLeaderboardStore) AddPoints(ctx context.Context, userID uint, periodType string, periodStart time.Time, delta int) error {
	// Atomic upsert keyed on the partition so concurrent folds for the same
	// user accumulate instead of colliding.
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "period_type"}, {Name: "period_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": time.Now(),
		}),
	}).Create(&models.LeaderboardEntry{
		UserID:      userID,
		PeriodType:  periodType,
		PeriodStart: periodStart,
		Points:      delta,
	}).Error
}

func (s *gormLeaderboardStore) Partition(ctx context.Context, periodType string, periodStart time.Time) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("period_type = ? AND period_start = ?", periodType, periodStart).
		Order("points DESC, user_id ASC").
		Find(&entries).Error
	return entries, err
}

func (s *gormLeaderboardStore) SaveRanks(ctx context.Context, entries []models.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := tx.Model(&models.LeaderboardEntry{}).
				Where("id = ?", entry.ID).
				Update("rank", entry.Rank).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormLeaderboardStore) Top(ctx context.Context, periodType string, periodStart time.Time, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("period_type = ? AND period_start = ?", periodType, periodStart).
		Order("`rank` ASC, points DESC, user_id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (s *gormLeaderboardStore) Entry(ctx context.Context, userID uint, periodType string, periodStart time.Time) (*models.LeaderboardEntry, error) {
	var entry models.LeaderboardEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND period_type = ? AND period_start = ?", userID, periodType, periodStart).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type gormActivityStore struct {
	db *gorm.DB
}

func (s *gormActivityStore) RecentActivity(ctx context.Context, userID uint, limit int) ([]time.Time, error) {
	var stamps []time.Time
	err := s.db.WithContext(ctx).Model(&models.Discovery{}).
		Where("user_id = ?", userID).
		Order("discovered_at DESC").
		Limit(limit).
		Pluck("discovered_at", &stamps).Error
	return stamps, err
}
