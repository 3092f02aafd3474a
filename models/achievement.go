package models

import "time"

// Requirement categories used by achievement definitions.
const (
	RequirementTreasuresFound   = "treasures_found"
	RequirementTreasuresCreated = "treasures_created"
	RequirementFriends          = "friends"
	RequirementStreak           = "streak"
	RequirementSpecial          = "special" // level milestones
)

// AchievementDefinition is a static, admin-supplied achievement. The scoring
// engine treats these as read-only.
type AchievementDefinition struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:128;not null" json:"name"`
	Description      string    `gorm:"size:255" json:"description"`
	Icon             string    `gorm:"size:64" json:"icon"`
	RequirementType  string    `gorm:"size:32;index;not null" json:"requirement_type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	RewardPoints     int       `gorm:"not null;default:0" json:"reward_points"`
	IsActive         bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// AchievementProgress is one user's progress toward one achievement.
// Progress is clamped to [0, RequirementValue]; Completed never reverts.
type AchievementProgress struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	UserID        uint       `gorm:"index:idx_user_achievement,unique;not null" json:"user_id"`
	AchievementID uint       `gorm:"index:idx_user_achievement,unique;not null" json:"achievement_id"`
	Progress      int        `gorm:"not null;default:0" json:"progress"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
