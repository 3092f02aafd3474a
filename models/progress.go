package models

import "time"

// UserProgress tracks a user's cumulative experience, derived level, and reward
// point balance. One row per user, created lazily on the first scoring event.
// Level is always recomputed from experience on write and never stored stale.
type UserProgress struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Experience  int       `gorm:"not null;default:0" json:"experience"`
	Level       int       `gorm:"not null;default:1" json:"level"`
	TotalPoints int       `gorm:"not null;default:0" json:"total_points"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
