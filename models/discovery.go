package models

import "time"

// Discovery records one user finding one treasure. The per-user sequence of
// DiscoveredAt timestamps is the activity log behind streak calculation.
type Discovery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TreasureID   uint      `gorm:"index:idx_treasure_finder,unique;not null" json:"treasure_id"`
	UserID       uint      `gorm:"index:idx_treasure_finder,unique;index;not null" json:"user_id"`
	FirstToFind  bool      `gorm:"not null;default:false" json:"first_to_find"`
	DiscoveredAt time.Time `gorm:"index;not null" json:"discovered_at"`
	CreatedAt    time.Time `json:"created_at"`
}
