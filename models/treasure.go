package models

import (
	"time"

	"gorm.io/gorm"
)

// Treasure rarities.
const (
	RarityCommon   = "common"
	RarityUncommon = "uncommon"
	RarityRare     = "rare"
)

// Treasure is a hidden stash placed by a user for others to discover.
type Treasure struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatorID uint       `gorm:"index;not null" json:"creator_id"`
	Title     string     `gorm:"size:128;not null" json:"title"`
	Hint      string     `gorm:"type:text" json:"hint"`
	Latitude  float64    `gorm:"not null" json:"latitude"`
	Longitude float64    `gorm:"not null" json:"longitude"`
	Rarity    string     `gorm:"size:16;index;default:'common'" json:"rarity"`
	ShareCode string     `gorm:"size:36;uniqueIndex" json:"share_code"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Creator   User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"creator"`
}

// BeforeCreate defaults rarity when the caller leaves it empty.
func (t *Treasure) BeforeCreate(tx *gorm.DB) error {
	if t.Rarity == "" {
		t.Rarity = RarityCommon
	}
	return nil
}
