package models

import "time"

// Comment represents a note left on a treasure page.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TreasureID uint      `gorm:"index;not null" json:"treasure_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikeCount  int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// CommentLike records one like per (comment, liker). The unique index blocks
// double likes, which keeps the like_received award single-shot.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index:idx_comment_liker,unique;not null" json:"comment_id"`
	UserID    uint      `gorm:"index:idx_comment_liker,unique;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
