package models

import "time"

// Friendship links two users. Rows are stored in both directions so listing a
// user's friends is a single indexed query.
type Friendship struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_user_friend,unique;not null" json:"user_id"`
	FriendID  uint      `gorm:"index:idx_user_friend,unique;not null" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
	Friend    User      `gorm:"foreignKey:FriendID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"friend"`
}
