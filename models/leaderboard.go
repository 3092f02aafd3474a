package models

import "time"

// Leaderboard period types.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "all_time"
)

// LeaderboardEntry is a rolling point total for one user within one
// (period_type, period_start) partition. Rank is a derived, advisory field
// recomputed over the whole partition after every fold.
type LeaderboardEntry struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	UserID      uint      `gorm:"index:idx_lb_partition_user,unique;not null" json:"user_id"`
	PeriodType  string    `gorm:"size:16;index:idx_lb_partition_user,unique;not null" json:"period_type"`
	PeriodStart time.Time `gorm:"index:idx_lb_partition_user,unique;not null" json:"period_start"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	Rank        int       `gorm:"not null;default:0" json:"rank"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
