package gamification

import (
	"context"
	"sort"
	"time"
)

// CalculateStreak derives the user's consecutive-day discovery streak from the
// recent activity log. A user with no activity has streak 0.
func (s *Service) CalculateStreak(ctx context.Context, userID uint) (int, error) {
	stamps, err := s.activity.RecentActivity(ctx, userID, activityWindow)
	if err != nil {
		return 0, persistErr("load recent activity", err)
	}
	return StreakFromTimestamps(stamps), nil
}

// StreakFromTimestamps computes the consecutive-day streak ending at the most
// recent activity day. Duplicate same-day activity is skipped; a gap of more
// than one day breaks the streak. The input need not be pre-sorted.
func StreakFromTimestamps(stamps []time.Time) int {
	if len(stamps) == 0 {
		return 0
	}

	days := make([]int, len(stamps))
	for i, t := range stamps {
		days[i] = dayNumber(t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	streak := 1
	prev := days[0]
	for _, day := range days[1:] {
		switch prev - day {
		case 0:
			// same-day duplicate
		case 1:
			streak++
			prev = day
		default:
			return streak
		}
	}
	return streak
}

// dayNumber collapses a timestamp to its calendar day as a count of days,
// using the timestamp's own civil date so time-of-day and zone offsets inside
// the day are irrelevant.
func dayNumber(t time.Time) int {
	year, month, day := t.Date()
	return int(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
