package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 14, 30, 0, 0, time.UTC)
}

func TestStreakEmpty(t *testing.T) {
	assert.Equal(t, 0, StreakFromTimestamps(nil))
	assert.Equal(t, 0, StreakFromTimestamps([]time.Time{}))
}

func TestStreakSingleDay(t *testing.T) {
	assert.Equal(t, 1, StreakFromTimestamps([]time.Time{day(5)}))
}

func TestStreakSameDayDuplicates(t *testing.T) {
	assert.Equal(t, 1, StreakFromTimestamps([]time.Time{day(5), day(5)}))

	// Duplicates inside a run neither extend nor break it.
	stamps := []time.Time{day(5), day(5), day(4), day(4), day(3)}
	assert.Equal(t, 3, StreakFromTimestamps(stamps))
}

func TestStreakBreaksOnGap(t *testing.T) {
	// Jan 5, 4, 3 are consecutive; the two-day gap to Jan 1 ends the streak.
	stamps := []time.Time{day(5), day(4), day(3), day(1)}
	assert.Equal(t, 3, StreakFromTimestamps(stamps))
}

func TestStreakUnsortedInput(t *testing.T) {
	stamps := []time.Time{day(3), day(5), day(1), day(4)}
	assert.Equal(t, 3, StreakFromTimestamps(stamps))
}

func TestStreakTimeOfDayIrrelevant(t *testing.T) {
	stamps := []time.Time{
		time.Date(2025, 1, 5, 23, 59, 0, 0, time.UTC),
		time.Date(2025, 1, 4, 0, 1, 0, 0, time.UTC),
	}
	assert.Equal(t, 2, StreakFromTimestamps(stamps))
}

func TestStreakAcrossMonthBoundary(t *testing.T) {
	stamps := []time.Time{
		time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, StreakFromTimestamps(stamps))
}
