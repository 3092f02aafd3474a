package gamification

import "fmt"

// DefaultLevelThresholds is the built-in experience curve. Index i is the
// minimum experience for level i+1.
func DefaultLevelThresholds() []int {
	return []int{0, 100, 250, 500, 1000, 2000, 3500, 5500, 8000, 11000, 15000}
}

// LevelTable maps cumulative experience to a 1-based level via a fixed
// ascending threshold sequence starting at zero.
type LevelTable struct {
	thresholds []int
}

// NewLevelTable validates and copies the threshold sequence.
func NewLevelTable(thresholds []int) (LevelTable, error) {
	if len(thresholds) == 0 {
		return LevelTable{}, fmt.Errorf("%w: level table must not be empty", ErrValidation)
	}
	if thresholds[0] != 0 {
		return LevelTable{}, fmt.Errorf("%w: first level threshold must be 0, got %d", ErrValidation, thresholds[0])
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return LevelTable{}, fmt.Errorf("%w: level thresholds must be strictly ascending at index %d", ErrValidation, i)
		}
	}
	cp := make([]int, len(thresholds))
	copy(cp, thresholds)
	return LevelTable{thresholds: cp}, nil
}

// LevelOf returns the 1-based level for the given experience. It is total and
// monotonic: any experience below the first threshold maps to level 1.
func (t LevelTable) LevelOf(xp int) int {
	level := 1
	for i, threshold := range t.thresholds {
		if xp >= threshold {
			level = i + 1
		} else {
			break
		}
	}
	return level
}

// NextThreshold returns the experience required for the next level. The second
// return value is false when the level is already the final one.
func (t LevelTable) NextThreshold(level int) (int, bool) {
	if level < 1 || level >= len(t.thresholds) {
		return 0, false
	}
	return t.thresholds[level], true
}

// Thresholds returns a copy of the threshold sequence.
func (t LevelTable) Thresholds() []int {
	cp := make([]int, len(t.thresholds))
	copy(cp, t.thresholds)
	return cp
}

// MaxLevel returns the highest attainable level.
func (t LevelTable) MaxLevel() int {
	return len(t.thresholds)
}
