package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/geostash/geostash/models"
)

// In-memory store fakes. They mirror the repository contracts closely enough
// to exercise every code path, including injected failures.

type fakeProgressStore struct {
	mu      sync.Mutex
	users   map[uint]bool
	rows    map[uint]*models.UserProgress
	nextID  uint
	getErr  error
	saveErr error
}

func newFakeProgressStore(userIDs ...uint) *fakeProgressStore {
	users := map[uint]bool{}
	for _, id := range userIDs {
		users[id] = true
	}
	return &fakeProgressStore{users: users, rows: map[uint]*models.UserProgress{}}
}

func (f *fakeProgressStore) GetOrCreate(_ context.Context, userID uint) (*models.UserProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if !f.users[userID] {
		return nil, ErrNotFound
	}
	if row, ok := f.rows[userID]; ok {
		cp := *row
		return &cp, nil
	}
	f.nextID++
	row := &models.UserProgress{ID: f.nextID, UserID: userID, Level: 1}
	f.rows[userID] = row
	cp := *row
	return &cp, nil
}

func (f *fakeProgressStore) Save(_ context.Context, progress *models.UserProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *progress
	f.rows[progress.UserID] = &cp
	return nil
}

func (f *fakeProgressStore) row(userID uint) models.UserProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.rows[userID]
}

type achievementKey struct {
	userID        uint
	achievementID uint
}

type fakeAchievementStore struct {
	mu          sync.Mutex
	definitions []models.AchievementDefinition
	progress    map[achievementKey]*models.AchievementProgress
	// checkedTypes records every ActiveDefinitions call for assertion.
	checkedTypes []string
	// failSaveFor injects a save failure for one achievement id.
	failSaveFor uint
}

func newFakeAchievementStore(defs ...models.AchievementDefinition) *fakeAchievementStore {
	return &fakeAchievementStore{
		definitions: defs,
		progress:    map[achievementKey]*models.AchievementProgress{},
	}
}

func (f *fakeAchievementStore) ActiveDefinitions(_ context.Context, requirementType string) ([]models.AchievementDefinition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkedTypes = append(f.checkedTypes, requirementType)
	var out []models.AchievementDefinition
	for _, def := range f.definitions {
		if def.RequirementType == requirementType && def.IsActive {
			out = append(out, def)
		}
	}
	return out, nil
}

func (f *fakeAchievementStore) Progress(_ context.Context, userID, achievementID uint) (*models.AchievementProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.progress[achievementKey{userID, achievementID}]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAchievementStore) SaveProgress(_ context.Context, progress *models.AchievementProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveFor != 0 && progress.AchievementID == f.failSaveFor {
		return errors.New("injected save failure")
	}
	cp := *progress
	f.progress[achievementKey{progress.UserID, progress.AchievementID}] = &cp
	return nil
}

func (f *fakeAchievementStore) row(userID, achievementID uint) *models.AchievementProgress {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.progress[achievementKey{userID, achievementID}]; ok {
		cp := *row
		return &cp
	}
	return nil
}

type partitionKey struct {
	periodType string
	start      string
}

type fakeLeaderboardStore struct {
	mu         sync.Mutex
	entries    map[partitionKey]map[uint]*models.LeaderboardEntry
	nextID     uint
	addErr     error
	ranksErr   error
}

func newFakeLeaderboardStore() *fakeLeaderboardStore {
	return &fakeLeaderboardStore{entries: map[partitionKey]map[uint]*models.LeaderboardEntry{}}
}

func pkey(periodType string, start time.Time) partitionKey {
	return partitionKey{periodType, start.Format(time.RFC3339)}
}

func (f *fakeLeaderboardStore) AddPoints(_ context.Context, userID uint, periodType string, periodStart time.Time, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	key := pkey(periodType, periodStart)
	part := f.entries[key]
	if part == nil {
		part = map[uint]*models.LeaderboardEntry{}
		f.entries[key] = part
	}
	if entry, ok := part[userID]; ok {
		entry.Points += delta
		return nil
	}
	f.nextID++
	part[userID] = &models.LeaderboardEntry{
		ID:          f.nextID,
		UserID:      userID,
		PeriodType:  periodType,
		PeriodStart: periodStart,
		Points:      delta,
	}
	return nil
}

func (f *fakeLeaderboardStore) Partition(_ context.Context, periodType string, periodStart time.Time) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LeaderboardEntry
	for _, entry := range f.entries[pkey(periodType, periodStart)] {
		out = append(out, *entry)
	}
	sortEntries(out)
	return out, nil
}

func (f *fakeLeaderboardStore) SaveRanks(_ context.Context, entries []models.LeaderboardEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ranksErr != nil {
		return f.ranksErr
	}
	for _, entry := range entries {
		part := f.entries[pkey(entry.PeriodType, entry.PeriodStart)]
		if part == nil {
			continue
		}
		if stored, ok := part[entry.UserID]; ok {
			stored.Rank = entry.Rank
		}
	}
	return nil
}

func (f *fakeLeaderboardStore) Top(_ context.Context, periodType string, periodStart time.Time, limit int) ([]models.LeaderboardEntry, error) {
	entries, _ := f.Partition(nil, periodType, periodStart)
	// Partition already sorts by points desc / user asc which matches rank order.
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeLeaderboardStore) Entry(_ context.Context, userID uint, periodType string, periodStart time.Time) (*models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.entries[pkey(periodType, periodStart)][userID]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeLeaderboardStore) points(periodType string, periodStart time.Time, userID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.entries[pkey(periodType, periodStart)][userID]; ok {
		return entry.Points
	}
	return 0
}

func sortEntries(entries []models.LeaderboardEntry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if b.Points > a.Points || (b.Points == a.Points && b.UserID < a.UserID) {
				entries[j-1], entries[j] = b, a
			} else {
				break
			}
		}
	}
}

type fakeActivityStore struct {
	stamps []time.Time
	err    error
}

func (f *fakeActivityStore) RecentActivity(_ context.Context, _ uint, limit int) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.stamps) > limit {
		return f.stamps[:limit], nil
	}
	return f.stamps, nil
}

// fixture bundles a service over fresh fakes with a fixed clock.
type fixture struct {
	svc          *Service
	progress     *fakeProgressStore
	achievements *fakeAchievementStore
	leaderboard  *fakeLeaderboardStore
	activity     *fakeActivityStore
	now          time.Time
}

func newFixture(cfg Config, userIDs ...uint) *fixture {
	f := &fixture{
		progress:     newFakeProgressStore(userIDs...),
		achievements: newFakeAchievementStore(),
		leaderboard:  newFakeLeaderboardStore(),
		activity:     &fakeActivityStore{},
		// Saturday, so the ISO week bucket starts the preceding Monday.
		now: time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return f.now }
	}
	svc, err := New(f.progress, f.achievements, f.leaderboard, f.activity, cfg)
	if err != nil {
		panic(fmt.Sprintf("fixture service: %v", err))
	}
	f.svc = svc
	return f
}
