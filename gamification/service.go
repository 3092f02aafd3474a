package gamification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geostash/geostash/models"
)

// maxCascadeDepth bounds the award -> achievement check -> award chain. The
// chain terminates naturally because completions are persisted before their
// reward is granted and the level table is finite; the cap makes that bound
// explicit and auditable.
const maxCascadeDepth = 8

// activityWindow caps how many recent activity records feed the streak
// calculation. Anything older is irrelevant because any gap breaks the streak.
const activityWindow = 90

// Config carries the immutable tuning data for a Service.
type Config struct {
	// LevelThresholds overrides the default experience curve when non-nil.
	LevelThresholds []int
	// RewardPoints overrides built-in point values per reason code.
	RewardPoints map[Reason]int
	// ClampExperience keeps experience and total points at a floor of zero
	// when negative deltas are applied.
	ClampExperience bool
	// Epoch is the bucket start of the all_time leaderboard partition.
	Epoch time.Time
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
	// Logger receives side-effect failure logs; defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// AwardResult describes the outcome of one experience award.
type AwardResult struct {
	NewExperience int  `json:"new_experience"`
	NewLevel      int  `json:"new_level"`
	LeveledUp     bool `json:"leveled_up"`
	PointsEarned  int  `json:"points_earned"`
}

// UnlockedAchievement describes one newly completed achievement.
type UnlockedAchievement struct {
	AchievementID uint   `json:"achievement_id"`
	Name          string `json:"name"`
	RewardPoints  int    `json:"reward_points"`
}

// Service is the scoring engine: experience ledger, achievement tracker,
// leaderboard aggregator, and streak calculator behind one façade. All state
// lives in the injected stores; the service itself only holds configuration
// and the per-user serialization locks.
type Service struct {
	levels       LevelTable
	points       map[Reason]int
	clamp        bool
	epoch        time.Time
	progress     UserProgressStore
	achievements AchievementStore
	leaderboard  LeaderboardStore
	activity     ActivityStore
	now          func() time.Time
	log          *zap.SugaredLogger

	// userMu serializes awards per user so concurrent read-modify-write
	// sequences never lose updates; different users never share a lock.
	userMu    sync.Mutex
	userLocks map[uint]*sync.Mutex

	// partMu serializes rank recomputation per leaderboard partition.
	partMu    sync.Mutex
	partLocks map[string]*sync.Mutex
}

// New builds a Service over the given stores.
func New(progress UserProgressStore, achievements AchievementStore, leaderboard LeaderboardStore, activity ActivityStore, cfg Config) (*Service, error) {
	thresholds := cfg.LevelThresholds
	if thresholds == nil {
		thresholds = DefaultLevelThresholds()
	}
	levels, err := NewLevelTable(thresholds)
	if err != nil {
		return nil, err
	}

	points := DefaultRewardPoints()
	for reason, value := range cfg.RewardPoints {
		points[reason] = value
	}

	epoch := cfg.Epoch
	if epoch.IsZero() {
		epoch = time.Unix(0, 0).UTC()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Service{
		levels:       levels,
		points:       points,
		clamp:        cfg.ClampExperience,
		epoch:        epoch,
		progress:     progress,
		achievements: achievements,
		leaderboard:  leaderboard,
		activity:     activity,
		now:          now,
		log:          logger,
		userLocks:    map[uint]*sync.Mutex{},
		partLocks:    map[string]*sync.Mutex{},
	}, nil
}

// Levels exposes the level table for profile endpoints.
func (s *Service) Levels() LevelTable {
	return s.levels
}

// PointsFor returns the configured point value for a reason code.
func (s *Service) PointsFor(reason Reason) int {
	return s.points[reason]
}

// AwardExperience applies a point delta to the user's experience and point
// balance, recomputes the level, and folds the delta into the active
// leaderboard buckets. On level-up a "special" achievement check fires for the
// final level reached. The progress mutation succeeds or fails atomically;
// achievement and leaderboard side effects are best-effort and logged.
func (s *Service) AwardExperience(ctx context.Context, userID uint, points int, reason Reason) (*AwardResult, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.award(ctx, userID, points, reason, 0)
}

// AwardFor is AwardExperience with the configured point value for the reason.
func (s *Service) AwardFor(ctx context.Context, userID uint, reason Reason) (*AwardResult, error) {
	return s.AwardExperience(ctx, userID, s.points[reason], reason)
}

// award is the lock-free core of AwardExperience. Callers must hold the
// user's lock; recursive awards from achievement rewards re-enter here
// directly so the lock is never acquired twice.
func (s *Service) award(ctx context.Context, userID uint, points int, reason Reason, depth int) (*AwardResult, error) {
	progress, err := s.progress.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldLevel := progress.Level
	newExperience := progress.Experience + points
	newTotal := progress.TotalPoints + points
	if s.clamp {
		if newExperience < 0 {
			newExperience = 0
		}
		if newTotal < 0 {
			newTotal = 0
		}
	}
	newLevel := s.levels.LevelOf(newExperience)

	progress.Experience = newExperience
	progress.Level = newLevel
	progress.TotalPoints = newTotal
	if err := s.progress.Save(ctx, progress); err != nil {
		return nil, persistErr("save user progress", err)
	}

	result := &AwardResult{
		NewExperience: newExperience,
		NewLevel:      newLevel,
		LeveledUp:     newLevel > oldLevel,
		PointsEarned:  points,
	}

	// Side effects below are secondary: failures are logged, never propagated,
	// and the committed progress row stays as-is.
	if result.LeveledUp {
		if _, err := s.checkAchievements(ctx, userID, models.RequirementSpecial, newLevel, depth+1); err != nil {
			s.log.Warnw("level-up achievement check failed", "user_id", userID, "level", newLevel, "error", err)
		}
	}
	s.foldPoints(ctx, userID, points)

	return result, nil
}

// lockFor returns the serialization lock for one user, creating it on first use.
func (s *Service) lockFor(userID uint) *sync.Mutex {
	s.userMu.Lock()
	defer s.userMu.Unlock()
	if lock, ok := s.userLocks[userID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.userLocks[userID] = lock
	return lock
}

// partitionLock returns the recompute lock for one leaderboard partition.
func (s *Service) partitionLock(key string) *sync.Mutex {
	s.partMu.Lock()
	defer s.partMu.Unlock()
	if lock, ok := s.partLocks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.partLocks[key] = lock
	return lock
}
