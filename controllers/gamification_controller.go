package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/geostash/geostash/config"
	"github.com/geostash/geostash/gamification"
	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/utils"
)

// GamificationController exposes the scoring engine over HTTP: progress,
// achievements, leaderboards, rank and streak.
type GamificationController struct {
	db  *gorm.DB
	svc *gamification.Service
}

func NewGamificationController(db *gorm.DB, svc *gamification.Service) *GamificationController {
	return &GamificationController{db: db, svc: svc}
}

// GetProgress returns the caller's experience, level and distance to the next
// level.
func (g *GamificationController) GetProgress(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var progress models.UserProgress
	if err := g.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to retrieve progress")
			return
		}
		progress = models.UserProgress{UserID: userID, Level: 1}
	}

	resp := gin.H{
		"user_id":      progress.UserID,
		"experience":   progress.Experience,
		"level":        progress.Level,
		"total_points": progress.TotalPoints,
		"max_level":    progress.Level >= g.svc.Levels().MaxLevel(),
	}
	if next, ok := g.svc.Levels().NextThreshold(progress.Level); ok {
		resp["next_level_at"] = next
		resp["experience_to_next"] = next - progress.Experience
	}
	utils.Success(ctx, resp)
}

// ListAchievements returns every active achievement with the caller's progress
// folded in.
func (g *GamificationController) ListAchievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var defs []models.AchievementDefinition
	if err := g.db.Where("is_active = ?", true).Order("id ASC").Find(&defs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to retrieve achievements")
		return
	}

	var rows []models.AchievementProgress
	if err := g.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to retrieve achievement progress")
		return
	}
	byAchievement := make(map[uint]models.AchievementProgress, len(rows))
	for _, row := range rows {
		byAchievement[row.AchievementID] = row
	}

	type item struct {
		models.AchievementDefinition
		Progress    int        `json:"progress"`
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at,omitempty"`
	}
	items := make([]item, 0, len(defs))
	completed := 0
	for _, def := range defs {
		it := item{AchievementDefinition: def}
		if row, ok := byAchievement[def.ID]; ok {
			it.Progress = row.Progress
			it.Completed = row.Completed
			it.CompletedAt = row.CompletedAt
		}
		if it.Completed {
			completed++
		}
		items = append(items, it)
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     len(items),
		"completed": completed,
	})
}

// GetLeaderboard returns the ranked top of one period partition. Responses are
// cached briefly in Redis since every fold rewrites ranks.
func (g *GamificationController) GetLeaderboard(ctx *gin.Context) {
	periodType := strings.TrimSpace(ctx.DefaultQuery("period", models.PeriodAllTime))
	limit := gamification.DefaultLeaderboardLimit
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			utils.Error(ctx, http.StatusBadRequest, 40060, "limit must be a positive integer")
			return
		}
		limit = n
	}

	cacheKey := "cache:leaderboard:" + periodType + ":" + strconv.Itoa(limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	entries, err := g.svc.Leaderboard(ctx.Request.Context(), periodType, limit)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}

	payload := utils.JSONResponse{
		Code:    0,
		Message: "success",
		Data: gin.H{
			"period":  periodType,
			"entries": entries,
		},
	}
	if ttl := config.Get().LeaderboardCacheSeconds; ttl > 0 {
		if b, merr := json.Marshal(payload); merr == nil {
			utils.CacheSetBytes(cacheKey, b, time.Duration(ttl)*time.Second)
		}
	}
	ctx.JSON(http.StatusOK, payload)
}

// GetUserRank returns the caller's entry in one period partition.
func (g *GamificationController) GetUserRank(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	periodType := strings.TrimSpace(ctx.DefaultQuery("period", models.PeriodAllTime))

	entry, err := g.svc.UserRank(ctx.Request.Context(), userID, periodType)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	if entry == nil {
		utils.Success(ctx, gin.H{"period": periodType, "ranked": false})
		return
	}
	utils.Success(ctx, gin.H{"period": periodType, "ranked": true, "entry": entry})
}

// GetStreak returns the caller's current consecutive-day discovery streak.
func (g *GamificationController) GetStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	streak, err := g.svc.CalculateStreak(ctx.Request.Context(), userID)
	if err != nil {
		respondEngineError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"streak": streak})
}

// GetLevels returns the level threshold table.
func (g *GamificationController) GetLevels(ctx *gin.Context) {
	table := g.svc.Levels()
	utils.Success(ctx, gin.H{
		"thresholds": table.Thresholds(),
		"max_level":  table.MaxLevel(),
	})
}

func respondEngineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, gamification.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40061, err.Error())
	case errors.Is(err, gamification.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40460, err.Error())
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50060, "scoring engine failure")
	}
}
