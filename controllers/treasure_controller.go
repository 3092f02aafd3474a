package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/geostash/geostash/gamification"
	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/utils"
)

// TreasureController serves treasure placement and discovery endpoints. Every
// discovery runs through the scoring engine.
type TreasureController struct {
	db  *gorm.DB
	svc *gamification.Service
}

func NewTreasureController(db *gorm.DB, svc *gamification.Service) *TreasureController {
	return &TreasureController{db: db, svc: svc}
}

// CreateTreasure hides a new treasure and rewards the creator.
func (t *TreasureController) CreateTreasure(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	type request struct {
		Title     string     `json:"title" binding:"required,min=1,max=128"`
		Hint      string     `json:"hint"`
		Latitude  float64    `json:"latitude" binding:"min=-90,max=90"`
		Longitude float64    `json:"longitude" binding:"min=-180,max=180"`
		Rarity    string     `json:"rarity"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	switch req.Rarity {
	case "", models.RarityCommon, models.RarityUncommon, models.RarityRare:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40031, "unknown rarity")
		return
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		utils.Error(ctx, http.StatusBadRequest, 40032, "expires_at is in the past")
		return
	}

	treasure := models.Treasure{
		CreatorID: userID,
		Title:     utils.Sanitize(strings.TrimSpace(req.Title)),
		Hint:      utils.Sanitize(strings.TrimSpace(req.Hint)),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Rarity:    req.Rarity,
		ShareCode: uuid.NewString(),
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	if err := t.db.Omit("Creator").Create(&treasure).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create treasure")
		return
	}

	award, err := t.svc.AwardFor(ctx.Request.Context(), userID, gamification.ReasonTreasureCreated)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record score")
		return
	}
	unlocked, _ := t.svc.CheckAchievements(ctx.Request.Context(), userID, models.RequirementTreasuresCreated, 1)
	utils.InvalidateByPrefix("cache:leaderboard:")

	utils.Success(ctx, gin.H{
		"treasure":     treasure,
		"award":        award,
		"achievements": unlocked,
	})
}

// ListTreasures returns active treasures with optional rarity and creator
// filters, newest first.
func (t *TreasureController) ListTreasures(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := t.db.Model(&models.Treasure{}).Where("is_active = ?", true)
	if rarity := strings.TrimSpace(ctx.Query("rarity")); rarity != "" {
		query = query.Where("rarity = ?", rarity)
	}
	if creator := strings.TrimSpace(ctx.Query("creator_id")); creator != "" {
		query = query.Where("creator_id = ?", creator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to count treasures")
		return
	}

	var treasures []models.Treasure
	if err := query.Preload("Creator").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&treasures).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to retrieve treasures")
		return
	}

	utils.Success(ctx, gin.H{
		"items": treasures,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetTreasure returns one treasure by numeric ID.
func (t *TreasureController) GetTreasure(ctx *gin.Context) {
	var treasure models.Treasure
	if err := t.db.Preload("Creator").First(&treasure, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "treasure not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to retrieve treasure")
		return
	}
	utils.Success(ctx, treasure)
}

// GetTreasureByCode resolves a shared treasure link.
func (t *TreasureController) GetTreasureByCode(ctx *gin.Context) {
	code := strings.TrimSpace(ctx.Param("code"))
	var treasure models.Treasure
	if err := t.db.Preload("Creator").Where("share_code = ?", code).First(&treasure).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "treasure not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to retrieve treasure")
		return
	}
	utils.Success(ctx, treasure)
}

// DiscoverTreasure records a find and folds every earned reward through the
// scoring engine: the base find, first-to-find and rarity bonuses, the daily
// streak bonus, and any achievements those pushes complete.
func (t *TreasureController) DiscoverTreasure(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var treasure models.Treasure
	if err := t.db.First(&treasure, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "treasure not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to retrieve treasure")
		return
	}
	if !treasure.IsActive || (treasure.ExpiresAt != nil && treasure.ExpiresAt.Before(time.Now())) {
		utils.Error(ctx, http.StatusGone, 41030, "treasure is no longer active")
		return
	}
	if treasure.CreatorID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40033, "cannot discover your own treasure")
		return
	}

	now := time.Now().UTC()
	discovery := models.Discovery{
		TreasureID:   treasure.ID,
		UserID:       userID,
		DiscoveredAt: now,
	}
	firstOfDay := false

	err := t.db.Transaction(func(tx *gorm.DB) error {
		var locked models.Treasure
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, treasure.ID).Error; err != nil {
			return err
		}

		var prior int64
		if err := tx.Model(&models.Discovery{}).
			Where("treasure_id = ?", treasure.ID).Count(&prior).Error; err != nil {
			return err
		}
		discovery.FirstToFind = prior == 0

		var today int64
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if err := tx.Model(&models.Discovery{}).
			Where("user_id = ? AND discovered_at >= ?", userID, dayStart).
			Count(&today).Error; err != nil {
			return err
		}
		firstOfDay = today == 0

		return tx.Create(&discovery).Error
	})
	if err != nil {
		// the unique (treasure, finder) index rejects repeat finds
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			utils.Error(ctx, http.StatusConflict, 40930, "treasure already discovered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to record discovery")
		return
	}

	rctx := ctx.Request.Context()
	award, err := t.svc.AwardFor(rctx, userID, gamification.ReasonTreasureFound)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record score")
		return
	}
	bonuses := []gamification.Reason{}
	if discovery.FirstToFind {
		bonuses = append(bonuses, gamification.ReasonFirstToFind)
	}
	if treasure.Rarity == models.RarityRare {
		bonuses = append(bonuses, gamification.ReasonRareTreasureFound)
	}
	if firstOfDay {
		bonuses = append(bonuses, gamification.ReasonDailyStreak)
	}
	for _, reason := range bonuses {
		if res, aerr := t.svc.AwardFor(rctx, userID, reason); aerr == nil {
			award = res
		}
	}

	unlocked, _ := t.svc.CheckAchievements(rctx, userID, models.RequirementTreasuresFound, 1)
	if firstOfDay {
		more, _ := t.svc.CheckAchievements(rctx, userID, models.RequirementStreak, 1)
		unlocked = append(unlocked, more...)
	}
	utils.InvalidateByPrefix("cache:leaderboard:")

	streak, _ := t.svc.CalculateStreak(rctx, userID)

	utils.Success(ctx, gin.H{
		"discovery":    discovery,
		"award":        award,
		"achievements": unlocked,
		"streak":       streak,
	})
}
