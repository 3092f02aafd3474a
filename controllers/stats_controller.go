package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/utils"
)

// StatsController provides aggregate hunt statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the whole hunt.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var treasureCount int64
	var discoveryCount int64
	var dailyDiscoveries int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Treasure{}).Where("is_active = ?", true).Count(&treasureCount).Error; err != nil {
		treasureCount = 0
	}

	if err := s.db.Model(&models.Discovery{}).Count(&discoveryCount).Error; err != nil {
		discoveryCount = 0
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.db.Model(&models.Discovery{}).
		Where("discovered_at >= ?", dayStart).
		Count(&dailyDiscoveries).Error; err != nil {
		dailyDiscoveries = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":        userCount,
		"treasure_count":    treasureCount,
		"discovery_count":   discoveryCount,
		"daily_discoveries": dailyDiscoveries,
	})
}
