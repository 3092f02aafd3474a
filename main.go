package main

import (
	"time"

	"github.com/geostash/geostash/config"
	"github.com/geostash/geostash/gamification"
	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/routes"
	"github.com/geostash/geostash/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.UserProgress{},
		&models.AchievementDefinition{},
		&models.AchievementProgress{},
		&models.LeaderboardEntry{},
		&models.Treasure{},
		&models.Discovery{},
		&models.Friendship{},
		&models.Comment{},
		&models.CommentLike{},
	)

	if err := models.SeedAchievementDefinitions(db); err != nil {
		utils.Sugar.Fatalf("failed to seed achievements: %v", err)
	}

	rewardPoints := make(map[gamification.Reason]int, len(cfg.RewardPoints))
	for reason, points := range cfg.RewardPoints {
		rewardPoints[gamification.Reason(reason)] = points
	}

	stores := gamification.NewGormStores(db)
	svc, err := gamification.New(stores.Progress, stores.Achievements, stores.Leaderboard, stores.Activity, gamification.Config{
		RewardPoints:    rewardPoints,
		ClampExperience: cfg.ClampExperience,
		Logger:          utils.Sugar,
	})
	if err != nil {
		utils.Sugar.Fatalf("failed to build scoring engine: %v", err)
	}

	r := routes.SetupRouter(db, svc)

	// Deactivate expired treasures in the background (best-effort)
	utils.StartTreasureExpirer(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
