package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/geostash/geostash/config"
	"github.com/geostash/geostash/controllers"
	"github.com/geostash/geostash/gamification"
	"github.com/geostash/geostash/middleware"
	"github.com/geostash/geostash/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, svc *gamification.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, true))
		r.Use(utils.RecoveryWithZap(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	treasureController := controllers.NewTreasureController(db, svc)
	socialController := controllers.NewSocialController(db, svc)
	gameController := controllers.NewGamificationController(db, svc)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), userController.UpdateProfile)

	// Public read endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/users", userController.ListUsers)
	api.GET("/users/:id", userController.GetUser)
	api.GET("/treasures", treasureController.ListTreasures)
	api.GET("/treasures/:id", treasureController.GetTreasure)
	api.GET("/treasures/code/:code", treasureController.GetTreasureByCode)
	api.GET("/treasures/:id/comments", socialController.ListComments)

	// Authenticated, rate limited writes
	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.PATCH("/users/:id", userController.UpdateProfile)
	protected.DELETE("/users/:id", userController.DeleteAccount)
	protected.POST("/treasures", treasureController.CreateTreasure)
	protected.POST("/treasures/:id/discover", treasureController.DiscoverTreasure)
	protected.POST("/treasures/:id/comments", socialController.CreateComment)
	protected.POST("/comments/:id/like", socialController.LikeComment)
	protected.POST("/friends/:id", socialController.AddFriend)
	protected.GET("/friends", socialController.ListFriends)
	protected.DELETE("/friends/:id", socialController.RemoveFriend)

	game := api.Group("/gamification")
	game.GET("/leaderboard", gameController.GetLeaderboard)
	game.GET("/levels", gameController.GetLevels)
	game.Use(middleware.AuthRequired())
	game.GET("/progress", gameController.GetProgress)
	game.GET("/achievements", gameController.ListAchievements)
	game.GET("/rank", gameController.GetUserRank)
	game.GET("/streak", gameController.GetStreak)

	return r
}
