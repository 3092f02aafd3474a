package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/geostash/geostash/gamification"
	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/utils"
)

// SocialController serves friendships, treasure comments and comment likes.
// Social actions feed the scoring engine like any other activity.
type SocialController struct {
	db  *gorm.DB
	svc *gamification.Service
}

func NewSocialController(db *gorm.DB, svc *gamification.Service) *SocialController {
	return &SocialController{db: db, svc: svc}
}

// AddFriend creates a bidirectional friendship and rewards both sides.
func (s *SocialController) AddFriend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	type request struct {
		FriendID uint `json:"friend_id"`
	}
	var req request
	if idStr := strings.TrimSpace(ctx.Param("id")); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil || id == 0 {
			utils.Error(ctx, http.StatusBadRequest, 40040, "invalid friend id")
			return
		}
		req.FriendID = uint(id)
	} else if err := ctx.ShouldBindJSON(&req); err != nil || req.FriendID == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	if req.FriendID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40041, "cannot befriend yourself")
		return
	}

	var friend models.User
	if err := s.db.First(&friend, req.FriendID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	var existing models.Friendship
	if err := s.db.Where("user_id = ? AND friend_id = ?", userID, req.FriendID).
		First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40940, "already friends")
		return
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Friend").Create(&models.Friendship{UserID: userID, FriendID: req.FriendID}).Error; err != nil {
			return err
		}
		return tx.Omit("Friend").Create(&models.Friendship{UserID: req.FriendID, FriendID: userID}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to create friendship")
		return
	}

	rctx := ctx.Request.Context()
	award, err := s.svc.AwardFor(rctx, userID, gamification.ReasonFriendAdded)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record score")
		return
	}
	// the other side's reward is best effort
	if _, aerr := s.svc.AwardFor(rctx, req.FriendID, gamification.ReasonFriendAdded); aerr != nil {
		utils.Sugar.Warnw("friend reward failed", "user_id", req.FriendID, "error", aerr)
	}

	unlocked, _ := s.svc.CheckAchievements(rctx, userID, models.RequirementFriends, 1)
	if _, cerr := s.svc.CheckAchievements(rctx, req.FriendID, models.RequirementFriends, 1); cerr != nil {
		utils.Sugar.Warnw("friend achievement check failed", "user_id", req.FriendID, "error", cerr)
	}
	utils.InvalidateByPrefix("cache:leaderboard:")

	utils.Success(ctx, gin.H{
		"friend":       friend,
		"award":        award,
		"achievements": unlocked,
	})
}

// ListFriends returns the authenticated user's friends.
func (s *SocialController) ListFriends(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var friendships []models.Friendship
	if err := s.db.Preload("Friend").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&friendships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to retrieve friends")
		return
	}

	friends := make([]models.User, 0, len(friendships))
	for _, f := range friendships {
		friends = append(friends, f.Friend)
	}
	utils.Success(ctx, gin.H{"items": friends, "total": len(friends)})
}

// RemoveFriend deletes both directions of a friendship.
func (s *SocialController) RemoveFriend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	friendID := strings.TrimSpace(ctx.Param("id"))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ?", userID, friendID).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND friend_id = ?", friendID, userID).
			Delete(&models.Friendship{}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to remove friend")
		return
	}
	utils.Success(ctx, gin.H{"message": "friend removed"})
}

// CreateComment posts a sanitized note on a treasure page.
func (s *SocialController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	type request struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40042, "invalid request payload")
		return
	}

	var treasure models.Treasure
	if err := s.db.First(&treasure, ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40430, "treasure not found")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40043, "comment is empty")
		return
	}

	comment := models.Comment{
		TreasureID: treasure.ID,
		UserID:     userID,
		Content:    content,
	}
	if err := s.db.Omit("User").Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create comment")
		return
	}

	award, err := s.svc.AwardFor(ctx.Request.Context(), userID, gamification.ReasonCommentPosted)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record score")
		return
	}
	utils.InvalidateByPrefix("cache:leaderboard:")

	utils.Success(ctx, gin.H{"comment": comment, "award": award})
}

// ListComments returns a treasure's comments, newest first.
func (s *SocialController) ListComments(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	query := s.db.Model(&models.Comment{}).Where("treasure_id = ?", ctx.Param("id"))
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := query.Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to retrieve comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items": comments,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// LikeComment records one like per user and rewards the comment's author.
func (s *SocialController) LikeComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var comment models.Comment
	if err := s.db.First(&comment, ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40440, "comment not found")
		return
	}

	like := models.CommentLike{CommentID: comment.ID, UserID: userID}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Comment{}).Where("id = ?", comment.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			utils.Error(ctx, http.StatusConflict, 40941, "already liked")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to like comment")
		return
	}

	// reward goes to the author, not the liker
	if comment.UserID != userID {
		if _, aerr := s.svc.AwardFor(ctx.Request.Context(), comment.UserID, gamification.ReasonLikeReceived); aerr != nil {
			utils.Sugar.Warnw("like reward failed", "user_id", comment.UserID, "error", aerr)
		}
		utils.InvalidateByPrefix("cache:leaderboard:")
	}

	utils.Success(ctx, gin.H{"message": "liked", "like_count": comment.LikeCount + 1})
}
