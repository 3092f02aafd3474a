package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/geostash/geostash/models"
	"github.com/geostash/geostash/utils"
)

// UserController serves player profile endpoints.
type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// ListUsers returns paginated users, optionally filtered by a username search
// term and a minimum level.
func (u *UserController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := u.db.Model(&models.User{})
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		query = query.Where("username LIKE ?", "%"+search+"%")
	}
	if minStr := strings.TrimSpace(ctx.Query("min_level")); minStr != "" {
		minLevel, err := strconv.Atoi(minStr)
		if err != nil || minLevel < 1 {
			utils.Error(ctx, http.StatusBadRequest, 40020, "min_level must be a positive integer")
			return
		}
		query = query.Where("id IN (?)", u.db.Model(&models.UserProgress{}).
			Select("user_id").Where("level >= ?", minLevel))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count users")
		return
	}

	order := "created_at DESC"
	switch strings.TrimSpace(ctx.Query("sort")) {
	case "", "newest":
	case "oldest":
		order = "created_at ASC"
	case "username":
		order = "username ASC"
	default:
		utils.Error(ctx, http.StatusBadRequest, 40024, "unknown sort order")
		return
	}

	var users []models.User
	if err := query.Order(order).
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to retrieve users")
		return
	}

	utils.Success(ctx, gin.H{
		"items": users,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// GetUser returns one user's public profile with scoring progress attached.
func (u *UserController) GetUser(ctx *gin.Context) {
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "missing user id")
		return
	}

	var user models.User
	if err := u.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to retrieve user")
		return
	}

	var progress models.UserProgress
	if err := u.db.Where("user_id = ?", user.ID).First(&progress).Error; err != nil {
		// users who never scored still have an implicit level-1 row
		progress = models.UserProgress{UserID: user.ID, Level: 1}
	}

	utils.Success(ctx, gin.H{
		"user":     user,
		"progress": progress,
	})
}

// UpdateProfile lets the authenticated user edit their own bio and avatar.
// When called with a path ID it must match the caller.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if !selfOnly(ctx, userID) {
		return
	}

	type request struct {
		Bio       *string `json:"bio"`
		AvatarURL *string `json:"avatar_url"`
		Email     *string `json:"email"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Bio != nil {
		updates["bio"] = utils.Sanitize(strings.TrimSpace(*req.Bio))
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "nothing to update")
		return
	}

	if err := u.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update profile")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to reload profile")
		return
	}
	utils.Success(ctx, user)
}

// DeleteAccount soft-deletes the authenticated user's own account.
func (u *UserController) DeleteAccount(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if !selfOnly(ctx, userID) {
		return
	}

	if err := u.db.Delete(&models.User{}, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to delete account")
		return
	}
	utils.Success(ctx, gin.H{"message": "account deleted"})
}

// selfOnly rejects requests whose path ID names a different user. Routes
// without a path ID always pass.
func selfOnly(ctx *gin.Context, userID uint) bool {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		return true
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || uint(id) != userID {
		utils.Error(ctx, http.StatusForbidden, 40310, "can only modify your own account")
		return false
	}
	return true
}
