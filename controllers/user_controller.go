package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamup-api/models"
	"teamup-api/services"
	"teamup-api/utils"
)

type UserController struct {
	db          *gorm.DB
	userService *services.UserService
}

func NewUserController(db *gorm.DB, userService *services.UserService) *UserController {
	return &UserController{
		db:          db,
		userService: userService,
	}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	stats, err := uc.userService.Statistics(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	// Recent participations with their events, newest first
	var recent []models.EventParticipant
	uc.db.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(5).
		Find(&recent)

	recentEvents := make([]models.Event, 0, len(recent))
	for _, participation := range recent {
		recentEvents = append(recentEvents, participation.Event)
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"stats":         stats,
		"recent_events": recentEvents,
	})
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email" binding:"omitempty,email"`
	AvatarURL *string `json:"avatar_url"`
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		if !utils.IsValidPhone(*req.Phone) {
			utils.SendValidationError(c, "Invalid phone number")
			return
		}
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	if err := uc.db.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (uc *UserController) GetStatistics(c *gin.Context) {
	userID := c.GetString("user_id")

	stats, err := uc.userService.Statistics(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (uc *UserController) GetPublicProfile(c *gin.Context) {
	profile, err := uc.userService.PublicProfile(c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

type GDPRDeletionRequest struct {
	Reason string `json:"reason"`
}

// RequestGDPRDeletion opens a gdpr_deletion ticket for the admins; the
// account itself is only removed once an admin resolves the ticket.
func (uc *UserController) RequestGDPRDeletion(c *gin.Context) {
	userID := c.GetString("user_id")

	var req GDPRDeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// One open deletion request per user
	var existing models.Ticket
	err := uc.db.Where("user_id = ? AND type = ? AND status IN ?",
		userID, models.TicketTypeGDPRDeletion,
		[]models.TicketStatus{models.TicketStatusOpen, models.TicketStatusInProgress}).
		First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A deletion request is already pending"})
		return
	}

	description := req.Reason
	ticket := models.Ticket{
		ID:          uuid.New().String(),
		Type:        models.TicketTypeGDPRDeletion,
		Status:      models.TicketStatusOpen,
		Title:       "Account deletion request",
		Description: &description,
		UserID:      userID,
		CreatedAt:   time.Now(),
	}

	if err := uc.db.Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create deletion request"})
		return
	}

	utils.SendCreated(c, "Deletion request submitted", ticket)
}
