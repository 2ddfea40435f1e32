package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamup-api/models"
	"teamup-api/utils"
)

type TicketController struct {
	db *gorm.DB
}

func NewTicketController(db *gorm.DB) *TicketController {
	return &TicketController{db: db}
}

type CreateTicketRequest struct {
	Type        models.TicketType `json:"type" binding:"required,oneof=organizer_report gdpr_deletion"`
	Title       string            `json:"title" binding:"required"`
	Description *string           `json:"description"`
}

func (tc *TicketController) CreateTicket(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket := models.Ticket{
		ID:          uuid.New().String(),
		Type:        req.Type,
		Status:      models.TicketStatusOpen,
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	}

	if err := tc.db.Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	utils.SendCreated(c, "Ticket created", ticket)
}

func (tc *TicketController) GetMyTickets(c *gin.Context) {
	userID := c.GetString("user_id")

	var tickets []models.Ticket
	if err := tc.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}
