package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamup-api/models"
	"teamup-api/services"
	"teamup-api/utils"
)

type AdminController struct {
	db           *gorm.DB
	eventService *services.EventService
	userService  *services.UserService
	emailService *services.EmailService
}

func NewAdminController(db *gorm.DB, eventService *services.EventService, userService *services.UserService, emailService *services.EmailService) *AdminController {
	return &AdminController{
		db:           db,
		eventService: eventService,
		userService:  userService,
		emailService: emailService,
	}
}

// GetDashboard returns the admin overview: totals, ticket queue health
// and the platform-wide average reliability.
func (ac *AdminController) GetDashboard(c *gin.Context) {
	var totalUsers, totalEvents int64
	ac.db.Model(&models.User{}).Count(&totalUsers)
	ac.db.Model(&models.Event{}).Count(&totalEvents)

	var openTickets, resolvedTickets int64
	ac.db.Model(&models.Ticket{}).
		Where("status IN ?", []models.TicketStatus{models.TicketStatusOpen, models.TicketStatusInProgress}).
		Count(&openTickets)
	ac.db.Model(&models.Ticket{}).
		Where("status IN ?", []models.TicketStatus{models.TicketStatusResolved, models.TicketStatusClosed}).
		Count(&resolvedTickets)

	avgReliability := ac.averageReliability()

	var recentTickets []models.Ticket
	ac.db.Preload("User").Order("created_at DESC").Limit(5).Find(&recentTickets)

	c.JSON(http.StatusOK, gin.H{
		"total_users":      totalUsers,
		"total_events":     totalEvents,
		"open_tickets":     openTickets,
		"resolved_tickets": resolvedTickets,
		"avg_reliability":  avgReliability,
		"recent_tickets":   recentTickets,
	})
}

func (ac *AdminController) averageReliability() int {
	var users []models.User
	if err := ac.db.Select("id").Find(&users).Error; err != nil || len(users) == 0 {
		return 100
	}

	sum := 0
	for _, user := range users {
		score, err := ac.userService.ReliabilityScore(user.ID)
		if err != nil {
			score = 100
		}
		sum += score
	}
	return sum / len(users)
}

func (ac *AdminController) GetTickets(c *gin.Context) {
	query := ac.db.Preload("User").Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if ticketType := c.Query("type"); ticketType != "" {
		query = query.Where("type = ?", ticketType)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

type UpdateTicketRequest struct {
	Status     models.TicketStatus `json:"status" binding:"required,oneof=open in_progress resolved closed"`
	AdminNotes *string             `json:"admin_notes"`
}

func (ac *AdminController) UpdateTicket(c *gin.Context) {
	adminID := c.GetString("user_id")
	ticketID := c.Param("id")

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ticket models.Ticket
	if err := ac.db.Preload("User").First(&ticket, "id = ?", ticketID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}

	if ticket.Status.IsTerminal() && !req.Status.IsTerminal() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot reopen a resolved ticket"})
		return
	}

	updates := map[string]interface{}{
		"status": req.Status,
	}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}
	if req.Status.IsTerminal() && !ticket.Status.IsTerminal() {
		now := time.Now()
		updates["resolved_by"] = adminID
		updates["resolved_at"] = now
	}

	if err := ac.db.Model(&ticket).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}

	ac.writeAuditLog(adminID, ticket.UserID, "ticket_status_change", models.JSONMap{
		"ticket_id": ticket.ID,
		"from":      string(ticket.Status),
		"to":        string(req.Status),
	})

	if req.Status == models.TicketStatusResolved && ticket.User.Email != nil {
		email := *ticket.User.Email
		name := ticket.User.FullName
		title := ticket.Title
		go func() {
			if err := ac.emailService.SendTicketResolvedEmail(email, name, title); err != nil {
				fmt.Printf("Failed to send ticket resolved email: %v\n", err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ticket updated"})
}

// ReopenAttendance lets an admin clear the recorded flag so the
// organizer can submit corrections.
func (ac *AdminController) ReopenAttendance(c *gin.Context) {
	adminID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ac.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	if err := ac.eventService.ReopenAttendance(eventID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	ac.writeAuditLog(adminID, event.CreatorID, "attendance_reopened", models.JSONMap{
		"event_id": eventID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Attendance reopened"})
}

func (ac *AdminController) GetAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	ac.db.Model(&models.AuditLog{}).Count(&total)

	var logs []models.AuditLog
	err := ac.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch audit logs"})
		return
	}

	utils.SendPaginated(c, logs, page, limit, total)
}

func (ac *AdminController) writeAuditLog(adminID, userID, action string, details models.JSONMap) {
	entry := models.AuditLog{
		ID:      uuid.New().String(),
		Action:  action,
		AdminID: &adminID,
		UserID:  userID,
		Details: details,
	}
	if err := ac.db.Create(&entry).Error; err != nil {
		fmt.Printf("Warning: Could not write audit log for %s: %v\n", action, err)
	}
}
