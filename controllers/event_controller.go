package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamup-api/models"
	"teamup-api/repositories"
	"teamup-api/services"
	"teamup-api/utils"
)

type EventController struct {
	db           *gorm.DB
	eventService *services.EventService
	eventRepo    *repositories.EventRepository
}

func NewEventController(db *gorm.DB, eventService *services.EventService, eventRepo *repositories.EventRepository) *EventController {
	return &EventController{
		db:           db,
		eventService: eventService,
		eventRepo:    eventRepo,
	}
}

type CreateEventRequest struct {
	Title               string   `json:"title" binding:"required"`
	Description         string   `json:"description"`
	SportType           string   `json:"sport_type" binding:"required"`
	DateTime            time.Time `json:"date_time" binding:"required"`
	DurationMinutes     int      `json:"duration_minutes" binding:"required,min=15"`
	Location            string   `json:"location" binding:"required"`
	MaxParticipants     int      `json:"max_participants" binding:"required,min=1"`
	Price               float64  `json:"price"`
	CoOrganizerIDs      []string `json:"co_organizer_ids"`
	CancelDeadlineHours *int     `json:"cancel_deadline_hours"`
}

func (ec *EventController) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := ec.db.Preload("Creator").
		Where("status = ?", models.EventStatusActive).
		Where("date_time > ?", time.Now())

	if sport := c.Query("sport"); sport != "" {
		query = query.Where("sport_type = ?", sport)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var events []models.Event
	if err := query.Order("date_time ASC").Offset(offset).Limit(limit).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"page":   page,
		"limit":  limit,
	})
}

func (ec *EventController) CreateEvent(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DateTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event date must be in the future"})
		return
	}

	var sport models.Sport
	if err := ec.db.Where("slug = ?", req.SportType).First(&sport).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown sport type"})
		return
	}

	cancelDeadline := 2
	if req.CancelDeadlineHours != nil {
		cancelDeadline = *req.CancelDeadlineHours
	}

	event := models.Event{
		Title:               req.Title,
		Description:         req.Description,
		SportType:           req.SportType,
		DateTime:            req.DateTime,
		DurationMinutes:     req.DurationMinutes,
		Location:            req.Location,
		MaxParticipants:     req.MaxParticipants,
		Price:               req.Price,
		CreatorID:           userID,
		CoOrganizerIDs:      models.StringSlice(req.CoOrganizerIDs),
		CancelDeadlineHours: cancelDeadline,
	}

	if err := ec.eventService.CreateEvent(&event); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (ec *EventController) GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	event, err := ec.eventRepo.GetEventWithDetails(eventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

func (ec *EventController) UpdateEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := ec.db.First(&event, "id = ? AND creator_id = ?", eventID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found or access denied"})
		return
	}

	if event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCancelled {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot edit a finished event"})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DateTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event date must be in the future"})
		return
	}

	// Capacity cannot drop below the current confirmed count
	confirmed, err := ec.eventRepo.CountConfirmed(ec.db, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count participants"})
		return
	}
	if int64(req.MaxParticipants) < confirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot reduce max participants below current count"})
		return
	}

	cancelDeadline := event.CancelDeadlineHours
	if req.CancelDeadlineHours != nil {
		cancelDeadline = *req.CancelDeadlineHours
	}

	updates := map[string]interface{}{
		"title":                 req.Title,
		"description":           req.Description,
		"sport_type":            req.SportType,
		"date_time":             req.DateTime,
		"duration_minutes":      req.DurationMinutes,
		"location":              req.Location,
		"max_participants":      req.MaxParticipants,
		"price":                 req.Price,
		"co_organizer_ids":      models.StringSlice(req.CoOrganizerIDs),
		"cancel_deadline_hours": cancelDeadline,
	}

	if err := ec.db.Model(&event).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully"})
}

func (ec *EventController) DeleteEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	if err := ec.eventService.DeleteEvent(eventID, userID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

func (ec *EventController) PublishEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	if err := ec.eventService.Publish(eventID, userID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event published"})
}

func (ec *EventController) CancelEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	if err := ec.eventService.CancelEvent(eventID, userID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event cancelled"})
}

func (ec *EventController) JoinEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	result, err := ec.eventService.SignUp(eventID, userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	message := "Successfully joined event"
	if result.IsReserve {
		message = "Added to the waiting list"
	}

	utils.SendSuccess(c, message, result)
}

func (ec *EventController) LeaveEvent(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	if err := ec.eventService.CancelSignup(eventID, userID, time.Now()); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left event"})
}

func (ec *EventController) GetParticipants(c *gin.Context) {
	eventID := c.Param("id")

	if _, err := ec.eventRepo.GetEvent(eventID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	participants, err := ec.eventRepo.ListParticipants(eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

type RecordAttendanceRequest struct {
	Attendance map[string]bool `json:"attendance" binding:"required"`
}

func (ec *EventController) RecordAttendance(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var req RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ec.eventService.RecordAttendance(eventID, userID, req.Attendance); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attendance recorded"})
}

func (ec *EventController) GetJoinedEvents(c *gin.Context) {
	userID := c.GetString("user_id")

	var participants []models.EventParticipant
	if err := ec.db.Preload("Event").Preload("Event.Creator").Where("user_id = ?", userID).Find(&participants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch joined events"})
		return
	}

	type joinedEvent struct {
		models.Event
		IsReserve bool  `json:"is_reserve"`
		Attended  *bool `json:"attended"`
	}

	events := make([]joinedEvent, 0, len(participants))
	for _, participant := range participants {
		events = append(events, joinedEvent{
			Event:     participant.Event,
			IsReserve: participant.IsReserve,
			Attended:  participant.Attended,
		})
	}

	c.JSON(http.StatusOK, events)
}

func (ec *EventController) GetCreatedEvents(c *gin.Context) {
	userID := c.GetString("user_id")

	var events []models.Event
	if err := ec.db.Preload("Participants").Where("creator_id = ?", userID).Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch created events"})
		return
	}

	c.JSON(http.StatusOK, events)
}

func (ec *EventController) SearchEvents(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query required"})
		return
	}

	var events []models.Event
	err := ec.db.Preload("Creator").
		Where("title LIKE ? OR description LIKE ? OR location LIKE ?",
			"%"+query+"%", "%"+query+"%", "%"+query+"%").
		Where("status = ?", models.EventStatusActive).
		Where("date_time > ?", time.Now()).
		Order("date_time ASC").Find(&events).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search events"})
		return
	}

	c.JSON(http.StatusOK, events)
}
