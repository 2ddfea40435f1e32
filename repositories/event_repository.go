package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamup-api/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// DB exposes the underlying handle for transaction scoping.
func (r *EventRepository) DB() *gorm.DB {
	return r.db
}

// GetEvent retrieves an event by ID
func (r *EventRepository) GetEvent(eventID string) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventWithDetails retrieves an event with its creator and participants
func (r *EventRepository) GetEventWithDetails(eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Creator").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_reserve ASC, created_at ASC, id ASC")
		}).
		Preload("Participants.User").
		First(&event, "id = ?", eventID).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventForUpdate retrieves an event inside tx, row-locked where the
// dialect supports it. SQLite has no FOR UPDATE; single-node tests rely
// on the service's per-event lock instead.
func (r *EventRepository) GetEventForUpdate(tx *gorm.DB, eventID string) (*models.Event, error) {
	query := tx
	if tx.Dialector.Name() == "mysql" {
		query = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var event models.Event
	if err := query.First(&event, "id = ?", eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetParticipant retrieves a participant record for (event, user)
func (r *EventRepository) GetParticipant(tx *gorm.DB, eventID, userID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// CountConfirmed counts non-reserve participants of an event
func (r *EventRepository) CountConfirmed(tx *gorm.DB, eventID string) (int64, error) {
	var count int64
	err := tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND is_reserve = ?", eventID, false).
		Count(&count).Error
	return count, err
}

// CountReserve counts waitlisted participants of an event
func (r *EventRepository) CountReserve(tx *gorm.DB, eventID string) (int64, error) {
	var count int64
	err := tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND is_reserve = ?", eventID, true).
		Count(&count).Error
	return count, err
}

// FirstReserve returns the earliest-joined waitlisted participant, or
// gorm.ErrRecordNotFound when the waitlist is empty.
func (r *EventRepository) FirstReserve(tx *gorm.DB, eventID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	err := tx.Where("event_id = ? AND is_reserve = ?", eventID, true).
		Order("created_at ASC, id ASC").
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// CreateParticipant inserts a new participant record
func (r *EventRepository) CreateParticipant(tx *gorm.DB, participant *models.EventParticipant) error {
	return tx.Create(participant).Error
}

// DeleteParticipant removes a participant record
func (r *EventRepository) DeleteParticipant(tx *gorm.DB, participantID uint) error {
	return tx.Delete(&models.EventParticipant{}, "id = ?", participantID).Error
}

// Promote flips a waitlisted participant to confirmed
func (r *EventRepository) Promote(tx *gorm.DB, participantID uint) error {
	return tx.Model(&models.EventParticipant{}).
		Where("id = ?", participantID).
		Update("is_reserve", false).Error
}

// SetAttendance writes the attended flag for a participant
func (r *EventRepository) SetAttendance(tx *gorm.DB, eventID, userID string, attended bool) error {
	return tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("attended", attended).Error
}

// ListParticipants returns all participants ordered confirmed-first,
// then by join time.
func (r *EventRepository) ListParticipants(eventID string) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	err := r.db.Preload("User").
		Where("event_id = ?", eventID).
		Order("is_reserve ASC, created_at ASC, id ASC").
		Find(&participants).Error
	return participants, err
}

// UpdateEventStatus persists a status transition
func (r *EventRepository) UpdateEventStatus(tx *gorm.DB, eventID string, status models.EventStatus) error {
	return tx.Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("status", status).Error
}

// CompleteElapsed flips every active event whose scheduled end has passed
// to completed. The guarded update is a no-op for rows already flipped,
// so the sweep is safe to run from multiple instances.
func (r *EventRepository) CompleteElapsed(now time.Time) (int64, error) {
	var events []models.Event
	err := r.db.Where("status = ?", models.EventStatusActive).
		Where("date_time <= ?", now).
		Find(&events).Error
	if err != nil {
		return 0, err
	}

	var flipped int64
	for _, event := range events {
		if event.EndsAt().After(now) {
			continue
		}
		result := r.db.Model(&models.Event{}).
			Where("id = ? AND status = ?", event.ID, models.EventStatusActive).
			Update("status", models.EventStatusCompleted)
		if result.Error != nil {
			return flipped, result.Error
		}
		flipped += result.RowsAffected
	}
	return flipped, nil
}
