package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"teamup-api/apperrors"
	"teamup-api/models"
	"teamup-api/repositories"
)

// EventService owns the event lifecycle: admission, waitlist promotion,
// withdrawal deadlines, status transitions and attendance recording.
type EventService struct {
	repo         *repositories.EventRepository
	emailService *EmailService

	// Per-event admission locks. Each event's signup/withdraw/promote
	// path is an independent serialization domain; reads never take
	// these locks.
	mutex      sync.Mutex
	eventLocks map[string]*sync.Mutex
}

func NewEventService(repo *repositories.EventRepository, emailService *EmailService) *EventService {
	return &EventService{
		repo:         repo,
		emailService: emailService,
		eventLocks:   make(map[string]*sync.Mutex),
	}
}

func (s *EventService) lockEvent(eventID string) *sync.Mutex {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	lock, exists := s.eventLocks[eventID]
	if !exists {
		lock = &sync.Mutex{}
		s.eventLocks[eventID] = lock
	}
	return lock
}

// SignUp admits a user to an active event. While confirmed slots remain
// the participant is confirmed; afterwards they join the reserve queue
// ordered by join time.
func (s *EventService) SignUp(eventID, userID string) (*models.SignupResult, error) {
	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	var result *models.SignupResult
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.GetEventForUpdate(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Event not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
		}

		if event.Status != models.EventStatusActive {
			return apperrors.Newf(apperrors.KindInvalidState, "Cannot sign up for a %s event", event.Status)
		}

		if _, err := s.repo.GetParticipant(tx, eventID, userID); err == nil {
			return apperrors.New(apperrors.KindAlreadyJoined, "Already signed up for this event")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to check existing signup", err)
		}

		confirmed, err := s.repo.CountConfirmed(tx, eventID)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to count participants", err)
		}

		isReserve := confirmed >= int64(event.MaxParticipants)

		participant := &models.EventParticipant{
			EventID:   eventID,
			UserID:    userID,
			IsReserve: isReserve,
		}
		if err := s.repo.CreateParticipant(tx, participant); err != nil {
			return apperrors.Wrap(apperrors.KindConflict, "Signup collided, please retry", err)
		}

		position := int(confirmed) + 1
		if isReserve {
			reserve, err := s.repo.CountReserve(tx, eventID)
			if err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "Failed to count waitlist", err)
			}
			position = int(reserve)
		}

		result = &models.SignupResult{
			EventID:   eventID,
			UserID:    userID,
			IsReserve: isReserve,
			Position:  position,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Withdraw removes a user's signup. When a confirmed participant leaves
// an active event, the earliest-joined reserve is promoted in the same
// transaction so the vacated slot is backfilled exactly once.
func (s *EventService) Withdraw(eventID, userID string) error {
	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	var promoted *models.EventParticipant
	err := s.repo.DB().Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.GetEventForUpdate(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Event not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
		}

		participant, err := s.repo.GetParticipant(tx, eventID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Not a participant of this event")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load participant", err)
		}

		if err := s.repo.DeleteParticipant(tx, participant.ID); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to withdraw", err)
		}

		// Only a vacated confirmed slot on an active event triggers
		// promotion from the waitlist head.
		if participant.IsReserve || event.Status != models.EventStatusActive {
			return nil
		}

		head, err := s.repo.FirstReserve(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to read waitlist", err)
		}

		if err := s.repo.Promote(tx, head.ID); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to promote from waitlist", err)
		}
		promoted = head
		return nil
	})
	if err != nil {
		return err
	}

	if promoted != nil {
		s.notifyPromotion(eventID, promoted.UserID)
	}
	return nil
}

// CancelSignup behaves as Withdraw but rejects withdrawals inside the
// event's cancellation-deadline window.
func (s *EventService) CancelSignup(eventID, userID string, now time.Time) error {
	event, err := s.repo.GetEvent(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.New(apperrors.KindNotFound, "Event not found")
		}
		return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
	}

	if event.Status == models.EventStatusActive && !now.Before(event.CancelDeadline()) {
		return apperrors.Newf(apperrors.KindDeadlinePassed,
			"Withdrawal closed %d hours before start", event.CancelDeadlineHours)
	}

	return s.Withdraw(eventID, userID)
}

// RecordAttendance writes the attended flag for the listed participants.
// Only the creator or a co-organizer may record, only after the event's
// scheduled end, and only once unless an admin reopens it.
func (s *EventService) RecordAttendance(eventID, organizerID string, attendance map[string]bool) error {
	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.GetEventForUpdate(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Event not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
		}

		if !event.IsOrganizer(organizerID) {
			return apperrors.New(apperrors.KindForbidden, "Only the organizer can record attendance")
		}

		if event.Status == models.EventStatusCancelled || event.Status == models.EventStatusDraft {
			return apperrors.Newf(apperrors.KindInvalidState, "Cannot record attendance for a %s event", event.Status)
		}

		if time.Now().Before(event.EndsAt()) {
			return apperrors.New(apperrors.KindInvalidState, "Event has not ended yet")
		}

		if event.AttendanceRecorded {
			return apperrors.New(apperrors.KindAlreadyRecorded, "Attendance already recorded for this event")
		}

		for userID, attended := range attendance {
			if _, err := s.repo.GetParticipant(tx, eventID, userID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.Newf(apperrors.KindNotFound, "User %s is not a participant", userID)
				}
				return apperrors.Wrap(apperrors.KindInternal, "Failed to load participant", err)
			}
			if err := s.repo.SetAttendance(tx, eventID, userID, attended); err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "Failed to record attendance", err)
			}
		}

		err = tx.Model(&models.Event{}).
			Where("id = ?", eventID).
			Update("attendance_recorded", true).Error
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to mark attendance recorded", err)
		}
		return nil
	})
}

// ReopenAttendance clears the recorded flag so an organizer can submit a
// corrected attendance map. Admin-only, enforced by the caller.
func (s *EventService) ReopenAttendance(eventID string) error {
	result := s.repo.DB().Model(&models.Event{}).
		Where("id = ? AND attendance_recorded = ?", eventID, true).
		Update("attendance_recorded", false)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, "Failed to reopen attendance", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.KindInvalidState, "Attendance is not recorded for this event")
	}
	return nil
}

// Publish moves a draft event to active, opening signups.
func (s *EventService) Publish(eventID, userID string) error {
	return s.transition(eventID, userID, models.EventStatusActive)
}

// CancelEvent moves a draft or active event to cancelled and notifies
// the confirmed participants.
func (s *EventService) CancelEvent(eventID, userID string) error {
	if err := s.transition(eventID, userID, models.EventStatusCancelled); err != nil {
		return err
	}
	s.notifyCancellation(eventID)
	return nil
}

func (s *EventService) transition(eventID, userID string, next models.EventStatus) error {
	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.GetEventForUpdate(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Event not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
		}

		if !event.IsOrganizer(userID) {
			return apperrors.New(apperrors.KindForbidden, "Only the organizer can change event status")
		}

		if !event.Status.CanTransitionTo(next) {
			return apperrors.Newf(apperrors.KindInvalidState, "Cannot move a %s event to %s", event.Status, next)
		}

		if err := s.repo.UpdateEventStatus(tx, eventID, next); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to update event status", err)
		}
		return nil
	})
}

// CompleteElapsedEvents flips active events whose scheduled end has
// passed. Run periodically by the completion job.
func (s *EventService) CompleteElapsedEvents(now time.Time) (int64, error) {
	return s.repo.CompleteElapsed(now)
}

// CreateEvent persists a new draft event for the creator. The creator is
// signed up as the first confirmed participant.
func (s *EventService) CreateEvent(event *models.Event) error {
	if event.MaxParticipants < 1 {
		return apperrors.New(apperrors.KindValidation, "Capacity must be at least 1")
	}
	if event.CancelDeadlineHours < 0 {
		return apperrors.New(apperrors.KindValidation, "Cancellation deadline cannot be negative")
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.Status = models.EventStatusDraft

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to create event", err)
		}
		participant := &models.EventParticipant{
			EventID: event.ID,
			UserID:  event.CreatorID,
		}
		if err := s.repo.CreateParticipant(tx, participant); err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to add creator as participant", err)
		}
		return nil
	})
}

// DeleteEvent removes an event and its participant list.
func (s *EventService) DeleteEvent(eventID, userID string) error {
	lock := s.lockEvent(eventID)
	lock.Lock()
	defer lock.Unlock()

	return s.repo.DB().Transaction(func(tx *gorm.DB) error {
		event, err := s.repo.GetEventForUpdate(tx, eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.KindNotFound, "Event not found")
			}
			return apperrors.Wrap(apperrors.KindInternal, "Failed to load event", err)
		}

		if event.CreatorID != userID {
			return apperrors.New(apperrors.KindForbidden, "Only the creator can delete an event")
		}

		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventParticipant{}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to delete participants", err)
		}
		if err := tx.Delete(&models.Event{}, "id = ?", eventID).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "Failed to delete event", err)
		}
		return nil
	})
}

func (s *EventService) notifyPromotion(eventID, userID string) {
	if s.emailService == nil {
		return
	}

	event, err := s.repo.GetEvent(eventID)
	if err != nil {
		return
	}

	var user models.User
	if err := s.repo.DB().First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	if user.Email == nil {
		return
	}

	go func() {
		if err := s.emailService.SendPromotionEmail(*user.Email, user.FullName, event.Title, event.DateTime); err != nil {
			fmt.Printf("Failed to send promotion email: %v\n", err)
		}
	}()
}

func (s *EventService) notifyCancellation(eventID string) {
	if s.emailService == nil {
		return
	}

	event, err := s.repo.GetEvent(eventID)
	if err != nil {
		return
	}

	participants, err := s.repo.ListParticipants(eventID)
	if err != nil {
		return
	}

	for _, participant := range participants {
		if participant.User.Email == nil {
			continue
		}
		email := *participant.User.Email
		name := participant.User.FullName
		go func() {
			if err := s.emailService.SendEventCancelledEmail(email, name, event.Title, event.DateTime); err != nil {
				fmt.Printf("Failed to send cancellation email: %v\n", err)
			}
		}()
	}
}
