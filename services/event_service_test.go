package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teamup-api/apperrors"
	"teamup-api/models"
	"teamup-api/repositories"
)

func newTestService(t *testing.T) (*EventService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Sport{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Ticket{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	repo := repositories.NewEventRepository(db)
	return NewEventService(repo, nil), db
}

func createTestUser(t *testing.T, db *gorm.DB, nickname string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		FullName:     "Test " + nickname,
		Nickname:     nickname,
		PasswordHash: "$2a$10$dummy",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", nickname, err)
	}
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, creatorID string, capacity int, status models.EventStatus, start time.Time) *models.Event {
	t.Helper()

	event := &models.Event{
		ID:                  uuid.New().String(),
		Title:               "Odbojka u parku",
		SportType:           "odbojka",
		DateTime:            start,
		DurationMinutes:     90,
		Location:            "Jarun",
		MaxParticipants:     capacity,
		Status:              status,
		CreatorID:           creatorID,
		CancelDeadlineHours: 2,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}
	return event
}

func addParticipant(t *testing.T, db *gorm.DB, eventID, userID string, isReserve bool, joinedAt time.Time) *models.EventParticipant {
	t.Helper()

	participant := &models.EventParticipant{
		EventID:   eventID,
		UserID:    userID,
		IsReserve: isReserve,
		CreatedAt: joinedAt,
	}
	if err := db.Create(participant).Error; err != nil {
		t.Fatalf("Failed to create test participant: %v", err)
	}
	return participant
}

func countConfirmed(t *testing.T, db *gorm.DB, eventID string) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.EventParticipant{}).
		Where("event_id = ? AND is_reserve = ?", eventID, false).
		Count(&count).Error; err != nil {
		t.Fatalf("Failed to count confirmed participants: %v", err)
	}
	return count
}

func TestSignUp(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	start := time.Now().Add(48 * time.Hour)

	t.Run("Confirmed while capacity remains", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, start)
		userA := createTestUser(t, db, "ana")

		result, err := service.SignUp(event.ID, userA.ID)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.IsReserve {
			t.Error("Expected confirmed slot, got reserve")
		}
		if result.Position != 1 {
			t.Errorf("Expected position 1, got %d", result.Position)
		}
	})

	t.Run("Reserve once capacity is full", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, start)
		userA := createTestUser(t, db, "petar")
		userB := createTestUser(t, db, "marija")
		userC := createTestUser(t, db, "josip")

		for _, user := range []*models.User{userA, userB} {
			result, err := service.SignUp(event.ID, user.ID)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if result.IsReserve {
				t.Errorf("Expected confirmed slot for %s", user.Nickname)
			}
		}

		result, err := service.SignUp(event.ID, userC.ID)
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if !result.IsReserve {
			t.Error("Expected reserve slot once capacity is full")
		}
		if result.Position != 1 {
			t.Errorf("Expected waitlist position 1, got %d", result.Position)
		}

		if got := countConfirmed(t, db, event.ID); got != 2 {
			t.Errorf("Expected 2 confirmed participants, got %d", got)
		}
	})

	t.Run("Duplicate signup rejected", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, start)
		user := createTestUser(t, db, "iva")

		if _, err := service.SignUp(event.ID, user.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		_, err := service.SignUp(event.ID, user.ID)
		if apperrors.KindOf(err) != apperrors.KindAlreadyJoined {
			t.Errorf("Expected already_joined, got: %v", err)
		}
	})

	t.Run("Unknown event", func(t *testing.T) {
		user := createTestUser(t, db, "luka")

		_, err := service.SignUp(uuid.New().String(), user.ID)
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			t.Errorf("Expected not_found, got: %v", err)
		}
	})

	t.Run("Draft event rejects signups", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusDraft, start)
		user := createTestUser(t, db, "nina")

		_, err := service.SignUp(event.ID, user.ID)
		if apperrors.KindOf(err) != apperrors.KindInvalidState {
			t.Errorf("Expected invalid_state, got: %v", err)
		}
	})
}

func TestWithdraw(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	start := time.Now().Add(48 * time.Hour)

	t.Run("Withdrawing confirmed promotes waitlist head", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, start)
		userA := createTestUser(t, db, "a_ana")
		userB := createTestUser(t, db, "b_petar")
		userC := createTestUser(t, db, "c_marija")

		base := time.Now().Add(-time.Hour)
		addParticipant(t, db, event.ID, userA.ID, false, base)
		addParticipant(t, db, event.ID, userB.ID, false, base.Add(time.Minute))
		addParticipant(t, db, event.ID, userC.ID, true, base.Add(2*time.Minute))

		if err := service.Withdraw(event.ID, userA.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var promoted models.EventParticipant
		if err := db.Where("event_id = ? AND user_id = ?", event.ID, userC.ID).First(&promoted).Error; err != nil {
			t.Fatalf("Expected participant record for promoted user: %v", err)
		}
		if promoted.IsReserve {
			t.Error("Expected waitlist head to be promoted to confirmed")
		}

		if got := countConfirmed(t, db, event.ID); got != 2 {
			t.Errorf("Expected confirmed set {B, C} of size 2, got %d", got)
		}
	})

	t.Run("Promotion follows join order", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 1, models.EventStatusActive, start)
		confirmed := createTestUser(t, db, "confirmed_user")
		early := createTestUser(t, db, "early_reserve")
		late := createTestUser(t, db, "late_reserve")

		base := time.Now().Add(-time.Hour)
		addParticipant(t, db, event.ID, confirmed.ID, false, base)
		addParticipant(t, db, event.ID, late.ID, true, base.Add(10*time.Minute))
		addParticipant(t, db, event.ID, early.ID, true, base.Add(5*time.Minute))

		if err := service.Withdraw(event.ID, confirmed.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var promoted models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, early.ID).First(&promoted)
		if promoted.IsReserve {
			t.Error("Expected the earliest-joined reserve to be promoted")
		}

		var stillReserve models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, late.ID).First(&stillReserve)
		if !stillReserve.IsReserve {
			t.Error("Expected the later reserve to stay on the waitlist")
		}
	})

	t.Run("Withdrawing a reserve does not promote", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 1, models.EventStatusActive, start)
		confirmed := createTestUser(t, db, "solo_confirmed")
		reserveA := createTestUser(t, db, "reserve_a")
		reserveB := createTestUser(t, db, "reserve_b")

		base := time.Now().Add(-time.Hour)
		addParticipant(t, db, event.ID, confirmed.ID, false, base)
		addParticipant(t, db, event.ID, reserveA.ID, true, base.Add(time.Minute))
		addParticipant(t, db, event.ID, reserveB.ID, true, base.Add(2*time.Minute))

		if err := service.Withdraw(event.ID, reserveA.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var other models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, reserveB.ID).First(&other)
		if !other.IsReserve {
			t.Error("Expected remaining reserve to stay on the waitlist")
		}
	})

	t.Run("Unknown participant", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, start)
		user := createTestUser(t, db, "outsider")

		err := service.Withdraw(event.ID, user.ID)
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			t.Errorf("Expected not_found, got: %v", err)
		}
	})
}

func TestCancelSignup(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	user := createTestUser(t, db, "player")

	t.Run("Allowed before the deadline", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, time.Now().Add(48*time.Hour))
		addParticipant(t, db, event.ID, user.ID, false, time.Now())

		// 48h to start, 2h deadline: well outside the window
		if err := service.CancelSignup(event.ID, user.ID, time.Now()); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	})

	t.Run("Rejected inside the deadline window", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, time.Now().Add(time.Hour))
		addParticipant(t, db, event.ID, user.ID, false, time.Now())

		err := service.CancelSignup(event.ID, user.ID, time.Now())
		if apperrors.KindOf(err) != apperrors.KindDeadlinePassed {
			t.Errorf("Expected deadline_passed, got: %v", err)
		}

		// The signup must survive the rejected withdrawal
		var participant models.EventParticipant
		if err := db.Where("event_id = ? AND user_id = ?", event.ID, user.ID).First(&participant).Error; err != nil {
			t.Errorf("Expected signup to remain, got: %v", err)
		}
	})
}

func TestRecordAttendance(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	coOrganizer := createTestUser(t, db, "co_organizer")
	playerA := createTestUser(t, db, "player_a")
	playerB := createTestUser(t, db, "player_b")

	newEndedEvent := func(t *testing.T) *models.Event {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusCompleted, time.Now().Add(-3*time.Hour))
		db.Model(event).Update("co_organizer_ids", models.StringSlice{coOrganizer.ID})
		event.CoOrganizerIDs = models.StringSlice{coOrganizer.ID}
		addParticipant(t, db, event.ID, playerA.ID, false, time.Now().Add(-4*time.Hour))
		addParticipant(t, db, event.ID, playerB.ID, false, time.Now().Add(-4*time.Hour))
		return event
	}

	t.Run("Only organizers may record", func(t *testing.T) {
		event := newEndedEvent(t)

		err := service.RecordAttendance(event.ID, playerA.ID, map[string]bool{playerB.ID: true})
		if apperrors.KindOf(err) != apperrors.KindForbidden {
			t.Errorf("Expected forbidden, got: %v", err)
		}
	})

	t.Run("Rejected before the event ends", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, time.Now().Add(time.Hour))
		addParticipant(t, db, event.ID, playerA.ID, false, time.Now())

		err := service.RecordAttendance(event.ID, organizer.ID, map[string]bool{playerA.ID: true})
		if apperrors.KindOf(err) != apperrors.KindInvalidState {
			t.Errorf("Expected invalid_state, got: %v", err)
		}
	})

	t.Run("Records and becomes idempotent", func(t *testing.T) {
		event := newEndedEvent(t)
		attendance := map[string]bool{
			playerA.ID: true,
			playerB.ID: false,
		}

		if err := service.RecordAttendance(event.ID, organizer.ID, attendance); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var participantA models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, playerA.ID).First(&participantA)
		if participantA.Attended == nil || !*participantA.Attended {
			t.Error("Expected attended=true for player A")
		}

		var participantB models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, playerB.ID).First(&participantB)
		if participantB.Attended == nil || *participantB.Attended {
			t.Error("Expected attended=false for player B")
		}

		err := service.RecordAttendance(event.ID, organizer.ID, attendance)
		if apperrors.KindOf(err) != apperrors.KindAlreadyRecorded {
			t.Errorf("Expected already_recorded on second call, got: %v", err)
		}
	})

	t.Run("Co-organizer may record", func(t *testing.T) {
		event := newEndedEvent(t)

		err := service.RecordAttendance(event.ID, coOrganizer.ID, map[string]bool{playerA.ID: true})
		if err != nil {
			t.Errorf("Expected co-organizer to record attendance, got: %v", err)
		}
	})

	t.Run("Reopen allows a corrected submission", func(t *testing.T) {
		event := newEndedEvent(t)

		if err := service.RecordAttendance(event.ID, organizer.ID, map[string]bool{playerA.ID: false}); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		if err := service.ReopenAttendance(event.ID); err != nil {
			t.Fatalf("Expected reopen to succeed, got: %v", err)
		}

		if err := service.RecordAttendance(event.ID, organizer.ID, map[string]bool{playerA.ID: true}); err != nil {
			t.Fatalf("Expected corrected submission to succeed, got: %v", err)
		}

		var participant models.EventParticipant
		db.Where("event_id = ? AND user_id = ?", event.ID, playerA.ID).First(&participant)
		if participant.Attended == nil || !*participant.Attended {
			t.Error("Expected corrected attendance to be stored")
		}
	})

	t.Run("Unknown participant in the map", func(t *testing.T) {
		event := newEndedEvent(t)

		err := service.RecordAttendance(event.ID, organizer.ID, map[string]bool{uuid.New().String(): true})
		if apperrors.KindOf(err) != apperrors.KindNotFound {
			t.Errorf("Expected not_found, got: %v", err)
		}
	})
}

func TestStatusTransitions(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	outsider := createTestUser(t, db, "outsider")
	start := time.Now().Add(48 * time.Hour)

	t.Run("Publish opens a draft", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusDraft, start)

		if err := service.Publish(event.ID, organizer.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var updated models.Event
		db.First(&updated, "id = ?", event.ID)
		if updated.Status != models.EventStatusActive {
			t.Errorf("Expected active, got %s", updated.Status)
		}
	})

	t.Run("Only the organizer may transition", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusDraft, start)

		err := service.Publish(event.ID, outsider.ID)
		if apperrors.KindOf(err) != apperrors.KindForbidden {
			t.Errorf("Expected forbidden, got: %v", err)
		}
	})

	t.Run("Terminal states stay terminal", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusCompleted, start)

		err := service.CancelEvent(event.ID, organizer.ID)
		if apperrors.KindOf(err) != apperrors.KindInvalidState {
			t.Errorf("Expected invalid_state, got: %v", err)
		}
	})

	t.Run("Active events can be cancelled", func(t *testing.T) {
		event := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, start)

		if err := service.CancelEvent(event.ID, organizer.ID); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}

		var updated models.Event
		db.First(&updated, "id = ?", event.ID)
		if updated.Status != models.EventStatusCancelled {
			t.Errorf("Expected cancelled, got %s", updated.Status)
		}
	})
}

func TestConcurrentWithdrawals(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	start := time.Now().Add(48 * time.Hour)

	const confirmedCount = 6
	event := createTestEvent(t, db, organizer.ID, confirmedCount, models.EventStatusActive, start)

	base := time.Now().Add(-time.Hour)
	confirmedIDs := make([]string, 0, confirmedCount)
	for i := 0; i < confirmedCount; i++ {
		user := createTestUser(t, db, fmt.Sprintf("confirmed_%d", i))
		addParticipant(t, db, event.ID, user.ID, false, base.Add(time.Duration(i)*time.Minute))
		confirmedIDs = append(confirmedIDs, user.ID)
	}
	reserve := createTestUser(t, db, "lone_reserve")
	addParticipant(t, db, event.ID, reserve.ID, true, base.Add(time.Hour))

	var wg sync.WaitGroup
	errs := make([]error, confirmedCount)
	for i, userID := range confirmedIDs {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			errs[i] = service.Withdraw(event.ID, userID)
		}(i, userID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Withdrawal %d failed: %v", i, err)
		}
	}

	// Exactly one promotion: the lone reserve is confirmed and nothing
	// else remains.
	var remaining []models.EventParticipant
	db.Where("event_id = ?", event.ID).Find(&remaining)
	if len(remaining) != 1 {
		t.Fatalf("Expected 1 remaining participant, got %d", len(remaining))
	}
	if remaining[0].UserID != reserve.ID {
		t.Errorf("Expected remaining participant to be the reserve, got %s", remaining[0].UserID)
	}
	if remaining[0].IsReserve {
		t.Error("Expected the reserve to be promoted exactly once")
	}
}

func TestConcurrentSignups(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	event := createTestEvent(t, db, organizer.ID, 2, models.EventStatusActive, time.Now().Add(48*time.Hour))

	const signups = 6
	users := make([]*models.User, signups)
	for i := range users {
		users[i] = createTestUser(t, db, fmt.Sprintf("racer_%d", i))
	}

	var wg sync.WaitGroup
	results := make([]*models.SignupResult, signups)
	errs := make([]error, signups)
	for i, user := range users {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			results[i], errs[i] = service.SignUp(event.ID, userID)
		}(i, user.ID)
	}
	wg.Wait()

	confirmed := 0
	reserves := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Signup %d failed: %v", i, errs[i])
		}
		if results[i].IsReserve {
			reserves++
		} else {
			confirmed++
		}
	}

	if confirmed != 2 {
		t.Errorf("Expected exactly 2 confirmed signups, got %d", confirmed)
	}
	if reserves != signups-2 {
		t.Errorf("Expected %d reserves, got %d", signups-2, reserves)
	}
	if got := countConfirmed(t, db, event.ID); got != 2 {
		t.Errorf("Confirmed count exceeds capacity: %d", got)
	}
}

func TestCompleteElapsedEvents(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")
	now := time.Now()

	ended := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, now.Add(-3*time.Hour))
	running := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, now.Add(-30*time.Minute))
	upcoming := createTestEvent(t, db, organizer.ID, 4, models.EventStatusActive, now.Add(3*time.Hour))
	draft := createTestEvent(t, db, organizer.ID, 4, models.EventStatusDraft, now.Add(-3*time.Hour))

	flipped, err := service.CompleteElapsedEvents(now)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if flipped != 1 {
		t.Errorf("Expected 1 flipped event, got %d", flipped)
	}

	expectStatus := func(id string, want models.EventStatus) {
		var event models.Event
		db.First(&event, "id = ?", id)
		if event.Status != want {
			t.Errorf("Event %s: expected %s, got %s", id, want, event.Status)
		}
	}
	expectStatus(ended.ID, models.EventStatusCompleted)
	expectStatus(running.ID, models.EventStatusActive)
	expectStatus(upcoming.ID, models.EventStatusActive)
	expectStatus(draft.ID, models.EventStatusDraft)

	// Idempotent: a second sweep is a no-op
	flipped, err = service.CompleteElapsedEvents(now)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if flipped != 0 {
		t.Errorf("Expected idempotent sweep, got %d flips", flipped)
	}
}

func TestCreateEvent(t *testing.T) {
	service, db := newTestService(t)

	organizer := createTestUser(t, db, "organizer")

	t.Run("Creator becomes the first confirmed participant", func(t *testing.T) {
		event := &models.Event{
			Title:               "Nogomet petkom",
			SportType:           "nogomet",
			DateTime:            time.Now().Add(24 * time.Hour),
			DurationMinutes:     60,
			Location:            "Sava",
			MaxParticipants:     10,
			CreatorID:           organizer.ID,
			CancelDeadlineHours: 2,
		}

		if err := service.CreateEvent(event); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if event.Status != models.EventStatusDraft {
			t.Errorf("Expected new events to start as draft, got %s", event.Status)
		}
		if got := countConfirmed(t, db, event.ID); got != 1 {
			t.Errorf("Expected creator signed up, confirmed count %d", got)
		}
	})

	t.Run("Capacity below one is rejected", func(t *testing.T) {
		event := &models.Event{
			Title:           "Prazan termin",
			SportType:       "tenis",
			DateTime:        time.Now().Add(24 * time.Hour),
			DurationMinutes: 60,
			Location:        "Maksimir",
			MaxParticipants: 0,
			CreatorID:       organizer.ID,
		}

		err := service.CreateEvent(event)
		if apperrors.KindOf(err) != apperrors.KindValidation {
			t.Errorf("Expected validation error, got: %v", err)
		}
	})
}
