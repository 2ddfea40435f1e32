package jobs

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"teamup-api/repositories"
	"teamup-api/services"
)

// EventCompletionJob periodically flips active events to completed once
// their scheduled end has passed. The transition is idempotent, so the
// sweep is safe to run from multiple instances.
type EventCompletionJob struct {
	db           *gorm.DB
	eventService *services.EventService
	ticker       *time.Ticker
	done         chan bool
}

// NewEventCompletionJob creates a new completion sweep job
func NewEventCompletionJob(db *gorm.DB, interval time.Duration) *EventCompletionJob {
	eventRepo := repositories.NewEventRepository(db)
	eventService := services.NewEventService(eventRepo, nil)

	return &EventCompletionJob{
		db:           db,
		eventService: eventService,
		ticker:       time.NewTicker(interval),
		done:         make(chan bool),
	}
}

// Start begins the sweep
func (j *EventCompletionJob) Start() {
	fmt.Println("Event completion job started")

	go func() {
		// Run immediately on start
		j.sweep()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.sweep()
			case <-j.done:
				fmt.Println("Event completion job stopped")
				return
			}
		}
	}()
}

// Stop stops the sweep
func (j *EventCompletionJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *EventCompletionJob) sweep() {
	flipped, err := j.eventService.CompleteElapsedEvents(time.Now())
	if err != nil {
		fmt.Printf("Error during event completion sweep: %v\n", err)
		return
	}

	if flipped > 0 {
		fmt.Printf("Event completion sweep marked %d event(s) completed\n", flipped)
	}
}
