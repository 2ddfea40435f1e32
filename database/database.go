package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"teamup-api/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Info),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	// Auto migrate all models
	err := db.AutoMigrate(
		&models.User{},
		&models.UserRole{},
		&models.Sport{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Ticket{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Waitlist head lookup: reserves of an event ordered by join time
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_participants_event_reserve_joined ON event_participants(event_id, is_reserve, created_at)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for event_participants: %v\n", err)
	}

	// Event browsing: upcoming active events
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_status_date ON events(status, date_time)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events: %v\n", err)
	}

	// Organizer's own events
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_creator_created ON events(creator_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for events creator: %v\n", err)
	}

	// Admin ticket queue
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_tickets_status_created ON tickets(status, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for tickets: %v\n", err)
	}

	// Attendance history per user for reliability scoring
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_participants_user_attended ON event_participants(user_id, attended)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for participant attendance: %v\n", err)
	}

	return nil
}

// SeedData populates the sports catalog used by the event creation flow.
func SeedData(db *gorm.DB) error {
	var sportCount int64
	db.Model(&models.Sport{}).Count(&sportCount)

	if sportCount > 0 {
		fmt.Println("Database already has sports, skipping seed")
		return nil
	}

	icon := func(name string) *string { return &name }

	sports := []models.Sport{
		{ID: uuid.New().String(), Name: "Odbojka", Slug: "odbojka", IconName: icon("zap")},
		{ID: uuid.New().String(), Name: "Nogomet", Slug: "nogomet", IconName: icon("dribbble")},
		{ID: uuid.New().String(), Name: "Padel", Slug: "padel", IconName: icon("target")},
		{ID: uuid.New().String(), Name: "Tenis", Slug: "tenis", IconName: icon("gamepad-2")},
	}

	for _, sport := range sports {
		if err := db.Create(&sport).Error; err != nil {
			fmt.Printf("Warning: Could not seed sport %s: %v\n", sport.Slug, err)
		}
	}

	fmt.Println("Database seeded with sports catalog")
	return nil
}
