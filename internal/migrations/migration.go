package migrations

import (
	"log"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"gorm.io/gorm"
)

// RunMigrations creates the schema and the default actors.
func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.Actor{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.IdempotencyRecord{},
		&models.AuditEvent{},
	)
	if err != nil {
		return err
	}

	if err := createDefaultActors(db); err != nil {
		log.Printf("Warning: Failed to create default actors: %v", err)
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultActors seeds one actor per access level so a fresh install
// can exercise every transition.
func createDefaultActors(db *gorm.DB) error {
	actorRepo := repository.NewActorRepository(db)
	actorService := services.NewActorService(actorRepo)

	existing, err := actorRepo.GetByID(1)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Println("Default actors already exist")
		return nil
	}

	defaults := []struct {
		name  string
		level int
		pin   string
	}{
		{"Default Waiter", models.LevelWaiter, "1111"},
		{"Default Shift Lead", models.LevelShiftLead, "2222"},
		{"Default Manager", models.LevelManager, "3333"},
		{"Default Owner", models.LevelOwnerAdmin, "4444"},
	}
	for _, d := range defaults {
		if _, err := actorService.CreateActor(d.name, 1, d.level, d.pin); err != nil {
			log.Printf("Warning: Failed to create actor %s: %v", d.name, err)
		}
	}
	log.Println("Default actors created")
	return nil
}
