package main

import (
	"log"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/migrations"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/redis"
)

// Seeds the schema, default actors, and a demo menu catalog so a fresh
// environment can take orders immediately.
func main() {
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	menu := []models.MenuItem{
		{ID: "espresso", Name: "Espresso", Price: 350, Category: "drinks"},
		{ID: "flat-white", Name: "Flat White", Price: 520, Category: "drinks"},
		{ID: "margherita", Name: "Margherita Pizza", Price: 1450, Category: "mains"},
		{ID: "carbonara", Name: "Spaghetti Carbonara", Price: 1680, Category: "mains"},
		{ID: "caesar", Name: "Caesar Salad", Price: 1150, Category: "starters"},
		{ID: "tiramisu", Name: "Tiramisu", Price: 780, Category: "desserts"},
	}
	for _, item := range menu {
		if err := redisClient.SetMenuItem(&item); err != nil {
			log.Fatalf("Failed to seed menu item %s: %v", item.ID, err)
		}
	}

	log.Printf("Seeded %d menu items", len(menu))
	log.Println("Database initialized")
}
