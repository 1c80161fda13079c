package main

import (
	"context"
	"log"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/handlers"
	"restaurant_pos/internal/migrations"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis (kitchen readiness board + menu catalog)
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize repositories
	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewOrderItemRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	actorRepo := repository.NewActorRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	actorService := services.NewActorService(actorRepo)
	paymentProvider := services.NewRepoPaymentProvider(paymentRepo)
	stateMachine := services.NewStateMachine(orderRepo, itemRepo, auditRepo, redisClient, paymentProvider)
	orderService := services.NewOrderService(orderRepo, itemRepo, paymentRepo, auditRepo, redisClient, redisClient, int64(cfg.TaxRateBps))
	guard := services.NewIdempotencyGuard(idempotencyRepo)

	// Background sweep for expired idempotency records
	guard.StartSweeper(context.Background(), time.Duration(cfg.IdempotencySweepMin)*time.Minute)

	// Initialize handlers
	orderHandler := handlers.NewOrderHandler(orderService, stateMachine)

	// Setup routes
	router := gin.Default()

	api := router.Group("/api")
	api.Use(handlers.ActorMiddleware(actorService))
	{
		api.GET("/menu", orderHandler.GetMenu)
		api.GET("/orders", orderHandler.ListOpenOrders)
		api.GET("/orders/:id", orderHandler.GetOrder)
		api.GET("/orders/:id/audit", orderHandler.GetAuditTrail)

		// Mutating routes honor the Idempotency-Key header contract
		mutating := api.Group("")
		mutating.Use(handlers.IdempotencyMiddleware(guard))
		{
			mutating.POST("/orders", orderHandler.CreateOrder)
			mutating.POST("/orders/:id/items", orderHandler.AddItem)
			mutating.POST("/orders/:id/items/:item_id/ready", orderHandler.MarkItemReady)
			mutating.POST("/orders/:id/items/:item_id/void", orderHandler.VoidItem)
			mutating.POST("/orders/:id/payments", orderHandler.RecordPayment)
			mutating.POST("/orders/:id/send", orderHandler.SendToKitchen)
			mutating.POST("/orders/:id/ready", orderHandler.MarkReady)
			mutating.POST("/orders/:id/served", orderHandler.MarkServed)
			mutating.POST("/orders/:id/close", orderHandler.CloseOrder)
			mutating.POST("/orders/:id/void", orderHandler.VoidOrder)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
