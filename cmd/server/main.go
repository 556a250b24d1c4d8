package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/tax-e/taxe-admin/internal/config"
	"github.com/tax-e/taxe-admin/internal/database"
	"github.com/tax-e/taxe-admin/internal/handlers"
	"github.com/tax-e/taxe-admin/internal/middleware"
	"github.com/tax-e/taxe-admin/internal/routes"
	"github.com/tax-e/taxe-admin/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL (admin accounts + lifecycle audit log)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting, stats cache)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (users, receipts, payments, chat history)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := services.EnsureChatIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB chat indexes: %v", err)
	}

	// Cloudinary is optional; without it receipt image uploads are disabled
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Receipt image uploads will not be available")
	}

	// Assistant relay is optional; without it /chat answers 503
	handlers.InitAssistantService(cfg.AssistantURL, cfg.AssistantAPIKey)
	if cfg.AssistantURL == "" {
		log.Println("Warning: ASSISTANT_URL not set. Admin chat assistant will not be available")
	}

	// Accounts whose deletion grace period has elapsed are removed hourly
	handlers.DeletionGraceDays = cfg.DeletionGraceDays
	services.StartDeletionReaper(1*time.Hour, cfg.DeletionGraceDays)
	log.Printf("✅ Deletion reaper started (grace period: %d days)", cfg.DeletionGraceDays)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.RateLimit("api", 120, time.Minute))
		log.Println("✅ Production rate limiting enabled")
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r)

	log.Printf("🚀 Tax-e admin API running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
