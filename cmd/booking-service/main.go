package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"tur-booking/internal/auth"
	"tur-booking/internal/booking"
	booking_api "tur-booking/internal/booking/api"
	bookingdb "tur-booking/internal/booking/db"
	bookingkafka "tur-booking/internal/booking/kafka"
	rediswrap "tur-booking/internal/booking/redis"
	"tur-booking/internal/config"
	"tur-booking/internal/database/migrations"
	"tur-booking/internal/kafka"
	"tur-booking/internal/logger"
	"tur-booking/internal/tour"
	tour_api "tur-booking/internal/tour/api"
	tourdb "tur-booking/internal/tour/db"
)

func main() {
	_ = godotenv.Load() // Loads .env file if present

	ctx := context.Background()
	cfg := config.Load()
	appLogger := logger.NewLogger()
	defer appLogger.Close()

	// --- PostgreSQL Setup ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	appLogger.Info("DATABASE", "Postgres connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// Run migrations
	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: cfg.Database.MigrationsDir,
		AutoMigrate:   cfg.Database.AutoMigrate,
	})
	if err := runner.RunMigrations(); err != nil {
		appLogger.Warn("DATABASE", fmt.Sprintf("SQL migrations failed (%v), falling back to schema sync", err))
		if err := tourdb.Migrate(ctx, bunDB); err != nil {
			appLogger.Fatal("DATABASE", fmt.Sprintf("Schema sync failed: %v", err))
		}
		if err := bookingdb.Migrate(ctx, bunDB); err != nil {
			appLogger.Fatal("DATABASE", fmt.Sprintf("Schema sync failed: %v", err))
		}
	}

	// --- Redis Setup ---
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	appLogger.Info("REDIS", "Redis connection successful")

	// --- Kafka Setup ---
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		topics := []string{cfg.Kafka.Topics.BookingCreated, cfg.Kafka.Topics.BookingArchived}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			appLogger.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
	}
	producer := bookingkafka.NewProducer(cfg.Kafka)
	defer producer.Close()

	// --- Initialize Dependencies ---
	bookingStore := &bookingdb.DB{Bun: bunDB}
	tourStore := &tourdb.DB{Bun: bunDB}
	tourLock := rediswrap.NewRedis(redisClient, cfg.Redis.TourLockTTL)

	bookingService := booking.NewBookingService(bookingStore, tourStore, tourLock, producer, appLogger)
	tourService := tour.NewTourService(tourStore, bookingStore, appLogger)

	bookingHandler := &booking_api.Handler{BookingService: bookingService, Logger: appLogger}
	tourHandler := &tour_api.Handler{TourService: tourService, Logger: appLogger}

	adminOnly := auth.Middleware(cfg.Auth.OIDCIssuer, cfg.Auth.SecretKey)

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tours", func(r chi.Router) {
			r.Get("/", tourHandler.ListTours)
			r.Get("/{tourId}", tourHandler.GetTour)
			r.Get("/{tourId}/availability", tourHandler.GetAvailability)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/", tourHandler.CreateTour)
				r.Patch("/{tourId}", tourHandler.UpdateTour)
				r.Delete("/{tourId}", tourHandler.DeleteTour)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", bookingHandler.CreateBooking)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", bookingHandler.ListBookings)
				r.Get("/history", bookingHandler.ListHistory)
				r.Get("/history/{historyId}", bookingHandler.GetHistoryRecord)
				r.Get("/{bookingId}", bookingHandler.GetBooking)
				r.Delete("/{bookingId}", bookingHandler.DeleteBooking)
			})
		})
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("Booking service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("SERVER", "Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLogger.Fatal("SERVER", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLogger.Info("SERVER", "Server exited gracefully")
}
