package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/skycast-dev/skycast/internal/api/http"
	"github.com/skycast-dev/skycast/internal/config"
	"github.com/skycast-dev/skycast/internal/forecast"
	"github.com/skycast-dev/skycast/internal/scheduler"
	"github.com/skycast-dev/skycast/internal/store"
	"github.com/skycast-dev/skycast/internal/weather"
	"github.com/skycast-dev/skycast/internal/weather/providers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory observation history with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Open-Meteo collaborators with resilience (backoff + circuit breaker).
	current := providers.NewOpenMeteoProvider(httpClient)
	historical := providers.NewArchiveProvider(httpClient)
	geo := providers.NewGeocodeProvider(httpClient)
	ip := providers.NewIPLocateProvider(httpClient)

	// Core service orchestrating providers, cache and the forecast engine.
	service := weather.NewService(memStore, forecast.NewEngine(), current, historical, geo, ip, weather.ServiceConfig{
		LookbackDays: cfg.LookbackDays,
		GeocodeTTL:   cfg.GeocodeTTL,
		CurrentTTL:   cfg.CurrentTTL,
		HistoryTTL:   cfg.HistoryTTL,
	})

	// Scheduler that periodically refreshes tracked locations.
	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, cfg.DefaultUnit, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skycast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skycast",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.DefaultUnit)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
