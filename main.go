package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"exchange-core/src/config"
	"exchange-core/src/eventlog"
	"exchange-core/src/exchange"
	"exchange-core/src/handlers"
	"exchange-core/src/logger"
	"exchange-core/src/publisher"
	"exchange-core/src/routes"
)

func main() {
	configPath := os.Getenv("EXCHANGE_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.InitLogger(cfg)
	log := logger.GetLogger()

	log.Info().Msg("Initializing exchange core")

	store, err := eventlog.Open(cfg.EventLog.Dir)
	if err != nil {
		log.Fatal().
			Err(err).
			Str("dir", cfg.EventLog.Dir).
			Msg("Failed to open event log")
	}

	pub := publisher.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)

	service := exchange.NewService(store, pub)
	handler := handlers.NewExchangeHandler(service, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Error().
				Str("path", c.Path()).
				Str("method", c.Method()).
				Int("status", code).
				Str("error", err.Error()).
				Msg("Request error")

			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	routes.SetupRoutes(app, handler, cfg, service.Ready)

	// Recovery runs before the listener accepts trading requests; the
	// readiness middleware answers 503 until it completes.
	go func() {
		start := time.Now()
		if err := service.Recover(); err != nil {
			log.Fatal().
				Err(err).
				Msg("Failed to recover books from event log")
		}
		log.Info().
			Dur("took", time.Since(start)).
			Msg("Recovery complete, accepting requests")
	}()

	port := ":" + strconv.Itoa(cfg.Server.Port)

	serverError := make(chan error, 1)

	go func() {
		if err := app.Listen(port); err != nil {
			// edge case: ignore shutdown errors, only report real errors
			errStr := err.Error()
			if errStr != "server is shutting down" {
				serverError <- err
			}
		}
	}()

	select {
	case err := <-serverError:
		log.Fatal().
			Err(err).
			Str("port", port).
			Str("hint", "Port may be already in use. Try: EXCHANGE_PORT=3000 go run main.go").
			Msg("Server failed to start")
	default:
		log.Info().
			Str("port", port).
			Msg("Exchange core started")

		log.Info().
			Strs("endpoints", []string{
				"POST /api/v1/books",
				"GET  /api/v1/books/:bookId",
				"POST /api/v1/books/:bookId/orders",
				"POST /api/v1/books/:bookId/quotes",
				"GET  /health",
				"GET  /metrics",
			}).
			Msg("API endpoints registered")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info().Msg("Received shutdown signal, shutting down...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSec) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		// edge case: timeout during shutdown is acceptable
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn().
				Dur("timeout", shutdownTimeout).
				Msg("Timeout exceeded, shutting down...")
		} else {
			log.Error().
				Err(err).
				Msg("Error during shutdown")
		}
	} else {
		log.Info().Msg("Shutdown complete")
	}

	if err := pub.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event publisher")
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event log")
	}

	logger.CloseLogger()
}
