package routes

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"

	"exchange-core/src/config"
	"exchange-core/src/handlers"
	"exchange-core/src/middleware"
)

func SetupRoutes(app *fiber.App, handler *handlers.ExchangeHandler, cfg *config.Config, ready func() bool) {
	rateLimitDisabled := os.Getenv("RATE_LIMIT_DISABLED") == "1"

	app.Use(middleware.Readiness(ready))
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	if !rateLimitDisabled {
		window := time.Duration(cfg.RateLimit.ExpirationSeconds) * time.Second
		rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Max, window)
		api.Use(rateLimiter.Middleware())
	}

	api.Post("/books", handler.CreateBooks)
	api.Get("/books/:bookId", handler.GetOrderBook)
	api.Post("/books/:bookId/orders", handler.PlaceOrder)
	api.Post("/books/:bookId/quotes", handler.PlaceMassQuote)

	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", handler.Metrics)
}
