package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/croptivize/catalog/gateway/config"
	"github.com/croptivize/catalog/gateway/health"
	"github.com/croptivize/catalog/gateway/proxy"
)

// SetupRoutes configures all routes in the gateway. Auth is enforced by the
// catalog service itself; the gateway forwards the Authorization header.
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	// Gateway quick health check (no downstream calls)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	// Liveness probe
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	// Readiness probe (checks catalog instances)
	app.Get("/health/ready", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		healthStatus := healthChecker.CheckAllInstances(ctx)

		statusCode := fiber.StatusOK
		if healthStatus.Status == "unhealthy" {
			statusCode = fiber.StatusServiceUnavailable
		}
		return c.Status(statusCode).JSON(healthStatus)
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Catalog Gateway",
			"version": "1.0.0",
		})
	})

	// Everything under /api goes to the catalog service.
	handler := func(c *fiber.Ctx) error {
		return reverseProxy.ProxyRequest(c)
	}
	app.All("/api/products", handler)
	app.All("/api/products/*", handler)
	app.All("/api/orders", handler)
	app.All("/api/orders/*", handler)
}
