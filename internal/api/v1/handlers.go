package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/tuanngo/coursecart/app/controllers"
	"github.com/tuanngo/coursecart/internal/pkg/middleware"
)

// APIServer implements the public v1 API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetOrder returns order payment status by invoice number (API key protected).
func (s *APIServer) GetOrder(c *fiber.Ctx) error {
	return controllers.HandleGetOrderStatus(c)
}

// GetSubscription returns subscription status by customer reference.
func (s *APIServer) GetSubscription(c *fiber.Ctx) error {
	return controllers.HandleGetSubscriptionStatus(c)
}

// GetWebhookStats returns processing counters and ledger totals.
func (s *APIServer) GetWebhookStats(c *fiber.Ctx) error {
	return controllers.HandleGetWebhookStats(c)
}

// GetWebhookEvents returns the newest ledger rows.
func (s *APIServer) GetWebhookEvents(c *fiber.Ctx) error {
	return controllers.HandleListRecentWebhookEvents(c)
}

// RegisterHandlers attaches all v1 routes to the given router group. The
// ping endpoint stays open; everything else requires the admin API key.
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)

	protected := router.Group("", middleware.AdminAPIKeyMiddleware())
	protected.Get("/orders/:invoice", s.GetOrder)
	protected.Get("/subscriptions/:customer", s.GetSubscription)
	protected.Get("/webhooks/stats", s.GetWebhookStats)
	protected.Get("/webhooks/events", s.GetWebhookEvents)
}
