package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tuanngo/coursecart/app/controllers"
	"github.com/tuanngo/coursecart/app/repository"
	"github.com/tuanngo/coursecart/internal/pkg/database"
	"github.com/tuanngo/coursecart/internal/pkg/payment"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Install the shared repository factory for controllers
	repository.SetGlobalFactory(repository.NewFactory(database.GetDB()))

	cfg := payment.LoadConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		// Refuse to start with unverifiable webhooks; a missing secret
		// would turn the endpoint into an open write path.
		panic(err)
	}

	wc := controllers.NewWebhookController(cfg, payment.NewServiceFromDB(database.GetDB()))

	webhooks := app.Group("/webhooks")
	webhooks.Post("/sepay", wc.HandleSePayIPN)
	webhooks.Post("/stripe", wc.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
