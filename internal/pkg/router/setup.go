package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router is anything that can attach its routes to the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

func InstallRouter(app *fiber.App) {
	// Webhook routes first: they must bypass the API rate limiter so
	// provider retries are never throttled into failure.
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
