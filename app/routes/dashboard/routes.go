package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/routes/auth"
)

func SetupDashboardRoutes(app *fiber.App, svc *linking.Service) {
	api := app.Group("/api/dashboard", auth.AuthMiddleware)

	api.Get("/children", func(c *fiber.Ctx) error { return GetMyChildrenAPI(c, svc) })
}
