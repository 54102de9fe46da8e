package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/routes/auth"
)

func SetupAdminRoutes(app *fiber.App, svc *linking.Service) {
	api := app.Group("/api/admin", auth.AuthMiddleware, auth.StaffOnly)

	api.Post("/repair-link", func(c *fiber.Ctx) error { return RepairLinkAPI(c, svc) })
}
