package children

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/routes/auth"
)

func SetupChildrenRoutes(app *fiber.App, db *sql.DB, svc *linking.Service) {
	api := app.Group("/api/children", auth.AuthMiddleware, auth.StaffOnly)

	api.Get("/", func(c *fiber.Ctx) error { return GetChildrenAPI(c, db) })
	api.Post("/", func(c *fiber.Ctx) error { return CreateChildAPI(c, db, svc) })
	api.Post("/:id/access-code", func(c *fiber.Ctx) error { return ReissueCodeAPI(c, svc) })
}
