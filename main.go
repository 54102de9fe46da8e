package main

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/bLanke01/daycare-sub000/app/config"
	"github.com/bLanke01/daycare-sub000/app/database"
	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/routes/admin"
	"github.com/bLanke01/daycare-sub000/app/routes/auth"
	"github.com/bLanke01/daycare-sub000/app/routes/children"
	"github.com/bLanke01/daycare-sub000/app/routes/dashboard"
	"github.com/bLanke01/daycare-sub000/app/services"
)

// errorHandler keeps every error response in the same JSON shape the
// handlers use.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	})
}

func main() {
	// Initialize database and optional redis
	config.Init()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Wire the linking service over the postgres store
	store := database.NewStore(config.GetDB())
	svc := linking.NewServiceWithStores(store)
	if rdb := config.GetRedis(); rdb != nil {
		svc.Cache = linking.NewResolutionCache(rdb, 5*time.Minute)
	}

	// Start background sweeper for expired access codes
	services.StartCodeSweeper(config.GetDB())

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Routes
	auth.SetupAuthRoutes(app, svc)
	children.SetupChildrenRoutes(app, config.GetDB(), svc)
	dashboard.SetupDashboardRoutes(app, svc)
	admin.SetupAdminRoutes(app, svc)

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not found")
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Server starting on :" + port)
	log.Fatal(app.Listen(":" + port))
}
