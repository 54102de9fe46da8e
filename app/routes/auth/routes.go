package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/models"
)

func SetupAuthRoutes(app *fiber.App, svc *linking.Service) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", func(c *fiber.Ctx) error { return RegisterAPI(c, svc) })
	authGroup.Post("/login", func(c *fiber.Ctx) error { return LoginAPI(c, svc) })
	authGroup.Post("/logout", LogoutAPI)
}

// AuthMiddleware validates the JWT and sets user context
func AuthMiddleware(c *fiber.Ctx) error {
	var tokenString string

	tokenString = c.Cookies("jwt_token")

	if tokenString == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}

	if tokenString == "" {
		return c.Status(401).JSON(fiber.Map{"error": "No token found"})
	}

	claims, err := ValidateJWT(tokenString)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", claims.Role)

	return c.Next()
}

// StaffOnly rejects callers without the staff role.
func StaffOnly(c *fiber.Ctx) error {
	if role, _ := c.Locals("user_role").(string); role != models.RoleStaff {
		return c.Status(403).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
	return c.Next()
}
