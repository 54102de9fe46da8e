package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/models"
)

// RegisterAPI creates a parent account and, when an access code is
// supplied, redeems it so the new account is linked to its child before
// the first dashboard load. Registration without a code is allowed — the
// resolver's fallback strategies cover parents who sign up directly.
func RegisterAPI(c *fiber.Ctx, svc *linking.Service) error {
	type RegisterRequest struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		AccessCode string `json:"access_code"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	if existing, err := svc.Users.GetUserByEmail(req.Email); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	} else if existing != nil {
		return c.Status(409).JSON(fiber.Map{"error": "Email already registered"})
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleParent,
	}
	if err := svc.Users.CreateUser(user); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create account"})
	}

	resp := fiber.Map{
		"message": "Account created successfully",
		"user":    user,
	}

	if req.AccessCode != "" {
		childID, err := svc.Redeem(req.AccessCode, user.ID)
		if err != nil {
			// The account exists either way; the caller needs to know the
			// code was rejected so they can retry it or ask staff for a
			// repair.
			resp["error"] = redemptionMessage(err)
			return c.Status(redemptionStatus(err)).JSON(resp)
		}
		resp["child_id"] = childID
	}

	return c.Status(201).JSON(resp)
}

func redemptionStatus(err error) int {
	switch {
	case errors.Is(err, linking.ErrCodeNotFound):
		return 404
	case errors.Is(err, linking.ErrCodeExpired), errors.Is(err, linking.ErrCodeExhausted):
		return 410
	case errors.Is(err, linking.ErrPartialFailure):
		return 502
	default:
		return 500
	}
}

func redemptionMessage(err error) string {
	switch {
	case errors.Is(err, linking.ErrCodeNotFound):
		return "Access code not found"
	case errors.Is(err, linking.ErrCodeExpired):
		return "Access code expired"
	case errors.Is(err, linking.ErrCodeExhausted):
		return "Access code already used"
	case errors.Is(err, linking.ErrPartialFailure):
		return "Code accepted but linking is incomplete; contact the daycare"
	default:
		return "Failed to redeem access code"
	}
}

func LoginAPI(c *fiber.Ctx, svc *linking.Service) error {
	type LoginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	user, err := svc.Users.GetUserByEmail(req.Email)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Database error"})
	}
	if user == nil || !CheckPasswordHash(req.Password, user.Password) {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := GenerateJWT(user.ID, user.Email, user.FirstName, user.LastName, user.Role)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

func LogoutAPI(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	return c.JSON(fiber.Map{"message": "Logged out"})
}
