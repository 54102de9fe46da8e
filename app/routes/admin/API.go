package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
)

// RepairLinkAPI reconciles a parent's link when redemption never ran or
// left an inconsistent state. The full per-child report goes back to the
// operator, including writes that failed.
func RepairLinkAPI(c *fiber.Ctx, svc *linking.Service) error {
	type RepairRequest struct {
		ParentEmail string `json:"parent_email"`
	}

	var req RepairRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.ParentEmail == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Parent email is required"})
	}

	result, err := svc.Repair(req.ParentEmail)
	if err != nil {
		if errors.Is(err, linking.ErrUserNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "No account with that email"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Repair failed"})
	}

	return c.JSON(fiber.Map{
		"message": "Repair completed",
		"result":  result,
	})
}
