package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/linking"
)

// GetMyChildrenAPI resolves the caller's children. This never fails hard:
// a store problem shows up in the errors list and the parent still sees
// whatever could be found.
func GetMyChildrenAPI(c *fiber.Ctx, svc *linking.Service) error {
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("user_email").(string)

	res := svc.ResolveChildrenCached(c.UserContext(), userID, email)

	return c.JSON(fiber.Map{
		"children":         res.Children,
		"strategies_tried": res.StrategiesTried,
		"errors":           res.Errors,
	})
}
