package children

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bLanke01/daycare-sub000/app/database"
	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/models"
)

func GetChildrenAPI(c *fiber.Ctx, db *sql.DB) error {
	children, err := database.GetAllChildren(db)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch children"})
	}

	return c.JSON(fiber.Map{
		"children": children,
		"count":    len(children),
	})
}

// CreateChildAPI enrolls a child and issues the access code the parent
// will redeem at registration. The code comes back in the response so
// staff can hand it over on a printed slip.
func CreateChildAPI(c *fiber.Ctx, db *sql.DB, svc *linking.Service) error {
	type CreateChildRequest struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		DateOfBirth string `json:"date_of_birth"`
		GroupName   string `json:"group_name"`
		ParentEmail string `json:"parent_email"`
		ParentName  string `json:"parent_name"`
	}

	var req CreateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}

	if req.FirstName == "" || req.LastName == "" {
		return c.Status(400).JSON(fiber.Map{"error": "First name and last name are required"})
	}
	if req.ParentEmail == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Parent email is required"})
	}

	child := &models.Child{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		GroupName:   req.GroupName,
		ParentEmail: req.ParentEmail,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid date of birth, expected YYYY-MM-DD"})
		}
		child.DateOfBirth = &dob
	}

	if err := database.CreateChild(db, child); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create child"})
	}

	code, err := svc.Issue(linking.IssueParams{
		ChildID:     child.ID,
		ParentEmail: req.ParentEmail,
		ParentName:  req.ParentName,
		ChildName:   req.FirstName + " " + req.LastName,
	})
	if err != nil {
		// Child exists but has no code; staff should retry the creation.
		return c.Status(500).JSON(fiber.Map{
			"error": "Child created but access code issuance failed, please retry",
			"child": child,
		})
	}
	child.AccessCode = &code.Code

	return c.Status(201).JSON(fiber.Map{
		"message":     "Child created successfully",
		"child":       child,
		"access_code": code,
	})
}

// ReissueCodeAPI issues a fresh code for an existing child, for when the
// original slip was lost or expired. The previous code is retired as part
// of the re-issue.
func ReissueCodeAPI(c *fiber.Ctx, svc *linking.Service) error {
	code, err := svc.Reissue(c.Params("id"))
	if errors.Is(err, linking.ErrChildNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Child not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to issue access code"})
	}

	return c.Status(201).JSON(fiber.Map{
		"message":     "Access code issued",
		"access_code": code,
	})
}
