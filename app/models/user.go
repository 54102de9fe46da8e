package models

import "time"

const (
	RoleStaff  = "staff"
	RoleParent = "parent"
)

// User is an authenticated account. Parents carry LinkedChildIDs, a
// denormalized cache of the children they can view; the authoritative link
// is Child.ParentID and the resolver keeps the two in sync.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           string    `json:"role"`
	LinkedChildIDs []string  `json:"linked_child_ids"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
