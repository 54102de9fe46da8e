package models

import "time"

// Child represents one enrolled child. Staff create the record before the
// parent has an account, so ParentID stays nil until an access code is
// redeemed or a staff repair links the two.
type Child struct {
	ID                 string     `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	GroupName          string     `json:"group_name"`
	ParentID           *string    `json:"parent_id,omitempty"`
	ParentEmail        string     `json:"parent_email"`
	ParentRegistered   bool       `json:"parent_registered"`
	ParentRegisteredAt *time.Time `json:"parent_registered_at,omitempty"`
	AccessCode         *string    `json:"access_code,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
