package models

import "time"

// AccessCode is a bounded-use capability token handed to a parent when a
// child is enrolled. The parent name and child name are denormalized so the
// admin screens can show who a code was issued for without extra lookups.
//
// Invariant: 0 <= UsesLeft <= MaxUses, and Used implies UsesLeft == 0.
// A code past ExpiresAt is invalid regardless of UsesLeft.
type AccessCode struct {
	Code        string     `json:"code"`
	ChildID     string     `json:"child_id"`
	ParentEmail string     `json:"parent_email"`
	ParentName  string     `json:"parent_name"`
	ChildName   string     `json:"child_name"`
	MaxUses     int        `json:"max_uses"`
	UsesLeft    int        `json:"uses_left"`
	Used        bool       `json:"used"`
	ParentID    *string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// Expired reports whether the code is past its validity window.
func (a *AccessCode) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
