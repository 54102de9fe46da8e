package linking

import (
	"time"

	"github.com/bLanke01/daycare-sub000/app/models"
)

// CodeStore persists access codes keyed by the code string.
// Lookups return (nil, nil) when no record exists.
type CodeStore interface {
	// InsertCode is insert-if-absent: it must fail with ErrDuplicateCode
	// when the code already exists, even if a pre-check said otherwise.
	InsertCode(code *models.AccessCode) error

	GetCode(code string) (*models.AccessCode, error)

	// ConsumeUse decrements uses_left by one, records the redeeming user
	// and timestamp, and flips the used flag when uses_left reaches zero.
	// The decrement is conditional on uses_left > 0 at write time; the
	// returned bool reports whether a use was actually consumed.
	ConsumeUse(code, userID string, now time.Time) (bool, error)

	FindCodesByParentEmail(email string) ([]*models.AccessCode, error)

	// ExhaustCode force-marks a code used with no uses left, independent
	// of whether it was ever redeemed. Used by repair.
	ExhaustCode(code string, now time.Time) error
}

// ChildStore reads and links child records.
// Lookups return (nil, nil) when no record exists.
type ChildStore interface {
	GetChild(id string) (*models.Child, error)

	// SetChildAccessCode records the issued code on the child record.
	// Single-writer at creation time, so no conditional write is needed.
	SetChildAccessCode(childID, code string) error

	// LinkParentIfUnset sets parent_id only when the child has no parent
	// yet (or already has this one). Redemption uses this so the first
	// successful redeemer keeps the durable link.
	LinkParentIfUnset(childID, parentID string, now time.Time) error

	// LinkParent sets parent_id unconditionally and idempotently.
	// Repair uses this to force the derived state.
	LinkParent(childID, parentID string, now time.Time) error

	FindChildrenByParentID(parentID string) ([]*models.Child, error)
	FindChildrenByParentEmail(email string) ([]*models.Child, error)

	// FindChildrenByParentEmailFold matches parent_email case-insensitively.
	// This is the resolver's last-resort scan.
	FindChildrenByParentEmailFold(email string) ([]*models.Child, error)
}

// UserStore reads and updates parent accounts.
// Lookups return (nil, nil) when no record exists.
type UserStore interface {
	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)

	// AppendLinkedChild adds childID to the user's linked set if absent.
	AppendLinkedChild(userID, childID string) error

	// SetLinkedChildren overwrites the user's linked set.
	SetLinkedChildren(userID string, childIDs []string) error
}

// Stores bundles the three durable stores the subsystem runs against.
type Stores interface {
	CodeStore
	ChildStore
	UserStore
}
