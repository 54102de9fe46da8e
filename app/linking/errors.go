package linking

import "errors"

// Terminal errors reported to callers. Redemption errors block the
// registering parent; repair errors are reported to the operator.
var (
	// ErrCodeNotFound means no access code exists with the given key.
	ErrCodeNotFound = errors.New("access code not found")

	// ErrCodeExpired means the code is past its expiry window.
	ErrCodeExpired = errors.New("access code expired")

	// ErrCodeExhausted means the code has no uses left. A concurrent
	// redeemer that loses the conditional decrement also sees this.
	ErrCodeExhausted = errors.New("access code exhausted")

	// ErrIssuanceFailed means code generation could not produce a unique
	// code within the retry budget. The whole child-creation operation
	// should be retried.
	ErrIssuanceFailed = errors.New("access code issuance failed")

	// ErrUserNotFound means repair was asked for an email with no account.
	ErrUserNotFound = errors.New("user not found")

	// ErrChildNotFound means a re-issue was asked for a child id that does
	// not exist.
	ErrChildNotFound = errors.New("child not found")

	// ErrPartialFailure means the access code was consumed but the
	// child/user link writes did not all land. The repair service derives
	// the same end state independently, so this is recoverable.
	ErrPartialFailure = errors.New("redemption partially applied")

	// ErrDuplicateCode is returned by a CodeStore insert when the code
	// already exists. Uniqueness is enforced here, at the store's primary
	// key, not by the issuer's pre-check.
	ErrDuplicateCode = errors.New("access code already exists")
)
