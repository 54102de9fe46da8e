package linking

import (
	"context"
	"fmt"
	"log"
)

// Redeem consumes one use of an access code on behalf of a freshly
// registered parent and links the referenced child to them.
//
// Validation order is fixed: NotFound, then Expired, then Exhausted. The
// used flag is not checked on its own; uses_left is authoritative and a
// used code always has uses_left == 0.
//
// The decrement is a conditional write (uses_left > 0 at write time), so
// two concurrent redeemers of a single-use code cannot both succeed: the
// loser's decrement matches no row and is reported as Exhausted. The
// follow-up child/user writes are not part of that atomic step; if they
// fail the code use is already spent and the caller gets ErrPartialFailure,
// which the repair service recovers from by re-deriving the link.
func (s *Service) Redeem(code, userID string) (string, error) {
	ac, err := s.Codes.GetCode(code)
	if err != nil {
		return "", fmt.Errorf("load access code: %w", err)
	}
	if ac == nil {
		return "", ErrCodeNotFound
	}
	if ac.Expired(s.now()) {
		return "", ErrCodeExpired
	}
	if ac.UsesLeft <= 0 {
		return "", ErrCodeExhausted
	}

	consumed, err := s.Codes.ConsumeUse(code, userID, s.now())
	if err != nil {
		return "", fmt.Errorf("consume access code: %w", err)
	}
	if !consumed {
		// A concurrent redemption got there first.
		return "", ErrCodeExhausted
	}

	// Only the first successful redeemer durably owns the child link; a
	// later use of a multi-use code spends the code but does not reassign
	// the child.
	if err := s.Children.LinkParentIfUnset(ac.ChildID, userID, s.now()); err != nil {
		return ac.ChildID, fmt.Errorf("%w: link child %s: %v", ErrPartialFailure, ac.ChildID, err)
	}
	if err := s.Users.AppendLinkedChild(userID, ac.ChildID); err != nil {
		return ac.ChildID, fmt.Errorf("%w: append linked child %s: %v", ErrPartialFailure, ac.ChildID, err)
	}

	s.invalidateCache(userID)
	return ac.ChildID, nil
}

func (s *Service) invalidateCache(userID string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(context.Background(), userID); err != nil {
		log.Printf("Failed to invalidate resolution cache for user %s: %v", userID, err)
	}
}
