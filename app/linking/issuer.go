package linking

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bLanke01/daycare-sub000/app/models"
)

const (
	codeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// How many candidate codes to try before giving up. Collisions are
	// ~2^-41 per draw so anything past the first attempt is pathological.
	maxGenerateAttempts = 5

	DefaultCodeTTL = 30 * 24 * time.Hour
	DefaultMaxUses = 1
)

// IssueParams describes one code issuance. TTL and MaxUses fall back to
// the defaults when unset.
type IssueParams struct {
	ChildID     string
	ParentEmail string
	ParentName  string
	ChildName   string
	TTL         time.Duration
	MaxUses     int
}

// Issue generates a globally unique access code and persists it bound to
// the pending child. Uniqueness is enforced by the store rejecting a
// duplicate key on insert; the existence pre-check only saves a round trip
// on the (vanishingly rare) collision.
func (s *Service) Issue(p IssueParams) (*models.AccessCode, error) {
	if p.TTL <= 0 {
		p.TTL = DefaultCodeTTL
	}
	if p.MaxUses <= 0 {
		p.MaxUses = DefaultMaxUses
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, fmt.Errorf("%w: generate: %v", ErrIssuanceFailed, err)
		}

		if existing, err := s.Codes.GetCode(code); err == nil && existing != nil {
			continue
		}

		now := s.now()
		ac := &models.AccessCode{
			Code:        code,
			ChildID:     p.ChildID,
			ParentEmail: p.ParentEmail,
			ParentName:  p.ParentName,
			ChildName:   p.ChildName,
			MaxUses:     p.MaxUses,
			UsesLeft:    p.MaxUses,
			CreatedAt:   now,
			ExpiresAt:   now.Add(p.TTL),
		}

		err = s.Codes.InsertCode(ac)
		if errors.Is(err, ErrDuplicateCode) {
			// Lost a race with another issuer on the same candidate.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: insert: %v", ErrIssuanceFailed, err)
		}

		// Single writer at child-creation time, so a plain update is safe.
		if err := s.Children.SetChildAccessCode(p.ChildID, code); err != nil {
			// The child never learned this code. Retire the persisted row,
			// or a retry would leave a second redeemable code behind.
			if exErr := s.Codes.ExhaustCode(code, s.now()); exErr != nil {
				log.Printf("Issue: could not retire orphaned code %s: %v", code, exErr)
			}
			return nil, fmt.Errorf("%w: set child access code: %v", ErrIssuanceFailed, err)
		}
		return ac, nil
	}

	return nil, ErrIssuanceFailed
}

// Reissue replaces a child's access code after a lost slip or an expired
// code. The superseded code is retired first, so at most one code per
// child stays redeemable.
func (s *Service) Reissue(childID string) (*models.AccessCode, error) {
	child, err := s.Children.GetChild(childID)
	if err != nil {
		return nil, fmt.Errorf("%w: load child: %v", ErrIssuanceFailed, err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	if child.AccessCode != nil && *child.AccessCode != "" {
		if err := s.Codes.ExhaustCode(*child.AccessCode, s.now()); err != nil {
			return nil, fmt.Errorf("%w: retire previous code: %v", ErrIssuanceFailed, err)
		}
	}

	return s.Issue(IssueParams{
		ChildID:     child.ID,
		ParentEmail: child.ParentEmail,
		ChildName:   child.FirstName + " " + child.LastName,
	})
}

func generateCode() (string, error) {
	// Draws at or above limit are rejected: limit is the largest multiple
	// of the alphabet size a byte can hold, so kept draws map to
	// characters uniformly.
	limit := byte(256 - 256%len(codeAlphabet))
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out), nil
}
