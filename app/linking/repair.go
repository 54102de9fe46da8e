package linking

import (
	"fmt"
	"log"
	"sort"
)

// RepairResult reports a repair run with per-child granularity: which
// children matched, under which predicate, and which writes failed.
// Nothing is committed invisibly — every attempted write shows up either
// in MatchedChildIDs or in Errors.
type RepairResult struct {
	UserID          string   `json:"user_id"`
	MatchedChildIDs []string `json:"matched_child_ids"`
	EmailMatchIDs   []string `json:"email_match_ids"`
	CodeMatchIDs    []string `json:"code_match_ids"`
	ExhaustedCodes  []string `json:"exhausted_codes"`
	Errors          []string `json:"errors"`
}

// Repair re-derives the parent link that redemption should have produced
// and persists it. It is operator-triggered and idempotent: a second run
// over the same data yields the same stored state.
//
// Children qualify by either predicate — parent_email equals the user's
// email, or the child is the target of an access code issued for that
// email. The two predicates are evaluated and reported separately so the
// operator can audit how each match was made.
func (s *Service) Repair(parentEmail string) (*RepairResult, error) {
	user, err := s.Users.GetUserByEmail(parentEmail)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Every list starts empty so the operator report serializes as [],
	// never null.
	res := &RepairResult{
		UserID:          user.ID,
		MatchedChildIDs: []string{},
		EmailMatchIDs:   []string{},
		CodeMatchIDs:    []string{},
		ExhaustedCodes:  []string{},
		Errors:          []string{},
	}
	matched := make(map[string]bool)

	emailChildren, err := s.Children.FindChildrenByParentEmail(parentEmail)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("find children by email: %v", err))
	}
	for _, c := range emailChildren {
		res.EmailMatchIDs = append(res.EmailMatchIDs, c.ID)
		matched[c.ID] = true
	}

	codes, err := s.Codes.FindCodesByParentEmail(parentEmail)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("find access codes: %v", err))
	}
	for _, code := range codes {
		child, err := s.Children.GetChild(code.ChildID)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("fetch child %s for code %s: %v", code.ChildID, code.Code, err))
			continue
		}
		if child == nil {
			continue
		}
		res.CodeMatchIDs = append(res.CodeMatchIDs, child.ID)
		matched[child.ID] = true
	}

	now := s.now()
	for _, childID := range sortedKeys(matched) {
		if err := s.Children.LinkParent(childID, user.ID, now); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("link child %s: %v", childID, err))
			continue
		}
		res.MatchedChildIDs = append(res.MatchedChildIDs, childID)
	}

	// Overwrite, not merge. Children linked through other paths keep their
	// parent_id, so the resolver's primary strategy still finds them and
	// the next resolve heals the cache; see DESIGN.md.
	if err := s.Users.SetLinkedChildren(user.ID, res.MatchedChildIDs); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("set linked children: %v", err))
	}

	// Retire the codes regardless of whether redemption ever ran.
	for _, code := range codes {
		if err := s.Codes.ExhaustCode(code.Code, now); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("exhaust code %s: %v", code.Code, err))
			continue
		}
		res.ExhaustedCodes = append(res.ExhaustedCodes, code.Code)
	}

	s.invalidateCache(user.ID)
	log.Printf("Repair for %s linked %d children (%d errors)", parentEmail, len(res.MatchedChildIDs), len(res.Errors))
	return res, nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
