package linking

import (
	"fmt"
	"log"

	"github.com/bLanke01/daycare-sub000/app/models"
)

// Strategy names, in the order they are tried.
const (
	StrategyParentID    = "parent-id"
	StrategyParentEmail = "parent-email"
	StrategyAccessCode  = "access-code"
	StrategyEmailScan   = "email-scan"
)

// StrategyResult records one resolver strategy attempt for the
// diagnostic trail.
type StrategyResult struct {
	Strategy string `json:"strategy"`
	Found    int    `json:"found"`
	Error    string `json:"error,omitempty"`
}

// Resolution is what the dashboard gets back: whatever children could be
// found, plus which strategies ran and what went wrong along the way.
type Resolution struct {
	Children        []*models.Child  `json:"children"`
	StrategiesTried []StrategyResult `json:"strategies_tried"`
	Errors          []string         `json:"errors"`
}

type strategy struct {
	name string
	run  func(userID, email string) ([]*models.Child, error)
}

// ResolveChildren finds all children linked (or linkable) to the given
// parent identity. Strategies run in a fixed priority order and the first
// one returning a non-empty set wins; later strategies are not attempted.
//
// Strategy 1 is the authoritative path once linking has happened. The
// fallbacks cover the legitimate cases where it has not: registration
// raced the dashboard load, redemption was skipped, or staff data entry
// lagged. A failing strategy is logged and skipped, never fatal — the
// caller always gets a result set, possibly empty, and the trail.
func (s *Service) ResolveChildren(userID, email string) *Resolution {
	strategies := []strategy{
		{StrategyParentID, func(id, _ string) ([]*models.Child, error) {
			return s.Children.FindChildrenByParentID(id)
		}},
		{StrategyParentEmail, func(_, em string) ([]*models.Child, error) {
			return s.Children.FindChildrenByParentEmail(em)
		}},
		{StrategyAccessCode, s.childrenByAccessCode},
		{StrategyEmailScan, func(_, em string) ([]*models.Child, error) {
			return s.Children.FindChildrenByParentEmailFold(em)
		}},
	}

	res := &Resolution{Children: []*models.Child{}, Errors: []string{}}
	for _, st := range strategies {
		children, err := st.run(userID, email)
		attempt := StrategyResult{Strategy: st.name, Found: len(children)}
		if err != nil {
			attempt.Error = err.Error()
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", st.name, err))
			log.Printf("Resolver strategy %s failed for user %s: %v", st.name, userID, err)
		}
		res.StrategiesTried = append(res.StrategiesTried, attempt)

		if len(children) > 0 {
			res.Children = dedupeChildren(children)
			break
		}
	}
	return res
}

// childrenByAccessCode looks up codes issued for this parent's email and
// follows each one to its child. Two codes can point at the same child
// (re-issue), so the caller dedupes.
func (s *Service) childrenByAccessCode(_, email string) ([]*models.Child, error) {
	codes, err := s.Codes.FindCodesByParentEmail(email)
	if err != nil {
		return nil, err
	}
	var children []*models.Child
	for _, code := range codes {
		child, err := s.Children.GetChild(code.ChildID)
		if err != nil {
			return children, fmt.Errorf("fetch child %s for code %s: %w", code.ChildID, code.Code, err)
		}
		if child != nil {
			children = append(children, child)
		}
	}
	return children, nil
}

func dedupeChildren(children []*models.Child) []*models.Child {
	seen := make(map[string]bool, len(children))
	out := make([]*models.Child, 0, len(children))
	for _, c := range children {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
