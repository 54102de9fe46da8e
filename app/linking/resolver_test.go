package linking

import (
	"errors"
	"testing"
	"time"

	"github.com/bLanke01/daycare-sub000/app/models"
)

func strategyNames(res *Resolution) []string {
	names := make([]string, len(res.StrategiesTried))
	for i, s := range res.StrategiesTried {
		names[i] = s.Strategy
	}
	return names
}

func TestResolveAuthoritativeLinkShortCircuits(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "p@example.com")

	child := mem.AddChild(&models.Child{FirstName: "Iris", LastName: "Moon", ParentEmail: "p@example.com"})
	if err := mem.LinkParent(child.ID, user.ID, time.Now()); err != nil {
		t.Fatalf("link: %v", err)
	}

	res := svc.ResolveChildren(user.ID, user.Email)

	if len(res.Children) != 1 || res.Children[0].ID != child.ID {
		t.Fatalf("children = %v, want [%s]", res.Children, child.ID)
	}
	if names := strategyNames(res); len(names) != 1 || names[0] != StrategyParentID {
		t.Fatalf("strategies tried = %v, want [%s] only", names, StrategyParentID)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("errors = %v, want none", res.Errors)
	}
}

// An unredeemed child must still show up for its intended parent via the
// captured parent email, even though no link exists yet.
func TestResolveFallsBackToParentEmail(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "a@x.com")

	code := "AB12CD34"
	child := mem.AddChild(&models.Child{
		FirstName:   "Luca",
		LastName:    "Costa",
		ParentEmail: "a@x.com",
		AccessCode:  &code,
	})

	res := svc.ResolveChildren(user.ID, "a@x.com")

	if len(res.Children) != 1 || res.Children[0].ID != child.ID {
		t.Fatalf("children = %v, want [%s]", res.Children, child.ID)
	}
	want := []string{StrategyParentID, StrategyParentEmail}
	if names := strategyNames(res); len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Fatalf("strategies tried = %v, want %v", names, want)
	}
}

func TestResolveFallsBackToAccessCode(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "parent@x.com")

	// Staff mistyped the child's parent email, but the issued code carries
	// the right one.
	child := mem.AddChild(&models.Child{FirstName: "Omar", LastName: "Haddad", ParentEmail: "typo@x.com"})
	if _, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "parent@x.com"}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	res := svc.ResolveChildren(user.ID, "parent@x.com")

	if len(res.Children) != 1 || res.Children[0].ID != child.ID {
		t.Fatalf("children = %v, want [%s]", res.Children, child.ID)
	}
	if names := strategyNames(res); names[len(names)-1] != StrategyAccessCode {
		t.Fatalf("strategies tried = %v, want to end at %s", names, StrategyAccessCode)
	}
}

func TestResolveFallsBackToCaseInsensitiveScan(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "parent@x.com")

	child := mem.AddChild(&models.Child{FirstName: "Nina", LastName: "Berg", ParentEmail: "Parent@X.com"})

	res := svc.ResolveChildren(user.ID, "parent@x.com")

	if len(res.Children) != 1 || res.Children[0].ID != child.ID {
		t.Fatalf("children = %v, want [%s]", res.Children, child.ID)
	}
	if names := strategyNames(res); len(names) != 4 || names[3] != StrategyEmailScan {
		t.Fatalf("strategies tried = %v, want all four ending at %s", names, StrategyEmailScan)
	}
}

// brokenChildStore fails the primary strategy; resolution must log it and
// keep going rather than surface the failure.
type brokenChildStore struct {
	ChildStore
}

func (b *brokenChildStore) FindChildrenByParentID(parentID string) ([]*models.Child, error) {
	return nil, errors.New("missing index")
}

func TestResolveSurvivesStrategyFailure(t *testing.T) {
	mem := NewMemoryStore()
	children := &brokenChildStore{ChildStore: mem}
	svc := NewService(mem, children, mem)
	user := seedParent(t, mem, "p@example.com")

	child := mem.AddChild(&models.Child{FirstName: "Ava", LastName: "Silva", ParentEmail: "p@example.com"})

	res := svc.ResolveChildren(user.ID, "p@example.com")

	if len(res.Children) != 1 || res.Children[0].ID != child.ID {
		t.Fatalf("children = %v, want [%s]", res.Children, child.ID)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one", res.Errors)
	}
	if res.StrategiesTried[0].Error == "" {
		t.Fatal("failing strategy missing from diagnostic trail")
	}
}

func TestResolveDeduplicatesChildren(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "parent@x.com")

	// Two codes for the same child (a re-issue) both point at it.
	child := mem.AddChild(&models.Child{FirstName: "Joon", LastName: "Kim", ParentEmail: "typo@x.com"})
	for i := 0; i < 2; i++ {
		if _, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "parent@x.com"}); err != nil {
			t.Fatalf("issue %d: %v", i, err)
		}
	}

	res := svc.ResolveChildren(user.ID, "parent@x.com")

	if len(res.Children) != 1 {
		t.Fatalf("children = %d, want 1 after dedup", len(res.Children))
	}
}

func TestResolveNothingFound(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "p@example.com")

	res := svc.ResolveChildren(user.ID, "p@example.com")

	if len(res.Children) != 0 {
		t.Fatalf("children = %v, want empty", res.Children)
	}
	if len(res.StrategiesTried) != 4 {
		t.Fatalf("strategies tried = %d, want all 4", len(res.StrategiesTried))
	}
}
