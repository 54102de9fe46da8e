package linking

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bLanke01/daycare-sub000/app/models"
)

func TestIssueCodeFormat(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	child := mem.AddChild(&models.Child{FirstName: "Mia", LastName: "Okafor", ParentEmail: "mia.parent@example.com"})

	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	ac, err := svc.Issue(IssueParams{
		ChildID:     child.ID,
		ParentEmail: "mia.parent@example.com",
		ParentName:  "Ada Okafor",
		ChildName:   "Mia Okafor",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(ac.Code) != codeLength {
		t.Fatalf("code length = %d, want %d", len(ac.Code), codeLength)
	}
	for _, r := range ac.Code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("code %q contains %q outside alphabet", ac.Code, r)
		}
	}
	if ac.MaxUses != DefaultMaxUses || ac.UsesLeft != DefaultMaxUses {
		t.Fatalf("uses = %d/%d, want %d/%d", ac.UsesLeft, ac.MaxUses, DefaultMaxUses, DefaultMaxUses)
	}
	if ac.Used {
		t.Fatal("fresh code marked used")
	}
	if got, want := ac.ExpiresAt, issued.Add(DefaultCodeTTL); !got.Equal(want) {
		t.Fatalf("expires at %v, want %v", got, want)
	}

	stored, err := mem.GetChild(child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	if stored.AccessCode == nil || *stored.AccessCode != ac.Code {
		t.Fatalf("child access code not set to %q", ac.Code)
	}
}

func TestIssueConcurrentCodesDistinct(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)

	const n = 50
	childIDs := make([]string, n)
	for i := range childIDs {
		childIDs[i] = mem.AddChild(&models.Child{FirstName: "Kid", LastName: "One"}).ID
	}

	codes := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ac, err := svc.Issue(IssueParams{ChildID: childIDs[i], ParentEmail: "p@example.com"})
			if err != nil {
				t.Errorf("issue %d: %v", i, err)
				return
			}
			codes[i] = ac.Code
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, code := range codes {
		if code == "" {
			continue
		}
		if seen[code] {
			t.Fatalf("duplicate code %q persisted", code)
		}
		seen[code] = true
		if ac, _ := mem.GetCode(code); ac == nil {
			t.Fatalf("code %q not persisted", code)
		}
	}
	if len(seen) != n {
		t.Fatalf("persisted %d distinct codes, want %d", len(seen), n)
	}
}

// collidingCodeStore rejects the first few inserts as duplicates to force
// the issuer's retry path.
type collidingCodeStore struct {
	CodeStore
	mu         sync.Mutex
	collisions int
}

func (c *collidingCodeStore) InsertCode(ac *models.AccessCode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.collisions > 0 {
		c.collisions--
		return ErrDuplicateCode
	}
	return c.CodeStore.InsertCode(ac)
}

func TestIssueRetriesOnCollision(t *testing.T) {
	mem := NewMemoryStore()
	child := mem.AddChild(&models.Child{FirstName: "Theo", LastName: "Park"})

	codes := &collidingCodeStore{CodeStore: mem, collisions: 2}
	svc := NewService(codes, mem, mem)

	ac, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "theo.parent@example.com"})
	if err != nil {
		t.Fatalf("issue after collisions: %v", err)
	}
	if ac == nil || ac.Code == "" {
		t.Fatal("no code issued")
	}
}

func TestIssueFailsAfterRetryBudget(t *testing.T) {
	mem := NewMemoryStore()
	child := mem.AddChild(&models.Child{FirstName: "Noa", LastName: "Levi"})

	codes := &collidingCodeStore{CodeStore: mem, collisions: maxGenerateAttempts}
	svc := NewService(codes, mem, mem)

	_, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "noa.parent@example.com"})
	if !errors.Is(err, ErrIssuanceFailed) {
		t.Fatalf("err = %v, want ErrIssuanceFailed", err)
	}
}

func TestGenerateCodeLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(code) != codeLength {
			t.Fatalf("code %q length = %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestReissueRetiresPriorCode(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	user := seedParent(t, mem, "iris.parent@example.com")
	child := mem.AddChild(&models.Child{FirstName: "Iris", LastName: "Cole", ParentEmail: "iris.parent@example.com"})

	old, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "iris.parent@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	fresh, err := svc.Reissue(child.ID)
	if err != nil {
		t.Fatalf("reissue: %v", err)
	}
	if fresh.Code == old.Code {
		t.Fatalf("reissue returned the same code %q", old.Code)
	}

	// The superseded slip can no longer link anyone.
	if _, err := svc.Redeem(old.Code, user.ID); !errors.Is(err, ErrCodeExhausted) {
		t.Fatalf("old code redeem err = %v, want ErrCodeExhausted", err)
	}

	childID, err := svc.Redeem(fresh.Code, user.ID)
	if err != nil {
		t.Fatalf("redeem fresh code: %v", err)
	}
	if childID != child.ID {
		t.Fatalf("redeemed child = %s, want %s", childID, child.ID)
	}

	stored, _ := mem.GetChild(child.ID)
	if stored.AccessCode == nil || *stored.AccessCode != fresh.Code {
		t.Fatalf("child access code not replaced with %q", fresh.Code)
	}
}

func TestReissueUnknownChild(t *testing.T) {
	svc := NewServiceWithStores(NewMemoryStore())

	_, err := svc.Reissue("missing")
	if !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("err = %v, want ErrChildNotFound", err)
	}
}

// brokenCodeWriteStore fails the child update that follows the code
// insert, leaving the persisted row without an owner.
type brokenCodeWriteStore struct {
	ChildStore
}

func (b *brokenCodeWriteStore) SetChildAccessCode(childID, code string) error {
	return errors.New("write refused")
}

func TestIssueRetiresCodeWhenChildUpdateFails(t *testing.T) {
	mem := NewMemoryStore()
	child := mem.AddChild(&models.Child{FirstName: "Ola", LastName: "Berg"})
	svc := NewService(mem, &brokenCodeWriteStore{ChildStore: mem}, mem)

	_, err := svc.Issue(IssueParams{ChildID: child.ID, ParentEmail: "ola.parent@example.com"})
	if !errors.Is(err, ErrIssuanceFailed) {
		t.Fatalf("err = %v, want ErrIssuanceFailed", err)
	}

	codes, err := mem.FindCodesByParentEmail("ola.parent@example.com")
	if err != nil {
		t.Fatalf("find codes: %v", err)
	}
	if len(codes) != 1 {
		t.Fatalf("persisted codes = %d, want 1", len(codes))
	}
	if codes[0].UsesLeft != 0 || !codes[0].Used {
		t.Fatalf("orphaned code uses_left=%d used=%v, want 0/true", codes[0].UsesLeft, codes[0].Used)
	}
}

func TestIssueHonorsExplicitParams(t *testing.T) {
	mem := NewMemoryStore()
	svc := NewServiceWithStores(mem)
	child := mem.AddChild(&models.Child{FirstName: "Ella", LastName: "Nguyen"})

	ac, err := svc.Issue(IssueParams{
		ChildID:     child.ID,
		ParentEmail: "ella.parent@example.com",
		TTL:         48 * time.Hour,
		MaxUses:     2,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if ac.MaxUses != 2 || ac.UsesLeft != 2 {
		t.Fatalf("uses = %d/%d, want 2/2", ac.UsesLeft, ac.MaxUses)
	}
	if window := ac.ExpiresAt.Sub(ac.CreatedAt); window != 48*time.Hour {
		t.Fatalf("validity window = %v, want 48h", window)
	}
}
