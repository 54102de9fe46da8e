package linking

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bLanke01/daycare-sub000/app/models"
)

// MemoryStore is an in-memory implementation of the three stores, guarded
// by a single mutex so the conditional-write semantics match the SQL
// store's. It backs the package tests and the handler tests; production
// wiring uses the postgres store in app/database.
type MemoryStore struct {
	mu       sync.Mutex
	codes    map[string]*models.AccessCode
	children map[string]*models.Child
	users    map[string]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		codes:    make(map[string]*models.AccessCode),
		children: make(map[string]*models.Child),
		users:    make(map[string]*models.User),
	}
}

// AddChild seeds a child record, assigning an id when absent.
func (m *MemoryStore) AddChild(c *models.Child) *models.Child {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	m.children[c.ID] = &cp
	return c
}

func (m *MemoryStore) InsertCode(code *models.AccessCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.codes[code.Code]; exists {
		return ErrDuplicateCode
	}
	cp := *code
	m.codes[code.Code] = &cp
	return nil
}

func (m *MemoryStore) GetCode(code string) (*models.AccessCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.codes[code]
	if !ok {
		return nil, nil
	}
	cp := *ac
	return &cp, nil
}

func (m *MemoryStore) ConsumeUse(code, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.codes[code]
	if !ok || ac.UsesLeft <= 0 {
		return false, nil
	}
	ac.UsesLeft--
	if ac.UsesLeft == 0 {
		ac.Used = true
	}
	ac.ParentID = &userID
	usedAt := now
	ac.UsedAt = &usedAt
	return true, nil
}

func (m *MemoryStore) FindCodesByParentEmail(email string) ([]*models.AccessCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AccessCode
	for _, ac := range m.codes {
		if ac.ParentEmail == email {
			cp := *ac
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) ExhaustCode(code string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.codes[code]
	if !ok {
		return nil
	}
	ac.UsesLeft = 0
	ac.Used = true
	if ac.UsedAt == nil {
		usedAt := now
		ac.UsedAt = &usedAt
	}
	return nil
}

func (m *MemoryStore) GetChild(id string) (*models.Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.children[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) SetChildAccessCode(childID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.children[childID]; ok {
		c.AccessCode = &code
	}
	return nil
}

func (m *MemoryStore) LinkParentIfUnset(childID, parentID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.children[childID]
	if !ok {
		return nil
	}
	if c.ParentID != nil && *c.ParentID != parentID {
		return nil
	}
	link(c, parentID, now)
	return nil
}

func (m *MemoryStore) LinkParent(childID, parentID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.children[childID]; ok {
		link(c, parentID, now)
	}
	return nil
}

func link(c *models.Child, parentID string, now time.Time) {
	c.ParentID = &parentID
	c.ParentRegistered = true
	if c.ParentRegisteredAt == nil {
		at := now
		c.ParentRegisteredAt = &at
	}
}

func (m *MemoryStore) FindChildrenByParentID(parentID string) ([]*models.Child, error) {
	return m.findChildren(func(c *models.Child) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	})
}

func (m *MemoryStore) FindChildrenByParentEmail(email string) ([]*models.Child, error) {
	return m.findChildren(func(c *models.Child) bool {
		return c.ParentEmail == email
	})
}

func (m *MemoryStore) FindChildrenByParentEmailFold(email string) ([]*models.Child, error) {
	return m.findChildren(func(c *models.Child) bool {
		return strings.EqualFold(c.ParentEmail, email)
	})
}

func (m *MemoryStore) findChildren(match func(*models.Child) bool) ([]*models.Child, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Child
	for _, c := range m.children {
		if match(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.IsActive = true
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryStore) GetUser(id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	cp.LinkedChildIDs = append([]string(nil), u.LinkedChildIDs...)
	return &cp, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			cp.LinkedChildIDs = append([]string(nil), u.LinkedChildIDs...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) AppendLinkedChild(userID, childID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	for _, id := range u.LinkedChildIDs {
		if id == childID {
			return nil
		}
	}
	u.LinkedChildIDs = append(u.LinkedChildIDs, childID)
	return nil
}

func (m *MemoryStore) SetLinkedChildren(userID string, childIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LinkedChildIDs = append([]string(nil), childIDs...)
	}
	return nil
}
