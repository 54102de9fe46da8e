package linking

import "time"

// Service implements access code issuance, redemption, resolution and
// repair over the durable stores. It holds no state of its own; the
// stores are the source of truth and every operation is an independent
// request-scoped call.
type Service struct {
	Codes    CodeStore
	Children ChildStore
	Users    UserStore

	// Cache is an optional read-through cache of resolved children.
	// It is never authoritative and is invalidated on every write.
	Cache *ResolutionCache

	now func() time.Time
}

func NewService(codes CodeStore, children ChildStore, users UserStore) *Service {
	return &Service{
		Codes:    codes,
		Children: children,
		Users:    users,
		now:      time.Now,
	}
}

// NewServiceWithStores wires a Service from a single combined store, the
// usual case outside tests.
func NewServiceWithStores(stores Stores) *Service {
	return NewService(stores, stores, stores)
}
