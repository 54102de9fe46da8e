package database

import "database/sql"

// Store implements the linking store interfaces over postgres. The
// per-entity methods live in access_codes.go, children.go and users.go.
type Store struct {
	DB *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
