package database

import (
	"database/sql"
	"log"
)

// RunMigrations creates the schema this deployment needs. Everything is
// IF NOT EXISTS so startup stays idempotent.
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'parent',
			linked_child_ids TEXT[] NOT NULL DEFAULT '{}',
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS children (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			date_of_birth DATE,
			group_name TEXT NOT NULL DEFAULT '',
			parent_id UUID,
			parent_email TEXT NOT NULL DEFAULT '',
			parent_registered BOOLEAN NOT NULL DEFAULT false,
			parent_registered_at TIMESTAMPTZ,
			access_code VARCHAR(8),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// The primary key on code is what makes issuance's insert-if-absent
		// race-safe; the CHECK keeps uses_left inside [0, max_uses].
		`CREATE TABLE IF NOT EXISTS access_codes (
			code VARCHAR(8) PRIMARY KEY,
			child_id UUID NOT NULL,
			parent_email TEXT NOT NULL DEFAULT '',
			parent_name TEXT NOT NULL DEFAULT '',
			child_name TEXT NOT NULL DEFAULT '',
			max_uses INTEGER NOT NULL DEFAULT 1,
			uses_left INTEGER NOT NULL DEFAULT 1,
			used BOOLEAN NOT NULL DEFAULT false,
			parent_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			used_at TIMESTAMPTZ,
			CHECK (uses_left >= 0 AND uses_left <= max_uses)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_children_parent_id ON children (parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_children_parent_email ON children (parent_email)`,
		`CREATE INDEX IF NOT EXISTS idx_access_codes_parent_email ON access_codes (parent_email)`,
		`CREATE INDEX IF NOT EXISTS idx_access_codes_expires_at ON access_codes (expires_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("Migration failed: %v", err)
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
