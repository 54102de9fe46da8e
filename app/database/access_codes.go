package database

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/bLanke01/daycare-sub000/app/linking"
	"github.com/bLanke01/daycare-sub000/app/models"
)

const accessCodeColumns = `code, child_id, parent_email, parent_name, child_name,
	max_uses, uses_left, used, parent_id, created_at, expires_at, used_at`

func scanAccessCode(row interface{ Scan(...interface{}) error }) (*models.AccessCode, error) {
	ac := &models.AccessCode{}
	err := row.Scan(
		&ac.Code, &ac.ChildID, &ac.ParentEmail, &ac.ParentName, &ac.ChildName,
		&ac.MaxUses, &ac.UsesLeft, &ac.Used, &ac.ParentID, &ac.CreatedAt,
		&ac.ExpiresAt, &ac.UsedAt,
	)
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// InsertCode persists a new access code. A duplicate primary key maps to
// linking.ErrDuplicateCode so the issuer can retry with a fresh candidate;
// this insert, not the issuer's pre-check, is the uniqueness guarantee.
func (s *Store) InsertCode(ac *models.AccessCode) error {
	query := `INSERT INTO access_codes (code, child_id, parent_email, parent_name, child_name,
			  max_uses, uses_left, used, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.DB.Exec(query, ac.Code, ac.ChildID, ac.ParentEmail, ac.ParentName,
		ac.ChildName, ac.MaxUses, ac.UsesLeft, ac.Used, ac.CreatedAt, ac.ExpiresAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return linking.ErrDuplicateCode
	}
	return err
}

func (s *Store) GetCode(code string) (*models.AccessCode, error) {
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE code = $1`

	ac, err := scanAccessCode(s.DB.QueryRow(query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ac, nil
}

// ConsumeUse spends one use of the code. The WHERE clause re-checks
// uses_left against the stored value at write time, so of two concurrent
// redeemers exactly one matches the row; the other gets zero rows affected
// and reports Exhausted. A read-then-write decrement would not give this.
func (s *Store) ConsumeUse(code, userID string, now time.Time) (bool, error) {
	query := `UPDATE access_codes
			  SET uses_left = uses_left - 1,
				  used = (uses_left - 1 <= 0),
				  parent_id = $2,
				  used_at = $3
			  WHERE code = $1 AND uses_left > 0`

	result, err := s.DB.Exec(query, code, userID, now)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *Store) FindCodesByParentEmail(email string) ([]*models.AccessCode, error) {
	query := `SELECT ` + accessCodeColumns + ` FROM access_codes
			  WHERE parent_email = $1 ORDER BY created_at`

	rows, err := s.DB.Query(query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*models.AccessCode
	for rows.Next() {
		ac, err := scanAccessCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, ac)
	}
	return codes, rows.Err()
}

// ExhaustCode retires a code outright, whether or not it was ever
// redeemed. The first used_at wins so repeated repairs stay idempotent.
func (s *Store) ExhaustCode(code string, now time.Time) error {
	query := `UPDATE access_codes
			  SET uses_left = 0, used = true, used_at = COALESCE(used_at, $2)
			  WHERE code = $1`

	_, err := s.DB.Exec(query, code, now)
	return err
}

// ExpireStaleCodes retires every unredeemed code past its expiry window.
// Expiry is checked at redemption time regardless; this sweep only keeps
// the stored used/uses_left flags honest for the admin screens.
func ExpireStaleCodes(db *sql.DB) (int64, error) {
	query := `UPDATE access_codes
			  SET uses_left = 0, used = true
			  WHERE expires_at < NOW() AND uses_left > 0`

	result, err := db.Exec(query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
