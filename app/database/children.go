package database

import (
	"database/sql"
	"time"

	"github.com/bLanke01/daycare-sub000/app/models"
)

const childColumns = `id, first_name, last_name, date_of_birth, group_name,
	parent_id, parent_email, parent_registered, parent_registered_at,
	access_code, created_at, updated_at`

func scanChild(row interface{ Scan(...interface{}) error }) (*models.Child, error) {
	c := &models.Child{}
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.DateOfBirth, &c.GroupName,
		&c.ParentID, &c.ParentEmail, &c.ParentRegistered, &c.ParentRegisteredAt,
		&c.AccessCode, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateChild inserts a staff-created child record. The parent link starts
// empty; issuance fills in access_code right after.
func CreateChild(db *sql.DB, child *models.Child) error {
	query := `INSERT INTO children (first_name, last_name, date_of_birth, group_name, parent_email)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at, updated_at`

	return db.QueryRow(query, child.FirstName, child.LastName, child.DateOfBirth,
		child.GroupName, child.ParentEmail).Scan(&child.ID, &child.CreatedAt, &child.UpdatedAt)
}

// GetAllChildren lists every enrolled child for the staff screens.
func GetAllChildren(db *sql.DB) ([]*models.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children ORDER BY first_name, last_name`

	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*models.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if children == nil {
		children = []*models.Child{}
	}
	return children, rows.Err()
}

func (s *Store) GetChild(id string) (*models.Child, error) {
	query := `SELECT ` + childColumns + ` FROM children WHERE id = $1`

	c, err := scanChild(s.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) SetChildAccessCode(childID, code string) error {
	query := `UPDATE children SET access_code = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.DB.Exec(query, childID, code)
	return err
}

// LinkParentIfUnset links the child only when no other parent holds the
// link yet. A second redeemer of a multi-use code spends the code but the
// first redeemer keeps the child.
func (s *Store) LinkParentIfUnset(childID, parentID string, now time.Time) error {
	query := `UPDATE children
			  SET parent_id = $2, parent_registered = true,
				  parent_registered_at = COALESCE(parent_registered_at, $3),
				  updated_at = NOW()
			  WHERE id = $1 AND (parent_id IS NULL OR parent_id = $2)`

	_, err := s.DB.Exec(query, childID, parentID, now)
	return err
}

// LinkParent forces the link. Repair re-derives ownership and overwrites
// whatever is there; COALESCE keeps the first registration timestamp so
// reapplying yields the same stored values.
func (s *Store) LinkParent(childID, parentID string, now time.Time) error {
	query := `UPDATE children
			  SET parent_id = $2, parent_registered = true,
				  parent_registered_at = COALESCE(parent_registered_at, $3),
				  updated_at = NOW()
			  WHERE id = $1`

	_, err := s.DB.Exec(query, childID, parentID, now)
	return err
}

func (s *Store) FindChildrenByParentID(parentID string) ([]*models.Child, error) {
	return s.queryChildren(`SELECT `+childColumns+` FROM children
		WHERE parent_id = $1 ORDER BY first_name, last_name`, parentID)
}

func (s *Store) FindChildrenByParentEmail(email string) ([]*models.Child, error) {
	return s.queryChildren(`SELECT `+childColumns+` FROM children
		WHERE parent_email = $1 ORDER BY first_name, last_name`, email)
}

func (s *Store) FindChildrenByParentEmailFold(email string) ([]*models.Child, error) {
	return s.queryChildren(`SELECT `+childColumns+` FROM children
		WHERE LOWER(parent_email) = LOWER($1) ORDER BY first_name, last_name`, email)
}

func (s *Store) queryChildren(query string, args ...interface{}) ([]*models.Child, error) {
	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*models.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, rows.Err()
}
