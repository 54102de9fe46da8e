package database

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/bLanke01/daycare-sub000/app/models"
)

const userColumns = `id, email, password, first_name, last_name, role,
	linked_child_ids, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role,
		pq.Array(&u.LinkedChildIDs), &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts an account. The password arrives already hashed; the
// auth layer owns hashing.
func (s *Store) CreateUser(user *models.User) error {
	query := `INSERT INTO users (email, password, first_name, last_name, role, is_active)
			  VALUES ($1, $2, $3, $4, $5, true)
			  RETURNING id, created_at, updated_at`

	err := s.DB.QueryRow(query, user.Email, user.Password, user.FirstName,
		user.LastName, user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return err
	}
	user.IsActive = true
	return nil
}

func (s *Store) GetUser(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = true`

	u, err := scanUser(s.DB.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active = true`

	u, err := scanUser(s.DB.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// AppendLinkedChild adds the child to the user's denormalized linked set,
// skipping the write when it is already present.
func (s *Store) AppendLinkedChild(userID, childID string) error {
	query := `UPDATE users
			  SET linked_child_ids = array_append(linked_child_ids, $2), updated_at = NOW()
			  WHERE id = $1 AND NOT ($2 = ANY(linked_child_ids))`

	_, err := s.DB.Exec(query, userID, childID)
	return err
}

// SetLinkedChildren replaces the linked set wholesale. Only repair does
// this; see the overwrite note there.
func (s *Store) SetLinkedChildren(userID string, childIDs []string) error {
	if childIDs == nil {
		childIDs = []string{}
	}
	query := `UPDATE users SET linked_child_ids = $2, updated_at = NOW() WHERE id = $1`
	_, err := s.DB.Exec(query, userID, pq.Array(childIDs))
	return err
}
