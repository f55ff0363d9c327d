package store

import (
	"context"
	"database/sql"
	"fmt"

	"circulation-service/internal/models"
)

// CreateUser inserts a new member record
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, role, department)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, user, query,
		user.Name, user.Email, user.Role, user.Department)
}

// GetUserByID retrieves a member by ID
func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
