package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"heater_control/internal/models"
)

// ErrUserExists is returned by Create when the username is taken.
var ErrUserExists = errors.New("user already exists")

// UserRepository stores operator accounts. Secrets are opaque here; hashing
// is the auth service's business.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ Authorization = (*UserRepository)(nil)

const (
	insertOperatorSQL   = `INSERT INTO users (username, secret) VALUES (?, ?)`
	selectOperatorSQL   = `SELECT id, username, secret FROM users WHERE username = ?`
	uniqueViolationHint = "UNIQUE constraint failed"
)

func (r *UserRepository) Create(username, secret string) (int, error) {
	res, err := r.db.Exec(insertOperatorSQL, username, secret)
	switch {
	case err != nil && strings.Contains(err.Error(), uniqueViolationHint):
		return 0, fmt.Errorf("operator %q: %w", username, ErrUserExists)
	case err != nil:
		return 0, fmt.Errorf("insert operator %q: %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("operator %q inserted without id: %w", username, err)
	}
	return int(id), nil
}

// GetByUsername returns (nil, nil) for an unknown operator so callers can
// answer "invalid credentials" without telling the two cases apart.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	row := r.db.QueryRow(selectOperatorSQL, username)
	u, err := scanOperator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load operator %q: %w", username, err)
	}
	return u, nil
}

func scanOperator(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Secret); err != nil {
		return nil, err
	}
	return &u, nil
}
