package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("username already taken")
)

// Roles known to the system. Role strings are opaque to the visibility and
// grading engines; the RBAC policy gives them meaning.
const (
	RoleGuest      = "guest"
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

func ValidRole(r string) bool {
	switch r {
	case RoleGuest, RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"created_at,omitempty"`
}

// SQLStore persists users. Password hashes never leave this package except
// through GetByUsername for credential checks.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id,username,role,password_hash,created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Username, u.Role, u.PasswordHash, u.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrExists
	}
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (User, error) {
	return s.one(ctx, `SELECT id,username,role,password_hash,created_at FROM users WHERE id=$1`, id)
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.one(ctx, `SELECT id,username,role,password_hash,created_at FROM users WHERE username=$1`, username)
}

func (s *SQLStore) one(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List returns users ordered by username, optionally filtered by role.
func (s *SQLStore) List(ctx context.Context, role string) ([]User, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if role == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id,username,role,password_hash,created_at FROM users ORDER BY username`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id,username,role,password_hash,created_at FROM users WHERE role=$1 ORDER BY username`, role)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
