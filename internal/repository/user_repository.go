package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/andikasp/desa-wisata-api/internal/model"
	"github.com/andikasp/desa-wisata-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Exists reports whether any user already holds the given email or username.
// Registration probes this before inserting so duplicates answer 409 instead
// of surfacing as a driver error.
func (r *UserRepo) Exists(ctx context.Context, email, username string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? OR username=?",
		email, username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create hashes the password, inserts the user and returns its ID.  The
// duplicate-key fallback covers the race where two registrations pass the
// Exists probe concurrently.
func (r *UserRepo) Create(ctx context.Context, username, email, password, name string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, name) VALUES (?,?,?,?)",
		username, email, hash, name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	var name sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,name,created_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &name, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Name = name.String
	return u, nil
}
