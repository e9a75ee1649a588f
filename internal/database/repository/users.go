package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// UserRepo handles authd accounts.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO users(id, username, email, password_hash, age, role, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Age, u.Role, u.CreatedAt)
	return err
}

const userColumns = `id, username, email, password_hash, age, role, created_at`

func (r *UserRepo) one(ctx context.Context, where string, arg any) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Age, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.one(ctx, `id = ?`, id)
}

// GetByLogin finds a user by email (case-insensitive) or exact username.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return r.one(ctx, `email = ?`, login)
	}
	return r.one(ctx, `username = ?`, login)
}

// Conflict reports which unique field of a prospective user is taken:
// "username", "email" or "".
func (r *UserRepo) Conflict(ctx context.Context, username, email string) (string, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n); err != nil {
		return "", err
	}
	if n > 0 {
		return "username", nil
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&n); err != nil {
		return "", err
	}
	if n > 0 {
		return "email", nil
	}
	return "", nil
}
