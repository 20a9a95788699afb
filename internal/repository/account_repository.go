package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/spieltreff/backend/internal/model"
)

// AccountRepo persists accounts in the `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts an account.  The email must already be normalized;
// a duplicate maps MySQL error 1062 onto ErrEmailExists so handlers
// can answer 409 without string matching of their own.
func (r *AccountRepo) Create(ctx context.Context, a model.Account) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, role, status, created_at) VALUES (?,?,?,?,?,?)",
		a.ID, a.Email, a.PasswordHash, a.Role, a.Status, a.CreatedAt)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// FindByID fetches an account by id.
func (r *AccountRepo) FindByID(ctx context.Context, id string) (model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,status,created_at FROM accounts WHERE id=? LIMIT 1", id))
}

// FindByEmail fetches an account by normalized email.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,status,created_at FROM accounts WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
}

// ListAll returns every account, newest first.  Admin surface only.
func (r *AccountRepo) ListAll(ctx context.Context) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,email,password_hash,role,status,created_at FROM accounts ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdatePasswordHash replaces the stored hash.
func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, "UPDATE accounts SET password_hash=? WHERE id=?", hash, id)
}

// UpdateRole changes the account role.
func (r *AccountRepo) UpdateRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, "UPDATE accounts SET role=? WHERE id=?", role, id)
}

// UpdateStatus toggles active/deactivated.
func (r *AccountRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return r.exec(ctx, "UPDATE accounts SET status=? WHERE id=?", status, id)
}

// exec runs an update and maps "no row matched" onto ErrNotFound.
// Relies on the pool running in found-rows mode (clientFoundRows in
// the DSN): without it an update writing a column's current value
// reports zero affected rows and would look like a missing account.
func (r *AccountRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AccountRepo) scanOne(row *sql.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.Status, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}
