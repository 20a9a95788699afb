package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/spieltreff/backend/internal/model"
)

// SessionRepo persists login sessions in the `sessions` table.  Row
// existence is the source of truth for token validity: every delete
// here is an immediate revocation of the tokens referencing the row.
// Implements the auth.SessionStore interface.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, account_id, user_agent, ip_address, created_at, last_used_at) VALUES (?,?,?,?,?,?)",
		s.ID, s.AccountID, s.UserAgent, s.IPAddress, s.CreatedAt, s.LastUsedAt)
	return err
}

// FindByID fetches a session row, ErrNotFound when absent.
func (r *SessionRepo) FindByID(ctx context.Context, id string) (model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,account_id,user_agent,ip_address,created_at,last_used_at FROM sessions WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.AccountID, &s.UserAgent, &s.IPAddress, &s.CreatedAt, &s.LastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	return s, err
}

// ListByAccount returns all live sessions of an account, newest first.
func (r *SessionRepo) ListByAccount(ctx context.Context, accountID string) ([]model.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,account_id,user_agent,ip_address,created_at,last_used_at FROM sessions WHERE account_id=? ORDER BY created_at DESC",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.AccountID, &s.UserAgent, &s.IPAddress, &s.CreatedAt, &s.LastUsedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes one session (single-device logout).
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	return err
}

// DeleteByAccount removes every session of an account.
func (r *SessionRepo) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE account_id=?", accountID)
	return err
}

// DeleteByAccountExcept removes every session of an account but the
// one given.  Used on password change to keep the initiating device
// logged in while fencing out all others.
func (r *SessionRepo) DeleteByAccountExcept(ctx context.Context, accountID, keepID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE account_id=? AND id<>?", accountID, keepID)
	return err
}

// TouchLastUsed refreshes the last-used timestamp.  Callers treat
// this as best-effort bookkeeping, not part of the validity contract.
func (r *SessionRepo) TouchLastUsed(ctx context.Context, id string, t time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE sessions SET last_used_at=? WHERE id=?", t, id)
	return err
}
