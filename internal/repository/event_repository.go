package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spieltreff/backend/internal/model"
)

// EventRepo persists board-game events in the `events` table.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

// Create inserts an event row.
func (r *EventRepo) Create(ctx context.Context, e model.Event) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO events (id, owner_id, title, location, description, starts_at, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		e.ID, e.OwnerID, e.Title, e.Location, e.Description, e.StartsAt, e.CreatedAt, e.UpdatedAt)
	return err
}

// FindByID fetches an event, ErrNotFound when absent.
func (r *EventRepo) FindByID(ctx context.Context, id string) (model.Event, error) {
	var e model.Event
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,owner_id,title,location,description,starts_at,created_at,updated_at FROM events WHERE id=? LIMIT 1",
		id).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Location, &e.Description, &e.StartsAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return e, err
}

// ListByOwner returns the events of one account, soonest first.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,owner_id,title,location,description,starts_at,created_at,updated_at FROM events WHERE owner_id=? ORDER BY starts_at ASC",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Location, &e.Description, &e.StartsAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an event owned by ownerID.
// ErrForbidden when the event exists but belongs to someone else.
func (r *EventRepo) Update(ctx context.Context, e model.Event) error {
	cur, err := r.FindByID(ctx, e.ID)
	if err != nil {
		return err
	}
	if cur.OwnerID != e.OwnerID {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE events SET title=?, location=?, description=?, starts_at=?, updated_at=? WHERE id=?",
		e.Title, e.Location, e.Description, e.StartsAt, e.UpdatedAt, e.ID)
	return err
}
