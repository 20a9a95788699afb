package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/spieltreff/backend/internal/model"
)

// GameRepo persists registered games and their participants.
type GameRepo struct{ DB *sql.DB }

func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{DB: db} }

// Create inserts a game row.
func (r *GameRepo) Create(ctx context.Context, g model.Game) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO games (id, event_id, title, bgg_id, min_players, max_players, added_by, created_at) VALUES (?,?,?,?,?,?,?,?)",
		g.ID, g.EventID, g.Title, g.BGGID, g.MinPlayers, g.MaxPlayers, g.AddedBy, g.CreatedAt)
	return err
}

// FindByID fetches a game, ErrNotFound when absent.
func (r *GameRepo) FindByID(ctx context.Context, id string) (model.Game, error) {
	var g model.Game
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,event_id,title,bgg_id,min_players,max_players,added_by,created_at FROM games WHERE id=? LIMIT 1",
		id).Scan(&g.ID, &g.EventID, &g.Title, &g.BGGID, &g.MinPlayers, &g.MaxPlayers, &g.AddedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Game{}, ErrNotFound
	}
	return g, err
}

// ListByEvent returns the games of an event in registration order.
func (r *GameRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Game, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,event_id,title,bgg_id,min_players,max_players,added_by,created_at FROM games WHERE event_id=? ORDER BY created_at ASC",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Game
	for rows.Next() {
		var g model.Game
		if err := rows.Scan(&g.ID, &g.EventID, &g.Title, &g.BGGID, &g.MinPlayers, &g.MaxPlayers, &g.AddedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Delete removes a game registered by addedBy.  ErrForbidden when the
// game belongs to a different guest, ErrNotFound when absent.
// Participants are removed by the ON DELETE CASCADE on the child
// table.
func (r *GameRepo) Delete(ctx context.Context, id, addedBy string) error {
	g, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(g.AddedBy, addedBy) {
		return ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM games WHERE id=?", id)
	return err
}

// AddParticipant marks name as player or bringer for a game.  The
// insert is idempotent: re-marking an existing participation is not
// an error.
func (r *GameRepo) AddParticipant(ctx context.Context, p model.Participant) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO game_participants (game_id, name, kind, created_at) VALUES (?,?,?,?) ON DUPLICATE KEY UPDATE created_at=created_at",
		p.GameID, p.Name, p.Kind, p.CreatedAt)
	return err
}

// RemoveParticipant withdraws a participation mark.
func (r *GameRepo) RemoveParticipant(ctx context.Context, gameID, name, kind string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM game_participants WHERE game_id=? AND name=? AND kind=?", gameID, name, kind)
	return err
}

// ListParticipantsByEvent returns every participation mark of an
// event keyed by game id, for assembling the games listing in one
// query instead of N.
func (r *GameRepo) ListParticipantsByEvent(ctx context.Context, eventID string) (map[string][]model.Participant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT p.game_id, p.name, p.kind, p.created_at
		 FROM game_participants p JOIN games g ON g.id = p.game_id
		 WHERE g.event_id=? ORDER BY p.created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.Participant)
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.GameID, &p.Name, &p.Kind, &p.CreatedAt); err != nil {
			return nil, err
		}
		out[p.GameID] = append(out[p.GameID], p)
	}
	return out, rows.Err()
}
