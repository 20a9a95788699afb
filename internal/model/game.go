package model

import "time"

// Participant kinds for a registered game.  A player intends to play
// the game, a bringer will bring a physical copy to the event.
const (
	ParticipantPlayer  = "PLAYER"
	ParticipantBringer = "BRINGER"
)

// Game models a row in the `games` table: a game someone registered
// for a specific event.  The optional BGGID links the entry to its
// BoardGameGeek catalog record and drives thumbnail fetching.
//
// Fields:
//  ID         – opaque UUID identifier.
//  EventID    – event the game is registered for.
//  Title      – display title.
//  BGGID      – BoardGameGeek numeric id (0 when not linked).
//  MinPlayers – minimum player count (0 when unknown).
//  MaxPlayers – maximum player count (0 when unknown).
//  AddedBy    – display name of the guest who registered the game.
//  CreatedAt  – timestamp of registration.
type Game struct {
	ID         string    // games.id
	EventID    string    // games.event_id
	Title      string    // games.title
	BGGID      uint64    // games.bgg_id
	MinPlayers uint8     // games.min_players
	MaxPlayers uint8     // games.max_players
	AddedBy    string    // games.added_by
	CreatedAt  time.Time // games.created_at
}

// Participant models a row in the `game_participants` table.  Guests
// are identified only by a display name; they do not have accounts.
// A (game, name, kind) triple is unique.
type Participant struct {
	GameID    string    // game_participants.game_id
	Name      string    // game_participants.name
	Kind      string    // game_participants.kind (PLAYER | BRINGER)
	CreatedAt time.Time // game_participants.created_at
}
