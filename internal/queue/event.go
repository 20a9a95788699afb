// Package queue defines message payloads exchanged over the message
// broker and the background consumer that turns them into the
// activity feed.
package queue

// Activity event types published by the game handlers.
const (
	ActivityGameRegistered = "game.registered"
	ActivityGameRemoved    = "game.removed"
	ActivityParticipation  = "participation.changed"
)

// ActivityEvent is published whenever an event's game list or
// participation changes.  It carries enough information for
// downstream consumers to log or notify without querying the primary
// database.
type ActivityEvent struct {
	Type      string `json:"type"`
	EventID   string `json:"event_id"`
	GameID    string `json:"game_id"`
	GameTitle string `json:"game_title"`
	Actor     string `json:"actor"`
	Kind      string `json:"kind,omitempty"`   // PLAYER | BRINGER for participation changes
	Joined    bool   `json:"joined,omitempty"` // true = marked, false = withdrawn
	At        string `json:"at"`
}
