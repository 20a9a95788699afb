package model

import "time"

// Event represents a board-game evening as stored in the `events`
// table.  Events belong to the account that created them; guests
// interact with an event through a shared event token instead of a
// personal login.
//
// Fields:
//  ID          – opaque UUID identifier.
//  OwnerID     – account that created the event.
//  Title       – display title.
//  Location    – free-form venue description (may be empty).
//  Description – free-form notes (may be empty).
//  StartsAt    – scheduled start of the evening.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Event struct {
	ID          string    // events.id
	OwnerID     string    // events.owner_id
	Title       string    // events.title
	Location    string    // events.location
	Description string    // events.description
	StartsAt    time.Time // events.starts_at
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}
