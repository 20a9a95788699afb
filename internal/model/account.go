package model

import "time"

// Roles an account can hold.  Admins may manage other accounts in
// addition to their own events.
const (
	RoleAccountOwner = "account_owner"
	RoleAdmin        = "admin"
)

// Account statuses.  A deactivated account keeps its rows but is
// locked out of every authenticated endpoint until reactivated.
const (
	StatusActive      = "active"
	StatusDeactivated = "deactivated"
)

// Account represents a registered organizer as stored in the
// `accounts` table.  Emails are normalized to lowercase before
// insertion and are unique.  The json tags are omitted here because
// these structs are used by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – opaque UUID identifier.
//  Email        – unique, lowercased email address.
//  PasswordHash – bcrypt hashed password, never the plaintext.
//  Role         – account_owner or admin.
//  Status       – active or deactivated.
//  CreatedAt    – timestamp of creation.
type Account struct {
	ID           string    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	Role         string    // accounts.role
	Status       string    // accounts.status
	CreatedAt    time.Time // accounts.created_at
}
