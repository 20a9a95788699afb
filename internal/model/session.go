package model

import "time"

// Session models a row in the `sessions` table.  One row exists per
// authenticated login; multiple concurrent sessions per account are
// allowed (multi-device login).  The row itself is the source of
// truth for token validity: deleting it immediately invalidates any
// bearer token that references it, regardless of the token's own
// cryptographic expiry.
//
// Fields:
//  ID         – opaque UUID, embedded as a claim in the account token.
//  AccountID  – owner of the session.
//  UserAgent  – client user agent captured at login (may be empty).
//  IPAddress  – client address captured at login (may be empty).
//  CreatedAt  – timestamp of login.
//  LastUsedAt – refreshed on every successful token validation.
type Session struct {
	ID         string    // sessions.id
	AccountID  string    // sessions.account_id
	UserAgent  string    // sessions.user_agent
	IPAddress  string    // sessions.ip_address
	CreatedAt  time.Time // sessions.created_at
	LastUsedAt time.Time // sessions.last_used_at
}
