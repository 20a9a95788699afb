// Package auth implements the two token mechanisms of the API: long
// lived account tokens backed by a revocable session row, and short
// lived stateless event tokens shared with guests.  Both are HS256
// JWTs signed with the same shared secret and are told apart by their
// claim shape.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
)

// AccountTokenTTL is the fixed lifetime of an account token.  The
// JWT expiry is only the outer bound: the token dies earlier the
// moment its session row is deleted.
const AccountTokenTTL = 7 * 24 * time.Hour

// SessionStore is the persistence interface the session service
// consumes.  Implemented by repository.SessionRepo.
type SessionStore interface {
	Create(ctx context.Context, s model.Session) error
	FindByID(ctx context.Context, id string) (model.Session, error)
	ListByAccount(ctx context.Context, accountID string) ([]model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByAccount(ctx context.Context, accountID string) error
	DeleteByAccountExcept(ctx context.Context, accountID, keepID string) error
	TouchLastUsed(ctx context.Context, id string, t time.Time) error
}

// AccountStore is the account lookup interface consumed by the auth
// middleware and handlers.  Implemented by repository.AccountRepo.
type AccountStore interface {
	FindByID(ctx context.Context, id string) (model.Account, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
}

// TokenPayload is what a successfully validated account token yields.
type TokenPayload struct {
	AccountID string
	SessionID string
}

// accountClaims is the wire shape of an account token.
type accountClaims struct {
	jwt.RegisteredClaims
	AccountID string `json:"accountId"`
	SessionID string `json:"sessionId"`
}

// SessionService issues and validates account tokens.  Constructed
// once at process start and passed into handlers and middleware.
type SessionService struct {
	secret   []byte
	sessions SessionStore
}

func NewSessionService(secret string, sessions SessionStore) *SessionService {
	return &SessionService{secret: []byte(secret), sessions: sessions}
}

// CreateSession inserts a new session row for the account and signs a
// bearer token referencing it.  User agent and IP are stored verbatim
// for the session listing UI; both may be empty.  There is no cap on
// concurrent sessions per account: multi-device login is intentional.
func (s *SessionService) CreateSession(ctx context.Context, accountID, userAgent, ipAddress string) (string, error) {
	now := time.Now().UTC()
	sess := model.Session{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", err
	}

	claims := accountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccountTokenTTL)),
		},
		AccountID: accountID,
		SessionID: sess.ID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken checks a bearer token in two steps: cryptographic
// verification of signature and expiry, then a lookup of the session
// row the token references.  Both steps fail closed to (nil, nil);
// only store failures surface as an error so the caller can emit a
// 500 instead of masking an outage as a bad credential.  On success
// the session's last-used timestamp is refreshed best-effort; a
// failed touch never invalidates the request.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*TokenPayload, error) {
	claims := &accountClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid || claims.AccountID == "" || claims.SessionID == "" {
		return nil, nil
	}

	if _, err := s.sessions.FindByID(ctx, claims.SessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Row gone means the session was revoked; the token is
			// dead no matter how long its JWT expiry has left.
			return nil, nil
		}
		return nil, err
	}

	_ = s.sessions.TouchLastUsed(ctx, claims.SessionID, time.Now().UTC())

	return &TokenPayload{AccountID: claims.AccountID, SessionID: claims.SessionID}, nil
}

// RevokeSession deletes a single session row (explicit logout of one
// device).
func (s *SessionService) RevokeSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// RevokeAll deletes every session of an account.  Used by
// deactivation, admin-forced logout and admin password reset.
func (s *SessionService) RevokeAll(ctx context.Context, accountID string) error {
	return s.sessions.DeleteByAccount(ctx, accountID)
}

// RevokeAllExcept deletes every session of an account but the given
// one.  This is the password-change fence: the device performing the
// change stays logged in, every other device is logged out.
func (s *SessionService) RevokeAllExcept(ctx context.Context, accountID, keepSessionID string) error {
	return s.sessions.DeleteByAccountExcept(ctx, accountID, keepSessionID)
}

// Sessions lists the live sessions of an account.
func (s *SessionService) Sessions(ctx context.Context, accountID string) ([]model.Session, error) {
	return s.sessions.ListByAccount(ctx, accountID)
}

// Session returns one session row by id.
func (s *SessionService) Session(ctx context.Context, sessionID string) (model.Session, error) {
	return s.sessions.FindByID(ctx, sessionID)
}
