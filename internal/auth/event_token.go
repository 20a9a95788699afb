package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// eventTokenType is the mandatory type discriminator.  Account and
// event tokens share one signing secret, so the literal "event"
// claim is what keeps an account token from being replayed against
// event-scoped endpoints.
const eventTokenType = "event"

// VerifyStatus tells the middleware why verification failed so it
// can word the 401 without re-parsing the token.
type VerifyStatus int

const (
	EventTokenOK VerifyStatus = iota
	EventTokenExpired
	EventTokenInvalid
)

// EventClaims is the wire shape of an event token.
type EventClaims struct {
	jwt.RegisteredClaims
	EventID string `json:"eventId"`
	Type    string `json:"type"`
}

// EventTokenService signs and verifies stateless event tokens.  No
// server-side record backs them: verification is purely cryptographic
// and a leaked token cannot be revoked before its natural expiry.
// That tradeoff is accepted because the token identifies an event,
// not a person.
type EventTokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewEventTokenService(secret string, ttl time.Duration) *EventTokenService {
	return &EventTokenService{secret: []byte(secret), ttl: ttl}
}

// Sign issues a share token for the event.
func (s *EventTokenService) Sign(eventID string) (string, error) {
	now := time.Now().UTC()
	claims := EventClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		EventID: eventID,
		Type:    eventTokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry, then requires the type claim to
// be exactly "event".  It never panics or returns a Go error: every
// failure maps to a status the middleware turns into a 401.  Expiry
// is reported as its own status because the parser rejects an expired
// token before any claim is trusted, so "expired" can be told apart
// from "forged or wrong type" without a second parse.
func (s *EventTokenService) Verify(token string) (*EventClaims, VerifyStatus) {
	claims := &EventClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, EventTokenExpired
		}
		return nil, EventTokenInvalid
	}
	if !tok.Valid || claims.Type != eventTokenType || claims.EventID == "" {
		return nil, EventTokenInvalid
	}
	return claims, EventTokenOK
}
