package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/auth"
)

// ContextEventID is the context key for the event id of a validated
// event token.
const ContextEventID = "event_id"

// RequireEventToken gates event-scoped guest routes on a valid event
// token.  The error code is always INVALID_EVENT_TOKEN; the message
// distinguishes a missing header, an expired token and everything
// else so guests can tell a dead share link from a broken one.
func RequireEventToken(tokens *auth.EventTokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return apperror.Respond(c, apperror.EventToken("Event token required"))
			}
			claims, status := tokens.Verify(raw)
			switch status {
			case auth.EventTokenExpired:
				return apperror.Respond(c, apperror.EventToken("Event token expired"))
			case auth.EventTokenInvalid:
				return apperror.Respond(c, apperror.EventToken("Invalid event token"))
			}
			c.Set(ContextEventID, claims.EventID)
			return next(c)
		}
	}
}

// EventIDFromContext returns the event id attached by
// RequireEventToken.
func EventIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(ContextEventID).(string)
	return id, ok
}
