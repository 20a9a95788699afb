// Package middleware provides shared request processing for handlers:
// account authentication, role gating, event-token gating and the
// Redis response cache.
package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
)

// Context keys under which auth middleware stores resolved identity.
const (
	ContextAccount   = "account"
	ContextSessionID = "session_id"
)

const bearerPrefix = "Bearer "

// bearerToken extracts the token from the Authorization header.  The
// scheme must be literally "Bearer " (case-sensitive); anything else,
// including a missing header, counts as absent credentials rather
// than a distinct error.
func bearerToken(c echo.Context) (string, bool) {
	h := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return "", false
	}
	return strings.TrimPrefix(h, bearerPrefix), true
}

// resolveAccount validates the bearer token and loads its account.
// Credential and state failures return an *apperror.Error; store
// failures return a plain error which callers bubble up so the
// generic 500 handler answers instead of a misleading 401.
func resolveAccount(c echo.Context, sessions *auth.SessionService, accounts auth.AccountStore) (model.Account, string, *apperror.Error, error) {
	token, ok := bearerToken(c)
	if !ok {
		return model.Account{}, "", apperror.ErrInvalidToken, nil
	}
	payload, err := sessions.ValidateToken(c.Request().Context(), token)
	if err != nil {
		return model.Account{}, "", nil, err
	}
	if payload == nil {
		return model.Account{}, "", apperror.ErrInvalidToken, nil
	}
	acct, err := accounts.FindByID(c.Request().Context(), payload.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// The session outlived its account.  Reported separately
			// from INVALID_TOKEN for diagnosability.
			return model.Account{}, "", apperror.ErrAccountNotFound, nil
		}
		return model.Account{}, "", nil, err
	}
	if acct.Status == model.StatusDeactivated {
		return model.Account{}, "", apperror.ErrAccountDeactivated, nil
	}
	return acct, payload.SessionID, nil, nil
}

// RequireAuth gates a route group on a valid account token.  On
// success the resolved account and session id are attached to the
// request context for handlers downstream.
func RequireAuth(sessions *auth.SessionService, accounts auth.AccountStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acct, sessionID, aerr, err := resolveAccount(c, sessions, accounts)
			if err != nil {
				return err
			}
			if aerr != nil {
				return apperror.Respond(c, aerr)
			}
			c.Set(ContextAccount, acct)
			c.Set(ContextSessionID, sessionID)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireAuth.  A missing account means
// the middleware chain is misordered and is treated as an invalid
// token rather than a panic.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acct, ok := c.Get(ContextAccount).(model.Account)
			if !ok {
				return apperror.Respond(c, apperror.ErrInvalidToken)
			}
			if acct.Role != model.RoleAdmin {
				return apperror.Respond(c, apperror.ErrNotAuthorized)
			}
			return next(c)
		}
	}
}

// OptionalAuth attaches the account when a valid token is presented
// and silently proceeds otherwise.  It never writes a response, so
// handlers can branch on authenticated vs anonymous callers.
func OptionalAuth(sessions *auth.SessionService, accounts auth.AccountStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acct, sessionID, aerr, err := resolveAccount(c, sessions, accounts)
			if err != nil {
				return err
			}
			if aerr == nil {
				c.Set(ContextAccount, acct)
				c.Set(ContextSessionID, sessionID)
			}
			return next(c)
		}
	}
}

// AccountFromContext returns the account attached by RequireAuth or
// OptionalAuth, with ok=false when the request is anonymous.
func AccountFromContext(c echo.Context) (model.Account, bool) {
	acct, ok := c.Get(ContextAccount).(model.Account)
	return acct, ok
}

// SessionIDFromContext returns the session id of the validated token.
func SessionIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(ContextSessionID).(string)
	return id, ok
}
