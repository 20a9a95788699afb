package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/middleware"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
	"github.com/spieltreff/backend/internal/utils"
)

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type deactivateReq struct {
	Password string `json:"password"`
}

type sessionPart struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	Current    bool      `json:"current"`
}

// ChangePassword rotates the account password.  The current password
// must be re-presented, and on success every session except the one
// performing the change is deleted: the device the user is holding
// stays logged in, all others are logged out immediately.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}
	sessionID, _ := middleware.SessionIDFromContext(c)

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	if !utils.VerifyPassword(acct.PasswordHash, req.CurrentPassword) {
		return apperror.Respond(c, apperror.ErrInvalidCredentials)
	}
	if aerr := utils.ValidatePassword(req.NewPassword); aerr != nil {
		return apperror.Respond(c, aerr)
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Accounts.UpdatePasswordHash(ctx, acct.ID, hash); err != nil {
		return err
	}
	if err := h.Sessions.RevokeAllExcept(ctx, acct.ID, sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Deactivate locks the account after a password re-confirmation and
// deletes every session.  The rows stay in place so an admin can
// reactivate the account later.
func (h *AuthHandler) Deactivate(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	var req deactivateReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	if !utils.VerifyPassword(acct.PasswordHash, req.Password) {
		return apperror.Respond(c, apperror.ErrInvalidCredentials)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Accounts.UpdateStatus(ctx, acct.ID, model.StatusDeactivated); err != nil {
		return err
	}
	if err := h.Sessions.RevokeAll(ctx, acct.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSessions returns the account's live sessions for the devices
// overview.  The session behind the presented token is flagged so
// the UI can label "this device".  LastUsedAt may lag slightly for a
// session whose validating request has not finished its touch yet.
func (h *AuthHandler) ListSessions(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}
	currentID, _ := middleware.SessionIDFromContext(c)

	ctx, cancel := reqContext(c)
	defer cancel()

	sessions, err := h.Sessions.Sessions(ctx, acct.ID)
	if err != nil {
		return err
	}

	out := make([]sessionPart, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionPart{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IPAddress:  s.IPAddress,
			CreatedAt:  s.CreatedAt,
			LastUsedAt: s.LastUsedAt,
			Current:    s.ID == currentID,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// DeleteSession revokes one of the account's own sessions ("log out
// that device").  Deleting somebody else's session answers 403, a
// session that is already gone 404.
func (h *AuthHandler) DeleteSession(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	sess, err := h.Sessions.Session(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, apperror.ErrSessionNotFound)
		}
		return err
	}
	if sess.AccountID != acct.ID {
		return apperror.Respond(c, apperror.ErrNotSessionOwner)
	}
	if err := h.Sessions.RevokeSession(ctx, sess.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
