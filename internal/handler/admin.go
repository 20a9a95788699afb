package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/config"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
	"github.com/spieltreff/backend/internal/utils"
)

// AdminHandler bundles dependencies for the account management
// surface.  Every route using it sits behind RequireAdmin.
type AdminHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Sessions *auth.SessionService
}

func NewAdminHandler(cfg config.Config, accounts AccountStore, sessions *auth.SessionService) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Accounts: accounts, Sessions: sessions}
}

// accountMissing is the admin-surface variant of ACCOUNT_NOT_FOUND:
// here the account is the target resource, not the caller's identity,
// so it maps to 404 instead of the middleware's 401.
var accountMissing = &apperror.Error{
	Code:    "ACCOUNT_NOT_FOUND",
	Message: "Konto nicht gefunden",
	Status:  http.StatusNotFound,
}

type roleReq struct {
	Role string `json:"role"`
}

type statusReq struct {
	Status string `json:"status"`
}

// ListAccounts returns every account, newest first.
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	accounts, err := h.Accounts.ListAll(ctx)
	if err != nil {
		return err
	}
	out := make([]accountPart, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountPart(a))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateRole promotes or demotes an account.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	if req.Role != model.RoleAccountOwner && req.Role != model.RoleAdmin {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Accounts.UpdateRole(ctx, c.Param("id"), req.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, accountMissing)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus toggles an account between active and deactivated.
// Deactivation also kills every session of the target so the lockout
// takes effect on the next request, not at token expiry.
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	if req.Status != model.StatusActive && req.Status != model.StatusDeactivated {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Accounts.UpdateStatus(ctx, c.Param("id"), req.Status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, accountMissing)
		}
		return err
	}
	if req.Status == model.StatusDeactivated {
		if err := h.Sessions.RevokeAll(ctx, c.Param("id")); err != nil {
			return err
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ForceLogout deletes every session of the target account.
func (h *AdminHandler) ForceLogout(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Accounts.FindByID(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, accountMissing)
		}
		return err
	}
	if err := h.Sessions.RevokeAll(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword sets a generated password on the target account,
// deletes all of its sessions and returns the new password once so
// the admin can hand it over out of band.  An admin acting on their
// own account logs themselves out too; that is intentional.
func (h *AdminHandler) ResetPassword(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Accounts.FindByID(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, accountMissing)
		}
		return err
	}

	generated, err := randomPassword()
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(generated, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := h.Accounts.UpdatePasswordHash(ctx, c.Param("id"), hash); err != nil {
		return err
	}
	if err := h.Sessions.RevokeAll(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"password": generated})
}

// randomPassword returns a hex-encoded one-time password.  Users are
// expected to change it; the registration policy applies to passwords
// they pick themselves.
func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
