package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/auth"
	"github.com/spieltreff/backend/internal/config"
	"github.com/spieltreff/backend/internal/middleware"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
	"github.com/spieltreff/backend/internal/utils"
)

// AccountStore is the account persistence surface the handlers
// consume.  Implemented by repository.AccountRepo.
type AccountStore interface {
	Create(ctx context.Context, a model.Account) error
	FindByID(ctx context.Context, id string) (model.Account, error)
	FindByEmail(ctx context.Context, email string) (model.Account, error)
	ListAll(ctx context.Context) ([]model.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id, role string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

// AuthHandler bundles dependencies for registration, login and the
// current-account endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Sessions *auth.SessionService
}

func NewAuthHandler(cfg config.Config, accounts AccountStore, sessions *auth.SessionService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts, Sessions: sessions}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountPart struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toAccountPart(a model.Account) accountPart {
	return accountPart{ID: a.ID, Email: a.Email, Role: a.Role, Status: a.Status, CreatedAt: a.CreatedAt}
}

func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// Register creates a new account.  The password policy and email
// shape are validated before anything is hashed; a duplicate email
// answers 409 so clients can offer a login link instead.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	email := utils.NormalizeEmail(req.Email)
	if aerr := utils.ValidateEmail(email); aerr != nil {
		return apperror.Respond(c, aerr)
	}
	if aerr := utils.ValidatePassword(req.Password); aerr != nil {
		return apperror.Respond(c, aerr)
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct := model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAccountOwner,
		Status:       model.StatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return apperror.Respond(c, apperror.ErrEmailExists)
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{"account": toAccountPart(acct)})
}

// Login verifies credentials and opens a new session.  A deactivated
// account is told apart from bad credentials (403 vs 401) and never
// gets a session row.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	acct, err := h.Accounts.FindByEmail(ctx, utils.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, apperror.ErrInvalidCredentials)
		}
		return err
	}
	if !utils.VerifyPassword(acct.PasswordHash, req.Password) {
		return apperror.Respond(c, apperror.ErrInvalidCredentials)
	}
	if acct.Status == model.StatusDeactivated {
		return apperror.Respond(c, apperror.ErrAccountDeactivated)
	}

	token, err := h.Sessions.CreateSession(ctx, acct.ID, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":   token,
		"account": toAccountPart(acct),
	})
}

// Logout deletes the session behind the presented token, which
// invalidates the token immediately on this device only.
func (h *AuthHandler) Logout(c echo.Context) error {
	sessionID, ok := middleware.SessionIDFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Sessions.RevokeSession(ctx, sessionID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}
	return c.JSON(http.StatusOK, echo.Map{"account": toAccountPart(acct)})
}
