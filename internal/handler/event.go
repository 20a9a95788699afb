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
	"github.com/spieltreff/backend/internal/middleware"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/repository"
)

// EventStore is the event persistence surface the handlers consume.
// Implemented by repository.EventRepo.
type EventStore interface {
	Create(ctx context.Context, e model.Event) error
	FindByID(ctx context.Context, id string) (model.Event, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Event, error)
	Update(ctx context.Context, e model.Event) error
}

// EventHandler bundles dependencies for the event endpoints used by
// authenticated organizers.
type EventHandler struct {
	Events EventStore
	Tokens *auth.EventTokenService
}

func NewEventHandler(events EventStore, tokens *auth.EventTokenService) *EventHandler {
	return &EventHandler{Events: events, Tokens: tokens}
}

type eventReq struct {
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
}

type eventPart struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEventPart(e model.Event) eventPart {
	return eventPart{
		ID:          e.ID,
		Title:       e.Title,
		Location:    e.Location,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Create registers a new board-game evening owned by the caller.
func (h *EventHandler) Create(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	var req eventReq
	if err := c.Bind(&req); err != nil || req.Title == "" || req.StartsAt.IsZero() {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	now := time.Now().UTC()
	ev := model.Event{
		ID:          uuid.NewString(),
		OwnerID:     acct.ID,
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Events.Create(ctx, ev); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": toEventPart(ev)})
}

// List returns the caller's events, soonest first.
func (h *EventHandler) List(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	events, err := h.Events.ListByOwner(ctx, acct.ID)
	if err != nil {
		return err
	}
	out := make([]eventPart, 0, len(events))
	for _, e := range events {
		out = append(out, toEventPart(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get returns one event.  Only the owner (or an admin) may read the
// organizer view; guests go through the event-token routes instead.
func (h *EventHandler) Get(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev, err := h.Events.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, apperror.ErrEventNotFound)
		}
		return err
	}
	if ev.OwnerID != acct.ID && acct.Role != model.RoleAdmin {
		return apperror.Respond(c, apperror.ErrNotAuthorized)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toEventPart(ev)})
}

// Update rewrites the mutable fields of an owned event.
func (h *EventHandler) Update(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	var req eventReq
	if err := c.Bind(&req); err != nil || req.Title == "" || req.StartsAt.IsZero() {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev := model.Event{
		ID:          c.Param("id"),
		OwnerID:     acct.ID,
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := h.Events.Update(ctx, ev); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperror.Respond(c, apperror.ErrEventNotFound)
		case errors.Is(err, repository.ErrForbidden):
			return apperror.Respond(c, apperror.ErrNotAuthorized)
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// IssueToken signs a share token for an owned event.  The token is
// stateless: guests holding it can use the event-scoped routes until
// it expires, and it cannot be revoked early.
func (h *EventHandler) IssueToken(c echo.Context) error {
	acct, ok := middleware.AccountFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.ErrInvalidToken)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ev, err := h.Events.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, apperror.ErrEventNotFound)
		}
		return err
	}
	if ev.OwnerID != acct.ID {
		return apperror.Respond(c, apperror.ErrNotAuthorized)
	}

	token, err := h.Tokens.Sign(ev.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
