package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/middleware"
	"github.com/spieltreff/backend/internal/model"
	"github.com/spieltreff/backend/internal/queue"
	"github.com/spieltreff/backend/internal/repository"
	queue_publisher "github.com/spieltreff/backend/internal/service"
)

// GameHandler serves the event-scoped guest routes.  Callers are
// identified by the event token plus a self-chosen display name; no
// account is involved.
type GameHandler struct {
	Events EventStore
	Games  *repository.GameRepo
}

func NewGameHandler(events EventStore, games *repository.GameRepo) *GameHandler {
	return &GameHandler{Events: events, Games: games}
}

type registerGameReq struct {
	Title      string `json:"title"`
	BGGID      uint64 `json:"bgg_id"`
	MinPlayers uint8  `json:"min_players"`
	MaxPlayers uint8  `json:"max_players"`
	AddedBy    string `json:"added_by"`
}

type participationReq struct {
	Name   string `json:"name"`
	Joined bool   `json:"joined"`
}

type gamePart struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	BGGID      uint64    `json:"bgg_id,omitempty"`
	MinPlayers uint8     `json:"min_players,omitempty"`
	MaxPlayers uint8     `json:"max_players,omitempty"`
	AddedBy    string    `json:"added_by"`
	CreatedAt  time.Time `json:"created_at"`
	Players    []string  `json:"players"`
	Bringers   []string  `json:"bringers"`
}

// List returns the games of the token's event with their players and
// bringers, in registration order.
func (h *GameHandler) List(c echo.Context) error {
	eventID, ok := middleware.EventIDFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.EventToken("Event token required"))
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	games, err := h.Games.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	participants, err := h.Games.ListParticipantsByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	out := make([]gamePart, 0, len(games))
	for _, g := range games {
		p := gamePart{
			ID:         g.ID,
			Title:      g.Title,
			BGGID:      g.BGGID,
			MinPlayers: g.MinPlayers,
			MaxPlayers: g.MaxPlayers,
			AddedBy:    g.AddedBy,
			CreatedAt:  g.CreatedAt,
			Players:    []string{},
			Bringers:   []string{},
		}
		for _, part := range participants[g.ID] {
			switch part.Kind {
			case model.ParticipantPlayer:
				p.Players = append(p.Players, part.Name)
			case model.ParticipantBringer:
				p.Bringers = append(p.Bringers, part.Name)
			}
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Register adds a game to the token's event.
func (h *GameHandler) Register(c echo.Context) error {
	eventID, ok := middleware.EventIDFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.EventToken("Event token required"))
	}

	var req registerGameReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	req.Title = strings.TrimSpace(req.Title)
	req.AddedBy = strings.TrimSpace(req.AddedBy)
	if req.Title == "" || req.AddedBy == "" {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	// A signed token can outlive its event; check the row.
	if _, err := h.Events.FindByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Respond(c, apperror.ErrEventNotFound)
		}
		return err
	}

	g := model.Game{
		ID:         uuid.NewString(),
		EventID:    eventID,
		Title:      req.Title,
		BGGID:      req.BGGID,
		MinPlayers: req.MinPlayers,
		MaxPlayers: req.MaxPlayers,
		AddedBy:    req.AddedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Games.Create(ctx, g); err != nil {
		return err
	}

	h.publish(c, queue.ActivityEvent{
		Type:      queue.ActivityGameRegistered,
		EventID:   eventID,
		GameID:    g.ID,
		GameTitle: g.Title,
		Actor:     g.AddedBy,
		At:        g.CreatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"game": gamePart{
		ID:         g.ID,
		Title:      g.Title,
		BGGID:      g.BGGID,
		MinPlayers: g.MinPlayers,
		MaxPlayers: g.MaxPlayers,
		AddedBy:    g.AddedBy,
		CreatedAt:  g.CreatedAt,
		Players:    []string{},
		Bringers:   []string{},
	}})
}

// Delete removes a game the caller registered.  The display name in
// the ?name= query parameter must match the game's registrant.
func (h *GameHandler) Delete(c echo.Context) error {
	eventID, ok := middleware.EventIDFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.EventToken("Event token required"))
	}
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	g, err := h.gameInEvent(c, eventID)
	if err != nil || g == nil {
		return err
	}

	if err := h.Games.Delete(ctx, g.ID, name); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperror.Respond(c, apperror.ErrGameNotFound)
		case errors.Is(err, repository.ErrForbidden):
			return apperror.Respond(c, apperror.ErrNotAuthorized)
		}
		return err
	}

	h.publish(c, queue.ActivityEvent{
		Type:      queue.ActivityGameRemoved,
		EventID:   eventID,
		GameID:    g.ID,
		GameTitle: g.Title,
		Actor:     name,
		At:        time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusNoContent)
}

// SetPlayer marks or withdraws the caller as a player of a game.
func (h *GameHandler) SetPlayer(c echo.Context) error {
	return h.setParticipation(c, model.ParticipantPlayer)
}

// SetBringer marks or withdraws the caller as bringing a game.
func (h *GameHandler) SetBringer(c echo.Context) error {
	return h.setParticipation(c, model.ParticipantBringer)
}

func (h *GameHandler) setParticipation(c echo.Context, kind string) error {
	eventID, ok := middleware.EventIDFromContext(c)
	if !ok {
		return apperror.Respond(c, apperror.EventToken("Event token required"))
	}

	var req participationReq
	if err := c.Bind(&req); err != nil {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	g, err := h.gameInEvent(c, eventID)
	if err != nil || g == nil {
		return err
	}

	if req.Joined {
		err = h.Games.AddParticipant(ctx, model.Participant{
			GameID:    g.ID,
			Name:      req.Name,
			Kind:      kind,
			CreatedAt: time.Now().UTC(),
		})
	} else {
		err = h.Games.RemoveParticipant(ctx, g.ID, req.Name, kind)
	}
	if err != nil {
		return err
	}

	h.publish(c, queue.ActivityEvent{
		Type:      queue.ActivityParticipation,
		EventID:   eventID,
		GameID:    g.ID,
		GameTitle: g.Title,
		Actor:     req.Name,
		Kind:      kind,
		Joined:    req.Joined,
		At:        time.Now().UTC().Format(time.RFC3339),
	})

	return c.NoContent(http.StatusNoContent)
}

// gameInEvent loads the :id game and hides games of other events
// behind GAME_NOT_FOUND, so one event's token cannot enumerate
// another's registry.  Returns (nil, nil) after writing the error
// response.
func (h *GameHandler) gameInEvent(c echo.Context, eventID string) (*model.Game, error) {
	ctx, cancel := reqContext(c)
	defer cancel()

	g, err := h.Games.FindByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Respond(c, apperror.ErrGameNotFound)
		}
		return nil, err
	}
	if g.EventID != eventID {
		return nil, apperror.Respond(c, apperror.ErrGameNotFound)
	}
	return &g, nil
}

// publish sends an activity event.  PublishActivity logs failures
// itself; the broker being down must never fail the guest's request.
func (h *GameHandler) publish(c echo.Context, ev queue.ActivityEvent) {
	_ = queue_publisher.PublishActivity(c.Request().Context(), ev)
}
