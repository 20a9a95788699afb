package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spieltreff/backend/internal/apperror"
	"github.com/spieltreff/backend/internal/bgg"
)

// BGGHandler exposes the catalog proxy.  The routes are public; the
// Redis response cache in front of them keeps upstream traffic low.
type BGGHandler struct {
	Client *bgg.Client
	Images *bgg.ImageService
}

func NewBGGHandler(client *bgg.Client, images *bgg.ImageService) *BGGHandler {
	return &BGGHandler{Client: client, Images: images}
}

// Search proxies a catalog search.
func (h *BGGHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return apperror.Respond(c, apperror.ErrInvalidBody)
	}
	results, err := h.Client.Search(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"items": results})
}

// Thing returns one catalog record by numeric id.
func (h *BGGHandler) Thing(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.Respond(c, apperror.ErrGameNotFound)
	}
	thing, err := h.Client.Thing(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if thing == nil {
		return apperror.Respond(c, apperror.ErrGameNotFound)
	}
	return c.JSON(http.StatusOK, echo.Map{"game": thing})
}

// Thumbnail serves a game's cached thumbnail, fetching it from
// upstream on a cache miss.  Concurrent misses for the same id share
// one download.
func (h *BGGHandler) Thumbnail(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.Respond(c, apperror.ErrGameNotFound)
	}
	path, err := h.Images.ThumbnailPath(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, bgg.ErrNoThumbnail) {
			return apperror.Respond(c, apperror.ErrNoThumbnail)
		}
		return err
	}
	return c.File(path)
}
