package handler // handler package contains admin hall handlers

import (
	"context"  // context carries request deadlines into repositories
	"errors"   // errors compares repository sentinels
	"net/http" // http defines status code constants
	"strings"  // strings trims text input

	"github.com/labstack/echo/v4" // echo framework supplies request context

	"github.com/iliyamo/hall-scheme-editor/internal/model"      // model holds the hall type
	"github.com/iliyamo/hall-scheme-editor/internal/repository" // repository exposes sentinels
)

// HallCatalog is the part of the hall repository used for hall management.
type HallCatalog interface {
	Create(ctx context.Context, h *model.Hall) error
	ListByCinema(ctx context.Context, cinemaID uint64) ([]*model.Hall, error)
	Delete(ctx context.Context, id uint64) error
}

// HallHandler manages the halls a seating scheme is attached to.
type HallHandler struct {
	Halls HallCatalog
	Cache CacheEvicter // may be nil
}

// NewHallHandler constructs a HallHandler and panics if the catalog is nil
func NewHallHandler(halls HallCatalog, cache CacheEvicter) *HallHandler {
	if halls == nil {
		panic("nil repository passed to NewHallHandler")
	}
	return &HallHandler{Halls: halls, Cache: cache}
}

// hallSummary omits the scheme payload from listings.
type hallSummary struct {
	ID          uint64 `json:"id"`
	CinemaID    uint64 `json:"cinema_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	HasScheme   bool   `json:"has_scheme"`
}

func summarize(h *model.Hall) hallSummary {
	return hallSummary{ID: h.ID, CinemaID: h.CinemaID, Name: h.Name, Description: h.Description, HasScheme: h.HasScheme()}
}

// CreateHall handles POST /v1/admin/halls.  New halls start without a
// scheme; one is attached by saving an editor session.
func (h *HallHandler) CreateHall(c echo.Context) error {
	var body struct {
		CinemaID    uint64 `json:"cinema_id"`   // required parent cinema
		Name        string `json:"name"`        // required hall name, at most 20 characters
		Description string `json:"description"` // optional description
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if body.CinemaID == 0 || name == "" || len([]rune(name)) > 20 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "cinema_id and name (1-20 characters) are required",
		})
	}
	hall := &model.Hall{CinemaID: body.CinemaID, Name: name, Description: strings.TrimSpace(body.Description)}
	if err := h.Halls.Create(c.Request().Context(), hall); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "hall name already used in this cinema"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create hall"})
	}
	return c.JSON(http.StatusCreated, summarize(hall))
}

// ListHalls handles GET /v1/admin/cinemas/:id/halls.
func (h *HallHandler) ListHalls(c echo.Context) error {
	cinemaID, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	halls, err := h.Halls.ListByCinema(c.Request().Context(), cinemaID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	out := make([]hallSummary, 0, len(halls))
	for _, hall := range halls {
		out = append(out, summarize(hall))
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteHall handles DELETE /v1/admin/halls/:id.
func (h *HallHandler) DeleteHall(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Halls.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete hall"})
	}
	if h.Cache != nil {
		if err := h.Cache.Evict(c.Request().Context(), publicSchemePath(id)); err != nil {
			c.Logger().Warnf("evict scheme cache for hall %d: %v", id, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
