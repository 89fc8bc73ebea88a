package handler // handler package contains the admin seating scheme handlers

import (
	"context"       // context bounds repository and broker calls
	"encoding/json" // json reads stored schemes and loose request bodies
	"errors"        // errors compares repository sentinels
	"net/http"      // http defines status code constants
	"time"          // time stamps saved events

	"github.com/labstack/echo/v4" // echo framework supplies request context

	"github.com/iliyamo/hall-scheme-editor/internal/queue"      // queue defines the saved event
	"github.com/iliyamo/hall-scheme-editor/internal/repository" // repository exposes ErrHallNotFound
	"github.com/iliyamo/hall-scheme-editor/internal/scheme"     // scheme implements the grid editor
	"github.com/iliyamo/hall-scheme-editor/internal/session"    // session holds open editors
)

// SchemeHandler exposes the seating grid editor over HTTP.  Every editor
// action maps to one endpoint and answers with the current output field
// value, which is exactly what the admin form would submit.
type SchemeHandler struct {
	Halls     HallStore       // Halls loads and stores hall schemes
	Sessions  *session.Store  // Sessions keeps the open editors
	Publisher SchemePublisher // Publisher announces saved schemes; may be nil
	Cache     CacheEvicter    // Cache drops stale public responses; may be nil
}

// NewSchemeHandler constructs a SchemeHandler and panics if a required dependency is nil
func NewSchemeHandler(halls HallStore, sessions *session.Store, pub SchemePublisher, cache CacheEvicter) *SchemeHandler {
	if halls == nil || sessions == nil {
		panic("nil dependency passed to NewSchemeHandler")
	}
	return &SchemeHandler{Halls: halls, Sessions: sessions, Publisher: pub, Cache: cache}
}

// editorResponse is returned by every editor endpoint.
type editorResponse struct {
	SessionID string          `json:"session_id"`
	HallID    uint64          `json:"hall_id"`
	Scheme    json.RawMessage `json:"scheme"`           // current output field value
	Toggled   *bool           `json:"toggled,omitempty"` // set by the toggle endpoint only
}

func respondEditor(c echo.Context, status int, s *session.Session, toggled *bool) error {
	var out string
	s.Do(func(_ *scheme.Editor, f session.Fields) { out = f.Output.Value() })
	return c.JSON(status, editorResponse{SessionID: s.ID, HallID: s.HallID, Scheme: json.RawMessage(out), Toggled: toggled})
}

// sizeBody carries raw size field values; numbers and strings are both accepted.
type sizeBody struct {
	Rows json.RawMessage `json:"rows"`
	Cols json.RawMessage `json:"cols"`
}

// openSession looks up the :sid session.  When it is missing the 404 has
// already been written and a nil session is returned.
func (h *SchemeHandler) openSession(c echo.Context) (*session.Session, error) {
	s, err := h.Sessions.Get(c.Param("sid"))
	if err != nil {
		return nil, c.JSON(http.StatusNotFound, map[string]string{"error": "editor session not found"})
	}
	return s, nil
}

// OpenEditor handles POST /v1/admin/halls/:id/editor.  The size fields are
// seeded from the request body when given, otherwise from the hall's stored
// scheme; a hall without a scheme opens with the default grid.
func (h *SchemeHandler) OpenEditor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}

	var body sizeBody
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
	}
	rows, cols := fieldText(body.Rows), fieldText(body.Cols)
	if rows == "" && cols == "" && hall.HasScheme() {
		var stored struct {
			Rows int `json:"rows"`
			Cols int `json:"cols"`
		}
		if err := json.Unmarshal(hall.SchemeData, &stored); err == nil {
			rows, cols = session.FormatSize(stored.Rows), session.FormatSize(stored.Cols)
		} else {
			c.Logger().Warnf("hall %d: unreadable scheme_data: %v", id, err)
		}
	}

	s := h.Sessions.Create(id, rows, cols)
	return respondEditor(c, http.StatusCreated, s, nil)
}

// GetEditor handles GET /v1/admin/editor/:sid.
func (h *SchemeHandler) GetEditor(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	return respondEditor(c, http.StatusOK, s, nil)
}

// GetEditorView handles GET /v1/admin/editor/:sid/view and returns the
// rendered grid markup.
func (h *SchemeHandler) GetEditorView(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	var (
		markup    string
		renderErr error
	)
	s.Do(func(_ *scheme.Editor, f session.Fields) { markup, renderErr = f.View.HTML() })
	if renderErr != nil {
		c.Logger().Errorf("render editor %s: %v", s.ID, renderErr)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "render failed"})
	}
	return c.HTML(http.StatusOK, markup)
}

// ApplySize handles POST /v1/admin/editor/:sid/size.  The body values are
// written into the size fields and the grid is rebuilt; unusable values keep
// the current dimension.
func (h *SchemeHandler) ApplySize(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	var body sizeBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	s.Do(func(e *scheme.Editor, f session.Fields) {
		f.Rows.SetValue(fieldText(body.Rows))
		f.Cols.SetValue(fieldText(body.Cols))
		e.ApplySize()
	})
	return respondEditor(c, http.StatusOK, s, nil)
}

// Clear handles POST /v1/admin/editor/:sid/clear.
func (h *SchemeHandler) Clear(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	s.Do(func(e *scheme.Editor, _ session.Fields) { e.Clear() })
	return respondEditor(c, http.StatusOK, s, nil)
}

type toggleBody struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ToggleSeat handles POST /v1/admin/editor/:sid/seats/toggle.  Coordinates
// outside the grid leave the scheme unchanged and report toggled=false.
func (h *SchemeHandler) ToggleSeat(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	var body toggleBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	var toggled bool
	s.Do(func(e *scheme.Editor, _ session.Fields) { toggled = e.ToggleSeat(body.Row, body.Col) })
	return respondEditor(c, http.StatusOK, s, &toggled)
}

type screenBody struct {
	Position scheme.ScreenPosition `json:"position"`
}

// SetScreen handles POST /v1/admin/editor/:sid/screen.
func (h *SchemeHandler) SetScreen(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	var body screenBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Position != scheme.ScreenTop && body.Position != scheme.ScreenBottom {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "position must be top or bottom"})
	}
	s.Do(func(e *scheme.Editor, _ session.Fields) { e.SetScreenPosition(body.Position) })
	return respondEditor(c, http.StatusOK, s, nil)
}

// CloseEditor handles DELETE /v1/admin/editor/:sid.
func (h *SchemeHandler) CloseEditor(c echo.Context) error {
	h.Sessions.Delete(c.Param("sid"))
	return c.NoContent(http.StatusNoContent)
}

// SaveEditor handles POST /v1/admin/editor/:sid/save.  It submits the
// editor's output field exactly as the admin form would.
func (h *SchemeHandler) SaveEditor(c echo.Context) error {
	s, err := h.openSession(c)
	if err != nil || s == nil {
		return err
	}
	var out string
	s.Do(func(_ *scheme.Editor, f session.Fields) { out = f.Output.Value() })
	return h.store(c, s.HallID, []byte(out))
}

// SubmitScheme handles POST /v1/admin/halls/:id/scheme.  The request body is
// the serialised payload from the hidden scheme field.
func (h *SchemeHandler) SubmitScheme(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	data, err := readBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	return h.store(c, id, data)
}

// store validates the payload, writes its canonical encoding to the hall and
// announces the change.  Broker and cache failures are logged but do not fail the save.
func (h *SchemeHandler) store(c echo.Context, hallID uint64, data []byte) error {
	p, err := scheme.Decode(data)
	if err == nil {
		err = p.Validate(h.Sessions.Limits())
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	canonical, err := scheme.Encode(p)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not encode scheme"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hall, err := h.Halls.GetByID(ctx, hallID)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if err := h.Halls.UpdateScheme(ctx, hallID, canonical); err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save scheme"})
	}

	if h.Cache != nil {
		if err := h.Cache.Evict(ctx, publicSchemePath(hallID)); err != nil {
			c.Logger().Warnf("evict scheme cache for hall %d: %v", hallID, err)
		}
	}
	if h.Publisher != nil {
		ev := queue.SchemeSavedEvent{
			HallID:      hallID,
			CinemaID:    hall.CinemaID,
			HallName:    hall.Name,
			Rows:        p.Rows,
			Cols:        p.Cols,
			Screen:      string(p.Screen),
			ActiveSeats: p.ActiveCount(),
			TotalSeats:  len(p.Seats),
			SavedBy:     currentUser(c),
			SavedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publisher.PublishSchemeSaved(ctx, ev); err != nil {
			c.Logger().Warnf("publish scheme saved for hall %d: %v", hallID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"hall_id":      hallID,
		"rows":         p.Rows,
		"cols":         p.Cols,
		"screen":       p.Screen,
		"active_seats": p.ActiveCount(),
	})
}

// GetPublicScheme handles GET /v1/halls/:id/scheme and returns the stored
// payload unchanged.
func (h *SchemeHandler) GetPublicScheme(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	hall, err := h.Halls.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrHallNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "hall not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	if !hall.HasScheme() {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "scheme not set"})
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, hall.SchemeData)
}
