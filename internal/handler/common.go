package handler // handler defines http handlers

import (
	"context"       // context carries request deadlines into repositories
	"encoding/json" // json decodes loosely typed form values
	"errors"        // errors provides sentinel values used in parseID
	"io"            // io reads raw request bodies
	"strconv"       // strconv converts strings to numeric types
	"strings"       // strings provides trimming helpers

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/hall-scheme-editor/internal/model" // model holds the hall type
	"github.com/iliyamo/hall-scheme-editor/internal/queue" // queue defines broker events
)

// HallStore is the subset of the hall repository used by the handlers.
type HallStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Hall, error)
	UpdateScheme(ctx context.Context, id uint64, payload []byte) error
}

// SchemePublisher announces saved schemes to other services.
type SchemePublisher interface {
	PublishSchemeSaved(ctx context.Context, ev queue.SchemeSavedEvent) error
}

// CacheEvicter drops cached public responses for a request path.
type CacheEvicter interface {
	Evict(ctx context.Context, path string) error
}

var errInvalidID = errors.New("invalid id")

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// currentUser returns the subject stored by the JWT middleware.
func currentUser(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "unknown"
}

// fieldText turns a JSON value into the text a form input would hold:
// strings are unquoted, numbers and other literals are kept as written and
// a missing value becomes empty.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// publicSchemePath is the cached public path of a hall's scheme.
func publicSchemePath(hallID uint64) string {
	return "/v1/halls/" + strconv.FormatUint(hallID, 10) + "/scheme"
}

// maxSchemeBody bounds a submitted scheme payload.
const maxSchemeBody = 2 << 20

// readBody returns the raw request body.
func readBody(c echo.Context) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxSchemeBody+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSchemeBody {
		return nil, errors.New("body too large")
	}
	return data, nil
}
