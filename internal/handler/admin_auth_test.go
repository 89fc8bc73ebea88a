package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hall-scheme-editor/internal/config"
	"github.com/iliyamo/hall-scheme-editor/internal/utils"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("kino-pass", bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthHandler(config.Config{
		JWTSecret:         "secret",
		AccessTTLMin:      5,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
	})
}

func login(h *AuthHandler, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h.Login(e.NewContext(req, rec))
	return rec
}

func TestLoginIssuesToken(t *testing.T) {
	h := newAuthHandler(t)
	rec := login(h, `{"username":"admin","password":"kino-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var tok utils.AccessToken
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.NotEmpty(t, tok.Token)
}

func TestLoginRejects(t *testing.T) {
	h := newAuthHandler(t)
	assert.Equal(t, http.StatusUnauthorized, login(h, `{"username":"admin","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(h, `{"username":"root","password":"kino-pass"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(h, `{"username":"admin"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(h, `{`).Code)
}
