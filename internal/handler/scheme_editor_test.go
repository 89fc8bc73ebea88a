package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hall-scheme-editor/internal/model"
	"github.com/iliyamo/hall-scheme-editor/internal/queue"
	"github.com/iliyamo/hall-scheme-editor/internal/repository"
	"github.com/iliyamo/hall-scheme-editor/internal/scheme"
	"github.com/iliyamo/hall-scheme-editor/internal/session"
)

type fakeHalls struct {
	mu    sync.Mutex
	halls map[uint64]*model.Hall
	fail  error
}

func (f *fakeHalls) GetByID(_ context.Context, id uint64) (*model.Hall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	h, ok := f.halls[id]
	if !ok {
		return nil, repository.ErrHallNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHalls) UpdateScheme(_ context.Context, id uint64, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.halls[id]
	if !ok {
		return repository.ErrHallNotFound
	}
	h.SchemeData = append(json.RawMessage(nil), payload...)
	return nil
}

type fakePublisher struct {
	events []queue.SchemeSavedEvent
	err    error
}

func (p *fakePublisher) PublishSchemeSaved(_ context.Context, ev queue.SchemeSavedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

type fakeCache struct{ evicted []string }

func (c *fakeCache) Evict(_ context.Context, path string) error {
	c.evicted = append(c.evicted, path)
	return nil
}

type fixture struct {
	e     *echo.Echo
	halls *fakeHalls
	pub   *fakePublisher
	cache *fakeCache
}

func newFixture(t *testing.T, limits scheme.Limits) *fixture {
	t.Helper()
	f := &fixture{
		e: echo.New(),
		halls: &fakeHalls{halls: map[uint64]*model.Hall{
			1: {ID: 1, CinemaID: 9, Name: "Red"},
			2: {ID: 2, CinemaID: 9, Name: "Blue", SchemeData: json.RawMessage(`{"rows":3,"cols":4,"screen":"bottom","seats":[]}`)},
		}},
		pub:   &fakePublisher{},
		cache: &fakeCache{},
	}
	h := NewSchemeHandler(f.halls, session.NewStore(limits, 0), f.pub, f.cache)
	withUser := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", "admin")
			return next(c)
		}
	}
	g := f.e.Group("/v1/admin", withUser)
	g.POST("/halls/:id/editor", h.OpenEditor)
	g.POST("/halls/:id/scheme", h.SubmitScheme)
	g.GET("/editor/:sid", h.GetEditor)
	g.GET("/editor/:sid/view", h.GetEditorView)
	g.POST("/editor/:sid/size", h.ApplySize)
	g.POST("/editor/:sid/clear", h.Clear)
	g.POST("/editor/:sid/seats/toggle", h.ToggleSeat)
	g.POST("/editor/:sid/screen", h.SetScreen)
	g.POST("/editor/:sid/save", h.SaveEditor)
	g.DELETE("/editor/:sid", h.CloseEditor)
	f.e.GET("/v1/halls/:id/scheme", h.GetPublicScheme)
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

type editorResp struct {
	SessionID string          `json:"session_id"`
	HallID    uint64          `json:"hall_id"`
	Scheme    json.RawMessage `json:"scheme"`
	Toggled   *bool           `json:"toggled"`
}

func decodeEditor(t *testing.T, rec *httptest.ResponseRecorder) (editorResp, scheme.Payload) {
	t.Helper()
	var r editorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	var p scheme.Payload
	require.NoError(t, json.Unmarshal(r.Scheme, &p))
	return r, p
}

func (f *fixture) open(t *testing.T, hallID, body string) string {
	t.Helper()
	rec := f.do(http.MethodPost, "/v1/admin/halls/"+hallID+"/editor", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r, _ := decodeEditor(t, rec)
	return r.SessionID
}

func TestOpenEditorDefaults(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	rec := f.do(http.MethodPost, "/v1/admin/halls/1/editor", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	r, p := decodeEditor(t, rec)
	assert.NotEmpty(t, r.SessionID)
	assert.Equal(t, uint64(1), r.HallID)
	assert.Equal(t, 10, p.Rows)
	assert.Equal(t, 15, p.Cols)
	assert.Equal(t, scheme.ScreenTop, p.Screen)
	assert.Len(t, p.Seats, 150)
}

func TestOpenEditorSeedsFromStoredScheme(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	rec := f.do(http.MethodPost, "/v1/admin/halls/2/editor", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	_, p := decodeEditor(t, rec)
	assert.Equal(t, 3, p.Rows)
	assert.Equal(t, 4, p.Cols)
	// screen position always starts on top
	assert.Equal(t, scheme.ScreenTop, p.Screen)
}

func TestOpenEditorFromBody(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	rec := f.do(http.MethodPost, "/v1/admin/halls/2/editor", `{"rows":"2","cols":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	r, _ := decodeEditor(t, rec)
	assert.JSONEq(t,
		`{"rows":2,"cols":3,"screen":"top","seats":[{"row":1,"col":1,"active":false},{"row":1,"col":2,"active":false},{"row":1,"col":3,"active":false},{"row":2,"col":1,"active":false},{"row":2,"col":2,"active":false},{"row":2,"col":3,"active":false}]}`,
		string(r.Scheme))
}

func TestOpenEditorErrors(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/v1/admin/halls/42/editor", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/admin/halls/abc/editor", "").Code)

	f.halls.fail = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodPost, "/v1/admin/halls/1/editor", "").Code)
}

func TestEditorActions(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	sid := f.open(t, "1", `{"rows":2,"cols":2}`)
	base := "/v1/admin/editor/" + sid

	rec := f.do(http.MethodPost, base+"/seats/toggle", `{"row":2,"col":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	r, p := decodeEditor(t, rec)
	require.NotNil(t, r.Toggled)
	assert.True(t, *r.Toggled)
	assert.True(t, p.Seats[2].Active)

	rec = f.do(http.MethodPost, base+"/seats/toggle", `{"row":5,"col":1}`)
	r, p = decodeEditor(t, rec)
	assert.False(t, *r.Toggled)
	assert.Equal(t, 1, p.ActiveCount())

	rec = f.do(http.MethodPost, base+"/screen", `{"position":"bottom"}`)
	_, p = decodeEditor(t, rec)
	assert.Equal(t, scheme.ScreenBottom, p.Screen)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, base+"/screen", `{"position":"left"}`).Code)

	rec = f.do(http.MethodPost, base+"/clear", "")
	_, p = decodeEditor(t, rec)
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, 2, p.Rows)

	f.do(http.MethodPost, base+"/seats/toggle", `{"row":1,"col":1}`)
	rec = f.do(http.MethodPost, base+"/size", `{"rows":"3","cols":"oops"}`)
	_, p = decodeEditor(t, rec)
	assert.Equal(t, 3, p.Rows)
	assert.Equal(t, 2, p.Cols)
	assert.Equal(t, 0, p.ActiveCount())
	assert.Equal(t, scheme.ScreenBottom, p.Screen)

	rec = f.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, p = decodeEditor(t, rec)
	assert.Len(t, p.Seats, 6)
}

func TestEditorSizeRespectsLimits(t *testing.T) {
	f := newFixture(t, scheme.Limits{MaxRows: 20, MaxCols: 20})
	sid := f.open(t, "1", `{"rows":5,"cols":5}`)
	rec := f.do(http.MethodPost, "/v1/admin/editor/"+sid+"/size", `{"rows":500,"cols":6}`)
	_, p := decodeEditor(t, rec)
	assert.Equal(t, 5, p.Rows)
	assert.Equal(t, 6, p.Cols)
}

func TestEditorView(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	sid := f.open(t, "1", `{"rows":2,"cols":2}`)
	f.do(http.MethodPost, "/v1/admin/editor/"+sid+"/seats/toggle", `{"row":1,"col":2}`)

	rec := f.do(http.MethodGet, "/v1/admin/editor/"+sid+"/view", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), `class="seat active" data-row="1" data-col="2"`)
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	for _, path := range []string{"/seats/toggle", "/screen", "/clear", "/size", "/save"} {
		rec := f.do(http.MethodPost, "/v1/admin/editor/nope"+path, `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/admin/editor/nope", "").Code)
}

func TestSaveEditorStoresPayload(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	sid := f.open(t, "1", `{"rows":2,"cols":3}`)
	base := "/v1/admin/editor/" + sid
	f.do(http.MethodPost, base+"/seats/toggle", `{"row":2,"col":2}`)

	rec := f.do(http.MethodPost, base+"/save", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t,
		`{"rows":2,"cols":3,"screen":"top","seats":[{"row":1,"col":1,"active":false},{"row":1,"col":2,"active":false},{"row":1,"col":3,"active":false},{"row":2,"col":1,"active":false},{"row":2,"col":2,"active":true},{"row":2,"col":3,"active":false}]}`,
		string(f.halls.halls[1].SchemeData))
	assert.Equal(t, []string{"/v1/halls/1/scheme"}, f.cache.evicted)
	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, uint64(1), ev.HallID)
	assert.Equal(t, uint64(9), ev.CinemaID)
	assert.Equal(t, "Red", ev.HallName)
	assert.Equal(t, 1, ev.ActiveSeats)
	assert.Equal(t, 6, ev.TotalSeats)
	assert.Equal(t, "admin", ev.SavedBy)

	rec = f.do(http.MethodGet, "/v1/halls/1/scheme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(f.halls.halls[1].SchemeData), rec.Body.String())
}

func TestSaveSurvivesPublisherFailure(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	f.pub.err = errors.New("broker down")
	sid := f.open(t, "1", "")
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/v1/admin/editor/"+sid+"/save", "").Code)
	assert.True(t, f.halls.halls[1].HasScheme())
}

func TestCloseEditor(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	sid := f.open(t, "1", "")
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/v1/admin/editor/"+sid, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/admin/editor/"+sid, "").Code)
}

func TestSubmitScheme(t *testing.T) {
	f := newFixture(t, scheme.Limits{MaxRows: 2, MaxCols: 2})
	good := `{"rows":1,"cols":2,"screen":"bottom","seats":[{"row":1,"col":1,"active":true},{"row":1,"col":2,"active":false}]}`
	rec := f.do(http.MethodPost, "/v1/admin/halls/1/scheme", good)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, good, string(f.halls.halls[1].SchemeData))

	tooBig := `{"rows":3,"cols":1,"screen":"top","seats":[{"row":1,"col":1,"active":false},{"row":2,"col":1,"active":false},{"row":3,"col":1,"active":false}]}`
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/admin/halls/1/scheme", tooBig).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/v1/admin/halls/1/scheme", `{"rows":1}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/v1/admin/halls/77/scheme", good).Code)
}

func TestSubmitSchemeStoresCanonicalPayload(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	body := `{"SEATS":[{"Active":true,"COL":1,"row":1}], "Screen":"top","Cols":1,"ROWS":1,"extra":"x"}`
	rec := f.do(http.MethodPost, "/v1/admin/halls/1/scheme", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	want := `{"rows":1,"cols":1,"screen":"top","seats":[{"row":1,"col":1,"active":true}]}`
	assert.Equal(t, want, string(f.halls.halls[1].SchemeData))
	rec = f.do(http.MethodGet, "/v1/halls/1/scheme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, rec.Body.String())
}

func TestGetPublicScheme(t *testing.T) {
	f := newFixture(t, scheme.Limits{})
	rec := f.do(http.MethodGet, "/v1/halls/2/scheme", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"rows":3,"cols":4,"screen":"bottom","seats":[]}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/halls/1/scheme", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/v1/halls/5/scheme", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/v1/halls/0/scheme", "").Code)
}

func TestFieldText(t *testing.T) {
	assert.Equal(t, "", fieldText(nil))
	assert.Equal(t, "", fieldText(json.RawMessage("null")))
	assert.Equal(t, "12", fieldText(json.RawMessage(`"12"`)))
	assert.Equal(t, "12", fieldText(json.RawMessage(`12`)))
	assert.Equal(t, "1.5", fieldText(json.RawMessage(`1.5`)))
}
