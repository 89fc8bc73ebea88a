// Package session keeps the editor instances opened by admin users. Each
// session owns one scheme.Editor together with the form fields it is wired
// to; access to a session is serialised so every editor keeps running one
// action at a time even when requests arrive concurrently.
package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/hall-scheme-editor/internal/scheme"
)

// ErrNotFound is returned when a session id is unknown or has expired.
var ErrNotFound = errors.New("editor session not found")

// Session is one open editor together with its form fields.
type Session struct {
	ID     string
	HallID uint64

	mu       sync.Mutex
	rows     *scheme.TextField
	cols     *scheme.TextField
	output   *scheme.TextField
	view     *scheme.HTMLView
	editor   *scheme.Editor
	lastUsed time.Time
}

// Fields exposes the forms fields of a session to the callback passed to Do.
type Fields struct {
	Rows   *scheme.TextField
	Cols   *scheme.TextField
	Output *scheme.TextField
	View   *scheme.HTMLView
}

// Do runs fn with exclusive access to the session's editor.
func (s *Session) Do(fn func(e *scheme.Editor, f Fields)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.editor, Fields{Rows: s.rows, Cols: s.cols, Output: s.output, View: s.view})
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// Store holds open sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	limits   scheme.Limits
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store. Sessions idle for longer than ttl are removed
// by Sweep; a ttl of zero keeps sessions until they are deleted.
func NewStore(limits scheme.Limits, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		limits:   limits,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a new editor for hallID. rows and cols are the raw values of
// the size inputs; unusable values fall back to the editor defaults.
func (st *Store) Create(hallID uint64, rows, cols string) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		HallID:   hallID,
		rows:     scheme.NewTextField(rows),
		cols:     scheme.NewTextField(cols),
		output:   scheme.NewTextField(""),
		view:     scheme.NewHTMLView(),
		lastUsed: st.now(),
	}
	s.editor = scheme.New(scheme.Config{
		RowsInput: s.rows,
		ColsInput: s.cols,
		Output:    s.output,
		View:      s.view,
		Limits:    st.limits,
	})

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns the session with the given id and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(st.now())
	return s, nil
}

// Delete closes a session. Unknown ids are ignored.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the store ttl and returns how
// many were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Limits returns the grid limits applied to new editors.
func (st *Store) Limits() scheme.Limits { return st.limits }

// FormatSize renders a stored dimension the way a size input would hold it.
func FormatSize(n int) string {
	if n < 1 {
		return ""
	}
	return strconv.Itoa(n)
}
