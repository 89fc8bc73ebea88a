package scheme

// Field is a text input the editor reads grid dimensions from.
type Field interface {
	Value() string
}

// Sink receives the serialised payload, usually a hidden form field.
type Sink interface {
	SetValue(string)
}

// View is a derived representation of the grid. It is re-rendered from the
// editor state after every change and is never read back.
type View interface {
	Render(Layout)
}

// TextField is an in-memory form field. It satisfies both Field and Sink.
type TextField struct {
	value string
}

// NewTextField returns a field holding v.
func NewTextField(v string) *TextField { return &TextField{value: v} }

func (f *TextField) Value() string      { return f.value }
func (f *TextField) SetValue(v string) { f.value = v }

// Layout is everything a view needs to draw the editor.
type Layout struct {
	Rows      int
	Cols      int
	RowLabels []int
	ColLabels []int
	Seats     []Seat // row-major

	Screen ScreenPosition
	// TopCurrent and BottomCurrent mark which position control is selected.
	TopCurrent    bool
	BottomCurrent bool
	// IndicatorOrder places the screen marker before (-1) or after (1) the grid.
	IndicatorOrder int
}

// Config wires an Editor to its collaborators. Every field is optional: a
// missing size input reads as empty, a missing output or view is skipped.
type Config struct {
	RowsInput Field
	ColsInput Field
	Output    Sink
	View      View
	Limits    Limits
}

// Editor maintains a rows×cols grid of toggleable seats and a screen
// position, and writes a Payload to its output after every mutation.
//
// An Editor is not safe for concurrent use; callers that share one across
// goroutines must serialise access.
type Editor struct {
	rowsInput Field
	colsInput Field
	output    Sink
	view      View
	limits    Limits

	rows   int
	cols   int
	screen ScreenPosition
	active []bool // index (row-1)*cols + (col-1)

	rowLabels []int
	colLabels []int

	topCurrent     bool
	bottomCurrent  bool
	indicatorOrder int
}

// New builds an editor sized from the configured inputs, falling back to
// DefaultRows × DefaultCols, with the screen on top. The initial payload is
// emitted before New returns.
func New(cfg Config) *Editor {
	e := &Editor{
		rowsInput: cfg.RowsInput,
		colsInput: cfg.ColsInput,
		output:    cfg.Output,
		view:      cfg.View,
		limits:    cfg.Limits,

		screen:         ScreenTop,
		topCurrent:     true,
		indicatorOrder: -1,
	}
	e.rows = ResolveDimension(fieldValue(e.rowsInput), DefaultRows, e.limits.rowCap())
	e.cols = ResolveDimension(fieldValue(e.colsInput), DefaultCols, e.limits.colCap())
	e.RegenerateGrid()
	e.EmitPayload()
	return e
}

func fieldValue(f Field) string {
	if f == nil {
		return ""
	}
	return f.Value()
}

// Rows returns the current number of rows.
func (e *Editor) Rows() int { return e.rows }

// Cols returns the current number of columns.
func (e *Editor) Cols() int { return e.cols }

// Screen returns the current screen position.
func (e *Editor) Screen() ScreenPosition { return e.screen }

// Seat reports whether the seat at (row, col) is active. ok is false when the
// coordinates fall outside the grid.
func (e *Editor) Seat(row, col int) (active, ok bool) {
	i, ok := e.index(row, col)
	if !ok {
		return false, false
	}
	return e.active[i], true
}

func (e *Editor) index(row, col int) (int, bool) {
	if row < 1 || row > e.rows || col < 1 || col > e.cols {
		return 0, false
	}
	return (row-1)*e.cols + (col - 1), true
}

// RegenerateGrid discards every seat and label and rebuilds them for the
// current dimensions. All seats come back inactive.
func (e *Editor) RegenerateGrid() {
	e.active = make([]bool, e.rows*e.cols)
	e.colLabels = make([]int, e.cols)
	for c := range e.colLabels {
		e.colLabels[c] = c + 1
	}
	e.rowLabels = make([]int, e.rows)
	for r := range e.rowLabels {
		e.rowLabels[r] = r + 1
	}
	e.render()
}

// ApplySize re-reads the size inputs and rebuilds the grid. Unusable values
// keep the current dimension. The grid is rebuilt even when the size did not
// change, so it doubles as a reset.
func (e *Editor) ApplySize() {
	e.rows = ResolveDimension(fieldValue(e.rowsInput), e.rows, e.limits.rowCap())
	e.cols = ResolveDimension(fieldValue(e.colsInput), e.cols, e.limits.colCap())
	e.RegenerateGrid()
	e.EmitPayload()
}

// Clear deactivates every seat without touching the dimensions.
func (e *Editor) Clear() {
	for i := range e.active {
		e.active[i] = false
	}
	e.render()
	e.EmitPayload()
}

// ToggleSeat flips the seat at (row, col). It returns false and changes
// nothing when the coordinates fall outside the grid.
func (e *Editor) ToggleSeat(row, col int) bool {
	i, ok := e.index(row, col)
	if !ok {
		return false
	}
	e.active[i] = !e.active[i]
	e.render()
	e.EmitPayload()
	return true
}

// SetScreenPosition moves the screen marker. Only ScreenTop and ScreenBottom
// are meaningful; other values are stored as given.
func (e *Editor) SetScreenPosition(pos ScreenPosition) {
	e.screen = pos
	e.topCurrent = pos == ScreenTop
	e.bottomCurrent = pos == ScreenBottom
	if pos == ScreenTop {
		e.indicatorOrder = -1
	} else {
		e.indicatorOrder = 1
	}
	e.render()
	e.EmitPayload()
}

// Payload projects the current state into a Payload.
func (e *Editor) Payload() Payload {
	return Payload{
		Rows:   e.rows,
		Cols:   e.cols,
		Screen: e.screen,
		Seats:  e.seats(),
	}
}

func (e *Editor) seats() []Seat {
	out := make([]Seat, 0, len(e.active))
	for r := 1; r <= e.rows; r++ {
		for c := 1; c <= e.cols; c++ {
			out = append(out, Seat{Row: r, Col: c, Active: e.active[(r-1)*e.cols+(c-1)]})
		}
	}
	return out
}

// Layout returns the view model for the current state.
func (e *Editor) Layout() Layout {
	return Layout{
		Rows:           e.rows,
		Cols:           e.cols,
		RowLabels:      append([]int(nil), e.rowLabels...),
		ColLabels:      append([]int(nil), e.colLabels...),
		Seats:          e.seats(),
		Screen:         e.screen,
		TopCurrent:     e.topCurrent,
		BottomCurrent:  e.bottomCurrent,
		IndicatorOrder: e.indicatorOrder,
	}
}

// EmitPayload writes the serialised payload to the output sink.
func (e *Editor) EmitPayload() {
	if e.output == nil {
		return
	}
	b, err := Encode(e.Payload())
	if err != nil {
		return
	}
	e.output.SetValue(string(b))
}

func (e *Editor) render() {
	if e.view != nil {
		e.view.Render(e.Layout())
	}
}
