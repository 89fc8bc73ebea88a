// Package scheme holds the seating grid editor used by the hall admin
// forms. The editor keeps an explicit in-memory grid as its only source of
// truth; the serialised payload and any rendered view are projections of it.
package scheme

// ScreenPosition tells on which side of the grid the screen is drawn.
type ScreenPosition string

const (
	ScreenTop    ScreenPosition = "top"
	ScreenBottom ScreenPosition = "bottom"
)

// Default grid size used when no usable dimensions are supplied.
const (
	DefaultRows = 10
	DefaultCols = 15
)

// Seat is a single cell of the grid. Row and Col are 1-based.
type Seat struct {
	Row    int  `json:"row"`
	Col    int  `json:"col"`
	Active bool `json:"active"`
}

// Payload is the snapshot written into the output field after every
// mutating action. Field order is part of the wire format.
type Payload struct {
	Rows   int            `json:"rows"`
	Cols   int            `json:"cols"`
	Screen ScreenPosition `json:"screen"`
	Seats  []Seat         `json:"seats"`
}

// ActiveCount returns the number of active seats in the payload.
func (p Payload) ActiveCount() int {
	n := 0
	for _, s := range p.Seats {
		if s.Active {
			n++
		}
	}
	return n
}

// MaxDimension bounds rows and cols regardless of the configured limits.
const MaxDimension = 500

// Limits caps grid dimensions. A zero or out-of-range field falls back to
// MaxDimension.
type Limits struct {
	MaxRows int
	MaxCols int
}

func (l Limits) rowCap() int { return capOf(l.MaxRows) }
func (l Limits) colCap() int { return capOf(l.MaxCols) }

func capOf(n int) int {
	if n < 1 || n > MaxDimension {
		return MaxDimension
	}
	return n
}
