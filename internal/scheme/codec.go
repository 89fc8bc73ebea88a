package scheme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Errors returned when a submitted payload does not describe a valid grid.
var (
	ErrInvalidDimensions = errors.New("scheme: rows and cols must be positive")
	ErrInvalidScreen     = errors.New("scheme: screen must be top or bottom")
	ErrSeatCount         = errors.New("scheme: seat count does not match rows*cols")
	ErrSeatOrder         = errors.New("scheme: seats are not in row-major order")
)

// Encode serialises p as compact JSON. Strings are not HTML-escaped so the
// output matches what browsers produce with JSON.stringify.
func Encode(p Payload) ([]byte, error) {
	if p.Seats == nil {
		p.Seats = []Seat{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a submitted payload and validates it.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("scheme: decode payload: %w", err)
	}
	if err := p.Validate(Limits{}); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// Validate checks that p describes a complete row-major grid within lim.
func (p Payload) Validate(lim Limits) error {
	if p.Rows < 1 || p.Cols < 1 {
		return ErrInvalidDimensions
	}
	if p.Rows > lim.rowCap() || p.Cols > lim.colCap() {
		return ErrInvalidDimensions
	}
	if p.Screen != ScreenTop && p.Screen != ScreenBottom {
		return ErrInvalidScreen
	}
	if len(p.Seats)%p.Cols != 0 || len(p.Seats)/p.Cols != p.Rows {
		return ErrSeatCount
	}
	for i, s := range p.Seats {
		if s.Row != i/p.Cols+1 || s.Col != i%p.Cols+1 {
			return fmt.Errorf("%w: seat %d is (%d,%d)", ErrSeatOrder, i, s.Row, s.Col)
		}
	}
	return nil
}
