package model

import (
	"encoding/json"
	"time"
)

// Hall represents a screening hall within a cinema.  Its seating layout is
// kept as the scheme payload produced by the admin grid editor.
//
// Fields:
//  ID          – primary key identifier.
//  CinemaID    – ID of the containing cinema.
//  Name        – hall name, unique per cinema.
//  Description – optional description of the hall.
//  SchemeData  – serialised seating scheme (nil until one is saved).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Hall struct {
	ID          uint64          `json:"id"`          // halls.id
	CinemaID    uint64          `json:"cinema_id"`   // halls.cinema_id
	Name        string          `json:"name"`        // halls.name
	Description string          `json:"description"` // halls.description
	SchemeData  json.RawMessage `json:"scheme_data"` // halls.scheme_data (nullable text)
	CreatedAt   time.Time       `json:"created_at"`  // halls.created_at
	UpdatedAt   time.Time       `json:"updated_at"`  // halls.updated_at
}

// HasScheme reports whether a seating scheme has been saved for the hall.
func (h *Hall) HasScheme() bool {
	return len(h.SchemeData) > 0 && string(h.SchemeData) != "null"
}
