// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// SchemeSavedQueue is the durable queue scheme events are published to.
const SchemeSavedQueue = "hall.scheme.saved"

// SchemeSavedEvent is published after a hall's seating scheme is stored.
// It carries a summary of the scheme so consumers can audit changes
// without reading the database.
type SchemeSavedEvent struct {
	HallID      uint64 `json:"hall_id"`
	CinemaID    uint64 `json:"cinema_id"`
	HallName    string `json:"hall_name"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Screen      string `json:"screen"`
	ActiveSeats int    `json:"active_seats"`
	TotalSeats  int    `json:"total_seats"`
	SavedBy     string `json:"saved_by"`
	SavedAt     string `json:"saved_at"`
}
