package models

import "time"

// ChangeOp is the row mutation kind carried by a change event.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangeUpdate ChangeOp = "update"
	ChangeDelete ChangeOp = "delete"
)

const (
	TableBookings    = "bookings"
	TableOccurrences = "occurrences"
)

// ChangeEvent is a row-scoped mutation notification. Delivery is at-least-once;
// consumers deduplicate on Booking.Revision.
type ChangeEvent struct {
	Op           ChangeOp    `json:"op"`
	Table        string      `json:"table"`
	OccurrenceID string      `json:"occurrenceId"`
	Booking      *Booking    `json:"booking,omitempty"`
	Occurrence   *Occurrence `json:"occurrence,omitempty"`
	At           time.Time   `json:"at"`
}
