package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingNoShow    BookingStatus = "no_show"
)

// PaymentStatus tracks the payment side of a booking. No payment is captured here.
type PaymentStatus string

const (
	PaymentNone     PaymentStatus = "none"
	PaymentReserved PaymentStatus = "reserved"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// bookingTransitions lists every lifecycle edge. Check-in is not an edge: it keeps
// a confirmed booking confirmed and only sets CheckedInAt.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted, BookingNoShow},
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Active reports whether a booking in status s counts toward occurrence capacity.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingCompleted
}

// Held reports whether a booking in status s still belongs to its consumer.
// Only a cancelled booking lets the consumer reserve the occurrence again.
func (s BookingStatus) Held() bool {
	return s != BookingCancelled
}

// CanTransition reports whether s -> to is an edge of the lifecycle.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ActiveStatuses is the set counted by the capacity invariant.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted}
}

// HeldStatuses is every status except cancelled.
func HeldStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingNoShow}
}

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentNone, PaymentReserved, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Booking is one consumer's reservation against one occurrence.
type Booking struct {
	ID              string        `bson:"id" json:"id"`
	OccurrenceID    string        `bson:"occurrenceId" json:"occurrenceId"`
	ConsumerID      string        `bson:"consumerId" json:"consumerId"`
	Status          BookingStatus `bson:"status" json:"status"`
	PaymentStatus   PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	CheckedInAt     *time.Time    `bson:"checkedInAt,omitempty" json:"checkedInAt,omitempty"`
	CheckInWindowID string        `bson:"checkInWindowId,omitempty" json:"checkInWindowId,omitempty"`
	Revision        int           `bson:"revision" json:"revision"`
	CreatedAt       time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CheckedIn reports whether a check-in timestamp is set.
func (b *Booking) CheckedIn() bool {
	return b.CheckedInAt != nil
}
