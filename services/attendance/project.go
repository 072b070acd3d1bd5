// Package attendance derives the provider's live roster from booking rows.
package attendance

import (
	"sort"
	"sync"
	"time"

	"attendly/models"
)

// Roster partitions an occurrence's non-cancelled bookings. Expected holds
// bookings without a check-in; CheckedIn holds the rest, oldest check-in first.
type Roster struct {
	OccurrenceID string           `json:"occurrenceId"`
	Expected     []models.Booking `json:"expected"`
	CheckedIn    []models.Booking `json:"checkedIn"`
	GeneratedAt  time.Time        `json:"generatedAt"`
}

// Project splits bookings into the two roster sets. Cancelled bookings are in
// neither.
func Project(occurrenceID string, bookings []models.Booking) Roster {
	r := Roster{
		OccurrenceID: occurrenceID,
		Expected:     make([]models.Booking, 0),
		CheckedIn:    make([]models.Booking, 0),
	}
	for _, b := range bookings {
		if b.OccurrenceID != occurrenceID {
			continue
		}
		switch classify(b) {
		case slotExpected:
			r.Expected = append(r.Expected, b)
		case slotCheckedIn:
			r.CheckedIn = append(r.CheckedIn, b)
		}
	}
	sortExpected(r.Expected)
	sortCheckedIn(r.CheckedIn)
	return r
}

type slot int

const (
	slotNone slot = iota
	slotExpected
	slotCheckedIn
)

// classify places every non-cancelled booking in exactly one set. A checked-in
// booking whose status is neither confirmed nor completed cannot arise through
// the ledger; it is shown as expected so the partition stays total.
func classify(b models.Booking) slot {
	if b.Status == models.BookingCancelled {
		return slotNone
	}
	if b.CheckedIn() && (b.Status == models.BookingConfirmed || b.Status == models.BookingCompleted) {
		return slotCheckedIn
	}
	return slotExpected
}

func sortExpected(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.Before(bs[j].CreatedAt)
		}
		return bs[i].ID < bs[j].ID
	})
}

// sortCheckedIn orders by check-in time. A booking without one sorts last.
func sortCheckedIn(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		ti, tj := bs[i].CheckedInAt, bs[j].CheckedInAt
		switch {
		case ti == nil && tj == nil:
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.Before(*tj)
		}
		return bs[i].ID < bs[j].ID
	})
}

// LiveRoster is an incrementally patched roster. Each booking is held once, keyed
// by id, so applying an event moves it between sets atomically.
type LiveRoster struct {
	mu           sync.Mutex
	occurrenceID string
	bookings     map[string]models.Booking
}

func NewLiveRoster(occurrenceID string, bookings []models.Booking) *LiveRoster {
	lr := &LiveRoster{occurrenceID: occurrenceID, bookings: make(map[string]models.Booking, len(bookings))}
	for _, b := range bookings {
		if b.OccurrenceID == occurrenceID {
			lr.bookings[b.ID] = b
		}
	}
	return lr
}

// Apply folds a change event in. Events for other occurrences or tables, and
// events older than the held revision, are ignored. It reports whether the
// roster changed.
func (lr *LiveRoster) Apply(event models.ChangeEvent) bool {
	if event.Table != models.TableBookings || event.Booking == nil || event.OccurrenceID != lr.occurrenceID {
		return false
	}
	b := *event.Booking

	lr.mu.Lock()
	defer lr.mu.Unlock()

	held, ok := lr.bookings[b.ID]
	if event.Op == models.ChangeDelete {
		if !ok {
			return false
		}
		delete(lr.bookings, b.ID)
		return true
	}
	if ok && b.Revision <= held.Revision {
		return false
	}
	lr.bookings[b.ID] = b
	return true
}

// Snapshot projects the held bookings.
func (lr *LiveRoster) Snapshot(now time.Time) Roster {
	lr.mu.Lock()
	bookings := make([]models.Booking, 0, len(lr.bookings))
	for _, b := range lr.bookings {
		bookings = append(bookings, b)
	}
	lr.mu.Unlock()

	r := Project(lr.occurrenceID, bookings)
	r.GeneratedAt = now
	return r
}
