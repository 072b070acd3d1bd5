package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"attendly/database/repository"
	"attendly/models"
)

type locationStore struct{ s *Store }

func (r locationStore) Create(ctx context.Context, loc *models.Location) error {
	return r.s.write(ctx, func() error {
		c := *loc
		c.AllowedTags = slices.Clone(loc.AllowedTags)
		r.s.locations[loc.ID] = c
		return nil
	})
}

func (r locationStore) GetByID(ctx context.Context, id string) (*models.Location, error) {
	var (
		loc models.Location
		ok  bool
	)
	r.s.read(ctx, func(v *snapshot) { loc, ok = v.locations[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	loc.AllowedTags = slices.Clone(loc.AllowedTags)
	return &loc, nil
}

func (r locationStore) Touch(ctx context.Context, id string) error {
	return r.s.write(ctx, func() error {
		loc, ok := r.s.locations[id]
		if !ok {
			return repository.ErrNotFound
		}
		loc.Version++
		r.s.locations[id] = loc
		return nil
	})
}

func (locationStore) EnsureIndexes(context.Context) error { return nil }

type offeringStore struct{ s *Store }

func (r offeringStore) Create(ctx context.Context, o *models.Offering) error {
	return r.s.write(ctx, func() error {
		r.s.offerings[o.ID] = *o
		return nil
	})
}

func (r offeringStore) GetByID(ctx context.Context, id string) (*models.Offering, error) {
	var (
		o  models.Offering
		ok bool
	)
	r.s.read(ctx, func(v *snapshot) { o, ok = v.offerings[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &o, nil
}

func (offeringStore) EnsureIndexes(context.Context) error { return nil }

type occurrenceStore struct{ s *Store }

func cloneOccurrence(o models.Occurrence) models.Occurrence {
	o.AllowedTags = slices.Clone(o.AllowedTags)
	if o.GeoOverride != nil {
		g := *o.GeoOverride
		o.GeoOverride = &g
	}
	return o
}

func (r occurrenceStore) Create(ctx context.Context, occ *models.Occurrence) error {
	return r.s.write(ctx, func() error {
		r.s.occurrences[occ.ID] = cloneOccurrence(*occ)
		return nil
	})
}

func (r occurrenceStore) GetByID(ctx context.Context, id string) (*models.Occurrence, error) {
	var (
		occ models.Occurrence
		ok  bool
	)
	r.s.read(ctx, func(v *snapshot) { occ, ok = v.occurrences[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	occ = cloneOccurrence(occ)
	return &occ, nil
}

func (r occurrenceStore) Update(ctx context.Context, occ *models.Occurrence) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.occurrences[occ.ID]
		if !ok || stored.Version != occ.Version {
			return repository.ErrVersionConflict
		}
		next := cloneOccurrence(*occ)
		next.Version++
		r.s.occurrences[occ.ID] = next
		occ.Version++
		return nil
	})
}

func (r occurrenceStore) Bump(ctx context.Context, id string, expectedVersion int) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.occurrences[id]
		if !ok || stored.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		stored.Version++
		r.s.occurrences[id] = stored
		return nil
	})
}

func (r occurrenceStore) FindOverlapping(ctx context.Context, locationID string, start, end time.Time, excludeID string) ([]models.Occurrence, error) {
	var out []models.Occurrence
	r.s.read(ctx, func(v *snapshot) {
		for _, o := range v.occurrences {
			if o.LocationID != locationID || o.ID == excludeID {
				continue
			}
			if o.Overlaps(start, end) {
				out = append(out, cloneOccurrence(o))
			}
		}
	})
	sortOccurrences(out)
	return out, nil
}

func (r occurrenceStore) ListByOffering(ctx context.Context, offeringID string) ([]models.Occurrence, error) {
	var out []models.Occurrence
	r.s.read(ctx, func(v *snapshot) {
		for _, o := range v.occurrences {
			if o.OfferingID == offeringID {
				out = append(out, cloneOccurrence(o))
			}
		}
	})
	sortOccurrences(out)
	return out, nil
}

func (occurrenceStore) EnsureIndexes(context.Context) error { return nil }

func sortOccurrences(out []models.Occurrence) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
}

type bookingStore struct{ s *Store }

func cloneBooking(b models.Booking) models.Booking {
	if b.CheckedInAt != nil {
		t := *b.CheckedInAt
		b.CheckedInAt = &t
	}
	return b
}

func (r bookingStore) Create(ctx context.Context, b *models.Booking) error {
	return r.s.write(ctx, func() error {
		r.s.bookings[b.ID] = cloneBooking(*b)
		return nil
	})
}

func (r bookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var (
		b  models.Booking
		ok bool
	)
	r.s.read(ctx, func(v *snapshot) { b, ok = v.bookings[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	b = cloneBooking(b)
	return &b, nil
}

func (r bookingStore) Update(ctx context.Context, b *models.Booking) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.bookings[b.ID]
		if !ok || stored.Revision != b.Revision {
			return repository.ErrVersionConflict
		}
		next := cloneBooking(*b)
		next.Revision++
		r.s.bookings[b.ID] = next
		b.Revision++
		return nil
	})
}

func (r bookingStore) CountActive(ctx context.Context, occurrenceID string) (int, error) {
	n := 0
	r.s.read(ctx, func(v *snapshot) {
		for _, b := range v.bookings {
			if b.OccurrenceID == occurrenceID && b.Status.Active() {
				n++
			}
		}
	})
	return n, nil
}

func (r bookingStore) FindHeldByConsumer(ctx context.Context, occurrenceID, consumerID string) (*models.Booking, error) {
	var found *models.Booking
	r.s.read(ctx, func(v *snapshot) {
		for _, b := range v.bookings {
			if b.OccurrenceID == occurrenceID && b.ConsumerID == consumerID && b.Status.Held() {
				c := cloneBooking(b)
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r bookingStore) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.Booking, error) {
	return r.list(ctx, func(b models.Booking) bool { return b.OccurrenceID == occurrenceID }), nil
}

func (r bookingStore) ListByConsumer(ctx context.Context, consumerID string) ([]models.Booking, error) {
	return r.list(ctx, func(b models.Booking) bool { return b.ConsumerID == consumerID }), nil
}

func (r bookingStore) list(ctx context.Context, match func(models.Booking) bool) []models.Booking {
	out := make([]models.Booking, 0)
	r.s.read(ctx, func(v *snapshot) {
		for _, b := range v.bookings {
			if match(b) {
				out = append(out, cloneBooking(b))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (bookingStore) EnsureIndexes(context.Context) error { return nil }

type checkinStore struct{ s *Store }

func cloneWindow(w models.CheckInWindow) models.CheckInWindow {
	if w.MaxUses != nil {
		n := *w.MaxUses
		w.MaxUses = &n
	}
	return w
}

func (r checkinStore) Create(ctx context.Context, w *models.CheckInWindow) error {
	return r.s.write(ctx, func() error {
		r.s.windows[w.ID] = cloneWindow(*w)
		return nil
	})
}

func (r checkinStore) GetByID(ctx context.Context, id string) (*models.CheckInWindow, error) {
	return r.find(ctx, func(w models.CheckInWindow) bool { return w.ID == id })
}

func (r checkinStore) GetByTokenHash(ctx context.Context, tokenHash string) (*models.CheckInWindow, error) {
	return r.find(ctx, func(w models.CheckInWindow) bool { return w.TokenHash == tokenHash })
}

func (r checkinStore) find(ctx context.Context, match func(models.CheckInWindow) bool) (*models.CheckInWindow, error) {
	var found *models.CheckInWindow
	r.s.read(ctx, func(v *snapshot) {
		for _, w := range v.windows {
			if match(w) {
				c := cloneWindow(w)
				found = &c
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r checkinStore) IncrementUses(ctx context.Context, id string, expectedUses int) error {
	return r.s.write(ctx, func() error {
		w, ok := r.s.windows[id]
		if !ok || w.Uses != expectedUses {
			return repository.ErrVersionConflict
		}
		w.Uses++
		r.s.windows[id] = w
		return nil
	})
}

func (r checkinStore) ListByOccurrence(ctx context.Context, occurrenceID string) ([]models.CheckInWindow, error) {
	out := make([]models.CheckInWindow, 0)
	r.s.read(ctx, func(v *snapshot) {
		for _, w := range v.windows {
			if w.OccurrenceID == occurrenceID {
				out = append(out, cloneWindow(w))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (checkinStore) EnsureIndexes(context.Context) error { return nil }
