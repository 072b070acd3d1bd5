package attendance

import (
	"context"
	"time"

	bookingRepo "attendly/database/repository/booking"
	occurrenceRepo "attendly/database/repository/occurrence"
	"attendly/services/gate"
	"attendly/services/notifier"
	"attendly/utils"

	"go.uber.org/zap"
)

type AttendanceService interface {
	GetRoster(ctx context.Context, callerID, occurrenceID string) (*Roster, error)
	// WatchRoster emits a roster now and after every booking change until ctx is
	// done. The channel is closed when the watch ends.
	WatchRoster(ctx context.Context, callerID, occurrenceID string) (<-chan Roster, error)
	AttendanceSheet(ctx context.Context, callerID, occurrenceID string) ([]byte, error)
}

// DefaultAttendanceService implements AttendanceService.
type DefaultAttendanceService struct {
	Owners      *gate.Ownership
	Occurrences occurrenceRepo.OccurrenceRepository
	Bookings    bookingRepo.BookingRepository
	Notifier    notifier.Notifier
	Clock       utils.Clock
	Logger      *zap.Logger
}

func (s *DefaultAttendanceService) GetRoster(ctx context.Context, callerID, occurrenceID string) (*Roster, error) {
	if err := s.authorize(ctx, callerID, occurrenceID); err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByOccurrence(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	r := Project(occurrenceID, bookings)
	r.GeneratedAt = s.now()
	return &r, nil
}

func (s *DefaultAttendanceService) WatchRoster(ctx context.Context, callerID, occurrenceID string) (<-chan Roster, error) {
	if err := s.authorize(ctx, callerID, occurrenceID); err != nil {
		return nil, err
	}

	// Subscribe before loading so no change between the two is missed; replays
	// of already-loaded rows are dropped by revision.
	events, cancel, err := s.Notifier.Subscribe(ctx, occurrenceID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByOccurrence(ctx, occurrenceID)
	if err != nil {
		cancel()
		return nil, err
	}
	live := NewLiveRoster(occurrenceID, bookings)

	out := make(chan Roster, 1)
	out <- live.Snapshot(s.now())
	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					s.logger().Info("Roster stream ended by notifier", zap.String("occurrenceID", occurrenceID))
					return
				}
				if !live.Apply(ev) {
					continue
				}
				select {
				case out <- live.Snapshot(s.now()):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *DefaultAttendanceService) authorize(ctx context.Context, callerID, occurrenceID string) error {
	occ, err := s.Occurrences.GetByID(ctx, occurrenceID)
	if err != nil {
		return gate.StoreError(err, "occurrence", occurrenceID)
	}
	return s.Owners.Occurrence(ctx, callerID, occ)
}

func (s *DefaultAttendanceService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *DefaultAttendanceService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
