package bootstrap

import (
	"time"

	"attendly/config"
	"attendly/database/repository/memory"
	"attendly/services/attendance"
	"attendly/services/booking"
	"attendly/services/checkin"
	"attendly/services/gate"
	"attendly/services/notifier"
	"attendly/services/occurrence"
	"attendly/services/schedule"
	"attendly/services/tasks"
	"attendly/utils"

	"go.uber.org/zap"
)

// Options carries the collaborators that differ between serve, worker and tests.
type Options struct {
	Config   config.Config
	Clock    utils.Clock
	Notifier notifier.Notifier
	Tasks    tasks.Enqueuer
	Logger   *zap.Logger
}

// Services is the assembled domain core.
type Services struct {
	Repos      Repositories
	Clock      utils.Clock
	Notifier   notifier.Notifier
	Booking    booking.BookingService
	Occurrence occurrence.OccurrenceService
	CheckIn    checkin.CheckInService
	Schedule   schedule.ScheduleService
	Attendance attendance.AttendanceService
}

func NewServices(repos Repositories, opts Options) *Services {
	cfg := opts.Config
	clock := opts.Clock
	if clock == nil {
		clock = utils.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notif := opts.Notifier
	if notif == nil {
		notif = notifier.NewHub(logger)
	}
	enq := opts.Tasks
	if enq == nil {
		enq = tasks.NoopEnqueuer{}
	}

	g := &gate.OccurrenceGate{
		Tx:          repos.Tx,
		Occurrences: repos.Occurrences,
		Locks:       utils.NewKeyedLocker(),
		Retry: gate.RetryPolicy{
			MaxRetries: cfg.GateMaxRetries,
			Backoff:    time.Duration(cfg.GateRetryBackoffMS) * time.Millisecond,
		},
		LockTimeout: time.Duration(cfg.GateLockTimeoutMS) * time.Millisecond,
		Logger:      logger.Named("gate"),
	}
	owners := &gate.Ownership{Offerings: repos.Offerings, Locations: repos.Locations}

	occSvc := &occurrence.DefaultOccurrenceService{
		Tx:             repos.Tx,
		Gate:           g,
		Owners:         owners,
		Locations:      repos.Locations,
		Offerings:      repos.Offerings,
		Occurrences:    repos.Occurrences,
		Bookings:       repos.Bookings,
		Tasks:          enq,
		Notifier:       notif,
		Clock:          clock,
		ReconcileGrace: time.Duration(cfg.ReconcileGraceMinutes) * time.Minute,
		Logger:         logger.Named("occurrence"),
	}

	return &Services{
		Repos:    repos,
		Clock:    clock,
		Notifier: notif,
		Booking: &booking.DefaultBookingService{
			Gate:        g,
			Owners:      owners,
			Bookings:    repos.Bookings,
			Occurrences: repos.Occurrences,
			Notifier:    notif,
			Clock:       clock,
			Logger:      logger.Named("booking"),
		},
		Occurrence: occSvc,
		CheckIn: &checkin.DefaultCheckInService{
			Gate:        g,
			Owners:      owners,
			Windows:     repos.CheckIns,
			Bookings:    repos.Bookings,
			Occurrences: repos.Occurrences,
			Notifier:    notif,
			Clock:       clock,
			DefaultTTL:  time.Duration(cfg.CheckInDefaultTTLMinutes) * time.Minute,
			MaxTTL:      time.Duration(cfg.CheckInMaxTTLMinutes) * time.Minute,
			Logger:      logger.Named("checkin"),
		},
		Schedule: &schedule.DefaultScheduleService{
			Owners:      owners,
			Occurrences: occSvc,
			Limits: schedule.Limits{
				DefaultCount:  cfg.ScheduleDefaultCount,
				MaxCandidates: cfg.ScheduleMaxCandidates,
				Duration:      time.Duration(cfg.ScheduleDurationMinutes) * time.Minute,
			},
			Clock:  clock,
			Logger: logger.Named("schedule"),
		},
		Attendance: &attendance.DefaultAttendanceService{
			Owners:      owners,
			Occurrences: repos.Occurrences,
			Bookings:    repos.Bookings,
			Notifier:    notif,
			Clock:       clock,
			Logger:      logger.Named("attendance"),
		},
	}
}

// NewMemory assembles services over a fresh memory store with default settings
// and an in-process notifier.
func NewMemory(clock utils.Clock) (*Services, *memory.Store) {
	store := memory.NewStore()
	return NewServices(MemoryRepositories(store), Options{Config: config.Defaults(), Clock: clock}), store
}
