package cron

import (
	"context"
	"fmt"
	"time"

	"attendly/apperror"
	"attendly/config"
	"attendly/services/booking"
	"attendly/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisTaskOpt is the asynq connection for the reconcile queue.
func RedisTaskOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	}
}

// NewReconcileMux routes reconcile tasks to the booking service.
func NewReconcileMux(bookingSvc booking.BookingService, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeReconcileOccurrence, HandleReconcileTask(bookingSvc, logger))
	return mux
}

// InitReconcileWorker runs the async worker in background. The returned server
// is stopped with Shutdown.
func InitReconcileWorker(bookingSvc booking.BookingService, logger *zap.Logger) *asynq.Server {
	logger = logger.Named("reconcile-worker")
	srv := asynq.NewServer(
		RedisTaskOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewReconcileMux(bookingSvc, logger)

	go monitorRedisConnection(logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Start(mux); err != nil {
				logger.Error("Failed to start worker",
					zap.Int("attempt", attempts),
					zap.Int("maxAttempts", maxAttempts),
					zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
	return srv
}

// HandleReconcileTask settles the bookings of an ended occurrence. Bad payloads
// and vanished occurrences are not retried; every other failure is.
func HandleReconcileTask(bookingSvc booking.BookingService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReconcilePayload(task)
		if err != nil {
			logger.Error("Invalid reconcile payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}

		result, err := bookingSvc.ReconcileOccurrence(ctx, p.OccurrenceID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				logger.Warn("Occurrence gone before reconciliation", zap.String("occurrenceID", p.OccurrenceID))
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			logger.Error("Reconciliation failed", zap.String("occurrenceID", p.OccurrenceID), zap.Error(err))
			return err
		}

		logger.Info("Occurrence reconciled",
			zap.String("occurrenceID", p.OccurrenceID),
			zap.String("fireDate", p.FireDate),
			zap.Int("completed", result.Completed),
			zap.Int("noShow", result.NoShow),
			zap.Int("pending", result.Pending))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
