package main

import (
	"context"
	"fmt"

	"attendly/bootstrap"
	"attendly/config"
	"attendly/cron"
	"attendly/database"
	"attendly/database/repository/memory"
	"attendly/services/notifier"
	"attendly/services/tasks"
	"attendly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// app holds everything a subcommand opened and must close again.
type app struct {
	services *bootstrap.Services
	pingers  map[string]utils.Pinger
	closers  []func()
	logger   *zap.Logger
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openRepositories connects the configured store driver.
func openRepositories(ctx context.Context, a *app) (bootstrap.Repositories, error) {
	switch config.AppConfig.StoreDriver {
	case "memory":
		a.logger.Warn("Using the in-memory store; data is lost on exit and writers must share this process")
		return bootstrap.MemoryRepositories(memory.NewStore()), nil
	case "mongo", "":
		client, err := database.InitDB(ctx)
		if err != nil {
			return bootstrap.Repositories{}, err
		}
		a.closers = append(a.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				a.logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
			}
		})
		a.pingers["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return bootstrap.MongoRepositories(client, database.Database()), nil
	default:
		return bootstrap.Repositories{}, fmt.Errorf("unknown STORE_DRIVER %q", config.AppConfig.StoreDriver)
	}
}

func openNotifier(a *app) (notifier.Notifier, error) {
	switch config.AppConfig.NotifierDriver {
	case "memory":
		return notifier.NewHub(a.logger.Named("notifier")), nil
	case "redis", "":
		client := utils.GetEventsClient()
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.pingers["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return notifier.NewRedisNotifier(client, a.logger.Named("notifier")), nil
	default:
		return nil, fmt.Errorf("unknown NOTIFIER_DRIVER %q", config.AppConfig.NotifierDriver)
	}
}

func openEnqueuer(a *app) (tasks.Enqueuer, error) {
	switch config.AppConfig.TasksDriver {
	case "none":
		a.logger.Warn("Reconciliation tasks disabled; outcomes must be recorded manually")
		return tasks.NoopEnqueuer{}, nil
	case "asynq", "":
		client := asynq.NewClient(cron.RedisTaskOpt())
		a.closers = append(a.closers, func() { _ = client.Close() })
		return tasks.NewAsynqEnqueuer(client), nil
	default:
		return nil, fmt.Errorf("unknown TASKS_DRIVER %q", config.AppConfig.TasksDriver)
	}
}

// openApp assembles the domain core from configuration.
func openApp(ctx context.Context) (*app, error) {
	a := &app{pingers: map[string]utils.Pinger{}, logger: utils.GetLogger()}

	repos, err := openRepositories(ctx, a)
	if err != nil {
		a.Close()
		return nil, err
	}
	notif, err := openNotifier(a)
	if err != nil {
		a.Close()
		return nil, err
	}
	enq, err := openEnqueuer(a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.services = bootstrap.NewServices(repos, bootstrap.Options{
		Config:   config.AppConfig,
		Clock:    utils.SystemClock{},
		Notifier: notif,
		Tasks:    enq,
		Logger:   a.logger,
	})
	return a, nil
}
