// Package app wires the bot together: configuration, logging, the registry
// store, the keystore, the remote likes client, the dispatcher, the daily
// scheduler, and the Telegram transport.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"

	"likesbot/internal/config"
	"likesbot/internal/dispatch"
	"likesbot/internal/keystore"
	"likesbot/internal/likes"
	"likesbot/internal/notify"
	"likesbot/internal/scheduler"
	"likesbot/internal/storage"
	"likesbot/internal/transport/telegram"
	"likesbot/pkg/logx"
)

type App struct {
	cfgPath string

	logs *logx.Service
	log  logx.Logger

	store    storage.Store
	keys     *keystore.Keystore
	runner   *dispatch.Runner
	notifier *notify.Notifier
	sched    *scheduler.Service
	adapter  *telegram.Adapter
	router   *telegram.Router

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewApp(cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, logs.Logger().With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	keys := keystore.New(cfg.API.KeyFile)

	apiTimeout, err := config.ParseDurationField("api.timeout", cfg.API.Timeout)
	if err != nil {
		return nil, err
	}
	client := likes.NewClient(likes.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		Timeout: apiTimeout,
	}, logs.Logger().With(logx.String("comp", "likes")))

	pollTimeout, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.NewAdapter(telegram.AdapterConfig{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
	}, logs.Logger())
	if err != nil {
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	notifier := notify.New(notify.Config{AdminID: cfg.Telegram.AdminID}, adapter, logs.Logger())
	runner := dispatch.NewRunner(store, keys, client, notifier, cfg.API.MinLikes, logs.Logger())

	sched, err := scheduler.New(scheduler.Config{
		Timezone: cfg.Schedule.Timezone,
		DailyAt:  cfg.Schedule.DailyAt,
	}, func(ctx context.Context) {
		if _, err := runner.Run(ctx, dispatch.OriginAutomatic); err != nil {
			log.Error("scheduled cycle failed", logx.Err(err))
		}
	}, logs.Logger())
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	router := telegram.NewRouter(adapter, store, keys, runner, notifier, sched,
		telegram.RouterConfig{AdminID: cfg.Telegram.AdminID}, logs.Logger())

	return &App{
		cfgPath:  cfgPath,
		logs:     logs,
		log:      log,
		store:    store,
		keys:     keys,
		runner:   runner,
		notifier: notifier,
		sched:    sched,
		adapter:  adapter,
		router:   router,
	}, nil
}

// Start brings everything up and returns. The long-poll loop runs in a
// goroutine owned by the app until Stop (or ctx cancellation).
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.router.Register(runCtx)

	if err := a.sched.Start(runCtx); err != nil {
		cancel()
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.adapter.Start(runCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := config.Watch(runCtx, a.cfgPath, a.log, a.onConfigReload); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()

	// Under systemd Type=notify this flips the unit to active; elsewhere it
	// is a no-op.
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	}

	a.log.Info("bot started")
	return nil
}

// onConfigReload re-applies the hot-reloadable sections. Everything else
// (token, storage path, schedule) requires a restart.
func (a *App) onConfigReload(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.log.Info("logging config re-applied", logx.String("level", cfg.Logging.Level))
}

func (a *App) Stop(ctx context.Context) error {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		a.log.Warn("sd_notify failed", logx.Err(err))
	}

	if a.cancel != nil {
		a.cancel()
	}
	a.sched.Stop(ctx)
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		a.log.Error("storage close failed", logx.Err(err))
	}
	a.log.Info("bot stopped")
	return a.logs.Close()
}
