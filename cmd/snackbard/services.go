package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/audio"
	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/mainloop"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/store"
)

// serviceOptions selects the display side of the daemon.
type serviceOptions struct {
	config  *config.DaemonConfig
	loop    mainloop.Loop
	factory daemon.SurfaceFactory
	// events is the display's event source; nil for none.
	events snackbar.EventSource
	logger *slog.Logger

	// onReload runs on the loop after a new config was applied to the
	// services.
	onReload func(newConfig *config.DaemonConfig)
}

// daemonServices is everything snackbard runs besides the display.
type daemonServices struct {
	logger *slog.Logger

	manager       *daemon.Manager
	server        *dbus.Server
	limiter       *daemon.SenderLimiter
	notifier      *daemon.InternalNotifier
	audio         *audio.Manager
	history       *store.Store
	keyboard      *dbus.KeyboardWatcher
	screenReader  *dbus.ScreenReader
	configWatcher *daemon.ConfigWatcher

	stopOnce    sync.Once
	releaseOnce sync.Once
}

// startServices wires the manager to history, sound, the bus and config
// reloading, and claims the bus name.
func startServices(ctx context.Context, opts serviceOptions) (*daemonServices, error) {
	cfg, logger := opts.config, opts.logger
	svc := &daemonServices{logger: logger}

	// History store
	historyPath := config.HistoryPath()
	persistence, err := store.NewJSONLPersistence(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create persistence: %w", err)
	}
	svc.history = store.NewStore(persistence)
	if err := svc.history.Hydrate(); err != nil {
		logger.Warn("failed to hydrate store", "error", err)
	}
	logger.Info("history store initialized", "path", historyPath, "count", svc.history.Count())

	// Audio
	svc.audio = audio.NewManager(cfg, logger)
	if err := svc.audio.Start(ctx); err != nil {
		logger.Warn("failed to start audio manager", "error", err)
	}

	svc.notifier = daemon.NewInternalNotifier(logger)

	svc.manager = daemon.NewManager(opts.loop, opts.factory, cfg, logger)
	svc.manager.SetStore(svc.history)
	svc.manager.SetSounds(svc.audio)
	svc.manager.SetSoundErrorCallback(svc.notifier.NotifyAudioError)
	svc.notifier.SetShowHandler(svc.manager.Show)

	// D-Bus server
	svc.limiter = daemon.NewSenderLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	svc.server = dbus.NewServer(logger)
	svc.server.SetServerInfo(dbus.ServerInfo{
		Name:    appName,
		Vendor:  "snackbar",
		Version: version,
	})
	svc.server.SetLimiter(svc.limiter)
	svc.server.SetShowHandler(svc.manager.Show)
	svc.server.SetDismissHandler(svc.manager.Dismiss)
	svc.server.SetActionHandler(svc.manager.InvokeAction)

	svc.manager.SetCloseCallback(func(id uint32, reason string) {
		if err := svc.server.EmitDismissed(id, reason); err != nil {
			logger.Warn("failed to emit dismissed signal", "id", id, "error", err)
		}
	})
	svc.manager.SetActionCallback(func(id uint32, actionKey string) {
		if err := svc.server.EmitActionInvoked(id, actionKey); err != nil {
			logger.Warn("failed to emit action signal", "id", id, "error", err)
		}
	})

	if err := svc.server.Start(); err != nil {
		svc.release()
		return nil, fmt.Errorf("failed to start D-Bus server: %w", err)
	}
	conn := svc.server.Connection()

	// Screen reader announcements
	if cfg.Accessibility.Announce {
		reader, err := dbus.NewScreenReader(conn, logger)
		if err != nil {
			logger.Warn("failed to watch screen reader status", "error", err)
		} else {
			svc.screenReader = reader
			svc.manager.SetAnnouncer(reader)
		}
	}

	// On-screen keyboard
	var sources []snackbar.EventSource
	if opts.events != nil {
		sources = append(sources, opts.events)
	}
	if cfg.Keyboard.WatchOSK {
		kb := dbus.NewKeyboardWatcher(float64(cfg.Keyboard.Height), logger)
		if err := kb.Start(conn); err != nil {
			logger.Warn("failed to watch on-screen keyboard", "error", err)
		} else {
			svc.keyboard = kb
			sources = append(sources, kb)
		}
	}
	if len(sources) > 0 {
		svc.manager.SetEvents(daemon.MergeEvents(sources...))
	}

	// Config hot reload
	svc.configWatcher, err = daemon.NewConfigWatcher("", logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else {
		svc.configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
			opts.loop.Post(func() {
				svc.applyConfig(newConfig)
				if opts.onReload != nil {
					opts.onReload(newConfig)
				}
				svc.notifier.NotifyConfigReloaded()
			})
		})
		svc.configWatcher.SetErrorCallback(svc.notifier.NotifyConfigError)
		if err := svc.configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}
	}

	svc.notifier.NotifyStartup(version)
	return svc, nil
}

// applyConfig hands a reloaded config to every service.
func (s *daemonServices) applyConfig(cfg *config.DaemonConfig) {
	s.manager.UpdateConfig(cfg)
	s.limiter.Update(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	s.audio.UpdateConfig(cfg)
	if s.keyboard != nil {
		s.keyboard.SetHeight(float64(cfg.Keyboard.Height))
	}
}

// stop closes every snackbar, waiting at most timeout, then releases the
// services. The loop must still be running.
func (s *daemonServices) stop(timeout time.Duration) {
	s.stopOnce.Do(func() {
		select {
		case <-s.manager.Stop():
		case <-time.After(timeout):
			s.logger.Warn("timed out closing snackbars")
		}
		s.release()
	})
}

// release stops the watchers, the bus service and the store.
func (s *daemonServices) release() {
	s.releaseOnce.Do(func() {
		if s.configWatcher != nil {
			s.configWatcher.Stop()
		}
		if s.keyboard != nil {
			s.keyboard.Stop()
		}
		if s.screenReader != nil {
			s.screenReader.Close()
		}
		if s.server != nil {
			if err := s.server.Stop(); err != nil {
				s.logger.Warn("error stopping D-Bus server", "error", err)
			}
		}
		if s.audio != nil {
			s.audio.Stop()
		}
		if s.history != nil {
			if err := s.history.Close(); err != nil {
				s.logger.Warn("error closing store", "error", err)
			}
		}
	})
}
