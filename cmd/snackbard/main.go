// Package main is the entry point for the snackbard daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
	"github.com/jmylchreest/snackbar/internal/display"
	"github.com/jmylchreest/snackbar/internal/mainloop"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/theme"
)

const (
	appID   = "io.github.jmylchreest.snackbard"
	appName = "snackbard"
)

var (
	// Build-time variables
	version = "dev"
)

// headlessBounds is the pretend screen of headless mode.
var headlessBounds = snackbar.Bounds{Width: 1280, Height: 720}

// stopTimeout bounds how long shutdown waits for snackbars to close.
const stopTimeout = 2 * time.Second

func main() {
	headless := flag.Bool("headless", false, "Run without a display: snackbars are logged instead of shown")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("snackbard version", version)
		os.Exit(0)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	cfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *headless {
		runHeadless(cfg, logger)
		return
	}
	runDaemonMode(cfg, logger)
}

// runHeadless runs the full D-Bus service on a goroutine loop. Snackbars go
// through their lifecycle against a log surface.
func runHeadless(cfg *config.DaemonConfig, logger *slog.Logger) {
	logger.Info("starting snackbard in headless mode", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := mainloop.NewSerial(logger)
	factory := daemon.LogSurfaceFactory(headlessBounds, float64(cfg.Display.MinHeight), logger)

	svc, err := startServices(ctx, serviceOptions{
		config:  cfg,
		loop:    loop,
		factory: factory,
		logger:  logger,
	})
	if err != nil {
		logger.Error("failed to start snackbard", "error", err)
		loop.Stop()
		os.Exit(1)
	}

	logger.Info("snackbard ready", "headless", true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	svc.stop(stopTimeout)
	loop.Stop()
	logger.Info("snackbard stopped")
}

// runDaemonMode runs snackbard as a libadwaita application showing
// layer-shell windows.
func runDaemonMode(cfg *config.DaemonConfig, logger *slog.Logger) {
	logger.Info("starting snackbard", "version", version)

	app := adw.NewApplication(appID, 0)

	// Shared state between the GTK main loop and the signal handler
	var (
		services    atomic.Pointer[daemonServices]
		themeLoader *theme.Loader
		layout      *display.MonitorLayout
		running     atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		// Snackbars close on the GTK loop, so wait here rather than in it
		if svc := services.Load(); svc != nil {
			svc.stop(stopTimeout)
		}
		glib.IdleAdd(func() {
			if themeLoader != nil {
				themeLoader.StopHotReload()
			}
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		loop := display.NewGLibLoop()

		display.ApplyColorScheme(cfg.Theme.ColorScheme)

		themeLoader = theme.NewLoader(loop, logger)
		if err := themeLoader.LoadTheme(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme, using default", "error", err)
		}
		themeLoader.Apply(nil)
		themeLoader.StartHotReload(ctx)

		layout = display.NewMonitorLayout(cfg, logger)
		layout.Watch()

		// The window factory reads the latest config on every show
		var current atomic.Pointer[config.DaemonConfig]
		current.Store(cfg)
		factory := display.WindowFactory(&app.Application, layout, current.Load, logger)

		svc, err := startServices(ctx, serviceOptions{
			config:  cfg,
			loop:    loop,
			factory: factory,
			events:  layout,
			logger:  logger,
			onReload: func(newConfig *config.DaemonConfig) {
				current.Store(newConfig)
				layout.UpdateConfig(newConfig)
				display.ApplyColorScheme(newConfig.Theme.ColorScheme)
				if err := themeLoader.Switch(ctx, newConfig.Theme.Name); err != nil {
					logger.Warn("failed to switch theme", "theme", newConfig.Theme.Name, "error", err)
				}
			},
		})
		if err != nil {
			logger.Error("failed to start snackbard", "error", err)
			app.Quit()
			return
		}
		services.Store(svc)

		themeLoader.SetReloadCallback(svc.notifier.NotifyThemeReloaded)
		themeLoader.SetErrorCallback(func(name string, err error) {
			svc.notifier.NotifyThemeError(err)
		})

		logger.Info("snackbard ready", "theme", themeLoader.CurrentTheme())

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		// The loop is gone; release what does not need it
		if svc := services.Swap(nil); svc != nil {
			svc.release()
		}
		running.Store(false)
	})

	status := app.Run(os.Args)
	cancel()

	if status != 0 {
		logger.Error("application exited with error", "status", status)
		os.Exit(status)
	}

	logger.Info("snackbard stopped")
}
