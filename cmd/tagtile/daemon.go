package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/daemon"
	"github.com/1broseidon/tagtile/internal/hotkeys"
	"github.com/1broseidon/tagtile/internal/platform"
)

func (a *app) daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the tagtile daemon (foreground)",
		Long: "Connect to the X server, manage client windows and serve tag commands on the IPC socket.\n" +
			"SIGHUP reloads the config; SIGINT and SIGTERM shut down.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDaemon(cmd.Context())
		},
	}
}

func (a *app) runDaemon(ctx context.Context) error {
	res, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}

	d, err := daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: res.Path,
		SocketPath: a.v.GetString("socket"),
		Backend:    backend,
		Logger:     logger,
	})
	if err != nil {
		backend.Disconnect()
		return err
	}

	if hk, err := hotkeys.NewHandler(backend, d); err != nil {
		logger.Warn("hotkeys disabled", "error", err)
	} else {
		logger.Info("hotkeys bound", "count", hk.Apply(cfg.Hotkeys))
		d.OnReload(func(c *config.Config) {
			logger.Info("hotkeys rebound", "count", hk.Apply(c.Hotkeys))
		})
	}

	if err := backend.WatchWindows(func() {
		if err := d.Reconcile(); err != nil {
			logger.Warn("sync after client list change failed", "error", err)
		}
	}); err != nil {
		logger.Warn("client list watch disabled, relying on periodic sync", "error", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				if err := d.Reload(); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Run(ctx)
		// Closing the connection wakes the event loop so it sees Quit.
		backend.Quit()
		backend.Disconnect()
	}()

	logger.Info("entering event loop")
	backend.EventLoop()
	stop()
	if err := <-errCh; err != nil {
		return err
	}
	logger.Info("tagtile daemon stopped")
	return nil
}
