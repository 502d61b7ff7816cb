// Package daemon owns the window-manager state and serializes every
// change to it: IPC commands, hotkeys, config reloads and reconciliation
// against the window system.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/focus"
	"github.com/1broseidon/tagtile/internal/history"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/rules"
	"github.com/1broseidon/tagtile/internal/status"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
	"github.com/1broseidon/tagtile/internal/tree"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Options configures a Daemon.
type Options struct {
	Config     *config.Config
	ConfigPath string // reloaded on RELOAD and watched when non-empty
	SocketPath string // empty uses the runtime default
	StatusPath string // empty uses Config.StatusFIFO
	Backend    platform.Backend
	Logger     *slog.Logger
}

// Daemon serializes access to the engine. Every exported method takes the
// lock, so a retag always finishes, arrange and focus handoff included,
// before the next one starts.
type Daemon struct {
	mu sync.Mutex

	cfg        *config.Config
	configPath string
	socketPath string
	backend    platform.Backend
	logger     *slog.Logger

	engine   *wm.Engine
	arranger *tiling.Arranger
	history  *history.History
	focus    *focus.Authority
	reporter *status.Reporter
	rules    *rules.Matcher

	onReload []func(*config.Config)
}

// New builds the tag registry and one monitor per display, each with the
// desktops configured for its output.
func New(opts Options) (*Daemon, error) {
	if opts.Backend == nil {
		return nil, errors.New("daemon: backend is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	reg := tags.NewRegistry()
	if err := reg.Init(cfg.DefaultTag); err != nil {
		return nil, fmt.Errorf("failed to init tags: %w", err)
	}
	for _, name := range cfg.Tags {
		if _, err := reg.Add(name); err != nil && !errors.Is(err, tags.ErrExists) {
			return nil, fmt.Errorf("failed to add tag %q: %w", name, err)
		}
	}

	state, err := buildState(cfg, reg, opts.Backend)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		socketPath: opts.SocketPath,
		backend:    opts.Backend,
		logger:     logger,
		arranger:   tiling.NewArranger(opts.Backend, cfg.Layout, logger),
		history:    history.New(0),
		rules:      rules.NewMatcher(cfg.Rules),
	}
	d.focus = focus.NewAuthority(opts.Backend, d.history, logger)

	statusPath := opts.StatusPath
	if statusPath == "" {
		statusPath = cfg.StatusFIFO
	}
	d.reporter = status.NewReporter(statusPath, func() string { return status.Format(reg, state) }, logger)

	d.engine = wm.New(state, wm.Config{
		Registry: reg,
		Layout:   d.arranger,
		Surface:  opts.Backend,
		Focus:    d.focus,
		History:  d.history,
		Status:   d.reporter,
		Logger:   logger,
	})
	return d, nil
}

func buildState(cfg *config.Config, reg *tags.Registry, backend platform.Backend) (*wm.State, error) {
	displays, err := backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to list displays: %w", err)
	}
	if len(displays) == 0 {
		return nil, errors.New("no displays found")
	}
	defaultMask, _ := reg.MaskOf(cfg.DefaultTag)

	monitors := make([]*wm.Monitor, 0, len(displays))
	for _, disp := range displays {
		var desktops []*wm.Desktop
		for _, dc := range cfg.DesktopsFor(disp.Name) {
			mask := defaultMask
			if len(dc.Tags) > 0 {
				m, err := reg.MaskOf(dc.Tags...)
				if err != nil {
					return nil, fmt.Errorf("desktop %s on %s: %w", dc.Name, disp.Name, err)
				}
				mask = m
			}
			desktops = append(desktops, wm.NewDesktop(dc.Name, mask))
		}
		bounds := disp.Usable
		if bounds.Width == 0 || bounds.Height == 0 {
			bounds = disp.Bounds
		}
		monitors = append(monitors, wm.NewMonitor(disp.ID, disp.Name, bounds, desktops...))
	}

	state := wm.NewState(monitors...)
	if active, err := backend.ActiveDisplay(); err == nil {
		for _, m := range monitors {
			if m.ID == active.ID {
				state.Focused = m
			}
		}
	}
	return state, nil
}

// OnReload registers fn to run, under the daemon lock, after a successful
// config reload.
func (d *Daemon) OnReload(fn func(*config.Config)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onReload = append(d.onReload, fn)
}

// Config returns the effective configuration.
func (d *Daemon) Config() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Do runs fn with exclusive access to the engine.
func (d *Daemon) Do(fn func(e *wm.Engine) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(d.engine)
}

// Run syncs with the window system once and then serves IPC, reconciles
// and watches the config until ctx is done or one of them fails.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.reporter.Open(); err != nil {
		d.logger.Warn("status fifo disabled", "error", err)
	}
	defer d.reporter.Close()

	if err := d.Reconcile(); err != nil {
		d.logger.Warn("initial sync failed", "error", err)
	}
	d.mu.Lock()
	d.reporter.Refresh()
	interval := d.cfg.ReconcileInterval
	d.mu.Unlock()

	srv, err := ipc.NewServer(d.socketPath, d)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Serve(ctx) })
	g.Go(func() error {
		rec := NewReconciler(ReconcilerConfig{Interval: interval, Logger: d.logger}, d)
		rec.Run(ctx)
		return nil
	})
	if d.configPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, d.configPath, config.DefaultDebounce, func() {
				if err := d.Reload(); err != nil {
					d.logger.Warn("config reload failed", "error", err)
				}
			})
		})
	}
	d.logger.Info("daemon running", "monitors", len(d.engine.State().Monitors), "tags", d.engine.Registry().Len())
	return g.Wait()
}

// Reload re-reads the config file. New tags are added; existing tags are
// never removed. Layout parameters are applied and every displayed desktop
// is rearranged.
func (d *Daemon) Reload() error {
	if d.configPath == "" {
		return errors.New("no config file to reload")
	}
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyConfigLocked(res.Config)
	return nil
}

func (d *Daemon) applyConfigLocked(cfg *config.Config) {
	for _, name := range cfg.TagNames() {
		if _, ok := d.engine.Tag(name); ok {
			continue
		}
		if _, err := d.engine.AddTag(name); err != nil {
			d.logger.Warn("reload: tag not added", "name", name, "error", err)
		}
	}
	d.rules.Update(cfg.Rules)
	d.arranger.SetLayout(cfg.Layout)
	for _, m := range d.engine.State().Monitors {
		d.arranger.Arrange(m, m.Desk)
	}
	d.cfg = cfg
	for _, fn := range d.onReload {
		fn(cfg)
	}
	d.logger.Info("config reloaded", "tags", d.engine.Registry().Len(), "layout", cfg.Layout.Mode)
}

// Reconcile lists the window system's windows and manages new ones and
// unmanages vanished ones.
func (d *Daemon) Reconcile() error {
	windows, err := d.backend.ListWindows()
	if err != nil {
		return fmt.Errorf("failed to list windows: %w", err)
	}
	d.Sync(windows)
	return nil
}

// Sync brings the managed set in line with windows.
func (d *Daemon) Sync(windows []platform.Window) {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.engine.State()
	present := make(map[platform.WindowID]bool, len(windows))
	for _, w := range windows {
		present[w.ID] = true
		if _, _, n := state.Locate(w.ID); n != nil {
			continue
		}
		m := monitorFor(state, w.Bounds)
		if m == nil || m.Desk == nil {
			continue
		}
		c := &tree.Client{
			Window:   w.ID,
			Floating: w.Floating,
			Sticky:   w.Sticky,
			Class:    w.AppID,
			Title:    w.Title,
		}
		if _, err := d.rules.Apply(d.engine.Registry(), c); err != nil {
			d.logger.Warn("window rule skipped", "class", c.Class, "error", err)
		}
		d.engine.Manage(m, m.Desk, c)
	}

	var gone []platform.WindowID
	for _, m := range state.Monitors {
		for _, desk := range m.Desktops {
			for n := range tree.Leaves(desk.Root) {
				if !present[n.Window()] {
					gone = append(gone, n.Window())
				}
			}
		}
	}
	for _, w := range gone {
		d.engine.Unmanage(w)
		d.arranger.Forget(w)
	}
	if len(gone) > 0 {
		d.logger.Debug("windows closed", "count", len(gone))
	}
}

// monitorFor picks the monitor containing the center of r, or the focused
// monitor.
func monitorFor(state *wm.State, r platform.Rect) *wm.Monitor {
	x, y := r.Center()
	for _, m := range state.Monitors {
		if m.Bounds.Contains(x, y) {
			return m
		}
	}
	return state.Focused
}
