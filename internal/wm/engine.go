package wm

import (
	"log/slog"

	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

// Config wires an Engine to its collaborators. Nil collaborators fall back
// to implementations that only keep the tree consistent.
type Config struct {
	Registry *tags.Registry
	Layout   Layout
	Surface  Surface
	Focus    Focuser
	History  History
	Status   Status
	Logger   *slog.Logger
}

// Engine keeps window visibility, vacancy and focus in step with the tag
// masks of windows and desktops.
//
// Engine is not safe for concurrent use. Every call runs to completion,
// including its arrange and focus handoff, before the next one may start.
type Engine struct {
	reg     *tags.Registry
	state   *State
	layout  Layout
	surface Surface
	focus   Focuser
	history History
	status  Status
	logger  *slog.Logger
}

// New creates an engine over state.
func New(state *State, cfg Config) *Engine {
	e := &Engine{
		reg:     cfg.Registry,
		state:   state,
		layout:  cfg.Layout,
		surface: cfg.Surface,
		focus:   cfg.Focus,
		history: cfg.History,
		status:  cfg.Status,
		logger:  cfg.Logger,
	}
	if e.reg == nil {
		e.reg = tags.NewRegistry()
	}
	if e.state == nil {
		e.state = NewState()
	}
	if e.layout == nil {
		e.layout = treeLayout{}
	}
	if e.surface == nil {
		e.surface = nopSurface{}
	}
	if e.focus == nil {
		e.focus = nopFocuser{}
	}
	if e.history == nil {
		e.history = nopHistory{}
	}
	if e.status == nil {
		e.status = nopStatus{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Registry returns the tag registry.
func (e *Engine) Registry() *tags.Registry { return e.reg }

// State returns the monitor/desktop state.
func (e *Engine) State() *State { return e.state }

// focusNode records n as d's focus and grants it: real focus when d is the
// focused monitor's displayed desktop, pseudo focus otherwise.
func (e *Engine) focusNode(m *Monitor, d *Desktop, n *tree.Node) {
	d.Focus = n
	if e.state.isFocusedDesktop(d) {
		e.focus.Focus(m, d, n)
	} else {
		e.focus.PseudoFocus(d, n)
	}
}

// handoffFocus picks the node that takes over from n: the most recent
// visible node in history, else the closest visible one, else none.
func (e *Engine) handoffFocus(d *Desktop, n *tree.Node) *tree.Node {
	f := e.history.LastVisible(d, n)
	if f == n || !d.Shows(f) {
		f = e.focus.ClosestVisible(d, n)
	}
	if f == n || !d.Shows(f) {
		return nil
	}
	return f
}

func (e *Engine) show(n *tree.Node) {
	if err := e.surface.Show(n.Window()); err != nil {
		e.logger.Warn("show window failed", "window", n.Window(), "error", err)
	}
}

func (e *Engine) hide(n *tree.Node) {
	if err := e.surface.Hide(n.Window()); err != nil {
		e.logger.Warn("hide window failed", "window", n.Window(), "error", err)
	}
}
