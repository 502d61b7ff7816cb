// Package focus grants input focus to tiling-tree leaves and records the
// focus history used to hand focus off when a window disappears.
package focus

import (
	"log/slog"

	"github.com/1broseidon/tagtile/internal/history"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tree"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Focuser is the window-system half of focus.
type Focuser interface {
	Focus(w platform.WindowID) error
}

// Authority implements wm.Focuser over a window system.
type Authority struct {
	backend Focuser
	history *history.History
	logger  *slog.Logger

	current platform.WindowID
}

// NewAuthority returns an authority that focuses windows through backend and
// records every grant in h.
func NewAuthority(backend Focuser, h *history.History, logger *slog.Logger) *Authority {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authority{backend: backend, history: h, logger: logger}
}

// Current returns the window that last received real focus, or 0.
func (a *Authority) Current() platform.WindowID { return a.current }

// Focus gives n input focus. A nil n means the front desktop shows nothing
// focusable: input focus goes back to the root so it does not stay on a
// hidden window.
func (a *Authority) Focus(_ *wm.Monitor, d *wm.Desktop, n *tree.Node) {
	if n == nil {
		if a.current != 0 && a.backend != nil {
			if err := a.backend.Focus(0); err != nil {
				a.logger.Warn("release focus failed", "window", a.current, "error", err)
			}
		}
		a.current = 0
		return
	}
	a.history.Push(d, n)
	a.current = n.Window()
	if a.backend == nil {
		return
	}
	if err := a.backend.Focus(n.Window()); err != nil {
		a.logger.Warn("focus window failed", "window", n.Window(), "error", err)
	}
}

// PseudoFocus records n as d's focus without touching input focus.
func (a *Authority) PseudoFocus(d *wm.Desktop, n *tree.Node) {
	a.history.Push(d, n)
}

// ClosestVisible walks outward from n in leaf order, checking the previous
// leaf before the next one at each distance, and returns the first leaf d
// shows.
func (a *Authority) ClosestVisible(d *wm.Desktop, n *tree.Node) *tree.Node {
	if n == nil {
		return nil
	}
	prev := tree.PrevLeaf(n, d.Root)
	next := tree.NextLeaf(n, d.Root)
	for prev != nil || next != nil {
		if d.Shows(prev) {
			return prev
		}
		if d.Shows(next) {
			return next
		}
		prev = tree.PrevLeaf(prev, d.Root)
		next = tree.NextLeaf(next, d.Root)
	}
	return nil
}
