package tiling

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tree"
	"github.com/1broseidon/tagtile/internal/wm"
)

// Mover moves and resizes windows.
type Mover interface {
	MoveResize(windowID platform.WindowID, bounds platform.Rect) error
}

// modes is the cycle order for CycleMode.
var modes = []config.LayoutMode{
	config.LayoutModeTree,
	config.LayoutModeAuto,
	config.LayoutModeMasterStack,
	config.LayoutModeVertical,
	config.LayoutModeHorizontal,
}

// Arranger places the visible tiled windows of a monitor's displayed
// desktop. It implements wm.Layout.
type Arranger struct {
	mu      sync.Mutex
	backend Mover
	layout  config.Layout
	logger  *slog.Logger

	// placed remembers the last geometry sent per window so unchanged
	// windows are not moved again.
	placed map[platform.WindowID]platform.Rect
}

// NewArranger returns an arranger moving windows through backend.
func NewArranger(backend Mover, layout config.Layout, logger *slog.Logger) *Arranger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Arranger{
		backend: backend,
		layout:  layout,
		logger:  logger,
		placed:  make(map[platform.WindowID]platform.Rect),
	}
}

// Arrange places d's windows when d is displayed on m.
func (a *Arranger) Arrange(m *wm.Monitor, d *wm.Desktop) {
	if m == nil || d == nil || m.Desk != d {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.placements(m.Bounds, d) {
		w := p.Node.Window()
		if prev, ok := a.placed[w]; ok && prev == p.Rect {
			continue
		}
		if err := a.backend.MoveResize(w, p.Rect); err != nil {
			a.logger.Warn("move window failed", "window", w, "error", err)
			continue
		}
		a.placed[w] = p.Rect
	}
}

func (a *Arranger) placements(area platform.Rect, d *wm.Desktop) []Placement {
	if a.layout.Mode == config.LayoutModeTree || a.layout.Mode == "" {
		return Partition(d.Root, area, a.layout.GapSize)
	}

	var nodes []*tree.Node
	for n := range tree.Leaves(d.Root) {
		if n.IsTiled() && !n.Vacant && d.Shows(n) {
			nodes = append(nodes, n)
		}
	}
	rects, err := CalculatePositions(len(nodes), area, a.layout)
	if err != nil {
		a.logger.Warn("layout failed", "mode", a.layout.Mode, "windows", len(nodes), "error", err)
		return nil
	}
	out := make([]Placement, len(nodes))
	for i, n := range nodes {
		out[i] = Placement{Node: n, Rect: rects[i]}
	}
	return out
}

// Forget drops the cached geometry of w, so the next arrange moves it.
func (a *Arranger) Forget(w platform.WindowID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.placed, w)
}

// SetLayout replaces the layout parameters.
func (a *Arranger) SetLayout(layout config.Layout) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.layout = layout
	clear(a.placed)
}

// Layout returns the current layout parameters.
func (a *Arranger) Layout() config.Layout {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.layout
}

// CycleMode moves to the next (delta > 0) or previous layout mode.
func (a *Arranger) CycleMode(delta int) config.LayoutMode {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := max(slices.Index(modes, a.layout.Mode), 0)
	next := (idx + delta) % len(modes)
	if next < 0 {
		next += len(modes)
	}
	a.layout.Mode = modes[next]
	clear(a.placed)
	return a.layout.Mode
}

func (a *Arranger) UpdateVacantState(n *tree.Node) { tree.UpdateVacantState(n) }
func (a *Arranger) RotateBrother(n *tree.Node) { tree.RotateBrother(n) }
func (a *Arranger) UnrotateBrother(n *tree.Node) { tree.UnrotateBrother(n) }
