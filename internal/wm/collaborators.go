package wm

import (
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tree"
)

// Layout places windows and keeps tiling-tree bookkeeping in step with
// visibility changes.
type Layout interface {
	Arrange(m *Monitor, d *Desktop)
	UpdateVacantState(n *tree.Node)
	RotateBrother(n *tree.Node)
	UnrotateBrother(n *tree.Node)
}

// Surface shows and hides window surfaces.
type Surface interface {
	Show(w platform.WindowID) error
	Hide(w platform.WindowID) error
}

// Focuser grants focus. Focus is real input focus, PseudoFocus only records
// the node on a desktop that is not in front. n may be nil.
type Focuser interface {
	Focus(m *Monitor, d *Desktop, n *tree.Node)
	PseudoFocus(d *Desktop, n *tree.Node)
	ClosestVisible(d *Desktop, n *tree.Node) *tree.Node
}

// History remembers focus order per desktop.
type History interface {
	LastVisible(d *Desktop, exclude *tree.Node) *tree.Node
	Forget(n *tree.Node)
}

// Status refreshes external status output.
type Status interface {
	Refresh()
}

// treeLayout keeps tree bookkeeping but places nothing.
type treeLayout struct{}

func (treeLayout) Arrange(*Monitor, *Desktop) {}
func (treeLayout) UpdateVacantState(n *tree.Node) { tree.UpdateVacantState(n) }
func (treeLayout) RotateBrother(n *tree.Node) { tree.RotateBrother(n) }
func (treeLayout) UnrotateBrother(n *tree.Node) { tree.UnrotateBrother(n) }

type nopSurface struct{}

func (nopSurface) Show(platform.WindowID) error { return nil }
func (nopSurface) Hide(platform.WindowID) error { return nil }

type nopFocuser struct{}

func (nopFocuser) Focus(*Monitor, *Desktop, *tree.Node) {}
func (nopFocuser) PseudoFocus(*Desktop, *tree.Node) {}
func (nopFocuser) ClosestVisible(*Desktop, *tree.Node) *tree.Node { return nil }

type nopHistory struct{}

func (nopHistory) LastVisible(*Desktop, *tree.Node) *tree.Node { return nil }
func (nopHistory) Forget(*tree.Node) {}

type nopStatus struct{}

func (nopStatus) Refresh() {}
