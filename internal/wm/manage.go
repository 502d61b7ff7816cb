package wm

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tree"
)

// Manage inserts client c into d next to the focused leaf. A client without
// tags takes d's mask. The new leaf is hidden right away when it is not
// visible, and focused when it is.
func (e *Engine) Manage(m *Monitor, d *Desktop, c *tree.Client) *tree.Node {
	if c.Tags == 0 {
		c.Tags = d.Tags
	}
	n := tree.NewLeaf(c)

	at := d.Focus
	if at == nil {
		at = tree.LastLeaf(d.Root)
	}
	split := tree.SplitVertical
	if at != nil && at.Parent != nil && at.Parent.Split == tree.SplitVertical {
		split = tree.SplitHorizontal
	}
	d.Root = tree.Insert(d.Root, at, n, split)

	e.logger.Debug("manage window", "window", c.Window, "desktop", d.Name, "tags", uint32(c.Tags))

	if d.Shows(n) {
		if m.Desk != d && !c.Sticky {
			e.hide(n)
		}
		e.focusNode(m, d, n)
	} else {
		if !c.Floating {
			n.Vacant = true
			e.layout.UpdateVacantState(n.Parent)
		}
		if m.Desk == d || c.Sticky {
			e.hide(n)
		}
	}
	e.layout.Arrange(m, d)
	if e.state.isDisplayed(d) {
		e.status.Refresh()
	}
	return n
}

// Unmanage drops window w from whichever desktop holds it. It reports
// whether the window was managed.
func (e *Engine) Unmanage(w platform.WindowID) bool {
	m, d, n := e.state.Locate(w)
	if n == nil {
		return false
	}

	var next *tree.Node
	hadFocus := d.Focus == n
	if hadFocus {
		next = e.handoffFocus(d, n)
	}

	e.history.Forget(n)
	d.Root = tree.Remove(d.Root, n)
	e.logger.Debug("unmanage window", "window", w, "desktop", d.Name)

	if hadFocus {
		e.focusNode(m, d, next)
	}
	e.layout.Arrange(m, d)
	if e.state.isDisplayed(d) {
		e.status.Refresh()
	}
	return true
}

// FocusWindow focuses the visible leaf wrapping w and makes its monitor the
// focused one.
func (e *Engine) FocusWindow(w platform.WindowID) error {
	m, d, n := e.state.Locate(w)
	if n == nil {
		return fmt.Errorf("window %d is not managed", w)
	}
	if !d.Shows(n) {
		return fmt.Errorf("window %d is hidden on desktop %s", w, d.Name)
	}
	e.state.Focused = m
	e.focusNode(m, d, n)
	return nil
}

// SwitchDesktop displays d on m: windows visible on the old desktop are
// hidden (sticky ones stay), those visible on d are shown.
func (e *Engine) SwitchDesktop(m *Monitor, d *Desktop) {
	old := m.Desk
	if old == d {
		return
	}
	if old != nil {
		for n := range tree.Leaves(old.Root) {
			if old.Shows(n) && !n.Client.Sticky {
				e.hide(n)
			}
		}
	}
	m.Desk = d
	for n := range tree.Leaves(d.Root) {
		if d.Shows(n) {
			e.show(n)
		}
	}
	e.state.Focused = m
	if d.Focus != nil {
		e.focusNode(m, d, d.Focus)
	}
	e.layout.Arrange(m, d)
	e.status.Refresh()
}
