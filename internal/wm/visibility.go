package wm

import (
	"slices"

	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

// SetVisibility moves leaf n of desktop d between shown and hidden. It does
// not arrange; callers arrange once per retag.
func (e *Engine) SetVisibility(m *Monitor, d *Desktop, n *tree.Node, visible bool) {
	e.logger.Debug("set visibility", "window", n.Window(), "visible", visible)

	if !n.Client.Floating {
		n.Vacant = !visible
		e.layout.UpdateVacantState(n.Parent)
		if visible {
			e.layout.RotateBrother(n)
		} else {
			e.layout.UnrotateBrother(n)
		}
	}

	if visible {
		if m.Desk == d {
			e.show(n)
		}
		if d.Focus == nil {
			e.focusNode(m, d, n)
		}
		return
	}

	if m.Desk == d || n.Client.Sticky {
		e.hide(n)
	}
	if d.Focus == n {
		e.focusNode(m, d, e.handoffFocus(d, n))
	}
}

// SetPresence adds d's whole mask to n's mask, or strips it, so that n is
// (or is not) part of d's current view. It is a no-op when n's visibility
// already matches present.
func (e *Engine) SetPresence(m *Monitor, d *Desktop, n *tree.Node, present bool) {
	if d.Shows(n) == present {
		return
	}
	if present {
		e.TagNode(m, d, n, d, n.Client.Tags.With(d.Tags))
	} else {
		e.TagNode(m, d, n, d, n.Client.Tags.Without(d.Tags))
	}
}

// TagNode assigns mask to n's client. Visibility before the change is
// measured against ref, after it against d; only a flip drives
// SetVisibility and a single arrange of d. Without any registered tag this
// is a no-op.
func (e *Engine) TagNode(m *Monitor, d *Desktop, n *tree.Node, ref *Desktop, mask tags.Mask) {
	if e.reg.Len() < 1 {
		return
	}
	wasVisible := ref.Shows(n)
	n.Client.Tags = mask
	visible := mask.Intersects(d.Tags)
	if wasVisible != visible {
		e.SetVisibility(m, d, n, visible)
		e.layout.Arrange(m, d)
	}
	// The occupied flags of a displayed desktop follow its clients' masks.
	if e.state.isDisplayed(d) {
		e.status.Refresh()
	}
}

// TagDesktop makes mask d's active mask and flips every leaf whose
// visibility changes, leftmost first. d is arranged at most once. Without
// any registered tag this is a no-op.
func (e *Engine) TagDesktop(m *Monitor, d *Desktop, mask tags.Mask) {
	if e.reg.Len() < 1 {
		return
	}
	old := d.Tags
	d.Tags = mask

	// Brother rotation may reorder children, so snapshot the leaf order.
	leaves := slices.Collect(tree.Leaves(d.Root))
	dirty := false
	for _, n := range leaves {
		wasVisible := old.Intersects(n.Client.Tags)
		visible := mask.Intersects(n.Client.Tags)
		if wasVisible != visible {
			e.SetVisibility(m, d, n, visible)
			dirty = true
		}
	}

	if dirty {
		e.layout.Arrange(m, d)
	}
	if e.state.isDisplayed(d) {
		e.status.Refresh()
	}
}
