package wm

import (
	"fmt"

	"github.com/1broseidon/tagtile/internal/platform"
)

// ViewTag makes the focused desktop show exactly the tag named name.
func (e *Engine) ViewTag(name string) error {
	t, ok := e.reg.Get(name)
	if !ok {
		return e.reg.NotFoundError(name)
	}
	m, d := e.state.FocusedDesktop()
	if d == nil {
		return fmt.Errorf("no focused desktop")
	}
	e.TagDesktop(m, d, t.Mask)
	return nil
}

// ToggleDesktopTag flips the tag named name in the focused desktop's mask.
func (e *Engine) ToggleDesktopTag(name string) error {
	t, ok := e.reg.Get(name)
	if !ok {
		return e.reg.NotFoundError(name)
	}
	m, d := e.state.FocusedDesktop()
	if d == nil {
		return fmt.Errorf("no focused desktop")
	}
	e.TagDesktop(m, d, d.Tags.Toggle(t.Mask))
	return nil
}

// ToggleWindowTag flips the tag named name on the focused window.
func (e *Engine) ToggleWindowTag(name string) error {
	t, ok := e.reg.Get(name)
	if !ok {
		return e.reg.NotFoundError(name)
	}
	m, d := e.state.FocusedDesktop()
	if d == nil || d.Focus == nil {
		return fmt.Errorf("no focused window")
	}
	n := d.Focus
	e.TagNode(m, d, n, d, n.Client.Tags.Toggle(t.Mask))
	return nil
}

// SetWindowPresence pulls window w into, or pushes it out of, its
// desktop's current view.
func (e *Engine) SetWindowPresence(w platform.WindowID, present bool) error {
	m, d, n := e.state.Locate(w)
	if n == nil {
		return fmt.Errorf("window %d is not managed", w)
	}
	e.SetPresence(m, d, n, present)
	return nil
}
