package daemon

import (
	"errors"
	"fmt"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
	"github.com/1broseidon/tagtile/internal/wm"
)

var _ ipc.Controller = (*Daemon)(nil)

func tagInfo(reg *tags.Registry, t tags.Tag) ipc.TagInfo {
	i, _ := reg.Index(t.Name)
	return ipc.TagInfo{Index: i, Name: t.Name, Mask: uint32(t.Mask)}
}

// AddTag registers a new tag.
func (d *Daemon) AddTag(name string) (ipc.TagInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, err := d.engine.AddTag(name)
	if err != nil {
		return ipc.TagInfo{}, err
	}
	return tagInfo(d.engine.Registry(), t), nil
}

// RemoveTag removes a tag by name or index.
func (d *Daemon) RemoveTag(ref ipc.TagRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ref.Index != nil {
		return d.engine.RemoveTagByIndex(*ref.Index)
	}
	return d.engine.RemoveTag(ref.Name)
}

// GetTag looks a tag up by name or index.
func (d *Daemon) GetTag(ref ipc.TagRef) (ipc.TagInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg := d.engine.Registry()
	if ref.Index != nil {
		t, ok := d.engine.TagByIndex(*ref.Index)
		if !ok {
			return ipc.TagInfo{}, fmt.Errorf("%w: index %d", tags.ErrNotFound, *ref.Index)
		}
		return ipc.TagInfo{Index: *ref.Index, Name: t.Name, Mask: uint32(t.Mask)}, nil
	}
	t, ok := d.engine.Tag(ref.Name)
	if !ok {
		return ipc.TagInfo{}, reg.NotFoundError(ref.Name)
	}
	return tagInfo(reg, t), nil
}

// ListTags returns every tag in index order.
func (d *Daemon) ListTags() ipc.TagsData {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg := d.engine.Registry()
	out := ipc.TagsData{Text: d.engine.ListTags()}
	for i, t := range reg.Tags() {
		out.Tags = append(out.Tags, ipc.TagInfo{Index: i, Name: t.Name, Mask: uint32(t.Mask)})
	}
	return out
}

// resolveMask turns a spec into a mask. Names win over a raw mask; a raw
// mask may only carry bits of registered tags.
func (d *Daemon) resolveMask(spec ipc.MaskSpec) (tags.Mask, error) {
	reg := d.engine.Registry()
	if len(spec.Tags) > 0 {
		return reg.MaskOf(spec.Tags...)
	}
	if spec.Mask == nil {
		return 0, errors.New("no tags or mask given")
	}
	m := tags.Mask(*spec.Mask)
	if extra := m.Without(reg.Used()); !extra.IsEmpty() {
		return 0, fmt.Errorf("mask %s has bits of no registered tag", extra)
	}
	return m, nil
}

// TagDesktop sets a desktop's active mask.
func (d *Daemon) TagDesktop(p ipc.TagDesktopPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	mask, err := d.resolveMask(p.Spec)
	if err != nil {
		return err
	}
	m, desk, err := d.findDesktop(p.Monitor, p.Desktop)
	if err != nil {
		return err
	}
	d.engine.TagDesktop(m, desk, mask)
	return nil
}

// FocusDesktop displays the referenced desktop on its monitor.
func (d *Daemon) FocusDesktop(ref ipc.DesktopRef) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, desk, err := d.findDesktop(ref.Monitor, ref.Desktop)
	if err != nil {
		return err
	}
	d.engine.SwitchDesktop(m, desk)
	return nil
}

// CycleLayout changes the layout mode and rearranges every monitor.
func (d *Daemon) CycleLayout(delta int) (ipc.LayoutData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	mode := d.arranger.CycleMode(delta)
	for _, m := range d.engine.State().Monitors {
		d.arranger.Arrange(m, m.Desk)
	}
	d.logger.Info("layout changed", "mode", mode)
	return ipc.LayoutData{Mode: string(mode)}, nil
}

func (d *Daemon) findDesktop(monitor, desktop string) (*wm.Monitor, *wm.Desktop, error) {
	state := d.engine.State()
	m := state.Focused
	if monitor != "" {
		if m = state.Monitor(monitor); m == nil {
			return nil, nil, fmt.Errorf("monitor %q not found", monitor)
		}
	}
	if m == nil {
		return nil, nil, errors.New("no focused monitor")
	}
	if desktop == "" {
		if m.Desk == nil {
			return nil, nil, fmt.Errorf("monitor %s has no desktop", m.Name)
		}
		return m, m.Desk, nil
	}
	desk := m.Desktop(desktop)
	if desk == nil {
		return nil, nil, fmt.Errorf("desktop %q not found on %s", desktop, m.Name)
	}
	return m, desk, nil
}

// TagWindow sets a window's mask. Window 0 means the focused window.
func (d *Daemon) TagWindow(p ipc.TagWindowPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	mask, err := d.resolveMask(p.Spec)
	if err != nil {
		return err
	}
	var (
		m    *wm.Monitor
		desk *wm.Desktop
		n    *tree.Node
	)
	if p.Window == 0 {
		m, desk = d.engine.State().FocusedDesktop()
		if desk == nil || desk.Focus == nil {
			return errors.New("no focused window")
		}
		n = desk.Focus
	} else {
		m, desk, n = d.engine.State().Locate(platform.WindowID(p.Window))
		if n == nil {
			return fmt.Errorf("window %d is not managed", p.Window)
		}
	}
	d.engine.TagNode(m, desk, n, desk, mask)
	return nil
}

// ViewTag shows exactly one tag on the focused desktop.
func (d *Daemon) ViewTag(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.ViewTag(name)
}

// ToggleTag flips a tag on the focused desktop or the focused window.
func (d *Daemon) ToggleTag(p ipc.TogglePayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p.Window {
		return d.engine.ToggleWindowTag(p.Name)
	}
	return d.engine.ToggleDesktopTag(p.Name)
}

// SetPresence pulls a window into, or pushes it out of, its desktop's view.
func (d *Daemon) SetPresence(p ipc.PresencePayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.engine.SetWindowPresence(platform.WindowID(p.Window), p.Present)
}

// State snapshots every monitor, desktop and window.
func (d *Daemon) State() ipc.StateData {
	d.mu.Lock()
	defer d.mu.Unlock()
	reg := d.engine.Registry()
	state := d.engine.State()

	var out ipc.StateData
	for _, m := range state.Monitors {
		ms := ipc.MonitorState{ID: m.ID, Name: m.Name, Focused: m == state.Focused}
		for _, desk := range m.Desktops {
			ds := ipc.DesktopState{
				Name:      desk.Name,
				Tags:      uint32(desk.Tags),
				TagNames:  maskNames(reg, desk.Tags),
				Displayed: desk == m.Desk,
				Windows:   []ipc.WindowState{},
			}
			for n := range tree.Leaves(desk.Root) {
				c := n.Client
				ds.Windows = append(ds.Windows, ipc.WindowState{
					ID:       uint32(c.Window),
					Tags:     uint32(c.Tags),
					Visible:  desk.Shows(n),
					Focused:  n == desk.Focus,
					Floating: c.Floating,
					Sticky:   c.Sticky,
					Class:    c.Class,
					Title:    c.Title,
				})
			}
			ms.Desktops = append(ms.Desktops, ds)
		}
		out.Monitors = append(out.Monitors, ms)
	}
	return out
}

func maskNames(reg *tags.Registry, m tags.Mask) []string {
	names := []string{}
	for _, t := range reg.Tags() {
		if m.Has(t.Mask) {
			names = append(names, t.Name)
		}
	}
	return names
}

// Status reports the latest status line and counts.
func (d *Daemon) Status() ipc.StatusData {
	d.mu.Lock()
	defer d.mu.Unlock()
	windows := 0
	for _, m := range d.engine.State().Monitors {
		for _, desk := range m.Desktops {
			windows += tree.CountLeaves(desk.Root)
		}
	}
	return ipc.StatusData{
		Line:    d.reporter.Last(),
		Tags:    d.engine.Registry().Len(),
		Windows: windows,
	}
}
