package wm

import (
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

// Desktop is a tiling tree plus the mask of tags it currently shows.
type Desktop struct {
	Name  string
	Tags  tags.Mask
	Root  *tree.Node
	Focus *tree.Node
}

// NewDesktop returns an empty desktop showing mask.
func NewDesktop(name string, mask tags.Mask) *Desktop {
	return &Desktop{Name: name, Tags: mask}
}

// Shows reports whether leaf n is visible on d: its client's mask
// intersects the desktop's mask.
func (d *Desktop) Shows(n *tree.Node) bool {
	return n != nil && n.Client != nil && n.Client.Tags.Intersects(d.Tags)
}

// Occupied returns the union of the masks of every client on d.
func (d *Desktop) Occupied() tags.Mask {
	var m tags.Mask
	for n := range tree.Leaves(d.Root) {
		m |= n.Client.Tags
	}
	return m
}

// Monitor owns an ordered list of desktops, one of which is displayed.
type Monitor struct {
	ID       int
	Name     string
	Bounds   platform.Rect
	Desktops []*Desktop
	Desk     *Desktop
}

// NewMonitor returns a monitor displaying the first of desktops.
func NewMonitor(id int, name string, bounds platform.Rect, desktops ...*Desktop) *Monitor {
	m := &Monitor{ID: id, Name: name, Bounds: bounds, Desktops: desktops}
	if len(desktops) > 0 {
		m.Desk = desktops[0]
	}
	return m
}

// Desktop returns the desktop named name.
func (m *Monitor) Desktop(name string) *Desktop {
	for _, d := range m.Desktops {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// State is the set of monitors and which one holds input focus.
type State struct {
	Monitors []*Monitor
	Focused  *Monitor
}

// NewState returns a state focused on the first monitor.
func NewState(monitors ...*Monitor) *State {
	s := &State{Monitors: monitors}
	if len(monitors) > 0 {
		s.Focused = monitors[0]
	}
	return s
}

// FocusedDesktop returns the focused monitor and its displayed desktop.
func (s *State) FocusedDesktop() (*Monitor, *Desktop) {
	if s.Focused == nil {
		return nil, nil
	}
	return s.Focused, s.Focused.Desk
}

// Monitor returns the monitor named name.
func (s *State) Monitor(name string) *Monitor {
	for _, m := range s.Monitors {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Locate finds the leaf wrapping window w.
func (s *State) Locate(w platform.WindowID) (*Monitor, *Desktop, *tree.Node) {
	for _, m := range s.Monitors {
		for _, d := range m.Desktops {
			if n := tree.Find(d.Root, w); n != nil {
				return m, d, n
			}
		}
	}
	return nil, nil, nil
}

func (s *State) isFocusedDesktop(d *Desktop) bool {
	return s.Focused != nil && s.Focused.Desk == d
}

// isDisplayed reports whether some monitor shows d. Only displayed
// desktops appear in the status line.
func (s *State) isDisplayed(d *Desktop) bool {
	for _, m := range s.Monitors {
		if m.Desk == d {
			return true
		}
	}
	return false
}
