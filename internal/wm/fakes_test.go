package wm

import (
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tree"
)

type recordingLayout struct {
	treeLayout
	arranges map[*Desktop]int
	rotated  []platform.WindowID
	unrotate []platform.WindowID
}

func (l *recordingLayout) Arrange(_ *Monitor, d *Desktop) { l.arranges[d]++ }
func (l *recordingLayout) RotateBrother(n *tree.Node) {
	l.rotated = append(l.rotated, n.Window())
	tree.RotateBrother(n)
}
func (l *recordingLayout) UnrotateBrother(n *tree.Node) {
	l.unrotate = append(l.unrotate, n.Window())
	tree.UnrotateBrother(n)
}

type fakeSurface struct {
	hidden map[platform.WindowID]bool
	shows  int
	hides  int
}

func (s *fakeSurface) Show(w platform.WindowID) error {
	s.shows++
	s.hidden[w] = false
	return nil
}

func (s *fakeSurface) Hide(w platform.WindowID) error {
	s.hides++
	s.hidden[w] = true
	return nil
}

type focusCall struct {
	pseudo bool
	window platform.WindowID
}

type fakeFocuser struct {
	calls []focusCall
}

func (f *fakeFocuser) Focus(_ *Monitor, _ *Desktop, n *tree.Node) {
	f.calls = append(f.calls, focusCall{window: n.Window()})
}

func (f *fakeFocuser) PseudoFocus(_ *Desktop, n *tree.Node) {
	f.calls = append(f.calls, focusCall{pseudo: true, window: n.Window()})
}

// ClosestVisible scans right then left from n.
func (f *fakeFocuser) ClosestVisible(d *Desktop, n *tree.Node) *tree.Node {
	for p := tree.NextLeaf(n, d.Root); p != nil; p = tree.NextLeaf(p, d.Root) {
		if d.Shows(p) {
			return p
		}
	}
	for p := tree.PrevLeaf(n, d.Root); p != nil; p = tree.PrevLeaf(p, d.Root) {
		if d.Shows(p) {
			return p
		}
	}
	return nil
}

func (f *fakeFocuser) last() focusCall {
	if len(f.calls) == 0 {
		return focusCall{}
	}
	return f.calls[len(f.calls)-1]
}

type fakeHistory struct {
	recent []*tree.Node
}

func (h *fakeHistory) LastVisible(d *Desktop, exclude *tree.Node) *tree.Node {
	for i := len(h.recent) - 1; i >= 0; i-- {
		n := h.recent[i]
		if n != exclude && d.Shows(n) {
			return n
		}
	}
	return nil
}

func (h *fakeHistory) Forget(n *tree.Node) {
	out := h.recent[:0]
	for _, r := range h.recent {
		if r != n {
			out = append(out, r)
		}
	}
	h.recent = out
}

type countingStatus struct{ refreshes int }

func (s *countingStatus) Refresh() { s.refreshes++ }

type fixture struct {
	engine  *Engine
	state   *State
	mon     *Monitor
	front   *Desktop
	back    *Desktop
	layout  *recordingLayout
	surface *fakeSurface
	focus   *fakeFocuser
	history *fakeHistory
	status  *countingStatus
}

// newFixture builds one monitor with a displayed desktop "front" and a
// hidden desktop "back", both showing the first tag.
func newFixture(tagNames ...string) *fixture {
	reg := tags.NewRegistry()
	for _, name := range tagNames {
		if _, err := reg.Add(name); err != nil {
			panic(err)
		}
	}
	front := NewDesktop("front", 1)
	back := NewDesktop("back", 1)
	mon := NewMonitor(0, "DP-1", platform.Rect{Width: 1920, Height: 1080}, front, back)
	state := NewState(mon)

	f := &fixture{
		state:   state,
		mon:     mon,
		front:   front,
		back:    back,
		layout:  &recordingLayout{arranges: map[*Desktop]int{}},
		surface: &fakeSurface{hidden: map[platform.WindowID]bool{}},
		focus:   &fakeFocuser{},
		history: &fakeHistory{},
		status:  &countingStatus{},
	}
	f.engine = New(state, Config{
		Registry: reg,
		Layout:   f.layout,
		Surface:  f.surface,
		Focus:    f.focus,
		History:  f.history,
		Status:   f.status,
	})
	return f
}

// add manages a window with the given mask and resets call counters.
func (f *fixture) add(d *Desktop, w platform.WindowID, mask tags.Mask) *tree.Node {
	n := f.engine.Manage(f.mon, d, &tree.Client{Window: w, Tags: mask})
	f.reset()
	return n
}

func (f *fixture) reset() {
	f.layout.arranges = map[*Desktop]int{}
	f.layout.rotated = nil
	f.layout.unrotate = nil
	f.surface.shows = 0
	f.surface.hides = 0
	f.focus.calls = nil
	f.status.refreshes = 0
}
