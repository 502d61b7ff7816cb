// Package history records the order in which windows gained focus on each
// desktop, so that focus can return to the most recent visible window when
// the focused one is hidden or closed.
package history

import (
	"github.com/1broseidon/tagtile/internal/tree"
	"github.com/1broseidon/tagtile/internal/wm"
)

// DefaultDepth bounds the entries kept per desktop.
const DefaultDepth = 64

// History is a per-desktop focus stack. The zero value is not usable; call
// New.
type History struct {
	depth   int
	entries map[*wm.Desktop][]*tree.Node
}

// New returns a history keeping at most depth entries per desktop. A
// non-positive depth uses DefaultDepth.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth, entries: make(map[*wm.Desktop][]*tree.Node)}
}

// Push records n as the most recent focus on d. An earlier entry for n is
// moved to the top rather than duplicated.
func (h *History) Push(d *wm.Desktop, n *tree.Node) {
	if d == nil || n == nil {
		return
	}
	list := remove(h.entries[d], n)
	list = append(list, n)
	if len(list) > h.depth {
		list = list[len(list)-h.depth:]
	}
	h.entries[d] = list
}

// LastVisible returns the most recently focused node on d that d currently
// shows, skipping exclude.
func (h *History) LastVisible(d *wm.Desktop, exclude *tree.Node) *tree.Node {
	list := h.entries[d]
	for i := len(list) - 1; i >= 0; i-- {
		n := list[i]
		if n != exclude && d.Shows(n) {
			return n
		}
	}
	return nil
}

// Forget drops every entry for n.
func (h *History) Forget(n *tree.Node) {
	for d, list := range h.entries {
		list = remove(list, n)
		if len(list) == 0 {
			delete(h.entries, d)
			continue
		}
		h.entries[d] = list
	}
}

// Len returns the number of entries recorded for d.
func (h *History) Len(d *wm.Desktop) int { return len(h.entries[d]) }

func remove(list []*tree.Node, n *tree.Node) []*tree.Node {
	out := list[:0]
	for _, e := range list {
		if e != n {
			out = append(out, e)
		}
	}
	return out
}
