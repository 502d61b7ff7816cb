package tree

import (
	"iter"

	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tags"
)

// SplitType is the orientation of an internal node's division.
type SplitType int

const (
	SplitVertical SplitType = iota
	SplitHorizontal
)

func (s SplitType) String() string {
	if s == SplitHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// Client is the managed window wrapped by a leaf.
type Client struct {
	Window   platform.WindowID
	Tags     tags.Mask
	Floating bool
	// Sticky clients follow the user across desktops, so hiding one always
	// unmaps it regardless of which desktop is shown.
	Sticky bool
	Class  string
	Title  string
}

// Node is a tiling tree node. Leaves carry a Client; internal nodes have
// exactly two children.
type Node struct {
	Parent *Node
	First  *Node
	Second *Node

	Split SplitType
	Ratio float64
	// BirthRotation is the rotation (0, 90, 180, 270) applied to the brother
	// subtree when this leaf was inserted. Insert never sets it: callers that
	// rotate the brother on insertion record it here. Manage splits the
	// focused leaf with alternating split types and never rotates, so for
	// managed windows it stays 0 and RotateBrother/UnrotateBrother are no-ops.
	BirthRotation int

	// Vacant is set when the node takes no tiled space: a hidden tiled leaf,
	// or an internal node whose children are both vacant.
	Vacant bool

	Client *Client
}

// NewLeaf wraps c in a leaf node.
func NewLeaf(c *Client) *Node {
	return &Node{Client: c, Ratio: 0.5}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n != nil && n.First == nil && n.Second == nil
}

// IsTiled reports whether n is a leaf whose client is not floating.
func (n *Node) IsTiled() bool {
	return n.IsLeaf() && n.Client != nil && !n.Client.Floating
}

// Window returns the leaf's window id, or 0 for internal nodes.
func (n *Node) Window() platform.WindowID {
	if n == nil || n.Client == nil {
		return 0
	}
	return n.Client.Window
}

// Brother returns the other child of n's parent.
func Brother(n *Node) *Node {
	if n == nil || n.Parent == nil {
		return nil
	}
	if n.Parent.First == n {
		return n.Parent.Second
	}
	return n.Parent.First
}

// FirstLeaf returns the leftmost leaf under n.
func FirstLeaf(n *Node) *Node {
	if n == nil {
		return nil
	}
	for !n.IsLeaf() {
		n = n.First
	}
	return n
}

// LastLeaf returns the rightmost leaf under n.
func LastLeaf(n *Node) *Node {
	if n == nil {
		return nil
	}
	for !n.IsLeaf() {
		n = n.Second
	}
	return n
}

// NextLeaf returns the leaf following n in left-to-right order, staying
// within root.
func NextLeaf(n, root *Node) *Node {
	if n == nil {
		return nil
	}
	p := n
	for isSecondChild(p) && p != root {
		p = p.Parent
	}
	if p == root || p.Parent == nil {
		return nil
	}
	return FirstLeaf(p.Parent.Second)
}

// PrevLeaf returns the leaf preceding n in left-to-right order, staying
// within root.
func PrevLeaf(n, root *Node) *Node {
	if n == nil {
		return nil
	}
	p := n
	for isFirstChild(p) && p != root {
		p = p.Parent
	}
	if p == root || p.Parent == nil {
		return nil
	}
	return LastLeaf(p.Parent.First)
}

func isFirstChild(n *Node) bool {
	return n != nil && n.Parent != nil && n.Parent.First == n
}

func isSecondChild(n *Node) bool {
	return n != nil && n.Parent != nil && n.Parent.Second == n
}

// Leaves yields every leaf under root, leftmost first. The tree must not be
// restructured while iterating.
func Leaves(root *Node) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := FirstLeaf(root); n != nil; n = NextLeaf(n, root) {
			if !yield(n) {
				return
			}
		}
	}
}

// CountLeaves returns the number of leaves under root.
func CountLeaves(root *Node) int {
	count := 0
	for range Leaves(root) {
		count++
	}
	return count
}

// Find returns the leaf wrapping window w.
func Find(root *Node, w platform.WindowID) *Node {
	for n := range Leaves(root) {
		if n.Window() == w {
			return n
		}
	}
	return nil
}
