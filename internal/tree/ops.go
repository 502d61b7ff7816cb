package tree

// UpdateVacantState recomputes vacancy from n up to the root: an internal
// node is vacant when both of its children are.
func UpdateVacantState(n *Node) {
	for p := n; p != nil; p = p.Parent {
		if p.IsLeaf() {
			continue
		}
		p.Vacant = p.First.Vacant && p.Second.Vacant
	}
}

// RotateTree rotates the subtree at n clockwise by deg (0, 90, 180, 270).
func RotateTree(n *Node, deg int) {
	if n == nil || n.IsLeaf() || deg%360 == 0 {
		return
	}
	deg = ((deg % 360) + 360) % 360

	if (deg == 90 && n.Split == SplitHorizontal) ||
		(deg == 270 && n.Split == SplitVertical) ||
		deg == 180 {
		n.First, n.Second = n.Second, n.First
		n.Ratio = 1 - n.Ratio
	}
	if deg != 180 {
		if n.Split == SplitHorizontal {
			n.Split = SplitVertical
		} else {
			n.Split = SplitHorizontal
		}
	}

	RotateTree(n.First, deg)
	RotateTree(n.Second, deg)
}

// RotateBrother reapplies n's birth rotation to its brother subtree. It is
// the counterpart of UnrotateBrother when n becomes visible again.
func RotateBrother(n *Node) {
	if n == nil {
		return
	}
	RotateTree(Brother(n), n.BirthRotation)
}

// UnrotateBrother undoes n's birth rotation on its brother subtree.
func UnrotateBrother(n *Node) {
	if n == nil || n.BirthRotation%360 == 0 {
		return
	}
	RotateTree(Brother(n), 360-n.BirthRotation)
}

// Insert places leaf next to at, splitting at's slot with split, and
// returns the (possibly new) root. With a nil root the leaf becomes the
// root.
func Insert(root, at, leaf *Node, split SplitType) *Node {
	leaf.Parent = nil
	if root == nil {
		return leaf
	}
	if at == nil {
		at = root
	}

	parent := &Node{
		Parent: at.Parent,
		First:  at,
		Second: leaf,
		Split:  split,
		Ratio:  0.5,
	}
	if at.Parent != nil {
		if at.Parent.First == at {
			at.Parent.First = parent
		} else {
			at.Parent.Second = parent
		}
	}
	at.Parent = parent
	leaf.Parent = parent

	UpdateVacantState(parent)
	if parent.Parent == nil {
		return parent
	}
	return root
}

// Remove detaches leaf n; its brother takes the parent's place. It returns
// the new root, nil when n was the only node.
func Remove(root, n *Node) *Node {
	if n == nil || root == nil {
		return root
	}
	if n == root {
		n.Parent = nil
		return nil
	}

	p := n.Parent
	b := Brother(n)
	b.Parent = p.Parent
	if p.Parent != nil {
		if p.Parent.First == p {
			p.Parent.First = b
		} else {
			p.Parent.Second = b
		}
	}
	n.Parent = nil

	if b.Parent == nil {
		return b
	}
	UpdateVacantState(b.Parent)
	return root
}
