package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/tree"
)

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows == 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))
	return rows, cols
}

// CalculatePositions computes positions for numWindows windows inside area
// using one of the list layouts. Tree mode is handled by Partition.
func CalculatePositions(numWindows int, area platform.Rect, layout config.Layout) ([]platform.Rect, error) {
	if numWindows == 0 {
		return nil, nil
	}
	gap := layout.GapSize

	var rows, cols int
	switch layout.Mode {
	case config.LayoutModeAuto:
		rows, cols = CalculateGrid(numWindows)
	case config.LayoutModeVertical:
		rows, cols = numWindows, 1
	case config.LayoutModeHorizontal:
		rows, cols = 1, numWindows
	case config.LayoutModeMasterStack:
		return masterStack(numWindows, area, layout.MasterWidthPercent, gap)
	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}
	return grid(numWindows, rows, cols, area, gap)
}

// grid fills rows*cols slots row by row. A short last row stretches its
// windows across the full width.
func grid(numWindows, rows, cols int, area platform.Rect, gap int) ([]platform.Rect, error) {
	slotWidth := (area.Width - (cols+1)*gap) / cols
	slotHeight := (area.Height - (rows+1)*gap) / rows
	if slotWidth <= 0 || slotHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: area=%dx%d rows=%d cols=%d gap=%d (slot=%dx%d)",
			area.Width, area.Height, rows, cols, gap, slotWidth, slotHeight,
		)
	}

	lastRow := rows - 1
	inLastRow := numWindows - lastRow*cols
	lastWidth := slotWidth
	if inLastRow > 0 && inLastRow < cols {
		lastWidth = (area.Width - (inLastRow+1)*gap) / inLastRow
	}

	positions := make([]platform.Rect, numWindows)
	for i := range positions {
		row, col := i/cols, i%cols
		width := slotWidth
		if row == lastRow {
			width = lastWidth
		}
		positions[i] = platform.Rect{
			X:      area.X + gap + col*(width+gap),
			Y:      area.Y + gap + row*(slotHeight+gap),
			Width:  width,
			Height: slotHeight,
		}
	}
	return positions, nil
}

// masterStack gives the first window a left pane of masterPercent of the
// width and stacks the rest in a column on the right.
func masterStack(numWindows int, area platform.Rect, masterPercent, gap int) ([]platform.Rect, error) {
	height := area.Height - 2*gap
	if numWindows == 1 {
		return []platform.Rect{{
			X:      area.X + gap,
			Y:      area.Y + gap,
			Width:  area.Width - 2*gap,
			Height: height,
		}}, nil
	}

	masterWidth := area.Width*masterPercent/100 - gap
	stackX := area.X + masterWidth + 2*gap
	stackWidth := area.Width - masterWidth - 3*gap
	stackCount := numWindows - 1
	cellHeight := (height - (stackCount-1)*gap) / stackCount

	if masterWidth <= 0 || stackWidth <= 0 || cellHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for master-stack layout: area=%dx%d master=%d stack=%dx%d gap=%d",
			area.Width, area.Height, masterWidth, stackWidth, cellHeight, gap,
		)
	}

	positions := make([]platform.Rect, numWindows)
	positions[0] = platform.Rect{X: area.X + gap, Y: area.Y + gap, Width: masterWidth, Height: height}
	for i := 0; i < stackCount; i++ {
		positions[i+1] = platform.Rect{
			X:      stackX,
			Y:      area.Y + gap + i*(cellHeight+gap),
			Width:  stackWidth,
			Height: cellHeight,
		}
	}
	return positions, nil
}

// Placement is a tiled leaf and the rectangle assigned to it.
type Placement struct {
	Node *tree.Node
	Rect platform.Rect
}

// Partition splits area along the tree's splits and ratios. A vacant child
// gives its whole share to its brother; floating leaves take no space.
func Partition(root *tree.Node, area platform.Rect, gap int) []Placement {
	var out []Placement
	var walk func(n *tree.Node, r platform.Rect)
	walk = func(n *tree.Node, r platform.Rect) {
		if n == nil || n.Vacant {
			return
		}
		if n.IsLeaf() {
			if n.IsTiled() {
				out = append(out, Placement{Node: n, Rect: inset(r, gap)})
			}
			return
		}
		if occupies(n.First) && !occupies(n.Second) {
			walk(n.First, r)
			return
		}
		if occupies(n.Second) && !occupies(n.First) {
			walk(n.Second, r)
			return
		}
		a, b := split(r, n.Split, n.Ratio)
		walk(n.First, a)
		walk(n.Second, b)
	}
	walk(root, area)
	return out
}

// occupies reports whether any tiled, non-vacant leaf lies under n.
func occupies(n *tree.Node) bool {
	if n == nil || n.Vacant {
		return false
	}
	if n.IsLeaf() {
		return n.IsTiled()
	}
	return occupies(n.First) || occupies(n.Second)
}

func split(r platform.Rect, s tree.SplitType, ratio float64) (platform.Rect, platform.Rect) {
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	a, b := r, r
	if s == tree.SplitVertical {
		a.Width = int(float64(r.Width) * ratio)
		b.X = r.X + a.Width
		b.Width = r.Width - a.Width
	} else {
		a.Height = int(float64(r.Height) * ratio)
		b.Y = r.Y + a.Height
		b.Height = r.Height - a.Height
	}
	return a, b
}

// inset shrinks r by half a gap on each side, never below 1x1.
func inset(r platform.Rect, gap int) platform.Rect {
	half := gap / 2
	out := platform.Rect{X: r.X + half, Y: r.Y + half, Width: r.Width - 2*half, Height: r.Height - 2*half}
	if out.Width < 1 {
		out.Width = 1
	}
	if out.Height < 1 {
		out.Height = 1
	}
	return out
}
