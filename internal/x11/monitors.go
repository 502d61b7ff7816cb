package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Area is a rectangle in root-window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (a Area) contains(x, y int) bool {
	return x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height
}

// Monitor is one active RandR output. Usable is Bounds minus the space
// reserved by dock struts.
type Monitor struct {
	ID     int
	Name   string
	Bounds Area
	Usable Area
}

// GetMonitors lists active outputs in CRTC order.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := Area{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)}
		monitors = append(monitors, Monitor{ID: i, Name: name, Bounds: bounds, Usable: bounds})
	}

	if rootW, rootH, struts, ok := c.dockStruts(); ok {
		for i := range monitors {
			monitors[i].Usable = usableArea(monitors[i].Bounds, rootW, rootH, struts)
		}
	}
	return monitors, nil
}

// GetActiveMonitor returns the monitor holding the active window, else the
// one under the pointer, else the first.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		if x, y, ok := c.windowCenter(win); ok {
			if m := monitorAt(monitors, x, y); m != nil {
				return m, nil
			}
		}
	}
	if p, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if m := monitorAt(monitors, int(p.RootX), int(p.RootY)); m != nil {
			return m, nil
		}
	}
	return &monitors[0], nil
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		if monitors[i].Bounds.contains(x, y) {
			return &monitors[i]
		}
	}
	return nil
}

func (c *Connection) windowCenter(win xproto.Window) (int, int, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, false
	}
	tr, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(tr.DstX) + int(geom.Width)/2, int(tr.DstY) + int(geom.Height)/2, true
}

// dockStruts collects the struts of every dock window. Docks that only set
// _NET_WM_STRUT are treated as spanning the whole root edge.
func (c *Connection) dockStruts() (int, int, []ewmh.WmStrutPartial, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, 0, nil, false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, 0, nil, false
	}

	var struts []ewmh.WmStrutPartial
	for _, win := range clients {
		if !c.isDock(win) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			struts = append(struts, *sp)
			continue
		}
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			struts = append(struts, fullEdgeStrut(s, rootW, rootH))
		}
	}
	return rootW, rootH, struts, len(struts) > 0
}

func (c *Connection) isDock(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func fullEdgeStrut(s *ewmh.WmStrut, rootW, rootH int) ewmh.WmStrutPartial {
	return ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootH - 1),
		RightEndY:  uint(rootH - 1),
		TopEndX:    uint(rootW - 1),
		BottomEndX: uint(rootW - 1),
	}
}

// usableArea shrinks mon by the part of each strut that overlaps it. Struts
// are anchored to the root window's edges.
func usableArea(mon Area, rootW, rootH int, struts []ewmh.WmStrutPartial) Area {
	var left, right, top, bottom int
	for _, sp := range struts {
		if sp.Top > 0 {
			_, h := overlap(mon, Area{X: int(sp.TopStartX), Y: 0, Width: int(sp.TopEndX-sp.TopStartX) + 1, Height: int(sp.Top)})
			top = max(top, h)
		}
		if sp.Bottom > 0 {
			_, h := overlap(mon, Area{X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom), Width: int(sp.BottomEndX-sp.BottomStartX) + 1, Height: int(sp.Bottom)})
			bottom = max(bottom, h)
		}
		if sp.Left > 0 {
			w, _ := overlap(mon, Area{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: int(sp.LeftEndY-sp.LeftStartY) + 1})
			left = max(left, w)
		}
		if sp.Right > 0 {
			w, _ := overlap(mon, Area{X: rootW - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: int(sp.RightEndY-sp.RightStartY) + 1})
			right = max(right, w)
		}
	}
	return Area{
		X:      mon.X + left,
		Y:      mon.Y + top,
		Width:  max(1, mon.Width-left-right),
		Height: max(1, mon.Height-top-bottom),
	}
}

// overlap returns the width and height of the intersection of a and b, or
// zeros when they do not intersect.
func overlap(a, b Area) (int, int) {
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return 0, 0
	}
	return x2 - x1, y2 - y1
}
