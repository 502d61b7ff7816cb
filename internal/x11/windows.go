package x11

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// allDesktops is the _NET_WM_DESKTOP value of a window shown on every
// desktop.
const allDesktops = 0xFFFFFFFF

// Client describes a top-level client window as read from its properties.
type Client struct {
	ID       xproto.Window
	PID      int
	Class    string
	Title    string
	Geometry Area
	Floating bool
	Sticky   bool
}

// Clients returns the managed clients on the window manager's current
// desktop plus those shown on every desktop, ordered by window id.
// Docks, desktops, splashes and notifications are skipped. Iconified
// clients are kept.
func (c *Connection) Clients() ([]Client, error) {
	ids, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to read _NET_CLIENT_LIST: %w", err)
	}
	current, curErr := ewmh.CurrentDesktopGet(c.XUtil)

	clients := make([]Client, 0, len(ids))
	for _, id := range ids {
		if !c.IsNormalWindow(id) {
			continue
		}
		cl := Client{ID: id, Floating: c.IsFloatingWindow(id)}
		if curErr == nil {
			if desk, err := ewmh.WmDesktopGet(c.XUtil, id); err == nil {
				cl.Sticky = desk == allDesktops
				if !cl.Sticky && desk != current {
					continue
				}
			}
		}
		if slices.Contains(c.states(id), "_NET_WM_STATE_STICKY") {
			cl.Sticky = true
		}
		geom, ok := c.geometry(id)
		if !ok {
			continue
		}
		cl.Geometry = geom
		if pid, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
			cl.PID = int(pid)
		}
		if class, err := icccm.WmClassGet(c.XUtil, id); err == nil {
			cl.Class = strings.TrimSpace(class.Class)
		}
		cl.Title = c.title(id)
		clients = append(clients, cl)
	}
	slices.SortFunc(clients, func(a, b Client) int { return int(a.ID) - int(b.ID) })
	return clients, nil
}

func (c *Connection) states(id xproto.Window) []string {
	states, err := ewmh.WmStateGet(c.XUtil, id)
	if err != nil {
		return nil
	}
	return states
}

// geometry returns the window's root-relative position and size.
func (c *Connection) geometry(id xproto.Window) (Area, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(id)).Reply()
	if err != nil {
		return Area{}, false
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), id, c.Root, 0, 0).Reply()
	if err != nil {
		return Area{}, false
	}
	return Area{X: int(pos.DstX), Y: int(pos.DstY), Width: int(geom.Width), Height: int(geom.Height)}, true
}

// title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) title(id xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, id); err == nil && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if name, err := icccm.WmNameGet(c.XUtil, id); err == nil {
		return strings.TrimSpace(name)
	}
	return ""
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move/resize requests under most WMs.
	for _, state := range c.states(windowID) {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// MapWindow maps a window. Mapping an iconified client asks the window
// manager to restore it.
func (c *Connection) MapWindow(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return fmt.Errorf("failed to map window %d: %w", windowID, err)
	}
	return nil
}

// IconifyWindow asks the window manager to iconify a window through
// WM_CHANGE_STATE. The client stays in _NET_CLIENT_LIST.
func (c *Connection) IconifyWindow(windowID xproto.Window) error {
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", icccm.StateIconic)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// IsFloatingWindow reports whether a window should stay out of the tiled
// layout: dialogs, utilities and transients.
func (c *Connection) IsFloatingWindow(windowID xproto.Window) bool {
	if types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID); err == nil {
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DIALOG" || t == "_NET_WM_WINDOW_TYPE_UTILITY" {
				return true
			}
		}
	}
	if owner, err := icccm.WmTransientForGet(c.XUtil, windowID); err == nil && owner != 0 {
		return true
	}
	return false
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	const sourcePager = 2
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourcePager)
}

// FocusRoot moves input focus to the root window, so keystrokes stop
// going to a client that was just hidden.
func (c *Connection) FocusRoot() error {
	err := xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot, c.Root, xproto.TimeCurrentTime).Check()
	if err != nil {
		return fmt.Errorf("failed to focus root: %w", err)
	}
	return nil
}

// sendRootMessage sends a 32-bit client message about win to the root
// window, where the window manager picks it up. The message is built by
// hand because the ewmh helpers panic on this xgbutil version.
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := xprop.Atm(c.XUtil, atomName)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}
	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
