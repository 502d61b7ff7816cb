package hotkeys

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/platform"
)

// Actions are the tag commands a key can trigger.
type Actions interface {
	ViewTag(name string) error
	ToggleTag(p ipc.TogglePayload) error
}

// Action is what a binding does with its tag.
type Action string

const (
	ActionView         Action = "view"
	ActionToggle       Action = "toggle"
	ActionToggleWindow Action = "toggle_window"
)

// Binding ties a key sequence to an action on one tag.
type Binding struct {
	Keys   string
	Action Action
	Tag    string
}

// Bindings flattens hk into a list ordered by action, then key sequence.
func Bindings(hk config.Hotkeys) []Binding {
	var out []Binding
	add := func(action Action, m map[string]string) {
		for keys, tag := range m {
			out = append(out, Binding{Keys: keys, Action: action, Tag: tag})
		}
	}
	add(ActionView, hk.View)
	add(ActionToggle, hk.Toggle)
	add(ActionToggleWindow, hk.ToggleWindow)
	order := map[Action]int{ActionView: 0, ActionToggle: 1, ActionToggleWindow: 2}
	slices.SortFunc(out, func(a, b Binding) int {
		if c := cmp.Compare(order[a.Action], order[b.Action]); c != 0 {
			return c
		}
		return cmp.Compare(a.Keys, b.Keys)
	})
	return out
}

// Run executes b against actions.
func (b Binding) Run(actions Actions) error {
	switch b.Action {
	case ActionView:
		return actions.ViewTag(b.Tag)
	case ActionToggle:
		return actions.ToggleTag(ipc.TogglePayload{Name: b.Tag})
	case ActionToggleWindow:
		return actions.ToggleTag(ipc.TogglePayload{Name: b.Tag, Window: true})
	default:
		return fmt.Errorf("unknown hotkey action %q", b.Action)
	}
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	actions Actions
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, actions Actions) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok {
		return nil, fmt.Errorf("backend does not support global hotkeys")
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    accessor.RootWindow(),
		actions: actions,
	}, nil
}

// Apply drops every key grab on the root window and binds hk instead. A
// binding that fails to grab is logged and skipped. It returns the number
// of bindings in effect.
func (h *Handler) Apply(hk config.Hotkeys) int {
	keybind.Detach(h.xu, h.root)

	bound := 0
	for _, b := range Bindings(hk) {
		if err := h.RegisterFunc(b.Keys, func() {
			if err := b.Run(h.actions); err != nil {
				log.Printf("Hotkey %s (%s %s) failed: %v", b.Keys, b.Action, b.Tag, err)
			}
		}); err != nil {
			log.Printf("Failed to register hotkey %s: %v", b.Keys, err)
			continue
		}
		bound++
	}
	return bound
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// configureIgnoreMods makes bindings fire regardless of the lock modifiers.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = lockCombinations(base)
}

// lockCombinations returns every OR of a subset of base, the empty subset
// included, without duplicates.
func lockCombinations(base []uint16) []uint16 {
	seen := map[uint16]bool{}
	var out []uint16
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		if !seen[mask] {
			seen[mask] = true
			out = append(out, mask)
		}
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
