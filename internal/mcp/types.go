package mcp

// TagInput names one tag.
type TagInput struct {
	Name string `json:"name" jsonschema:"Tag name"`
}

// RemoveTagInput names a tag by name or by index in the registry.
type RemoveTagInput struct {
	Name  string `json:"name,omitempty" jsonschema:"Tag name"`
	Index *int   `json:"index,omitempty" jsonschema:"Registry index of the tag; used when name is empty"`
}

// TagOutput describes one registered tag.
type TagOutput struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Mask  uint32 `json:"mask"`
}

// ListTagsOutput is the output for the list_tags tool.
type ListTagsOutput struct {
	Tags []TagOutput `json:"tags"`
}

// FocusDesktopInput is the input for the focus_desktop tool.
type FocusDesktopInput struct {
	Monitor string `json:"monitor,omitempty" jsonschema:"Monitor name (default: focused monitor)"`
	Desktop string `json:"desktop" jsonschema:"Desktop to display"`
}

// TagDesktopInput is the input for the tag_desktop tool.
type TagDesktopInput struct {
	Monitor string   `json:"monitor,omitempty" jsonschema:"Monitor name (default: focused monitor)"`
	Desktop string   `json:"desktop,omitempty" jsonschema:"Desktop name (default: the monitor's displayed desktop)"`
	Tags    []string `json:"tags,omitempty" jsonschema:"Tags the desktop should show"`
	Mask    *uint32  `json:"mask,omitempty" jsonschema:"Raw tag mask; used when tags is empty"`
}

// TagWindowInput is the input for the tag_window tool.
type TagWindowInput struct {
	Window uint32   `json:"window,omitempty" jsonschema:"X11 window id (default: focused window)"`
	Tags   []string `json:"tags,omitempty" jsonschema:"Tags the window should carry"`
	Mask   *uint32  `json:"mask,omitempty" jsonschema:"Raw tag mask; used when tags is empty"`
}

// ToggleTagInput is the input for the toggle_tag tool.
type ToggleTagInput struct {
	Name   string `json:"name" jsonschema:"Tag name"`
	Window bool   `json:"window,omitempty" jsonschema:"Toggle on the focused window instead of the focused desktop"`
}

// SetPresenceInput is the input for the set_presence tool.
type SetPresenceInput struct {
	Window  uint32 `json:"window" jsonschema:"X11 window id"`
	Present bool   `json:"present" jsonschema:"Whether the window should be part of its desktop's view"`
}

// WindowOutput describes one managed window.
type WindowOutput struct {
	ID       uint32   `json:"id"`
	Tags     []string `json:"tags"`
	Visible  bool     `json:"visible"`
	Focused  bool     `json:"focused,omitempty"`
	Floating bool     `json:"floating,omitempty"`
	Class    string   `json:"class,omitempty"`
	Title    string   `json:"title,omitempty"`
}

// DesktopOutput describes one desktop.
type DesktopOutput struct {
	Monitor   string         `json:"monitor"`
	Name      string         `json:"name"`
	Tags      []string       `json:"tags"`
	Displayed bool           `json:"displayed"`
	Focused   bool           `json:"focused"`
	Windows   []WindowOutput `json:"windows"`
}

// GetStateOutput is the output for the get_state tool.
type GetStateOutput struct {
	Desktops []DesktopOutput `json:"desktops"`
	Status   string          `json:"status"`
}

// OKOutput acknowledges a command with no data.
type OKOutput struct {
	OK bool `json:"ok"`
}
