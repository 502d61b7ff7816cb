package ipc

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandAddTag      CommandType = "ADD_TAG"
	CommandRemoveTag   CommandType = "REMOVE_TAG"
	CommandGetTag      CommandType = "GET_TAG"
	CommandListTags    CommandType = "LIST_TAGS"
	CommandTagDesktop  CommandType = "TAG_DESKTOP"
	CommandTagWindow   CommandType = "TAG_WINDOW"
	CommandViewTag     CommandType = "VIEW_TAG"
	CommandToggleTag   CommandType = "TOGGLE_TAG"
	CommandSetPresence CommandType = "SET_PRESENCE"
	CommandGetState    CommandType = "GET_STATE"
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"

	CommandFocusDesktop CommandType = "FOCUS_DESKTOP"
	CommandCycleLayout  CommandType = "CYCLE_LAYOUT"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TagRef names a tag either by name or by registry index.
type TagRef struct {
	Name  string `json:"name,omitempty"`
	Index *int   `json:"index,omitempty"`
}

func (r TagRef) String() string {
	if r.Index != nil {
		return fmt.Sprintf("#%d", *r.Index)
	}
	return r.Name
}

// MaskSpec is a tag mask given either as a raw mask or as a list of tag
// names. Names win when both are set.
type MaskSpec struct {
	Mask *uint32  `json:"mask,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

// TagDesktopPayload sets a desktop's active mask. Empty Monitor and
// Desktop mean the focused ones.
type TagDesktopPayload struct {
	Monitor string   `json:"monitor,omitempty"`
	Desktop string   `json:"desktop,omitempty"`
	Spec    MaskSpec `json:"spec"`
}

// TagWindowPayload sets a window's mask. Window 0 means the focused window.
type TagWindowPayload struct {
	Window uint32   `json:"window,omitempty"`
	Spec   MaskSpec `json:"spec"`
}

// DesktopRef names a desktop. Empty fields mean the focused monitor and
// its displayed desktop.
type DesktopRef struct {
	Monitor string `json:"monitor,omitempty"`
	Desktop string `json:"desktop,omitempty"`
}

// CyclePayload moves the layout mode forward (positive) or back.
type CyclePayload struct {
	Delta int `json:"delta"`
}

// LayoutData reports the layout mode in effect.
type LayoutData struct {
	Mode string `json:"mode"`
}

// TogglePayload flips one tag on the focused desktop, or on the focused
// window when Window is set.
type TogglePayload struct {
	Name   string `json:"name"`
	Window bool   `json:"window,omitempty"`
}

type PresencePayload struct {
	Window  uint32 `json:"window"`
	Present bool   `json:"present"`
}

type TagInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Mask  uint32 `json:"mask"`
}

// TagsData is returned by LIST_TAGS. Text holds the "<name> <mask>" lines.
type TagsData struct {
	Tags []TagInfo `json:"tags"`
	Text string    `json:"text"`
}

type WindowState struct {
	ID       uint32 `json:"id"`
	Tags     uint32 `json:"tags"`
	Visible  bool   `json:"visible"`
	Focused  bool   `json:"focused,omitempty"`
	Floating bool   `json:"floating,omitempty"`
	Sticky   bool   `json:"sticky,omitempty"`
	Class    string `json:"class,omitempty"`
	Title    string `json:"title,omitempty"`
}

type DesktopState struct {
	Name      string        `json:"name"`
	Tags      uint32        `json:"tags"`
	TagNames  []string      `json:"tag_names"`
	Displayed bool          `json:"displayed"`
	Windows   []WindowState `json:"windows"`
}

type MonitorState struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Focused  bool           `json:"focused"`
	Desktops []DesktopState `json:"desktops"`
}

// StateData is returned by GET_STATE.
type StateData struct {
	Monitors []MonitorState `json:"monitors"`
}

// StatusData is returned by GET_STATUS.
type StatusData struct {
	Line          string `json:"line"`
	Tags          int    `json:"tags"`
	Windows       int    `json:"windows"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		raw = b
	}
	return &Response{Status: StatusOK, Data: raw}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: StatusError, Error: errMsg}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("request has no command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
