// Package mcp exposes the running daemon's tag commands as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tagtile/internal/ipc"
)

const (
	ServerName    = "tagtile"
	ServerVersion = "0.1.0"
)

// Daemon is the slice of the IPC client the tools need.
type Daemon interface {
	AddTag(name string) (*ipc.TagInfo, error)
	RemoveTag(ref ipc.TagRef) error
	ListTags() (*ipc.TagsData, error)
	TagDesktop(p ipc.TagDesktopPayload) error
	TagWindow(p ipc.TagWindowPayload) error
	ViewTag(name string) error
	ToggleTag(name string, window bool) error
	SetPresence(window uint32, present bool) error
	FocusDesktop(ref ipc.DesktopRef) error
	GetState() (*ipc.StateData, error)
	GetStatus() (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server forwarding tool calls to the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a server whose tools call daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_tags",
		Description: "List registered tags in index order with their bit masks.",
	}, s.handleListTags)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_tag",
		Description: "Register a new tag. It takes the lowest free bit; at most 32 tags can exist.",
	}, s.handleAddTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_tag",
		Description: "Remove a tag by name or index. Its bit is cleared from every desktop and window first, so windows that only carried it disappear from view.",
	}, s.handleRemoveTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "view_tag",
		Description: "Make the focused desktop show exactly one tag.",
	}, s.handleViewTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_tag",
		Description: "Flip one tag in the focused desktop's view, or on the focused window when window is true.",
	}, s.handleToggleTag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tag_desktop",
		Description: "Set the tags a desktop shows. Windows whose tags no longer intersect are hidden; newly matching ones are shown.",
	}, s.handleTagDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "tag_window",
		Description: "Set the tags a window carries. It is shown on its desktop while its tags intersect the desktop's.",
	}, s.handleTagWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_presence",
		Description: "Add a window to its desktop's current view, or take it out, by adding or stripping the desktop's tags.",
	}, s.handleSetPresence)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_desktop",
		Description: "Display another desktop on a monitor. Windows hide and show according to that desktop's tags.",
	}, s.handleFocusDesktop)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_state",
		Description: "Describe every desktop with its tags and windows, plus the current status line.",
	}, s.handleGetState)
}
