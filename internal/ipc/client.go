package ipc

import (
	"bufio"
	"fmt"
	"net"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/1broseidon/tagtile/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default runtime socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; send surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for socketPath.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 5 * time.Second}
}

// send issues one request and decodes the response data into out, if out
// is non-nil.
func (c *Client) send(cmd CommandType, payload any, out any) error {
	req := &Request{ID: uuid.NewString(), Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.ID != req.ID {
		return fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	if resp.Status == StatusError {
		return fmt.Errorf("daemon error: %s", resp.Error)
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to parse %s data: %w", cmd, err)
		}
	}
	return nil
}

// AddTag registers a new tag.
func (c *Client) AddTag(name string) (*TagInfo, error) {
	var info TagInfo
	if err := c.send(CommandAddTag, TagRef{Name: name}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveTag removes a tag by name or index.
func (c *Client) RemoveTag(ref TagRef) error {
	return c.send(CommandRemoveTag, ref, nil)
}

// GetTag looks a tag up by name or index.
func (c *Client) GetTag(ref TagRef) (*TagInfo, error) {
	var info TagInfo
	if err := c.send(CommandGetTag, ref, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// ListTags returns every tag in index order.
func (c *Client) ListTags() (*TagsData, error) {
	var data TagsData
	if err := c.send(CommandListTags, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// TagDesktop sets a desktop's active mask.
func (c *Client) TagDesktop(p TagDesktopPayload) error {
	return c.send(CommandTagDesktop, p, nil)
}

// TagWindow sets a window's mask.
func (c *Client) TagWindow(p TagWindowPayload) error {
	return c.send(CommandTagWindow, p, nil)
}

// ViewTag shows exactly one tag on the focused desktop.
func (c *Client) ViewTag(name string) error {
	return c.send(CommandViewTag, TagRef{Name: name}, nil)
}

// ToggleTag flips a tag on the focused desktop or window.
func (c *Client) ToggleTag(name string, window bool) error {
	return c.send(CommandToggleTag, TogglePayload{Name: name, Window: window}, nil)
}

// SetPresence pulls a window into, or out of, its desktop's view.
func (c *Client) SetPresence(window uint32, present bool) error {
	return c.send(CommandSetPresence, PresencePayload{Window: window, Present: present}, nil)
}

// FocusDesktop displays a desktop on its monitor and focuses that monitor.
func (c *Client) FocusDesktop(ref DesktopRef) error {
	return c.send(CommandFocusDesktop, ref, nil)
}

// CycleLayout switches to the next layout mode, or the previous one when
// delta is negative.
func (c *Client) CycleLayout(delta int) (*LayoutData, error) {
	var data LayoutData
	if err := c.send(CommandCycleLayout, CyclePayload{Delta: delta}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetState returns a snapshot of monitors, desktops and windows.
func (c *Client) GetState() (*StateData, error) {
	var data StateData
	if err := c.send(CommandGetState, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.send(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var data StatusData
	if err := c.send(CommandGetStatus, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
