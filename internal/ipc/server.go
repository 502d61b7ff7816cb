package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tagtile/internal/runtimepath"
)

// Controller executes IPC commands against the running window manager.
type Controller interface {
	AddTag(name string) (TagInfo, error)
	RemoveTag(ref TagRef) error
	GetTag(ref TagRef) (TagInfo, error)
	ListTags() TagsData
	TagDesktop(p TagDesktopPayload) error
	TagWindow(p TagWindowPayload) error
	ViewTag(name string) error
	ToggleTag(p TogglePayload) error
	SetPresence(p PresencePayload) error
	State() StateData
	Reload() error
	Status() StatusData
	FocusDesktop(ref DesktopRef) error
	CycleLayout(delta int) (LayoutData, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server for ctrl listening on socketPath, or on the
// default runtime socket when socketPath is empty.
func NewServer(socketPath string, ctrl Controller) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	// Remove a stale socket left by a previous run.
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Serve starts the server and stops it when ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

// handleConnection serves one newline-delimited JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("Invalid request: %v", err))
	} else {
		resp = s.handleCommand(req)
		resp.ID = req.ID
	}

	out, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}
	if _, err := conn.Write(append(out, '\n')); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandAddTag:
		var p TagRef
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return reply(s.ctrl.AddTag(p.Name))

	case CommandRemoveTag:
		var p TagRef
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.RemoveTag(p))

	case CommandGetTag:
		var p TagRef
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return reply(s.ctrl.GetTag(p))

	case CommandListTags:
		return reply(s.ctrl.ListTags(), nil)

	case CommandTagDesktop:
		var p TagDesktopPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.TagDesktop(p))

	case CommandTagWindow:
		var p TagWindowPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.TagWindow(p))

	case CommandViewTag:
		var p TagRef
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.ViewTag(p.Name))

	case CommandToggleTag:
		var p TogglePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.ToggleTag(p))

	case CommandSetPresence:
		var p PresencePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.SetPresence(p))

	case CommandFocusDesktop:
		var p DesktopRef
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return replyErr(s.ctrl.FocusDesktop(p))

	case CommandCycleLayout:
		var p CyclePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return reply(s.ctrl.CycleLayout(p.Delta))

	case CommandGetState:
		return reply(s.ctrl.State(), nil)

	case CommandReload:
		log.Println("IPC: Received RELOAD command")
		return replyErr(s.ctrl.Reload())

	case CommandGetStatus:
		st := s.ctrl.Status()
		st.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		st.DaemonRunning = true
		return reply(st, nil)

	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func reply(data any, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func replyErr(err error) *Response { return reply(nil, err) }

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
