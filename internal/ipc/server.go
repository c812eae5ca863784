package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Handler executes commands against the running desktop. Calls arrive on
// connection goroutines.
type Handler interface {
	Status(ctx context.Context) (StatusData, error)
	OpenApp(ctx context.Context, app string) (WindowInfo, error)
	CloseWindow(ctx context.Context, id string) error
	ListWindows(ctx context.Context) ([]WindowInfo, error)
	ListIcons(ctx context.Context) ([]IconInfo, error)
	Refresh(ctx context.Context) error
	Notify(ctx context.Context, p NotifyPayload) error
	OpenFile(ctx context.Context, path string) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	timeout      time.Duration
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server for socketPath. A stale socket file is
// removed.
func NewServer(socketPath string, handler Handler) *Server {
	os.Remove(socketPath)
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		timeout:    5 * time.Second,
		startTime:  time.Now(),
	}
}

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

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves a single request: one JSON line in, one out.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandOpenApp:
		var p OpenAppPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
		}
		if p.App == "" {
			return NewErrorResponse("app is required")
		}
		w, err := s.handler.OpenApp(ctx, p.App)
		return reply(w, err)
	case CommandCloseWindow:
		var p CloseWindowPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid close payload: %v", err))
		}
		if p.ID == "" {
			return NewErrorResponse("id is required")
		}
		return reply(nil, s.handler.CloseWindow(ctx, p.ID))
	case CommandListWindows:
		ws, err := s.handler.ListWindows(ctx)
		return reply(WindowsData{Windows: ws}, err)
	case CommandListIcons:
		is, err := s.handler.ListIcons(ctx)
		return reply(IconsData{Icons: is}, err)
	case CommandRefresh:
		return reply(nil, s.handler.Refresh(ctx))
	case CommandNotify:
		var p NotifyPayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid notify payload: %v", err))
		}
		if p.Message == "" {
			return NewErrorResponse("message is required")
		}
		return reply(nil, s.handler.Notify(ctx, p))
	case CommandOpenFile:
		var p OpenFilePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid open file payload: %v", err))
		}
		if p.Path == "" {
			return NewErrorResponse("path is required")
		}
		return reply(nil, s.handler.OpenFile(ctx, p.Path))
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.handler.Status(ctx)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	status.Running = true
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	return reply(status, nil)
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

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket file.
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
