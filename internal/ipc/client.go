package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/termdesk/internal/runtimepath"
)

// Client talks to a running desktop over its control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to desktop: %w (is termdesk running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("desktop error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// GetStatus retrieves desktop status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// OpenApp opens or focuses the window of app.
func (c *Client) OpenApp(app string) (*WindowInfo, error) {
	var w WindowInfo
	if err := c.call(CommandOpenApp, OpenAppPayload{App: app}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) CloseWindow(id string) error {
	return c.call(CommandCloseWindow, CloseWindowPayload{ID: id}, nil)
}

func (c *Client) ListWindows() ([]WindowInfo, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

func (c *Client) ListIcons() ([]IconInfo, error) {
	var data IconsData
	if err := c.call(CommandListIcons, nil, &data); err != nil {
		return nil, err
	}
	return data.Icons, nil
}

// Refresh asks the desktop to re-list the store root.
func (c *Client) Refresh() error {
	return c.call(CommandRefresh, nil, nil)
}

// Notify shows a toast on the desktop.
func (c *Client) Notify(message, level string, duration time.Duration) error {
	return c.call(CommandNotify, NotifyPayload{
		Message:    message,
		Level:      level,
		DurationMS: int(duration / time.Millisecond),
	}, nil)
}

// OpenFile opens a store path: folders in the explorer, files in notes.
func (c *Client) OpenFile(path string) error {
	return c.call(CommandOpenFile, OpenFilePayload{Path: path}, nil)
}

// Ping checks if the desktop is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
