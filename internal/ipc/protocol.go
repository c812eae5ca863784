package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandOpenApp     CommandType = "OPEN_APP"
	CommandCloseWindow CommandType = "CLOSE_WINDOW"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandListIcons   CommandType = "LIST_ICONS"
	CommandRefresh     CommandType = "REFRESH"
	CommandNotify      CommandType = "NOTIFY"
	CommandOpenFile    CommandType = "OPEN_FILE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Running       bool   `json:"running"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Windows       int    `json:"windows"`
	Icons         int    `json:"icons"`
	ActiveWindow  string `json:"active_window,omitempty"`
	Theme         string `json:"theme"`
	Wallpaper     string `json:"wallpaper"`
	Sandbox       string `json:"sandbox"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
}

// WindowInfo describes one open window.
type WindowInfo struct {
	ID        string `json:"id"`
	App       string `json:"app"`
	Title     string `json:"title"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Z         int    `json:"z"`
	Minimized bool   `json:"minimized"`
	Maximized bool   `json:"maximized"`
	Active    bool   `json:"active"`
}

type WindowsData struct {
	Windows []WindowInfo `json:"windows"`
}

// IconInfo describes one desktop icon.
type IconInfo struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Selected bool   `json:"selected"`
}

type IconsData struct {
	Icons []IconInfo `json:"icons"`
}

type OpenAppPayload struct {
	App string `json:"app"`
}

type CloseWindowPayload struct {
	ID string `json:"id"`
}

type NotifyPayload struct {
	Message    string `json:"message"`
	Level      string `json:"level,omitempty"`
	DurationMS int    `json:"duration_ms,omitempty"`
}

type OpenFilePayload struct {
	Path string `json:"path"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
