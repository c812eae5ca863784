package ipc

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeHandler struct {
	mu       sync.Mutex
	opened   []string
	closed   []string
	notified []NotifyPayload
	files    []string
	refresh  int
}

func (f *fakeHandler) Status(ctx context.Context) (StatusData, error) {
	return StatusData{Windows: 1, Icons: 7, Theme: "dark", Width: 1280, Height: 800}, nil
}

func (f *fakeHandler) OpenApp(ctx context.Context, app string) (WindowInfo, error) {
	if app == "paint" {
		return WindowInfo{}, errors.New("unknown app: paint")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, app)
	return WindowInfo{ID: app + "Window", App: app, Width: 600, Height: 400, Active: true}, nil
}

func (f *fakeHandler) CloseWindow(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeHandler) ListWindows(ctx context.Context) ([]WindowInfo, error) {
	return []WindowInfo{{ID: "notesWindow", App: "notes"}}, nil
}

func (f *fakeHandler) ListIcons(ctx context.Context) ([]IconInfo, error) {
	return []IconInfo{{ID: "app_notes", Kind: "app", Label: "Notes", X: 20, Y: 130}}, nil
}

func (f *fakeHandler) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh++
	return nil
}

func (f *fakeHandler) Notify(ctx context.Context, p NotifyPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, p)
	return nil
}

func (f *fakeHandler) OpenFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, path)
	return nil
}

func startServer(t *testing.T) (*fakeHandler, *Client) {
	t.Helper()
	h := &fakeHandler{}
	srv := NewServer(filepath.Join(t.TempDir(), "d.sock"), h)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return h, NewClientAt(srv.SocketPath())
}

func TestServer_StatusAndLists(t *testing.T) {
	_, c := startServer(t)

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.Running || status.Icons != 7 || status.Theme != "dark" {
		t.Fatalf("unexpected status %+v", status)
	}

	ws, err := c.ListWindows()
	if err != nil || len(ws) != 1 || ws[0].App != "notes" {
		t.Fatalf("ListWindows = %+v, %v", ws, err)
	}
	is, err := c.ListIcons()
	if err != nil || len(is) != 1 || is[0].Kind != "app" {
		t.Fatalf("ListIcons = %+v, %v", is, err)
	}
}

func TestServer_Commands(t *testing.T) {
	h, c := startServer(t)

	w, err := c.OpenApp("notes")
	if err != nil || w.ID != "notesWindow" {
		t.Fatalf("OpenApp = %+v, %v", w, err)
	}
	if err := c.CloseWindow("notesWindow"); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	if err := c.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if err := c.Notify("hello", "success", 1500*time.Millisecond); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := c.OpenFile("docs/a.txt"); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.opened) != 1 || len(h.closed) != 1 || h.refresh != 1 || len(h.files) != 1 {
		t.Fatalf("handler calls: %+v", h)
	}
	if got := h.notified[0]; got.Message != "hello" || got.Level != "success" || got.DurationMS != 1500 {
		t.Fatalf("notify payload = %+v", got)
	}
}

func TestServer_Errors(t *testing.T) {
	_, c := startServer(t)

	if _, err := c.OpenApp("paint"); err == nil || !strings.Contains(err.Error(), "unknown app") {
		t.Fatalf("expected handler error, got %v", err)
	}
	if err := c.Notify("", "", 0); err == nil || !strings.Contains(err.Error(), "message is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.call(CommandType("REBOOT"), nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestClient_NoServer(t *testing.T) {
	c := NewClientAt(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil || !strings.Contains(err.Error(), "is termdesk running") {
		t.Fatalf("expected connection error, got %v", err)
	}
}
