package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/config"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/store"
)

type fakeDesktop struct {
	down      bool
	refreshes int
	opened    []string
	closed    []string
	notes     []string
	duration  time.Duration
}

var errNotRunning = errors.New("failed to connect to desktop")

func (f *fakeDesktop) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errNotRunning
	}
	return &ipc.StatusData{Running: true, Windows: len(f.opened) - len(f.closed), Icons: 5, Theme: "dark"}, nil
}

func (f *fakeDesktop) OpenApp(app string) (*ipc.WindowInfo, error) {
	if f.down {
		return nil, errNotRunning
	}
	if app == "paint" {
		return nil, errors.New("desktop error: unknown app")
	}
	f.opened = append(f.opened, app)
	return &ipc.WindowInfo{ID: app, App: app, Title: strings.ToUpper(app[:1]) + app[1:], Width: 400, Height: 300, Active: true}, nil
}

func (f *fakeDesktop) CloseWindow(id string) error {
	if f.down {
		return errNotRunning
	}
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeDesktop) Refresh() error {
	if f.down {
		return errNotRunning
	}
	f.refreshes++
	return nil
}

func (f *fakeDesktop) Notify(message, level string, d time.Duration) error {
	if f.down {
		return errNotRunning
	}
	f.notes = append(f.notes, level+":"+message)
	f.duration = d
	return nil
}

func newTestServer(t *testing.T, desktop Desktop) (*Server, *store.Client) {
	t.Helper()
	files := store.NewClient(store.NewMemBackend())
	return newServer(files, desktop, nil, nil), files
}

func TestNewServerRequiresConfig(t *testing.T) {
	if _, err := NewServer(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNewServerUsesSandbox(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	cfg := config.DefaultConfig()
	cfg.SandboxRoot = t.TempDir()
	cfg.Logging.Enabled = true
	cfg.Logging.File = filepath.Join(t.TempDir(), "actions.log")

	s, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, _, err := s.handleWriteFile(ctx, nil, WriteFileInput{Path: "hello.txt", Content: "hi"}); err != nil {
		t.Fatalf("write_file: %v", err)
	}
	if _, out, err := s.handleListFiles(ctx, nil, ListFilesInput{}); err != nil || len(out.Entries) != 1 {
		t.Fatalf("list_files = %+v, %v", out, err)
	}
}

func TestFileTools(t *testing.T) {
	desk := &fakeDesktop{}
	s, files := newTestServer(t, desk)
	ctx := context.Background()

	_, w, err := s.handleWriteFile(ctx, nil, WriteFileInput{Path: "/docs/todo.txt", Content: "milk"})
	if err != nil {
		t.Fatalf("write_file: %v", err)
	}
	if w.Path != "docs/todo.txt" || !w.Refreshed {
		t.Fatalf("unexpected write output %+v", w)
	}

	_, r, err := s.handleReadFile(ctx, nil, ReadFileInput{Path: "docs/todo.txt"})
	if err != nil || r.Content != "milk" {
		t.Fatalf("read_file = %+v, %v", r, err)
	}

	if _, _, err := s.handleCreateFolder(ctx, nil, PathInput{Path: "archive"}); err != nil {
		t.Fatalf("create_folder: %v", err)
	}

	_, list, err := s.handleListFiles(ctx, nil, ListFilesInput{})
	if err != nil {
		t.Fatalf("list_files: %v", err)
	}
	var names []string
	for _, e := range list.Entries {
		names = append(names, e.Name+":"+e.Kind)
	}
	if got := strings.Join(names, ","); got != "archive:folder,docs:folder" {
		t.Fatalf("root listing = %s", got)
	}

	if _, _, err := s.handleMovePath(ctx, nil, MovePathInput{From: "docs/todo.txt", To: "archive/todo.txt"}); err != nil {
		t.Fatalf("move_path: %v", err)
	}
	if res := files.Read(ctx, "archive/todo.txt"); !res.OK || res.Value != "milk" {
		t.Fatalf("moved file = %+v", res)
	}

	if _, _, err := s.handleDeletePath(ctx, nil, PathInput{Path: "docs"}); err != nil {
		t.Fatalf("delete_path: %v", err)
	}
	if files.Exists(ctx, "", "docs") {
		t.Fatalf("docs should be gone")
	}
	if desk.refreshes != 4 {
		t.Fatalf("expected 4 refreshes, got %d", desk.refreshes)
	}
}

func TestFileToolErrors(t *testing.T) {
	s, files := newTestServer(t, &fakeDesktop{})
	ctx := context.Background()
	files.Write(ctx, "a.txt", "a")
	files.Write(ctx, "b.txt", "b")

	tests := []struct {
		name string
		call func() error
	}{
		{"read missing", func() error {
			_, _, err := s.handleReadFile(ctx, nil, ReadFileInput{Path: "missing.txt"})
			return err
		}},
		{"escape sandbox", func() error {
			_, _, err := s.handleReadFile(ctx, nil, ReadFileInput{Path: "../etc/passwd"})
			return err
		}},
		{"write root", func() error {
			_, _, err := s.handleWriteFile(ctx, nil, WriteFileInput{Path: "/", Content: "x"})
			return err
		}},
		{"delete root", func() error {
			_, _, err := s.handleDeletePath(ctx, nil, PathInput{Path: ""})
			return err
		}},
		{"move onto existing", func() error {
			_, _, err := s.handleMovePath(ctx, nil, MovePathInput{From: "a.txt", To: "b.txt"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if res := files.Read(ctx, "b.txt"); res.Value != "b" {
		t.Fatalf("b.txt was overwritten: %+v", res)
	}
}

func TestChangesWithoutDesktop(t *testing.T) {
	s, _ := newTestServer(t, &fakeDesktop{down: true})
	ctx := context.Background()

	_, out, err := s.handleWriteFile(ctx, nil, WriteFileInput{Path: "note.txt", Content: "x"})
	if err != nil {
		t.Fatalf("write_file should not depend on the desktop: %v", err)
	}
	if out.Refreshed {
		t.Fatalf("refresh reported for a stopped desktop")
	}

	_, st, err := s.handleDesktopStatus(ctx, nil, DesktopStatusInput{})
	if err != nil || st.Running {
		t.Fatalf("desktop_status = %+v, %v", st, err)
	}
	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{App: "notes"}); err == nil {
		t.Fatalf("open_app should fail without a desktop")
	}
}

func TestDesktopTools(t *testing.T) {
	desk := &fakeDesktop{}
	s, _ := newTestServer(t, desk)
	ctx := context.Background()

	_, w, err := s.handleOpenApp(ctx, nil, OpenAppInput{App: " calculator "})
	if err != nil {
		t.Fatalf("open_app: %v", err)
	}
	if w.ID != "calculator" || w.Title != "Calculator" || !w.Active {
		t.Fatalf("unexpected window %+v", w)
	}
	if _, _, err := s.handleOpenApp(ctx, nil, OpenAppInput{App: "paint"}); err == nil {
		t.Fatalf("unknown app should fail")
	}

	_, st, err := s.handleDesktopStatus(ctx, nil, DesktopStatusInput{})
	if err != nil || !st.Running || st.Windows != 1 || st.Theme != "dark" {
		t.Fatalf("desktop_status = %+v, %v", st, err)
	}

	_, c, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{ID: "calculator"})
	if err != nil || !c.Closed {
		t.Fatalf("close_window = %+v, %v", c, err)
	}
	if _, _, err := s.handleCloseWindow(ctx, nil, CloseWindowInput{}); err == nil {
		t.Fatalf("empty id should fail")
	}

	if _, _, err := s.handleNotify(ctx, nil, NotifyInput{Message: "done", Level: "success", Duration: 1500}); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(desk.notes) != 1 || desk.notes[0] != "success:done" || desk.duration != 1500*time.Millisecond {
		t.Fatalf("notify delivered %v (%s)", desk.notes, desk.duration)
	}
	if _, _, err := s.handleNotify(ctx, nil, NotifyInput{Message: "  "}); err == nil {
		t.Fatalf("blank message should fail")
	}
	if _, _, err := s.handleNotify(ctx, nil, NotifyInput{Message: "x", Duration: -1}); err == nil {
		t.Fatalf("negative duration should fail")
	}
}

func TestNilDesktop(t *testing.T) {
	s, _ := newTestServer(t, nil)
	ctx := context.Background()
	if _, _, err := s.handleNotify(ctx, nil, NotifyInput{Message: "x"}); err == nil {
		t.Fatalf("notify without desktop should fail")
	}
	if _, _, err := s.handleWriteFile(ctx, nil, WriteFileInput{Path: "x.txt"}); err != nil {
		t.Fatalf("write_file: %v", err)
	}
}

func TestMutationsAreLogged(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "actions.log")
	actions, err := actionlog.New(actionlog.Config{Enabled: true, Level: actionlog.LevelDebug, FilePath: logPath})
	if err != nil {
		t.Fatalf("actionlog.New: %v", err)
	}
	files := store.NewClient(store.NewMemBackend())
	s := newServer(files, &fakeDesktop{}, nil, actions)
	ctx := context.Background()

	s.handleWriteFile(ctx, nil, WriteFileInput{Path: "a.txt", Content: "a"})
	s.handleDeletePath(ctx, nil, PathInput{Path: "a.txt"})
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"CREATE", "DELETE", `source="mcp"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("log missing %q:\n%s", want, raw)
		}
	}
}
