package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/store"
)

func (s *Server) logAction(action actionlog.Action, details map[string]any) {
	details["source"] = "mcp"
	s.actions.Log(action, details)
}

// cleanPath normalizes a tool argument so outputs echo the canonical form.
func cleanPath(p string) (string, error) {
	clean, err := store.Clean(p)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", p, err)
	}
	return clean, nil
}

func (s *Server) handleListFiles(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListFilesInput) (*mcpsdk.CallToolResult, ListFilesOutput, error) {
	dir, err := cleanPath(args.Path)
	if err != nil {
		return nil, ListFilesOutput{}, err
	}
	res := s.files.List(ctx, dir)
	if !res.OK {
		return nil, ListFilesOutput{}, res.AsError()
	}

	entries := make([]FileEntry, 0, len(res.Value))
	for _, e := range res.Value {
		entries = append(entries, FileEntry{
			Name: e.Name,
			Path: store.Join(dir, e.Name),
			Kind: string(e.Kind),
		})
	}
	return nil, ListFilesOutput{Path: dir, Entries: entries}, nil
}

func (s *Server) handleReadFile(ctx context.Context, _ *mcpsdk.CallToolRequest, args ReadFileInput) (*mcpsdk.CallToolResult, ReadFileOutput, error) {
	p, err := cleanPath(args.Path)
	if err != nil {
		return nil, ReadFileOutput{}, err
	}
	res := s.files.Read(ctx, p)
	if !res.OK {
		return nil, ReadFileOutput{}, res.AsError()
	}
	return nil, ReadFileOutput{Path: p, Content: res.Value}, nil
}

func (s *Server) handleWriteFile(ctx context.Context, _ *mcpsdk.CallToolRequest, args WriteFileInput) (*mcpsdk.CallToolResult, ChangeOutput, error) {
	p, err := cleanPath(args.Path)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if res := s.files.Write(ctx, p, args.Content); !res.OK {
		s.logAction(actionlog.ActionStoreError, map[string]any{"op": "write", "path": p, "error": res.Err})
		return nil, ChangeOutput{}, res.AsError()
	}
	s.logAction(actionlog.ActionCreate, map[string]any{"path": p, "bytes": len(args.Content)})
	return nil, ChangeOutput{Path: p, Refreshed: s.refresh()}, nil
}

func (s *Server) handleDeletePath(ctx context.Context, _ *mcpsdk.CallToolRequest, args PathInput) (*mcpsdk.CallToolResult, ChangeOutput, error) {
	p, err := cleanPath(args.Path)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if p == "" {
		return nil, ChangeOutput{}, fmt.Errorf("refusing to delete the sandbox root")
	}
	if res := s.files.Delete(ctx, p); !res.OK {
		s.logAction(actionlog.ActionStoreError, map[string]any{"op": "delete", "path": p, "error": res.Err})
		return nil, ChangeOutput{}, res.AsError()
	}
	s.logAction(actionlog.ActionDelete, map[string]any{"path": p})
	return nil, ChangeOutput{Path: p, Refreshed: s.refresh()}, nil
}

func (s *Server) handleCreateFolder(ctx context.Context, _ *mcpsdk.CallToolRequest, args PathInput) (*mcpsdk.CallToolResult, ChangeOutput, error) {
	p, err := cleanPath(args.Path)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if res := s.files.CreateFolder(ctx, p); !res.OK {
		s.logAction(actionlog.ActionStoreError, map[string]any{"op": "mkdir", "path": p, "error": res.Err})
		return nil, ChangeOutput{}, res.AsError()
	}
	s.logAction(actionlog.ActionCreate, map[string]any{"path": p, "kind": "folder"})
	return nil, ChangeOutput{Path: p, Refreshed: s.refresh()}, nil
}

func (s *Server) handleMovePath(ctx context.Context, _ *mcpsdk.CallToolRequest, args MovePathInput) (*mcpsdk.CallToolResult, ChangeOutput, error) {
	from, err := cleanPath(args.From)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	to, err := cleanPath(args.To)
	if err != nil {
		return nil, ChangeOutput{}, err
	}
	if dir, name := store.Split(to); s.files.Exists(ctx, dir, name) {
		return nil, ChangeOutput{}, fmt.Errorf("%s already exists", to)
	}
	if res := s.files.Move(ctx, from, to); !res.OK {
		s.logAction(actionlog.ActionStoreError, map[string]any{"op": "move", "from": from, "to": to, "error": res.Err})
		return nil, ChangeOutput{}, res.AsError()
	}
	s.logAction(actionlog.ActionRename, map[string]any{"from": from, "to": to})
	return nil, ChangeOutput{Path: to, Refreshed: s.refresh()}, nil
}

func (s *Server) handleDesktopStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DesktopStatusInput) (*mcpsdk.CallToolResult, DesktopStatusOutput, error) {
	if s.desktop == nil {
		return nil, DesktopStatusOutput{}, nil
	}
	st, err := s.desktop.GetStatus()
	if err != nil {
		// Not running is a valid answer for a status query.
		s.slog.Debug("desktop status unavailable", "error", err)
		return nil, DesktopStatusOutput{}, nil
	}
	return nil, DesktopStatusOutput{
		Running:       st.Running,
		UptimeSeconds: st.UptimeSeconds,
		Windows:       st.Windows,
		Icons:         st.Icons,
		ActiveWindow:  st.ActiveWindow,
		Theme:         st.Theme,
		Wallpaper:     st.Wallpaper,
		Sandbox:       st.Sandbox,
	}, nil
}

func (s *Server) requireDesktop() error {
	if s.desktop == nil {
		return fmt.Errorf("no desktop connection configured")
	}
	return nil
}

func (s *Server) handleOpenApp(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenAppInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := s.requireDesktop(); err != nil {
		return nil, WindowOutput{}, err
	}
	app := strings.TrimSpace(args.App)
	if app == "" {
		return nil, WindowOutput{}, fmt.Errorf("app is required")
	}
	w, err := s.desktop.OpenApp(app)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	s.logAction(actionlog.ActionIPC, map[string]any{"command": "open_app", "app": app, "window": w.ID})
	return nil, windowOutput(w), nil
}

func windowOutput(w *ipc.WindowInfo) WindowOutput {
	return WindowOutput{
		ID:        w.ID,
		App:       w.App,
		Title:     w.Title,
		X:         w.X,
		Y:         w.Y,
		Width:     w.Width,
		Height:    w.Height,
		Minimized: w.Minimized,
		Maximized: w.Maximized,
		Active:    w.Active,
	}
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CloseWindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.requireDesktop(); err != nil {
		return nil, CloseWindowOutput{}, err
	}
	id := strings.TrimSpace(args.ID)
	if id == "" {
		return nil, CloseWindowOutput{}, fmt.Errorf("id is required")
	}
	if err := s.desktop.CloseWindow(id); err != nil {
		return nil, CloseWindowOutput{ID: id}, err
	}
	s.logAction(actionlog.ActionIPC, map[string]any{"command": "close_window", "window": id})
	return nil, CloseWindowOutput{ID: id, Closed: true}, nil
}

func (s *Server) handleNotify(_ context.Context, _ *mcpsdk.CallToolRequest, args NotifyInput) (*mcpsdk.CallToolResult, NotifyOutput, error) {
	if err := s.requireDesktop(); err != nil {
		return nil, NotifyOutput{}, err
	}
	if strings.TrimSpace(args.Message) == "" {
		return nil, NotifyOutput{}, fmt.Errorf("message is required")
	}
	if args.Duration < 0 {
		return nil, NotifyOutput{}, fmt.Errorf("duration must not be negative")
	}
	d := time.Duration(args.Duration) * time.Millisecond
	if err := s.desktop.Notify(args.Message, args.Level, d); err != nil {
		return nil, NotifyOutput{}, err
	}
	return nil, NotifyOutput{Delivered: true}, nil
}
