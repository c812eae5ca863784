package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/actionlog"
	"github.com/1broseidon/termdesk/internal/desktop"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/windows"
)

var errUnexpectedReply = errors.New("unexpected reply from desktop")

// bridge serves control socket requests by running them on the event
// loop of the program.
type bridge struct {
	send func(tea.Msg)
}

var _ ipc.Handler = (*bridge)(nil)

func newBridge(send func(tea.Msg)) *bridge {
	return &bridge{send: send}
}

func (b *bridge) call(ctx context.Context, command string, fn func(d *desktop.Desktop) (any, tea.Cmd, error)) (any, error) {
	reply := make(chan ipcResult, 1)
	logged := func(d *desktop.Desktop) (any, tea.Cmd, error) {
		v, cmd, err := fn(d)
		details := map[string]any{"command": command}
		if err != nil {
			details["error"] = err
		}
		d.ActionLog().Log(actionlog.ActionIPC, details)
		return v, cmd, err
	}
	go b.send(ipcCallMsg{fn: logged, reply: reply})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-reply:
		return res.value, res.err
	}
}

func windowInfo(d *desktop.Desktop, rec windows.Record) ipc.WindowInfo {
	return ipc.WindowInfo{
		ID:        rec.ID,
		App:       rec.App,
		Title:     rec.Title,
		X:         rec.Geometry.X,
		Y:         rec.Geometry.Y,
		Width:     rec.Geometry.Width,
		Height:    rec.Geometry.Height,
		Z:         rec.Z,
		Minimized: rec.Minimized,
		Maximized: rec.Maximized,
		Active:    d.Windows().Active() == rec.ID,
	}
}

func statusOf(d *desktop.Desktop) ipc.StatusData {
	a := d.Appearance()
	size := d.Size()
	return ipc.StatusData{
		Running:       true,
		UptimeSeconds: int64(d.Uptime().Seconds()),
		Windows:       len(d.Windows().Windows()),
		Icons:         len(d.Icons().Records()),
		ActiveWindow:  d.Windows().Active(),
		Theme:         a.Theme,
		Wallpaper:     a.Wallpaper,
		Sandbox:       d.Sandbox(),
		Width:         size.Width,
		Height:        size.Height,
	}
}

func (b *bridge) Status(ctx context.Context) (ipc.StatusData, error) {
	v, err := b.call(ctx, "status", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		return statusOf(d), nil, nil
	})
	if err != nil {
		return ipc.StatusData{}, err
	}
	s, ok := v.(ipc.StatusData)
	if !ok {
		return ipc.StatusData{}, errUnexpectedReply
	}
	return s, nil
}

func (b *bridge) OpenApp(ctx context.Context, app string) (ipc.WindowInfo, error) {
	v, err := b.call(ctx, "open_app", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		cmd, err := d.OpenApp(app)
		if err != nil {
			return nil, nil, err
		}
		rec, _ := d.Windows().Get(windows.ID(app))
		return windowInfo(d, rec), cmd, nil
	})
	if err != nil {
		return ipc.WindowInfo{}, err
	}
	w, ok := v.(ipc.WindowInfo)
	if !ok {
		return ipc.WindowInfo{}, errUnexpectedReply
	}
	return w, nil
}

func (b *bridge) CloseWindow(ctx context.Context, id string) error {
	_, err := b.call(ctx, "close_window", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		return nil, nil, d.CloseWindow(id)
	})
	return err
}

func (b *bridge) ListWindows(ctx context.Context) ([]ipc.WindowInfo, error) {
	v, err := b.call(ctx, "list_windows", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		out := []ipc.WindowInfo{}
		for _, rec := range d.Windows().Windows() {
			out = append(out, windowInfo(d, rec))
		}
		return out, nil, nil
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.([]ipc.WindowInfo)
	return out, nil
}

func (b *bridge) ListIcons(ctx context.Context) ([]ipc.IconInfo, error) {
	v, err := b.call(ctx, "list_icons", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		m := d.Icons()
		out := []ipc.IconInfo{}
		for _, rec := range m.Records() {
			out = append(out, ipc.IconInfo{
				ID:       rec.ID,
				Kind:     rec.Kind.String(),
				Label:    rec.Label,
				X:        rec.X,
				Y:        rec.Y,
				Selected: m.IsSelected(rec.ID),
			})
		}
		return out, nil, nil
	})
	if err != nil {
		return nil, err
	}
	out, _ := v.([]ipc.IconInfo)
	return out, nil
}

func (b *bridge) Refresh(ctx context.Context) error {
	_, err := b.call(ctx, "refresh", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		return nil, d.Refresh(), nil
	})
	return err
}

func (b *bridge) Notify(ctx context.Context, p ipc.NotifyPayload) error {
	if p.Message == "" {
		return errors.New("message is required")
	}
	dur := time.Duration(p.DurationMS) * time.Millisecond
	_, err := b.call(ctx, "notify", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		return nil, d.Notify(p.Message, overlay.ParseLevel(p.Level), dur), nil
	})
	return err
}

func (b *bridge) OpenFile(ctx context.Context, path string) error {
	_, err := b.call(ctx, "open_file", func(d *desktop.Desktop) (any, tea.Cmd, error) {
		return nil, d.OpenFile(path), nil
	})
	return err
}
