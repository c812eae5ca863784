package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/apps"
	"github.com/1broseidon/termdesk/internal/ipc"
	"github.com/1broseidon/termdesk/internal/overlay"
	"github.com/1broseidon/termdesk/internal/windows"
)

// loopBridge runs calls on the model directly; the caller blocks on the
// reply, so the model is never touched concurrently.
func loopBridge(m *model) *bridge {
	return newBridge(func(msg tea.Msg) { m.Update(msg) })
}

func TestBridgeStatusAndWindows(t *testing.T) {
	m, _ := newTestModel(t)
	b := loopBridge(m)
	ctx := context.Background()

	st, err := b.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Windows != 0 || st.Icons != 6 || st.Theme != "light" || st.Width != 1200 {
		t.Fatalf("unexpected status %+v", st)
	}

	w, err := b.OpenApp(ctx, "calculator")
	if err != nil {
		t.Fatalf("OpenApp: %v", err)
	}
	if w.ID != windows.ID("calculator") || !w.Active || w.Width != 400 {
		t.Fatalf("unexpected window %+v", w)
	}

	list, err := b.ListWindows(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListWindows = %v, %v", list, err)
	}

	if err := b.CloseWindow(ctx, w.ID); err != nil {
		t.Fatalf("CloseWindow: %v", err)
	}
	if err := b.CloseWindow(ctx, w.ID); !errors.Is(err, windows.ErrUnknownWindow) {
		t.Fatalf("closing twice: %v", err)
	}
	if _, err := b.OpenApp(ctx, "paint"); !errors.Is(err, apps.ErrUnknownApp) {
		t.Fatalf("unknown app: %v", err)
	}
}

func TestBridgeIconsAndNotify(t *testing.T) {
	m, _ := newTestModel(t)
	b := loopBridge(m)
	ctx := context.Background()

	list, err := b.ListIcons(ctx)
	if err != nil {
		t.Fatalf("ListIcons: %v", err)
	}
	var found bool
	for _, ic := range list {
		if ic.ID == "file_readme.txt" {
			found = ic.Kind == "file" && ic.Label == "readme"
		}
	}
	if !found {
		t.Fatalf("readme icon missing from %+v", list)
	}

	if err := b.Notify(ctx, ipc.NotifyPayload{Message: "built", Level: "success", DurationMS: 10}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	items := m.d.Toasts().Items()
	if len(items) != 1 || items[0].Level != overlay.LevelSuccess || items[0].Duration != time.Second {
		t.Fatalf("unexpected toasts %+v", items)
	}
	if err := b.Notify(ctx, ipc.NotifyPayload{}); err == nil {
		t.Fatalf("empty message should be rejected")
	}
}

func TestBridgeHonoursContext(t *testing.T) {
	b := newBridge(func(tea.Msg) {})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Status(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
