package overlay

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// Level is the severity of a toast.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelSuccess, LevelError:
		return Level(s)
	default:
		return LevelInfo
	}
}

const (
	DefaultToastDuration = 3 * time.Second
	MinToastDuration     = time.Second
)

// Toast is a transient notification.
type Toast struct {
	ID       string
	Message  string
	Level    Level
	Duration time.Duration
}

// ToastExpiredMsg is delivered when a toast's duration has elapsed.
type ToastExpiredMsg struct{ ID string }

// ExpireCmd schedules the toast's removal.
func (t Toast) ExpireCmd() tea.Cmd {
	id := t.ID
	return tea.Tick(t.Duration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}

// ToastMetrics sizes toasts in desktop units.
type ToastMetrics struct {
	Width  int
	Height int
	Gap    int
	Margin int
}

func DefaultToastMetrics() ToastMetrics {
	return ToastMetrics{Width: 300, Height: 40, Gap: 20, Margin: 20}
}

// Toasts is the stack of visible notifications, oldest first.
type Toasts struct {
	metrics ToastMetrics
	items   []Toast
}

func NewToasts(metrics ToastMetrics) *Toasts {
	if metrics.Width <= 0 || metrics.Height <= 0 {
		metrics = DefaultToastMetrics()
	}
	return &Toasts{metrics: metrics}
}

// Add shows a toast. Durations below MinToastDuration are raised to it and
// zero means DefaultToastDuration.
func (t *Toasts) Add(message string, level Level, d time.Duration) Toast {
	switch {
	case d == 0:
		d = DefaultToastDuration
	case d < MinToastDuration:
		d = MinToastDuration
	}
	if level == "" {
		level = LevelInfo
	}
	toast := Toast{ID: uuid.NewString(), Message: message, Level: level, Duration: d}
	t.items = append(t.items, toast)
	return toast
}

// Dismiss removes a toast. It reports whether the toast was still shown.
func (t *Toasts) Dismiss(id string) bool {
	for i, it := range t.items {
		if it.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Toasts) Items() []Toast { return t.items }

func (t *Toasts) Len() int { return len(t.items) }

// Layout stacks toasts upward from the bottom-right corner, newest lowest.
func (t *Toasts) Layout(bounds geometry.Size) []geometry.Rect {
	out := make([]geometry.Rect, len(t.items))
	y := bounds.Height - t.metrics.Margin
	for i := len(t.items) - 1; i >= 0; i-- {
		y -= t.metrics.Height
		out[i] = geometry.Rect{
			X:      bounds.Width - t.metrics.Margin - t.metrics.Width,
			Y:      y,
			Width:  t.metrics.Width,
			Height: t.metrics.Height,
		}
		y -= t.metrics.Gap
	}
	return out
}

// HitTest returns the toast under p.
func (t *Toasts) HitTest(p geometry.Point, bounds geometry.Size) (string, bool) {
	for i, r := range t.Layout(bounds) {
		if within(r, p) {
			return t.items[i].ID, true
		}
	}
	return "", false
}
