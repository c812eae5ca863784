// Package actionlog records user-visible desktop actions to a rotating
// plain-text file.
package actionlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Action is the kind of event being logged.
type Action string

const (
	ActionStart       Action = "START"
	ActionStop        Action = "STOP"
	ActionOpen        Action = "OPEN"
	ActionClose       Action = "CLOSE"
	ActionMove        Action = "MOVE"
	ActionResize      Action = "RESIZE"
	ActionCreate      Action = "CREATE"
	ActionDelete      Action = "DELETE"
	ActionRename      Action = "RENAME"
	ActionRefresh     Action = "REFRESH"
	ActionAppearance  Action = "APPEARANCE"
	ActionIPC         Action = "IPC"
	ActionStoreError  Action = "STORE-ERROR"
	ActionLayoutError Action = "LAYOUT-ERROR"
)

func actionLevel(a Action) Level {
	switch a {
	case ActionMove, ActionResize, ActionRefresh, ActionIPC:
		return LevelDebug
	case ActionStoreError, ActionLayoutError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Config controls where and how much is logged.
type Config struct {
	Enabled   bool
	Level     Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// Logger appends action lines to a file that lumberjack rotates at
// MaxSizeMB, keeping MaxFiles backups. A nil or disabled Logger discards
// everything.
type Logger struct {
	mu  sync.Mutex
	cfg Config
	out io.WriteCloser
	now func() time.Time
}

// New prepares the log file. Disabled configs return a no-op logger.
func New(cfg Config) (*Logger, error) {
	l := &Logger{cfg: cfg, now: time.Now}
	if !cfg.Enabled {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	l.out = &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxFiles,
	}
	return l, nil
}

// Log writes one line: timestamp, action, then details as sorted key=value
// pairs with string values quoted.
func (l *Logger) Log(action Action, details map[string]any) {
	if l == nil || !l.cfg.Enabled || actionLevel(action) < l.cfg.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil {
		return
	}
	if _, err := io.WriteString(l.out, Format(l.now(), action, details)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write log entry: %v\n", err)
	}
}

// Format renders a log line.
func Format(ts time.Time, action Action, details map[string]any) string {
	var sb strings.Builder
	sb.WriteString(ts.Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, v)
		case error:
			fmt.Fprintf(&sb, " %s=%q", k, v.Error())
		default:
			fmt.Fprintf(&sb, " %s=%v", k, v)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil {
		return nil
	}
	err := l.out.Close()
	l.out = nil
	return err
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
