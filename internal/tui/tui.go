// Package tui runs the desktop inside a terminal: it owns the bubbletea
// program, draws each frame on a cell canvas and serves the control socket
// while the session is up.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/termdesk/internal/desktop"
	"github.com/1broseidon/termdesk/internal/ipc"
)

// Options configure a terminal session.
type Options struct {
	// SocketPath is where the control socket listens. Empty disables it.
	SocketPath string
	// LogFile receives the process log while the terminal is taken over.
	LogFile string
}

// TUI is one terminal session of a desktop.
type TUI struct {
	d    *desktop.Desktop
	opts Options
}

// New creates a terminal session for d.
func New(d *desktop.Desktop, opts Options) *TUI {
	return &TUI{d: d, opts: opts}
}

// Run loads the saved layout, shows the desktop until the user quits or
// ctx is cancelled, then saves the layout again.
func (t *TUI) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("termdesk requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	if t.opts.LogFile != "" {
		f, err := tea.LogToFile(t.opts.LogFile, "termdesk")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	}

	if err := t.d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start desktop: %w", err)
	}

	p := tea.NewProgram(newModel(ctx, t.d),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if t.opts.SocketPath != "" {
		srv := ipc.NewServer(t.opts.SocketPath, newBridge(p.Send))
		if err := srv.Start(); err != nil {
			log.Printf("control socket disabled: %v", err)
		} else {
			log.Printf("control socket listening on %s", srv.SocketPath())
			defer srv.Stop()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		// Cancelled from outside: the model never saw a quit, so save here.
		if serr := t.d.Shutdown(context.WithoutCancel(ctx)); serr != nil {
			log.Printf("shutdown: %v", serr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}
