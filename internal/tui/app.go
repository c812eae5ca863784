package tui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/desktop"
	"github.com/1broseidon/termdesk/internal/geometry"
)

// tickMsg drives the taskbar clock.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ipcCallMsg runs fn on the event loop and sends its result to reply.
type ipcCallMsg struct {
	fn    func(d *desktop.Desktop) (any, tea.Cmd, error)
	reply chan ipcResult
}

type ipcResult struct {
	value any
	err   error
}

type lastClick struct {
	col, row int
	at       time.Time
}

// model is the root bubbletea model. It maps terminal cells to desktop
// pixels and reserves the bottom row for the taskbar.
type model struct {
	ctx  context.Context
	d    *desktop.Desktop
	cols int
	rows int
	now  time.Time
	last lastClick
	// clock overrides time.Now in tests.
	clock func() time.Time
}

func newModel(ctx context.Context, d *desktop.Desktop) *model {
	return &model{ctx: ctx, d: d, now: time.Now(), clock: time.Now}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return tea.Batch(m.d.Init(), tick())
}

// point maps a cell to the desktop pixel at its centre.
func (m *model) point(col, row int) geometry.Point {
	cw, ch := m.d.CellSize()
	return geometry.Point{X: col*cw + cw/2, Y: row*ch + ch/2}
}

func (m *model) taskbarRow() int { return m.rows - 1 }

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		cw, ch := m.d.CellSize()
		m.d.Resize(geometry.Size{Width: m.cols * cw, Height: max(m.rows-1, 0) * ch})
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		return m, m.d.Key(msg)

	case tea.MouseMsg:
		return m, m.mouse(msg)

	case desktop.QuitRequestedMsg:
		return m, m.quit()

	case ipcCallMsg:
		value, cmd, err := msg.fn(m.d)
		cmd = tea.Batch(cmd, m.d.Flush())
		msg.reply <- ipcResult{value: value, err: err}
		return m, cmd
	}
	return m, m.d.Update(msg)
}

func (m *model) mouse(msg tea.MouseMsg) tea.Cmd {
	p := m.point(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionMotion:
		return m.d.MouseMove(p)
	case tea.MouseActionRelease:
		return m.d.MouseUp(p)
	case tea.MouseActionPress:
	default:
		return nil
	}

	if msg.Y == m.taskbarRow() {
		if msg.Button == tea.MouseButtonLeft {
			return m.taskbarClick(msg.X)
		}
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonLeft:
		now := m.clock()
		double := m.last.col == msg.X && m.last.row == msg.Y &&
			now.Sub(m.last.at) <= m.d.DoubleClickWindow()
		if double {
			m.last = lastClick{col: -1, row: -1}
		} else {
			m.last = lastClick{col: msg.X, row: msg.Y, at: now}
		}
		return m.d.MouseDown(desktop.Pointer{Point: p, Double: double, Ctrl: msg.Ctrl, Shift: msg.Shift})
	case tea.MouseButtonRight:
		return m.d.RightClick(p)
	}
	return nil
}

func (m *model) taskbarClick(col int) tea.Cmd {
	if m.d.Modals().Active() {
		return nil
	}
	for _, s := range taskbarSlots(m.d, m.cols) {
		if col < s.Col || col >= s.Col+s.Width {
			continue
		}
		if s.ID == "" {
			m.d.ToggleStartMenu()
			return nil
		}
		if err := m.d.TaskbarClick(s.ID); err != nil {
			log.Printf("taskbar: %v", err)
		}
		return nil
	}
	return nil
}

func (m *model) quit() tea.Cmd {
	if err := m.d.Shutdown(m.ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	return tea.Quit
}

// View implements tea.Model.
func (m *model) View() string {
	if m.cols <= 0 || m.rows <= 0 {
		return ""
	}
	return render(m.d, m.cols, m.rows, m.now)
}
