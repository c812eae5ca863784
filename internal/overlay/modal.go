package overlay

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// ModalKind distinguishes confirmation dialogs from text prompts.
type ModalKind int

const (
	ModalConfirm ModalKind = iota
	ModalPrompt
)

// Modal is a dialog that captures all input until answered.
type Modal struct {
	ID      string
	Kind    ModalKind
	Title   string
	Message string
	Input   textinput.Model

	// Return names the focus owner to restore once the modal closes.
	Return string

	onConfirm func(ok bool) tea.Cmd
	onPrompt  func(value string, ok bool) tea.Cmd
}

// NewConfirm builds a yes/no dialog.
func NewConfirm(title, message string, fn func(ok bool) tea.Cmd) *Modal {
	return &Modal{
		ID:        uuid.NewString(),
		Kind:      ModalConfirm,
		Title:     title,
		Message:   message,
		onConfirm: fn,
	}
}

// NewPrompt builds a single-line text dialog prefilled with initial.
func NewPrompt(title, message, initial string, fn func(value string, ok bool) tea.Cmd) *Modal {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 255
	in.SetValue(initial)
	in.CursorEnd()
	in.Focus()
	return &Modal{
		ID:       uuid.NewString(),
		Kind:     ModalPrompt,
		Title:    title,
		Message:  message,
		Input:    in,
		onPrompt: fn,
	}
}

func (m *Modal) Value() string {
	if m.Kind != ModalPrompt {
		return ""
	}
	return m.Input.Value()
}

func (m *Modal) answer(ok bool) tea.Cmd {
	switch m.Kind {
	case ModalPrompt:
		if m.onPrompt != nil {
			return m.onPrompt(m.Input.Value(), ok)
		}
	default:
		if m.onConfirm != nil {
			return m.onConfirm(ok)
		}
	}
	return nil
}

// ModalLayout is where a modal and its buttons sit on the desktop.
type ModalLayout struct {
	Box    geometry.Rect
	Input  geometry.Rect
	OK     geometry.Rect
	Cancel geometry.Rect
}

// Layout centres the modal in bounds.
func (m *Modal) Layout(bounds geometry.Size) ModalLayout {
	w, h := 400, 140
	if m.Kind == ModalPrompt {
		h = 180
	}
	w, h = min(w, bounds.Width), min(h, bounds.Height)
	box := geometry.Rect{X: (bounds.Width - w) / 2, Y: (bounds.Height - h) / 2, Width: w, Height: h}
	const btnW, btnH, pad = 100, 20, 20
	l := ModalLayout{
		Box:    box,
		Cancel: geometry.Rect{X: box.Right() - pad - btnW, Y: box.Bottom() - pad - btnH, Width: btnW, Height: btnH},
	}
	l.OK = geometry.Rect{X: l.Cancel.X - pad - btnW, Y: l.Cancel.Y, Width: btnW, Height: btnH}
	if m.Kind == ModalPrompt {
		l.Input = geometry.Rect{X: box.X + pad, Y: l.Cancel.Y - 2*btnH - pad, Width: box.Width - 2*pad, Height: btnH}
	}
	return l
}

// ModalStack holds open modals; only the top one receives input.
type ModalStack struct {
	modals []*Modal
}

func (s *ModalStack) Push(m *Modal) { s.modals = append(s.modals, m) }

func (s *ModalStack) Active() bool { return len(s.modals) > 0 }

func (s *ModalStack) Len() int { return len(s.modals) }

func (s *ModalStack) Top() *Modal {
	if len(s.modals) == 0 {
		return nil
	}
	return s.modals[len(s.modals)-1]
}

// All returns the open modals from bottom to top.
func (s *ModalStack) All() []*Modal { return s.modals }

func (s *ModalStack) pop() *Modal {
	top := s.Top()
	if top != nil {
		s.modals = s.modals[:len(s.modals)-1]
	}
	return top
}

// Confirm closes the top modal with a positive answer.
func (s *ModalStack) Confirm() (*Modal, tea.Cmd) {
	top := s.pop()
	if top == nil {
		return nil, nil
	}
	return top, top.answer(true)
}

// Cancel closes the top modal with a negative answer.
func (s *ModalStack) Cancel() (*Modal, tea.Cmd) {
	top := s.pop()
	if top == nil {
		return nil, nil
	}
	return top, top.answer(false)
}

// Update routes a message to the top modal. Enter confirms, Esc cancels
// and anything else goes to the prompt input. The returned modal is
// non-nil when the message closed it.
func (s *ModalStack) Update(msg tea.Msg) (*Modal, tea.Cmd) {
	top := s.Top()
	if top == nil {
		return nil, nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			return s.Confirm()
		case "esc":
			return s.Cancel()
		}
	}
	if top.Kind != ModalPrompt {
		return nil, nil
	}
	var cmd tea.Cmd
	top.Input, cmd = top.Input.Update(msg)
	return nil, cmd
}

// Click handles a pointer press while a modal is open. Pressing outside the
// box cancels, the buttons answer and anything else is ignored.
func (s *ModalStack) Click(p geometry.Point, bounds geometry.Size) (*Modal, tea.Cmd) {
	top := s.Top()
	if top == nil {
		return nil, nil
	}
	l := top.Layout(bounds)
	switch {
	case !within(l.Box, p):
		return s.Cancel()
	case within(l.OK, p):
		return s.Confirm()
	case within(l.Cancel, p):
		return s.Cancel()
	}
	return nil, nil
}
