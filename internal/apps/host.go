package apps

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/windows"
)

type running struct {
	name          string
	inst          Instance
	width, height int
}

// Host keeps the app registry and the instances bound to open windows.
type Host struct {
	descs   map[string]Descriptor
	order   []string
	running map[string]*running
}

func NewHost(descs ...Descriptor) *Host {
	h := &Host{
		descs:   make(map[string]Descriptor, len(descs)),
		running: make(map[string]*running),
	}
	for _, d := range descs {
		h.Register(d)
	}
	return h
}

// Register adds or replaces an application.
func (h *Host) Register(d Descriptor) {
	if _, ok := h.descs[d.Name]; !ok {
		h.order = append(h.order, d.Name)
	}
	h.descs[d.Name] = d
}

func (h *Host) Descriptor(name string) (Descriptor, bool) {
	d, ok := h.descs[name]
	return d, ok
}

// Descriptors returns registered apps in registration order.
func (h *Host) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.descs[name])
	}
	return out
}

// Start creates the instance for app name in its window. Starting an app
// that is already running returns the existing instance.
func (h *Host) Start(name string, svc Services) (Instance, tea.Cmd, error) {
	d, ok := h.descs[name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownApp, name)
	}
	id := windows.ID(name)
	if r, ok := h.running[id]; ok {
		return r.inst, nil, nil
	}
	inst := d.New(svc)
	h.running[id] = &running{name: name, inst: inst}
	return inst, Scoped(id, inst.Init(id)), nil
}

// Stop forgets the instance in a closed window.
func (h *Host) Stop(windowID string) {
	delete(h.running, windowID)
}

func (h *Host) Instance(windowID string) (Instance, bool) {
	r, ok := h.running[windowID]
	if !ok {
		return nil, false
	}
	return r.inst, true
}

// Running lists the window ids with a live instance.
func (h *Host) Running() []string {
	out := make([]string, 0, len(h.running))
	for _, name := range h.order {
		if _, ok := h.running[windows.ID(name)]; ok {
			out = append(out, windows.ID(name))
		}
	}
	return out
}

// Send delivers msg to the app in windowID.
func (h *Host) Send(windowID string, msg tea.Msg) tea.Cmd {
	r, ok := h.running[windowID]
	if !ok {
		return nil
	}
	return Scoped(windowID, r.inst.Update(msg))
}

// Route delivers a scoped message to its window. Messages for closed
// windows are dropped.
func (h *Host) Route(msg ScopedMsg) tea.Cmd {
	return h.Send(msg.WindowID, msg.Msg)
}

// Broadcast delivers msg to every running app.
func (h *Host) Broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range h.Running() {
		if cmd := h.Send(id, msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Render resizes the instance when needed and returns its view.
func (h *Host) Render(windowID string, width, height int) string {
	r, ok := h.running[windowID]
	if !ok {
		return ""
	}
	if r.width != width || r.height != height {
		r.inst.Resize(width, height)
		r.width, r.height = width, height
	}
	return r.inst.View(width, height)
}

// CapturesKeys reports whether the app in windowID wants raw keys.
func (h *Host) CapturesKeys(windowID string) bool {
	r, ok := h.running[windowID]
	return ok && r.inst.CapturesKeys()
}

// Title returns the dynamic title of an app, or its descriptor title.
func (h *Host) Title(windowID string) string {
	r, ok := h.running[windowID]
	if !ok {
		return ""
	}
	if t, ok := r.inst.(Titled); ok {
		if s := t.Title(); s != "" {
			return s
		}
	}
	return h.descs[r.name].Title
}

// Builtin returns the descriptors of the bundled applications.
func Builtin() []Descriptor {
	return []Descriptor{
		ExplorerDescriptor(),
		NotesDescriptor(),
		CalculatorDescriptor(),
		SettingsDescriptor(),
		AboutDescriptor(),
	}
}
