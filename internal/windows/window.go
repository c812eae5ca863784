package windows

import (
	"errors"
	"strings"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// ErrUnknownWindow is returned for ids that do not name an open window.
var ErrUnknownWindow = errors.New("unknown window")

const idSuffix = "Window"

// ID returns the window id used for an application.
func ID(app string) string { return app + idSuffix }

// AppOf returns the application name of a window id.
func AppOf(id string) string { return strings.TrimSuffix(id, idSuffix) }

// Record is the state of one open window.
type Record struct {
	ID        string
	App       string
	Title     string
	Geometry  geometry.Rect
	Z         int
	Minimized bool
	Maximized bool
	// Saved is the geometry to restore when leaving the maximized state.
	Saved geometry.Rect
}

// NormalGeometry is the geometry the window has when not maximized.
func (r Record) NormalGeometry() geometry.Rect {
	if r.Maximized {
		return r.Saved
	}
	return r.Geometry
}

// Summary is the persisted form of a window.
type Summary struct {
	ID          string `json:"id"`
	IsOpen      bool   `json:"isOpen"`
	IsMinimized bool   `json:"isMinimized"`
	IsMaximized bool   `json:"isMaximized"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

func (s Summary) App() string { return AppOf(s.ID) }

func (s Summary) Rect() geometry.Rect {
	return geometry.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// TaskbarEntry is one button on the taskbar.
type TaskbarEntry struct {
	ID        string
	App       string
	Title     string
	Active    bool
	Minimized bool
}

// Handle is a resize handle on the window frame.
type Handle int

const (
	HandleNone Handle = iota
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

func (h Handle) String() string {
	switch h {
	case HandleN:
		return "n"
	case HandleS:
		return "s"
	case HandleE:
		return "e"
	case HandleW:
		return "w"
	case HandleNE:
		return "ne"
	case HandleNW:
		return "nw"
	case HandleSE:
		return "se"
	case HandleSW:
		return "sw"
	default:
		return "none"
	}
}

func (h Handle) north() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) south() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) east() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) west() bool  { return h == HandleW || h == HandleNW || h == HandleSW }

// Region is the part of a window under the pointer.
type Region int

const (
	RegionNone Region = iota
	RegionTitle
	RegionMinimize
	RegionMaximize
	RegionClose
	RegionResize
	RegionFrame
	RegionContent
)

func (r Region) String() string {
	switch r {
	case RegionTitle:
		return "title"
	case RegionMinimize:
		return "minimize"
	case RegionMaximize:
		return "maximize"
	case RegionClose:
		return "close"
	case RegionResize:
		return "resize"
	case RegionFrame:
		return "frame"
	case RegionContent:
		return "content"
	default:
		return "none"
	}
}

// Hit is the result of a window hit test.
type Hit struct {
	ID     string
	Region Region
	Handle Handle
}

// Chrome describes the frame drawn around window content.
type Chrome struct {
	BorderX     int
	BorderY     int
	TitleHeight int
	ButtonWidth int
}

// Options controls window placement.
type Options struct {
	MinSize       geometry.Size
	DefaultSize   geometry.Size
	AppSizes      map[string]geometry.Size
	CascadeOrigin geometry.Point
	CascadeStep   int
	ZBase         int
	Chrome        Chrome
}

func DefaultOptions() Options {
	return Options{
		MinSize:     geometry.Size{Width: 300, Height: 200},
		DefaultSize: geometry.Size{Width: 600, Height: 400},
		AppSizes: map[string]geometry.Size{
			"explorer":   {Width: 900, Height: 560},
			"calculator": {Width: 400, Height: 560},
		},
		CascadeOrigin: geometry.Point{X: 100, Y: 50},
		CascadeStep:   30,
		ZBase:         100,
		Chrome:        Chrome{BorderX: 10, BorderY: 20, TitleHeight: 20, ButtonWidth: 30},
	}
}
