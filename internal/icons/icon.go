package icons

import (
	"fmt"
	"strings"

	"github.com/1broseidon/termdesk/internal/geometry"
	"github.com/1broseidon/termdesk/internal/store"
)

// Kind is what a desktop icon stands for.
type Kind int

const (
	KindApp Kind = iota
	KindFile
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindApp, KindFile, KindFolder:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("invalid icon kind %d", int(k))
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "app":
		*k = KindApp
	case "file":
		*k = KindFile
	case "folder":
		*k = KindFolder
	default:
		return fmt.Errorf("invalid icon kind %q", string(b))
	}
	return nil
}

// KindOf maps a store listing entry to an icon kind.
func KindOf(e store.Entry) Kind {
	if e.IsFolder() {
		return KindFolder
	}
	return KindFile
}

// Record is the state of one desktop icon.
type Record struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"type"`
	Label   string `json:"label"`
	RawName string `json:"rawName,omitempty"`
	Glyph   string `json:"icon,omitempty"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

func (r Record) Position() geometry.Point {
	return geometry.Point{X: r.X, Y: r.Y}
}

// IsEntry reports whether the icon is backed by a store entry.
func (r Record) IsEntry() bool {
	return r.Kind == KindFile || r.Kind == KindFolder
}

// AppID is the icon id of a built-in application.
func AppID(name string) string { return "app_" + name }

// EntryID is the icon id of a file or folder in the store root.
func EntryID(rawName string) string { return "file_" + rawName }

// AppIcon describes a launchable application shown on the desktop.
type AppIcon struct {
	Name  string
	Label string
	Glyph string
}

// DisplayLabel hides a recognized note extension from file names.
func DisplayLabel(rawName string, kind Kind, noteExtensions []string) string {
	if kind != KindFile {
		return rawName
	}
	lower := strings.ToLower(rawName)
	for _, ext := range noteExtensions {
		ext = strings.ToLower(ext)
		if ext == "" {
			continue
		}
		if strings.HasSuffix(lower, ext) && len(rawName) > len(ext) {
			return rawName[:len(rawName)-len(ext)]
		}
	}
	return rawName
}

// Policy decides what happens when dropped icons land on other icons.
type Policy string

const (
	PolicyAutoArrange Policy = "auto-arrange"
	PolicyRevert      Policy = "revert"
)

// Options controls icon placement.
type Options struct {
	Grid           int
	SnapToGrid     bool
	IconSize       geometry.Size
	Policy         Policy
	DragThreshold  int
	NoteExtensions []string
}

// DefaultOptions mirrors the stock desktop: 20px grid, 80x90 icons.
func DefaultOptions() Options {
	return Options{
		Grid:           20,
		SnapToGrid:     true,
		IconSize:       geometry.Size{Width: 80, Height: 90},
		Policy:         PolicyAutoArrange,
		DragThreshold:  5,
		NoteExtensions: []string{".txt"},
	}
}

// Drop describes how a finished drag was resolved.
type Drop struct {
	// Folder and Files are set when the drop is a move into a folder.
	Folder string
	Files  []string
	// Relocated lists icons moved by auto-arrange.
	Relocated []string
	Reverted  bool
	// Persist is set when icon positions changed and should be saved.
	Persist bool
}

func (d Drop) IsFolderMove() bool {
	return d.Folder != "" && len(d.Files) > 0
}
