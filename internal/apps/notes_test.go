package apps

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/overlay"
)

func openNote(t *testing.T, path, content string) (*notes, *fakeServices) {
	t.Helper()
	svc := newFakeServices()
	if res := svc.client.Write(context.Background(), path, content); !res.OK {
		t.Fatalf("Write: %s", res.Err)
	}
	n := newNotes(svc)
	n.Resize(60, 12)
	n.editor.Focus()
	drain(t, n, n.Update(OpenPathMsg{Path: path}))
	return n, svc
}

func TestNotesOpenAndSave(t *testing.T) {
	n, svc := openNote(t, "docs/todo.txt", "milk")
	if n.editor.Value() != "milk" || svc.title != "Notes - todo.txt" {
		t.Fatalf("loaded %q, title %q", n.editor.Value(), svc.title)
	}

	n.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("!")})
	if !n.dirty() || !strings.HasSuffix(svc.title, "*") {
		t.Fatalf("typing should mark the note dirty, title %q", svc.title)
	}

	drain(t, n, n.Update(tea.KeyMsg{Type: tea.KeyCtrlS}))
	res := svc.client.Read(context.Background(), "docs/todo.txt")
	if !res.OK || res.Value != "milk!" {
		t.Fatalf("saved content = %q (%s)", res.Value, res.Err)
	}
	if n.dirty() || svc.title != "Notes - todo.txt" {
		t.Fatalf("save should clear the dirty marker, title %q", svc.title)
	}
	last := svc.toasts[len(svc.toasts)-1]
	if last.message != "File saved successfully!" || last.level != overlay.LevelSuccess {
		t.Fatalf("toast = %+v", last)
	}
	if len(svc.changed) != 1 || svc.changed[0] != "docs" {
		t.Fatalf("StoreChanged = %v", svc.changed)
	}
}

func TestNotesSaveAsKeepsDirectory(t *testing.T) {
	n, svc := openNote(t, "docs/todo.txt", "milk")
	n.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s"), Alt: true})
	if svc.promptInitial != "todo.txt" {
		t.Fatalf("Save As initial = %q", svc.promptInitial)
	}

	drain(t, n, svc.promptFn("copy.txt", true))
	if n.path != "docs/copy.txt" {
		t.Fatalf("path = %q, want docs/copy.txt", n.path)
	}

	drain(t, n, n.saveAs())
	drain(t, n, svc.promptFn("archive/old.txt", true))
	if n.path != "archive/old.txt" {
		t.Fatalf("path with a slash should be used as is, got %q", n.path)
	}
}

func TestNotesNewFilePromptsOnSave(t *testing.T) {
	n, svc := openNote(t, "a.txt", "x")
	n.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if n.path != "" || n.editor.Value() != "" {
		t.Fatalf("ctrl+n should start an empty note")
	}
	if cmd := n.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Fatalf("saving an unnamed note should prompt first")
	}
	if svc.promptInitial != "untitled.txt" {
		t.Fatalf("initial = %q", svc.promptInitial)
	}
	if svc.promptFn("  ", true) != nil {
		t.Fatalf("blank names are ignored")
	}
}

func TestNotesOpenFailureToasts(t *testing.T) {
	svc := newFakeServices()
	n := newNotes(svc)
	drain(t, n, n.Update(OpenPathMsg{Path: "missing.txt"}))
	if len(svc.toasts) != 1 || svc.toasts[0].level != overlay.LevelError {
		t.Fatalf("toasts = %+v", svc.toasts)
	}
	if n.path != "" {
		t.Fatalf("failed open should not change the path")
	}
}

func TestLanguageOf(t *testing.T) {
	if got := languageOf("main.go"); got != "Go" {
		t.Fatalf("languageOf(main.go) = %q", got)
	}
	if got := languageOf(""); got != "Plain Text" {
		t.Fatalf("languageOf(\"\") = %q", got)
	}
}
