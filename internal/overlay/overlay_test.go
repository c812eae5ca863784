package overlay

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/termdesk/internal/geometry"
)

var bounds = geometry.Size{Width: 1000, Height: 600}

func actions(items []MenuItem) []string {
	var out []string
	for _, it := range items {
		switch {
		case it.IsDivider:
			out = append(out, "-")
		case it.IsParent():
			out = append(out, it.Label+">")
		case it.Disabled:
			out = append(out, "!"+it.Action)
		default:
			out = append(out, it.Action)
		}
	}
	return out
}

func TestDesktopItemsDependOnSelection(t *testing.T) {
	tests := []struct {
		selected int
		want     []string
		label    string
	}{
		{0, []string{"New>", ActionRefresh, ActionWallpaper, "-", "!" + ActionDelete, "!" + ActionRename}, "Delete Selected (0)"},
		{1, []string{"New>", ActionRefresh, ActionWallpaper, "-", ActionDelete, ActionRename}, "Delete Selected (1)"},
		{3, []string{"New>", ActionRefresh, ActionWallpaper, "-", ActionDelete, "!" + ActionRename}, "Delete Selected (3)"},
	}
	for _, tt := range tests {
		items := DesktopItems(tt.selected)
		got := actions(items)
		if len(got) != len(tt.want) {
			t.Fatalf("selected=%d items = %v, want %v", tt.selected, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("selected=%d items = %v, want %v", tt.selected, got, tt.want)
			}
		}
		if items[4].Label != tt.label {
			t.Fatalf("selected=%d delete label = %q, want %q", tt.selected, items[4].Label, tt.label)
		}
	}
}

func TestContextMenuSkipsDisabledItems(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(0), bounds)

	// Rows 4 and 5 are Delete and Rename, both disabled without a selection.
	for _, y := range []int{185, 205} {
		if got := c.Click(geometry.Point{X: 150, Y: y}); got != "" {
			t.Fatalf("click at y=%d returned %q", y, got)
		}
		if !c.IsOpen() {
			t.Fatalf("clicking a disabled item should leave the menu open")
		}
	}

	c.Move(1)
	c.Move(1)
	c.Move(1)
	if c.Hovered() != 2 {
		t.Fatalf("hover = %d, want 2", c.Hovered())
	}
	c.Move(1)
	if c.Hovered() != 0 {
		t.Fatalf("hover = %d, want wrap to 0 past disabled rows", c.Hovered())
	}
	c.Move(-1)
	if c.Hovered() != 2 {
		t.Fatalf("hover = %d, want 2 moving back past disabled rows", c.Hovered())
	}

	c.Hover(geometry.Point{X: 150, Y: 205})
	if got := c.Activate(); got != "" {
		t.Fatalf("activating a hovered disabled item returned %q", got)
	}
}

func TestContextMenuSubmenuClick(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(0), bounds)
	if got := c.Rect(); got != (geometry.Rect{X: 100, Y: 100, Width: 200, Height: 120}) {
		t.Fatalf("rect = %+v", got)
	}

	if cmd := c.Hover(geometry.Point{X: 150, Y: 105}); cmd != nil {
		t.Fatalf("hovering a parent should not arm a hide timer")
	}
	items, rect, _, ok := c.Submenu()
	if !ok || len(items) != 2 {
		t.Fatalf("submenu not open")
	}
	if rect != (geometry.Rect{X: 300, Y: 100, Width: 200, Height: 40}) {
		t.Fatalf("submenu rect = %+v", rect)
	}

	if got := c.Click(geometry.Point{X: 350, Y: 125}); got != ActionNewFolder {
		t.Fatalf("click = %q, want %q", got, ActionNewFolder)
	}
	if c.IsOpen() {
		t.Fatalf("menu should close after choosing an action")
	}
}

func TestContextMenuClampsAndFlipsSubmenu(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 900, Y: 590}, DesktopItems(0), bounds)
	r := c.Rect()
	if r.X != 800 || r.Y != 480 {
		t.Fatalf("menu origin = %d,%d want 800,480", r.X, r.Y)
	}
	c.Hover(geometry.Point{X: 810, Y: 485})
	_, sub, _, ok := c.Submenu()
	if !ok {
		t.Fatalf("submenu not open")
	}
	if sub.X != 600 {
		t.Fatalf("submenu x = %d, want flipped to 600", sub.X)
	}
	if sub.Bottom() > bounds.Height {
		t.Fatalf("submenu overflows bottom: %+v", sub)
	}
}

func TestContextMenuSubmenuHideIsCancelledByReturn(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(0), bounds)
	c.Hover(geometry.Point{X: 150, Y: 105})

	cmd := c.Hover(geometry.Point{X: 150, Y: 125})
	if cmd == nil {
		t.Fatalf("leaving the parent should arm a hide timer")
	}
	stale, ok := cmd().(SubmenuHideMsg)
	if !ok {
		t.Fatalf("timer produced unexpected message")
	}

	c.Hover(geometry.Point{X: 350, Y: 105})
	if c.HideSubmenu(stale.Gen) {
		t.Fatalf("stale timer closed the submenu")
	}
	if _, _, _, ok := c.Submenu(); !ok {
		t.Fatalf("submenu should still be open")
	}

	cmd = c.Hover(geometry.Point{X: 150, Y: 145})
	if cmd == nil {
		t.Fatalf("leaving again should re-arm the timer")
	}
	fresh := cmd().(SubmenuHideMsg)
	if !c.HideSubmenu(fresh.Gen) {
		t.Fatalf("current timer should close the submenu")
	}
	if _, _, _, ok := c.Submenu(); ok {
		t.Fatalf("submenu still open")
	}
	if !c.IsOpen() {
		t.Fatalf("main menu should stay open")
	}
}

func TestContextMenuClickOutsideCloses(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(1), bounds)
	if got := c.Click(geometry.Point{X: 5, Y: 5}); got != "" {
		t.Fatalf("outside click returned %q", got)
	}
	if c.IsOpen() {
		t.Fatalf("outside click should close the menu")
	}
}

func TestContextMenuKeyboard(t *testing.T) {
	c := NewContextMenu(DefaultMenuMetrics())
	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(2), bounds)

	c.Move(1)
	if c.Hovered() != 0 {
		t.Fatalf("hover = %d, want 0", c.Hovered())
	}
	c.Move(1)
	c.Move(1)
	c.Move(1)
	if c.Hovered() != 4 {
		t.Fatalf("hover = %d, want 4 (divider skipped)", c.Hovered())
	}
	if got := c.Activate(); got != ActionDelete {
		t.Fatalf("activate = %q, want delete", got)
	}

	c.Open(geometry.Point{X: 100, Y: 100}, DesktopItems(0), bounds)
	c.Move(1)
	c.Right()
	if got := c.Activate(); got != ActionNewNote {
		t.Fatalf("activate in submenu = %q, want new-note", got)
	}
}

func testEntries() []StartEntry {
	return []StartEntry{
		{Name: "calculator", Label: "Calculator"},
		{Name: "notes", Label: "Notes"},
		{Name: "explorer", Label: "File Explorer"},
		{Name: "settings", Label: "Settings"},
		{Name: "about", Label: "About"},
	}
}

func TestStartMenuFilter(t *testing.T) {
	s := NewStartMenu(testEntries())
	s.Open()
	if len(s.Entries()) != 5 {
		t.Fatalf("unfiltered entries = %d", len(s.Entries()))
	}
	s.Type("calc")
	got, ok := s.Selected()
	if !ok || got.Name != "calculator" {
		t.Fatalf("selected = %+v, want calculator", got)
	}
	s.Type("zzz")
	if _, ok := s.Selected(); ok {
		t.Fatalf("no entry should match %q", s.Query())
	}
	for range 3 {
		s.Backspace()
	}
	if s.Query() != "calc" {
		t.Fatalf("query = %q after backspace", s.Query())
	}
	s.Toggle()
	if s.IsOpen() {
		t.Fatalf("toggle should close")
	}
	s.Toggle()
	if s.Query() != "" || len(s.Entries()) != 5 {
		t.Fatalf("reopening should reset the filter")
	}
}

func TestStartMenuMoveWraps(t *testing.T) {
	s := NewStartMenu(testEntries())
	s.Open()
	s.Move(-1)
	got, _ := s.Selected()
	if got.Name != "about" {
		t.Fatalf("selected = %q, want about", got.Name)
	}
	if e, ok := s.At(1); !ok || e.Name != "notes" {
		t.Fatalf("At(1) = %+v", e)
	}
}

func TestModalConfirmKeys(t *testing.T) {
	var answers []bool
	var st ModalStack
	push := func() {
		st.Push(NewConfirm("Delete", "Delete 2 items?", func(ok bool) tea.Cmd {
			answers = append(answers, ok)
			return nil
		}))
	}

	push()
	if closed, _ := st.Update(tea.KeyMsg{Type: tea.KeyEnter}); closed == nil {
		t.Fatalf("enter should close the modal")
	}
	push()
	st.Update(tea.KeyMsg{Type: tea.KeyEsc})
	push()
	st.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})

	if len(answers) != 2 || !answers[0] || answers[1] {
		t.Fatalf("answers = %v, want [true false]", answers)
	}
	if st.Len() != 1 {
		t.Fatalf("stack len = %d, want 1", st.Len())
	}
}

func TestModalPromptEditsValue(t *testing.T) {
	var got string
	var gotOK bool
	var st ModalStack
	st.Push(NewPrompt("Rename", "New name", "notes", func(v string, ok bool) tea.Cmd {
		got, gotOK = v, ok
		return nil
	}))
	st.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(".txt")})
	st.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !gotOK || got != "notes.txt" {
		t.Fatalf("prompt answer = %q,%v", got, gotOK)
	}
	if st.Active() {
		t.Fatalf("stack should be empty")
	}
}

func TestModalClick(t *testing.T) {
	var answers []bool
	var st ModalStack
	mk := func() *Modal {
		return NewConfirm("t", "m", func(ok bool) tea.Cmd {
			answers = append(answers, ok)
			return nil
		})
	}

	m := mk()
	st.Push(m)
	l := m.Layout(bounds)
	if closed, _ := st.Click(l.Box.Center(), bounds); closed != nil {
		t.Fatalf("click inside the box body should not close")
	}
	st.Click(geometry.Point{X: l.OK.X + 1, Y: l.OK.Y + 1}, bounds)

	st.Push(mk())
	st.Click(geometry.Point{X: 0, Y: 0}, bounds)

	if len(answers) != 2 || !answers[0] || answers[1] {
		t.Fatalf("answers = %v, want [true false]", answers)
	}
}

func TestNestedModalsAnswerTopFirst(t *testing.T) {
	var order []string
	var st ModalStack
	for _, name := range []string{"outer", "inner"} {
		st.Push(NewConfirm(name, "", func(bool) tea.Cmd {
			order = append(order, name)
			return nil
		}))
	}
	st.Cancel()
	if top := st.Top(); top == nil || top.Title != "outer" {
		t.Fatalf("outer modal should remain on top")
	}
	st.Confirm()
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Fatalf("order = %v", order)
	}
}

func TestToastDurationsAndLayout(t *testing.T) {
	ts := NewToasts(DefaultToastMetrics())
	short := ts.Add("saved", LevelSuccess, 200*time.Millisecond)
	if short.Duration != MinToastDuration {
		t.Fatalf("duration = %v, want floor %v", short.Duration, MinToastDuration)
	}
	def := ts.Add("hello", "", 0)
	if def.Duration != DefaultToastDuration || def.Level != LevelInfo {
		t.Fatalf("default toast = %+v", def)
	}
	if short.ID == def.ID {
		t.Fatalf("toast ids should be unique")
	}

	rects := ts.Layout(bounds)
	if rects[1] != (geometry.Rect{X: 680, Y: 540, Width: 300, Height: 40}) {
		t.Fatalf("newest toast rect = %+v", rects[1])
	}
	if rects[0].Y != 480 {
		t.Fatalf("older toast y = %d, want 480", rects[0].Y)
	}

	id, ok := ts.HitTest(geometry.Point{X: 700, Y: 550}, bounds)
	if !ok || id != def.ID {
		t.Fatalf("hit = %q,%v want newest toast", id, ok)
	}
	if !ts.Dismiss(id) || ts.Dismiss(id) {
		t.Fatalf("dismiss should succeed exactly once")
	}
	if ts.Len() != 1 {
		t.Fatalf("len = %d", ts.Len())
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"error": LevelError, "success": LevelSuccess, "info": LevelInfo, "loud": LevelInfo} {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
