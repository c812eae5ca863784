package apps

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestValidateColor(t *testing.T) {
	for _, ok := range []string{"#667eea", "#ABCDEF", " #000000 "} {
		if err := ValidateColor(ok); err != nil {
			t.Fatalf("ValidateColor(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "667eea", "#fff", "#gggggg"} {
		if ValidateColor(bad) == nil {
			t.Fatalf("ValidateColor(%q) should fail", bad)
		}
	}
}

func TestSettingsApply(t *testing.T) {
	svc := newFakeServices()
	s := SettingsDescriptor().New(svc).(*settings)
	s.Resize(60, 20)

	if !strings.Contains(s.View(60, 20), "Purple") {
		t.Fatalf("display view should name the wallpaper")
	}

	s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	if !s.Editing() || !s.CapturesKeys() {
		t.Fatalf("e should start editing")
	}
	s.fTheme = "dark"
	s.fWallpaper = "custom"
	s.fColor = "#112233"
	s.fSnap = false
	s.fPolicy = "revert"
	s.applyForm()

	want := Appearance{Theme: "dark", Wallpaper: "custom", WallpaperColor: "#112233", SnapToGrid: false, OverlapPolicy: "revert"}
	if svc.appearance != want {
		t.Fatalf("appearance = %+v, want %+v", svc.appearance, want)
	}
	if got := wallpaperName("custom", "#112233"); got != "Custom #112233" {
		t.Fatalf("wallpaperName = %q", got)
	}
}

func TestSettingsEscCancels(t *testing.T) {
	svc := newFakeServices()
	s := SettingsDescriptor().New(svc).(*settings)
	s.Update(ClickMsg{Row: s.editRow()})
	if !s.Editing() {
		t.Fatalf("clicking the edit hint should start editing")
	}
	s.fTheme = "dark"
	s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if s.Editing() || svc.appearance.Theme != "light" {
		t.Fatalf("esc should discard the form")
	}
}

func TestSettingsKeepsInvalidColourOut(t *testing.T) {
	svc := newFakeServices()
	s := SettingsDescriptor().New(svc).(*settings)
	s.startEditing()
	s.fColor = "blue"
	s.applyForm()
	if svc.appearance.WallpaperColor != "#667eea" {
		t.Fatalf("invalid colour should be ignored, got %q", svc.appearance.WallpaperColor)
	}
}
