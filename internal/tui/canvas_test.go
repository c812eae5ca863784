package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func plainLines(c *canvas) []string {
	return strings.Split(ansi.Strip(c.String()), "\n")
}

func TestCanvasTextClips(t *testing.T) {
	c := newCanvas(10, 2)
	n := c.text(2, 0, "hello world", 5, lipgloss.NewStyle())
	if n != 5 {
		t.Fatalf("expected 5 cells written, got %d", n)
	}
	c.text(8, 1, "abc", 10, lipgloss.NewStyle())

	lines := plainLines(c)
	if lines[0] != "  hello   " {
		t.Fatalf("row 0 = %q", lines[0])
	}
	if lines[1] != "        ab" {
		t.Fatalf("row 1 = %q", lines[1])
	}
}

func TestCanvasWideRunes(t *testing.T) {
	c := newCanvas(6, 1)
	c.text(0, 0, "📁📄", 6, lipgloss.NewStyle())
	if got := plainLines(c)[0]; got != "📁📄  " {
		t.Fatalf("row = %q", got)
	}

	// Overwriting the right half of a wide rune blanks its left half.
	c.text(1, 0, "x", 1, lipgloss.NewStyle())
	if got := plainLines(c)[0]; got != " x📄  " {
		t.Fatalf("row after overwrite = %q", got)
	}

	// A wide rune that does not fit is not drawn.
	c2 := newCanvas(3, 1)
	c2.text(2, 0, "📁", 1, lipgloss.NewStyle())
	if got := plainLines(c2)[0]; got != "   " {
		t.Fatalf("clipped row = %q", got)
	}
}

func TestCanvasBoxAndBlit(t *testing.T) {
	c := newCanvas(6, 4)
	c.box(0, 0, 6, 4, lipgloss.NewStyle())
	c.blit(1, 1, 4, 2, "\x1b[1mab\x1b[0m\ncdefgh\nignored", lipgloss.NewStyle())

	want := []string{
		"╭────╮",
		"│ab  │",
		"│cdef│",
		"╰────╯",
	}
	got := plainLines(c)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCanvasOutOfBoundsIsIgnored(t *testing.T) {
	c := newCanvas(3, 1)
	c.fill(-2, -1, 10, 5, '#', lipgloss.NewStyle())
	c.text(5, 0, "x", 1, lipgloss.NewStyle())
	if got := plainLines(c)[0]; got != "###" {
		t.Fatalf("row = %q", got)
	}
}

func TestTruncateAndCentre(t *testing.T) {
	tests := []struct {
		in    string
		width int
		trunc string
		mid   string
	}{
		{"Notes", 8, "Notes", " Notes"},
		{"Calculator", 8, "Calcula…", "Calcula…"},
		{"ab", 0, "", ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.trunc {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.trunc)
		}
		if got := centre(tt.in, tt.width); got != tt.mid {
			t.Fatalf("centre(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.mid)
		}
	}
}
