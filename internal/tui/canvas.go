package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// cell is one terminal cell. Wide runes occupy their first cell; the cells
// they cover are continuation cells with an empty ch.
type cell struct {
	ch    string
	style int
}

// canvas is a grid of styled cells that the frame is composed on, back to
// front, before being serialized row by row.
type canvas struct {
	width, height int
	cells         []cell
	styles        []lipgloss.Style
	styleIndex    map[string]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{
		width:      max(width, 0),
		height:     max(height, 0),
		styleIndex: make(map[string]int),
	}
	c.cells = make([]cell, c.width*c.height)
	plain := c.style(lipgloss.NewStyle())
	for i := range c.cells {
		c.cells[i] = cell{ch: " ", style: plain}
	}
	return c
}

// style interns s, keyed by how it renders a sample string, and returns its
// index.
func (c *canvas) style(s lipgloss.Style) int {
	key := s.Render("x")
	if i, ok := c.styleIndex[key]; ok {
		return i
	}
	c.styles = append(c.styles, s)
	c.styleIndex[key] = len(c.styles) - 1
	return len(c.styles) - 1
}

func (c *canvas) in(col, row int) bool {
	return col >= 0 && row >= 0 && col < c.width && row < c.height
}

func (c *canvas) at(col, row int) *cell {
	return &c.cells[row*c.width+col]
}

// put writes one rune, repairing wide runes it cuts in half.
func (c *canvas) put(col, row int, r rune, style int) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0
	}
	if !c.in(col, row) || !c.in(col+w-1, row) {
		return w
	}
	if cur := c.at(col, row); cur.ch == "" && col > 0 {
		c.at(col-1, row).ch = " "
	}
	if end := col + w; end < c.width {
		if next := c.at(end, row); next.ch == "" {
			next.ch = " "
		}
	}
	*c.at(col, row) = cell{ch: string(r), style: style}
	for i := 1; i < w; i++ {
		*c.at(col+i, row) = cell{ch: "", style: style}
	}
	return w
}

// text writes s starting at col, clipped to maxWidth cells. It returns the
// number of cells written.
func (c *canvas) text(col, row int, s string, maxWidth int, style lipgloss.Style) int {
	idx := c.style(style)
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > maxWidth {
			break
		}
		used += c.put(col+used, row, r, idx)
	}
	return used
}

// fill paints a rectangle of cells with ch.
func (c *canvas) fill(col, row, width, height int, ch rune, style lipgloss.Style) {
	idx := c.style(style)
	for y := row; y < row+height; y++ {
		for x := col; x < col+width; x++ {
			if c.in(x, y) {
				c.put(x, y, ch, idx)
			}
		}
	}
}

// box draws a single-line frame around a rectangle of cells.
func (c *canvas) box(col, row, width, height int, style lipgloss.Style) {
	if width < 2 || height < 2 {
		return
	}
	idx := c.style(style)
	right, bottom := col+width-1, row+height-1
	for x := col + 1; x < right; x++ {
		c.put(x, row, '─', idx)
		c.put(x, bottom, '─', idx)
	}
	for y := row + 1; y < bottom; y++ {
		c.put(col, y, '│', idx)
		c.put(right, y, '│', idx)
	}
	c.put(col, row, '╭', idx)
	c.put(right, row, '╮', idx)
	c.put(col, bottom, '╰', idx)
	c.put(right, bottom, '╯', idx)
}

// blit copies the plain text of a rendered block into a rectangle. Escape
// sequences in the block are dropped; the block is clipped to the rect.
func (c *canvas) blit(col, row, width, height int, block string, style lipgloss.Style) {
	c.fill(col, row, width, height, ' ', style)
	for i, line := range strings.Split(block, "\n") {
		if i >= height {
			break
		}
		c.text(col, row+i, ansi.Strip(line), width, style)
	}
}

// String serializes the canvas, merging runs of equally styled cells.
func (c *canvas) String() string {
	var sb strings.Builder
	var run strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		cur := -1
		for x := 0; x < c.width; x++ {
			ce := c.at(x, y)
			if ce.ch == "" {
				continue
			}
			if ce.style != cur && run.Len() > 0 {
				sb.WriteString(c.styles[cur].Render(run.String()))
				run.Reset()
			}
			cur = ce.style
			run.WriteString(ce.ch)
		}
		if run.Len() > 0 {
			sb.WriteString(c.styles[cur].Render(run.String()))
			run.Reset()
		}
	}
	return sb.String()
}

// truncate shortens s to width cells with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// centre pads s on the left so it sits in the middle of width cells.
func centre(s string, width int) string {
	s = truncate(s, width)
	pad := (width - runewidth.StringWidth(s)) / 2
	return strings.Repeat(" ", max(pad, 0)) + s
}
