package apps

import (
	"errors"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/1broseidon/termdesk/internal/geometry"
)

// Calc is the calculator state machine. Operators apply left to right.
type Calc struct {
	current  string
	previous string
	op       string
	hasPrev  bool
}

func NewCalc() *Calc { return &Calc{current: "0"} }

func (c *Calc) Display() string { return c.current }

// Pending returns the stored operand and operator, if any.
func (c *Calc) Pending() (string, string, bool) {
	return c.previous, c.op, c.hasPrev && c.op != ""
}

// Press applies one button. Unknown buttons are ignored.
func (c *Calc) Press(button string) {
	switch button {
	case "C":
		*c = Calc{current: "0"}
	case "=":
		c.calculate()
	case "+", "−", "×", "÷", "%":
		c.setOperation(button)
	case ".":
		if !strings.Contains(c.current, ".") {
			c.current += "."
		}
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if c.current == "0" {
			c.current = button
		} else {
			c.current += button
		}
	}
}

func (c *Calc) setOperation(op string) {
	if c.hasPrev && c.op != "" {
		c.calculate()
	}
	c.previous = c.current
	c.hasPrev = true
	c.current = "0"
	c.op = op
}

func (c *Calc) calculate() {
	if !c.hasPrev || c.op == "" {
		return
	}
	prev, cur := parseNumber(c.previous), parseNumber(c.current)
	var result float64
	switch c.op {
	case "+":
		result = prev + cur
	case "−":
		result = prev - cur
	case "×":
		result = prev * cur
	case "÷":
		result = prev / cur
	case "%":
		result = math.Mod(prev, cur)
	}
	c.current = FormatNumber(result)
	c.previous = ""
	c.hasPrev = false
	c.op = ""
}

// parseNumber reads the longest numeric prefix of s, NaN when there is
// none.
func parseNumber(s string) float64 {
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}
	return math.NaN()
}

// FormatNumber renders v the way a browser prints a number: integers
// without a fraction, exponent form outside [1e-6, 1e21), and the words
// Infinity and NaN.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var calcKeys = map[string]string{
	"+": "+", "-": "−", "*": "×", "x": "×", "/": "÷", "%": "%",
	"=": "=", "enter": "=", ".": ".", ",": ".",
	"c": "C", "C": "C", "esc": "C", "delete": "C",
}

var calcRows = [][]string{
	{"C", "÷", "×", "−"},
	{"7", "8", "9", "+"},
	{"4", "5", "6", "%"},
	{"1", "2", "3", "."},
	{"0", "="},
}

const (
	calcButtonWidth = 6
	calcGridTop     = 3
)

// ButtonAt maps a content cell to a calculator button.
func ButtonAt(col, row int) (string, bool) {
	r := row - calcGridTop
	if r < 0 || r >= len(calcRows) || col < 0 {
		return "", false
	}
	buttons := calcRows[r]
	width := calcButtonWidth * 4 / len(buttons)
	i := col / width
	if i >= len(buttons) {
		return "", false
	}
	return buttons[i], true
}

type calculator struct {
	calc *Calc
}

func CalculatorDescriptor() Descriptor {
	return Descriptor{
		Name:        "calculator",
		Title:       "Calculator",
		Glyph:       "±",
		DefaultSize: geometry.Size{Width: 400, Height: 560},
		New:         func(Services) Instance { return &calculator{calc: NewCalc()} },
	}
}

func (a *calculator) Init(string) tea.Cmd { return nil }
func (a *calculator) Resize(int, int)     {}
func (a *calculator) CapturesKeys() bool  { return false }

func (a *calculator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			a.calc.Press(key)
		} else if b, ok := calcKeys[key]; ok {
			a.calc.Press(b)
		}
	case ClickMsg:
		if b, ok := ButtonAt(msg.Col, msg.Row); ok {
			a.calc.Press(b)
		}
	}
	return nil
}

func (a *calculator) View(width, height int) string {
	gridWidth := calcButtonWidth * 4
	var b strings.Builder
	display := a.calc.Display()
	if prev, op, ok := a.calc.Pending(); ok {
		b.WriteString(padLeft(prev+" "+op, gridWidth))
	}
	b.WriteString("\n")
	b.WriteString(padLeft(display, gridWidth))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", gridWidth))
	for _, row := range calcRows {
		b.WriteString("\n")
		w := gridWidth / len(row)
		for _, btn := range row {
			b.WriteString(center("["+btn+"]", w))
		}
	}
	return b.String()
}

func padLeft(s string, width int) string {
	n := runewidth.StringWidth(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

func center(s string, width int) string {
	n := runewidth.StringWidth(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
