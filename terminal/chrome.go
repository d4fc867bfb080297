package terminal

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/termtx/stream"
)

// Cursor is drawn after the last visible line while the animation plays.
const Cursor = "▊"

var (
	macosRed    = colorful.Color{R: 1, G: 0.373, B: 0.341}
	macosYellow = colorful.Color{R: 0.996, G: 0.737, B: 0.180}
	macosGreen  = colorful.Color{R: 0.157, G: 0.784, B: 0.251}
	foreground  = colorful.Color{R: 0.851, G: 0.851, B: 0.851}
	background  = colorful.Color{R: 0.157, G: 0.165, B: 0.212}
)

// Chrome draws a fixed-size terminal window around frame lines.
type Chrome struct {
	Columns          int
	Rows             int
	Padding          int
	Title            string
	Platform         Platform
	DisableScrolling bool
}

// NewChrome creates a Chrome from the terminal section of a Config.
func NewChrome(c stream.TerminalConfig) Chrome {
	return Chrome{
		Columns:          c.Columns,
		Rows:             c.Rows,
		Padding:          c.WhitespacePadding,
		Title:            c.Title,
		Platform:         PlatformFromGOOS(""),
		DisableScrolling: c.DisableScrolling,
	}
}

// Width is the number of cells inside the window border.
func (c Chrome) Width() int {
	return c.Columns + 2*c.Padding
}

// Render draws v. blink is the cursor intensity in [0, 1].
func (c Chrome) Render(v stream.View, blink float64) string {
	title := c.Title
	if v.Title != "" {
		title = v.Title
	}
	if v.State == stream.Paused.String() {
		title += " (Paused)"
	}

	var cursor string
	if v.Playing {
		cursor = cursorStyle(blink).Render(Cursor)
	}

	body := c.Body(v.Lines, cursor)
	rule := strings.Repeat("─", c.Width())
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#555555")).
		Render(lipgloss.JoinVertical(lipgloss.Left, c.header(title), rule, body))
}

// Body returns exactly Rows lines, each exactly Width cells wide. cursor, when
// not empty, follows the last visible line.
func (c Chrome) Body(lines []string, cursor string) string {
	visible := lines
	if len(visible) > c.Rows {
		if c.DisableScrolling {
			visible = visible[:c.Rows]
		} else {
			visible = visible[len(visible)-c.Rows:]
		}
	}

	pad := strings.Repeat(" ", c.Padding)
	out := make([]string, c.Rows)
	for i := range out {
		var line string
		if i < len(visible) {
			line = visible[i]
		}
		if cursor != "" && i == lastIndex(visible) {
			line += cursor
		}
		out[i] = pad + fit(line, c.Columns) + pad
	}
	if cursor != "" && len(visible) == 0 && c.Rows > 0 {
		out[0] = pad + fit(cursor, c.Columns) + pad
	}
	return strings.Join(out, "\n")
}

func (c Chrome) header(title string) string {
	var left, right string
	faint := lipgloss.NewStyle().Foreground(lipgloss.Color(foreground.Hex()))
	switch c.Platform {
	case Adwaita:
		left = faint.Render("⊞")
		right = faint.Render("▦ ☰ ✕")
	default:
		left = dot(macosRed) + " " + dot(macosYellow) + " " + dot(macosGreen)
		right = strings.Repeat(" ", lipgloss.Width(left))
	}

	width := c.Width()
	inner := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if inner < 0 {
		return fit(left, width)
	}
	title = lipgloss.NewStyle().
		Bold(true).
		Width(inner).
		Align(lipgloss.Center).
		Render(ansi.Truncate(title, inner, "…"))
	return fit(left+" "+title+" "+right, width)
}

func dot(c colorful.Color) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("●")
}

func cursorStyle(blink float64) lipgloss.Style {
	if blink < 0 {
		blink = 0
	} else if blink > 1 {
		blink = 1
	}
	col := background.BlendLab(foreground, blink).Clamped()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(col.Hex()))
}

// fit clips s to width cells and pads it with spaces to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func lastIndex(lines []string) int {
	return len(lines) - 1
}
