package terminal

import (
	"fmt"
	"strings"
)

// FontSize is one of the fixed text sizes of the terminal widget.
type FontSize int

const (
	XTiny FontSize = iota
	Tiny
	Small
	Medium
	Large
)

var fontSizes = []struct {
	name   string
	pixels int
}{
	XTiny:  {"xtiny", 6},
	Tiny:   {"tiny", 8},
	Small:  {"small", 10},
	Medium: {"medium", 12},
	Large:  {"large", 14},
}

// glyphAspect is the width of a monospace cell relative to its font size.
const glyphAspect = 0.6

// ParseFontSize converts a config value. An empty value selects Medium.
func ParseFontSize(s string) (FontSize, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Medium, nil
	}
	for i, f := range fontSizes {
		if f.name == s {
			return FontSize(i), nil
		}
	}
	return Medium, fmt.Errorf("unknown font size %q", s)
}

func (f FontSize) valid() bool {
	return f >= XTiny && f <= Large
}

func (f FontSize) String() string {
	if !f.valid() {
		return "medium"
	}
	return fontSizes[f].name
}

// Pixels returns the CSS pixel size of f.
func (f FontSize) Pixels() int {
	if !f.valid() {
		f = Medium
	}
	return fontSizes[f].pixels
}

// Width returns the pixel width of a terminal with the given geometry.
func (f FontSize) Width(columns, padding int) int {
	cells := columns + 2*padding
	return int(float64(cells) * float64(f.Pixels()) * glyphAspect)
}

// FitFontSize returns the largest size, no larger than limit, at which the
// terminal fits into viewport pixels. XTiny is returned when nothing fits.
func FitFontSize(columns, padding, viewport int, limit FontSize) FontSize {
	if !limit.valid() {
		limit = Large
	}
	for f := limit; f > XTiny; f-- {
		if f.Width(columns, padding) <= viewport {
			return f
		}
	}
	return XTiny
}

// Breakpoint is the narrowest viewport at which Size is used.
type Breakpoint struct {
	Size     FontSize
	MinWidth int
}

// Breakpoints lists, from smallest to largest, the viewport widths at which
// FitFontSize switches size for the given geometry.
func Breakpoints(columns, padding int, limit FontSize) []Breakpoint {
	if !limit.valid() {
		limit = Large
	}
	out := []Breakpoint{{Size: XTiny}}
	for f := Tiny; f <= limit; f++ {
		out = append(out, Breakpoint{Size: f, MinWidth: f.Width(columns, padding)})
	}
	return out
}
