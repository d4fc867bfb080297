// Package frame holds pre-rendered terminal snapshots and the sources that
// load them.
package frame

import "strings"

// Kind tags the representation held by a Content.
type Kind int

const (
	// KindText is a newline-delimited text blob.
	KindText Kind = iota
	// KindLines is a pre-split sequence of lines.
	KindLines
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindLines:
		return "lines"
	default:
		return "unknown"
	}
}

// Content is one displayable terminal snapshot. Lines may carry pre-escaped
// inline markup which is passed through untouched.
type Content struct {
	kind  Kind
	text  string
	lines []string
}

// Text creates a Content from a newline-delimited blob.
func Text(s string) Content {
	return Content{kind: KindText, text: s}
}

// Lines creates a Content from individual lines. The slice is copied.
func Lines(lines ...string) Content {
	c := Content{kind: KindLines}
	c.lines = make([]string, len(lines))
	copy(c.lines, lines)
	return c
}

// Kind reports which representation the content was built from.
func (c Content) Kind() Kind {
	return c.kind
}

// Lines returns the snapshot as lines. The returned slice is owned by the
// caller.
func (c Content) Lines() []string {
	if c.kind == KindText {
		return strings.Split(c.text, "\n")
	}
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// String joins the snapshot back into a single blob.
func (c Content) String() string {
	if c.kind == KindText {
		return c.text
	}
	return strings.Join(c.lines, "\n")
}
