package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/matt-g-everett/termtx/stream"
)

// Printer is a stream.Sink that writes each frame as plain text, for output
// that is not a terminal. Trailing padding is trimmed and frames are
// separated by a blank line.
type Printer struct {
	W      io.Writer
	Chrome Chrome
}

// Render implements stream.Sink.
func (p *Printer) Render(v stream.View) {
	body := ansi.Strip(p.Chrome.Body(v.Lines, ""))
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	fmt.Fprintf(p.W, "%s\n\n", strings.TrimRight(strings.Join(lines, "\n"), "\n"))
}
