package frame

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

//go:embed demo.yaml
var demoBundle []byte

type bundleEntry struct {
	Text  *string  `yaml:"text"`
	Lines []string `yaml:"lines"`
}

type bundle struct {
	Frames []bundleEntry `yaml:"frames"`
}

// ErrBadBundle is returned for bundle entries that are neither text nor lines.
var ErrBadBundle = errors.New("invalid frame bundle")

// DecodeBundle reads a YAML bundle of pre-rendered frames. Each entry holds
// either a text blob or a list of lines.
func DecodeBundle(r io.Reader) (*Sequence, error) {
	var b bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}

	frames := make([]Content, 0, len(b.Frames))
	for i, e := range b.Frames {
		switch {
		case e.Text != nil && e.Lines != nil:
			return nil, fmt.Errorf("%w: frame %d has both text and lines", ErrBadBundle, i+1)
		case e.Text != nil:
			frames = append(frames, Text(*e.Text))
		case e.Lines != nil:
			frames = append(frames, Lines(e.Lines...))
		default:
			return nil, fmt.Errorf("%w: frame %d is empty", ErrBadBundle, i+1)
		}
	}
	return NewSequence(frames...), nil
}

// Demo returns the bundled demo animation.
func Demo() *Sequence {
	seq, err := DecodeBundle(bytes.NewReader(demoBundle))
	if err != nil {
		panic(err)
	}
	return seq
}
