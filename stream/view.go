package stream

import (
	"encoding/json"
)

// View is what a sink needs to draw the current frame.
type View struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Lines   []string `json:"lines"`
	Playing bool     `json:"playing"`
	State   string   `json:"state"`
	Title   string   `json:"title,omitempty"`
}

// ViewOf captures the current frame of c.
func ViewOf(c *Clock, title string) View {
	v := View{
		Index:   c.Index(),
		Total:   c.Sequence().Len(),
		Playing: c.Playing(),
		State:   c.State().String(),
		Title:   title,
	}
	if f, ok := c.Current(); ok {
		v.Lines = f.Lines()
	} else {
		v.Lines = []string{}
	}
	return v
}

// MarshalBinary encodes the view for transports that carry raw payloads.
func (v View) MarshalBinary() ([]byte, error) {
	return json.Marshal(v)
}
