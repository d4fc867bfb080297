package stream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command is a transport instruction received from a remote viewer.
type Command string

const (
	CommandPlay   Command = "play"
	CommandPause  Command = "pause"
	CommandToggle Command = "toggle"
	CommandReset  Command = "reset"
)

type commandMessage struct {
	Type string `json:"type"`
}

// ParseCommand accepts either a bare command word or a JSON object with a
// "type" field.
func ParseCommand(payload []byte) (Command, error) {
	raw := strings.TrimSpace(string(payload))
	if strings.HasPrefix(raw, "{") {
		var msg commandMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return "", fmt.Errorf("parse command: %w", err)
		}
		raw = msg.Type
	}
	cmd := Command(strings.ToLower(raw))
	switch cmd {
	case CommandPlay, CommandPause, CommandToggle, CommandReset:
		return cmd, nil
	}
	return "", fmt.Errorf("unknown command %q", raw)
}

// Apply runs cmd against p.
func (cmd Command) Apply(p *Player) {
	switch cmd {
	case CommandPlay:
		p.Play()
	case CommandPause:
		p.Pause()
	case CommandToggle:
		p.Toggle()
	case CommandReset:
		p.Reset()
	}
}
