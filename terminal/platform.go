package terminal

import (
	"regexp"
	"runtime"
)

// Platform selects the window decoration drawn around the terminal.
type Platform int

const (
	MacOS Platform = iota
	Adwaita
)

func (p Platform) String() string {
	if p == Adwaita {
		return "adwaita"
	}
	return "macos"
}

var linuxAgent = regexp.MustCompile(`(?i)linux`)

// DetectPlatform picks the decoration for a browser user agent.
func DetectPlatform(userAgent string) Platform {
	if linuxAgent.MatchString(userAgent) {
		return Adwaita
	}
	return MacOS
}

// PlatformFromGOOS picks the decoration for an operating system name as
// reported by runtime.GOOS. An empty name means the running system.
func PlatformFromGOOS(goos string) Platform {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "linux" {
		return Adwaita
	}
	return MacOS
}
