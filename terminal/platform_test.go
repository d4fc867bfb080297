package terminal

import "testing"

func TestDetectPlatform(t *testing.T) {
	linux := []string{
		"Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/128.0",
		"Mozilla/5.0 (X11; Ubuntu; LINUX x86_64)",
	}
	for _, agent := range linux {
		if got := DetectPlatform(agent); got != Adwaita {
			t.Fatalf("DetectPlatform(%q) = %v", agent, got)
		}
	}
	other := []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_5) AppleWebKit/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome",
		"",
	}
	for _, agent := range other {
		if got := DetectPlatform(agent); got != MacOS {
			t.Fatalf("DetectPlatform(%q) = %v", agent, got)
		}
	}
}

func TestPlatformFromGOOS(t *testing.T) {
	if PlatformFromGOOS("linux") != Adwaita {
		t.Fatal("linux should use adwaita")
	}
	if PlatformFromGOOS("darwin") != MacOS || PlatformFromGOOS("windows") != MacOS {
		t.Fatal("non-linux should use macos")
	}
	if Adwaita.String() != "adwaita" || MacOS.String() != "macos" {
		t.Fatal("unexpected platform names")
	}
}
