package stream

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the termtx configuration file.
type Config struct {
	Frames struct {
		Dir    string `yaml:"dir"`
		URL    string `yaml:"url"`
		Bundle string `yaml:"bundle"`
		Watch  bool   `yaml:"watch"`
	} `yaml:"frames"`
	Animation struct {
		FrameLengthMs int    `yaml:"frameLengthMs"`
		Loop          bool   `yaml:"loop"`
		AutoStart     bool   `yaml:"autoStart"`
		Mode          string `yaml:"mode"`
		SampleRate    int    `yaml:"sampleRate"`
	} `yaml:"animation"`
	Terminal TerminalConfig `yaml:"terminal"`
	Server   struct {
		Listen string `yaml:"listen"`
		Assets string `yaml:"assets"`
	} `yaml:"server"`
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
}

// TerminalConfig describes the terminal window the frames are drawn in.
type TerminalConfig struct {
	Columns           int    `yaml:"columns"`
	Rows              int    `yaml:"rows"`
	FontSize          string `yaml:"fontSize"`
	Title             string `yaml:"title"`
	WhitespacePadding int    `yaml:"whitespacePadding"`
	DisableScrolling  bool   `yaml:"disableScrolling"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var c Config
	c.Animation.FrameLengthMs = int(DefaultFrameLength / time.Millisecond)
	c.Animation.Loop = true
	c.Animation.AutoStart = true
	c.Animation.Mode = ModeElapsed.String()
	c.Animation.SampleRate = DefaultSampleRate
	c.Terminal.Columns = 80
	c.Terminal.Rows = 24
	c.Terminal.FontSize = "medium"
	c.Terminal.Title = "Terminal"
	c.Server.Listen = ":3000"
	c.Mqtt.Topics.Stream = "termtx/stream"
	c.Mqtt.Topics.Control = "termtx/control"
	return c
}

// ReadConfig decodes the YAML file at path over the defaults.
func ReadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return DecodeConfig(f)
}

// DecodeConfig decodes YAML from r over the defaults and validates it.
func DecodeConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Animation.FrameLengthMs < 0:
		return fmt.Errorf("animation.frameLengthMs must not be negative, got %d", c.Animation.FrameLengthMs)
	case c.Animation.SampleRate < 0:
		return fmt.Errorf("animation.sampleRate must not be negative, got %d", c.Animation.SampleRate)
	case c.Animation.Mode != "" && c.Animation.Mode != ModeElapsed.String() && c.Animation.Mode != ModeStepped.String():
		return fmt.Errorf("animation.mode must be %q or %q, got %q", ModeElapsed, ModeStepped, c.Animation.Mode)
	case c.Terminal.Columns <= 0 || c.Terminal.Rows <= 0:
		return fmt.Errorf("terminal size must be positive, got %dx%d", c.Terminal.Columns, c.Terminal.Rows)
	case c.Terminal.WhitespacePadding < 0:
		return fmt.Errorf("terminal.whitespacePadding must not be negative, got %d", c.Terminal.WhitespacePadding)
	case c.Frames.Dir != "" && c.Frames.URL != "":
		return errors.New("frames.dir and frames.url are mutually exclusive")
	}
	return nil
}

// ClockOptions converts the animation section to clock options.
func (c Config) ClockOptions() Options {
	return Options{
		FrameLength: time.Duration(c.Animation.FrameLengthMs) * time.Millisecond,
		Loop:        c.Animation.Loop,
		AutoStart:   c.Animation.AutoStart,
		Mode:        ParseMode(c.Animation.Mode),
		SampleRate:  c.Animation.SampleRate,
	}
}
