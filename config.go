package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matt-g-everett/termtx/frame"
	"github.com/matt-g-everett/termtx/stream"
	"github.com/matt-g-everett/termtx/terminal"
)

// configFlags are the command line overrides shared by every subcommand that
// plays frames.
type configFlags struct {
	path             string
	dir              string
	url              string
	bundle           string
	watch            bool
	frameLengthMs    int
	loop             bool
	autoStart        bool
	mode             string
	columns          int
	rows             int
	title            string
	padding          int
	fontSize         string
	disableScrolling bool
}

func (f *configFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.path, "config", "c", "", "YAML config file")
	fl.StringVar(&f.dir, "frames-dir", "", "directory of frameN.txt files")
	fl.StringVar(&f.url, "frames-url", "", "base URL of frameN.txt files")
	fl.StringVar(&f.bundle, "bundle", "", "YAML frame bundle")
	fl.BoolVar(&f.watch, "watch", false, "reload the frame directory when it changes")
	fl.IntVar(&f.frameLengthMs, "frame-length", 0, "frame duration in milliseconds")
	fl.BoolVar(&f.loop, "loop", true, "restart at the end of the sequence")
	fl.BoolVar(&f.autoStart, "autostart", true, "start playing immediately")
	fl.StringVar(&f.mode, "mode", "", "clock mode: elapsed or stepped")
	fl.IntVar(&f.columns, "columns", 0, "terminal width in cells")
	fl.IntVar(&f.rows, "rows", 0, "terminal height in lines")
	fl.StringVar(&f.title, "title", "", "window title")
	fl.IntVar(&f.padding, "padding", 0, "spaces on each side of a line")
	fl.StringVar(&f.fontSize, "font-size", "", "homepage font size: xtiny, tiny, small, medium or large")
	fl.BoolVar(&f.disableScrolling, "disable-scrolling", false, "clip the homepage terminal instead of scrolling it")
}

// load reads the config file, if any, and applies the flags that were set.
func (f *configFlags) load(cmd *cobra.Command) (stream.Config, error) {
	cfg := stream.DefaultConfig()
	if f.path != "" {
		var err error
		if cfg, err = stream.ReadConfig(f.path); err != nil {
			return stream.Config{}, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("frames-dir") {
		cfg.Frames.Dir = f.dir
	}
	if changed("frames-url") {
		cfg.Frames.URL = f.url
	}
	if changed("bundle") {
		cfg.Frames.Bundle = f.bundle
	}
	if changed("watch") {
		cfg.Frames.Watch = f.watch
	}
	if changed("frame-length") {
		cfg.Animation.FrameLengthMs = f.frameLengthMs
	}
	if changed("loop") {
		cfg.Animation.Loop = f.loop
	}
	if changed("autostart") {
		cfg.Animation.AutoStart = f.autoStart
	}
	if changed("mode") {
		cfg.Animation.Mode = f.mode
	}
	if changed("columns") {
		cfg.Terminal.Columns = f.columns
	}
	if changed("rows") {
		cfg.Terminal.Rows = f.rows
	}
	if changed("title") {
		cfg.Terminal.Title = f.title
	}
	if changed("padding") {
		cfg.Terminal.WhitespacePadding = f.padding
	}
	if changed("font-size") {
		cfg.Terminal.FontSize = f.fontSize
	}
	if changed("disable-scrolling") {
		cfg.Terminal.DisableScrolling = f.disableScrolling
	}
	if err := cfg.Validate(); err != nil {
		return stream.Config{}, err
	}
	if _, err := terminal.ParseFontSize(cfg.Terminal.FontSize); err != nil {
		return stream.Config{}, err
	}
	return cfg, nil
}

// frames resolves where the frames come from. Exactly one of the returned
// sequence and job is set: a bundle or the built-in demo is ready at once,
// a directory or URL is loaded by the job.
func frames(cfg stream.Config) (*frame.Sequence, *frame.Job, error) {
	switch {
	case cfg.Frames.Bundle != "":
		f, err := os.Open(cfg.Frames.Bundle)
		if err != nil {
			return nil, nil, err
		}
		defer f.Close()
		seq, err := frame.DecodeBundle(f)
		if err != nil {
			return nil, nil, fmt.Errorf("bundle %s: %w", cfg.Frames.Bundle, err)
		}
		return seq, nil, nil
	case cfg.Frames.Dir != "":
		return nil, frame.NewJob(frame.NewLoader(frame.NewDirSource(os.DirFS(cfg.Frames.Dir))), nil), nil
	case cfg.Frames.URL != "":
		return nil, frame.NewJob(frame.NewLoader(frame.NewHTTPSource(cfg.Frames.URL)), nil), nil
	}
	return frame.Demo(), nil, nil
}

// loadFrames resolves the frames and waits for them to load.
func loadFrames(ctx context.Context, cfg stream.Config) (*frame.Sequence, error) {
	seq, job, err := frames(cfg)
	if err != nil || job == nil {
		return seq, err
	}
	st := job.Run(ctx)
	if st.State == frame.Failed {
		return nil, st.Err
	}
	return st.Sequence, nil
}
