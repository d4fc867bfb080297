package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matt-g-everett/termtx/stream"
)

func newFlagsCmd(t *testing.T, args ...string) (*cobra.Command, *configFlags) {
	t.Helper()
	var flags configFlags
	cmd := &cobra.Command{Use: "test"}
	flags.bind(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd, &flags
}

func TestConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "termtx.yaml")
	doc := "animation:\n  frameLengthMs: 50\n  loop: true\nterminal:\n  columns: 60\n  title: file\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd, flags := newFlagsCmd(t, "--config", path, "--loop=false", "--columns", "100", "--mode", "stepped")
	cfg, err := flags.load(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Animation.Loop || cfg.Terminal.Columns != 100 || cfg.Animation.Mode != "stepped" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Animation.FrameLengthMs != 50 || cfg.Terminal.Title != "file" {
		t.Fatalf("file values lost: %+v", cfg)
	}
}

func TestConfigFlagsTerminalAppearance(t *testing.T) {
	cmd, flags := newFlagsCmd(t, "--font-size", "large", "--disable-scrolling")
	cfg, err := flags.load(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Terminal.FontSize != "large" || !cfg.Terminal.DisableScrolling {
		t.Fatalf("appearance flags not applied: %+v", cfg.Terminal)
	}

	cmd, flags = newFlagsCmd(t, "--font-size", "huge")
	if _, err := flags.load(cmd); err == nil {
		t.Fatal("expected an unknown font size to be rejected")
	}
}

func TestConfigFlagsDefaults(t *testing.T) {
	cmd, flags := newFlagsCmd(t)
	cfg, err := flags.load(cmd)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Animation.FrameLengthMs != 33 || !cfg.Animation.Loop || cfg.Terminal.Rows != 24 {
		t.Fatalf("defaults changed by unset flags: %+v", cfg)
	}
}

func TestConfigFlagsValidate(t *testing.T) {
	cmd, flags := newFlagsCmd(t, "--frames-dir", "a", "--frames-url", "http://b")
	if _, err := flags.load(cmd); err == nil {
		t.Fatal("expected dir and url to conflict")
	}
}

func TestFramesSelection(t *testing.T) {
	cfg := stream.DefaultConfig()
	seq, job, err := frames(cfg)
	if err != nil || job != nil || seq.Len() == 0 {
		t.Fatalf("demo: %v %v %v", seq, job, err)
	}

	cfg.Frames.Dir = t.TempDir()
	seq, job, err = frames(cfg)
	if err != nil || seq != nil || job == nil {
		t.Fatalf("dir: %v %v %v", seq, job, err)
	}
	if _, err := loadFrames(context.Background(), cfg); err == nil {
		t.Fatal("an empty directory should fail to load")
	}

	cfg = stream.DefaultConfig()
	cfg.Frames.Bundle = filepath.Join(t.TempDir(), "missing.yaml")
	if _, _, err := frames(cfg); err == nil {
		t.Fatal("expected an error for a missing bundle")
	}
}

func TestPlayPlain(t *testing.T) {
	dir := t.TempDir()
	bundle := filepath.Join(dir, "bundle.yaml")
	doc := "frames:\n  - text: \"$ echo hi\"\n  - lines: [\"$ echo hi\", \"hi\"]\n"
	if err := os.WriteFile(bundle, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := stream.DefaultConfig()
	cfg.Frames.Bundle = bundle
	cfg.Animation.Loop = false
	cfg.Animation.FrameLengthMs = 5
	cfg.Terminal.Rows = 2

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := playPlain(ctx, cfg, &out); err != nil {
		t.Fatalf("playPlain: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("playback did not finish")
	}
	if !strings.Contains(out.String(), "$ echo hi\nhi\n") {
		t.Fatalf("output:\n%s", out.String())
	}
}

func TestPlayPlainEmptyBundle(t *testing.T) {
	bundle := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(bundle, []byte("frames: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := stream.DefaultConfig()
	cfg.Frames.Bundle = bundle
	cfg.Animation.Loop = false
	cfg.Terminal.Rows = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := playPlain(ctx, cfg, &out); err != nil {
		t.Fatalf("playPlain: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("playback of an empty bundle did not return")
	}
	if out.String() != "\n\n" {
		t.Fatalf("output %q", out.String())
	}
}

func TestVersionCmd(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if out.String() != "termtx dev\n" {
		t.Fatalf("output %q", out.String())
	}
}
