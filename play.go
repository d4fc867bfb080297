package main

import (
	"context"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matt-g-everett/termtx/frame"
	"github.com/matt-g-everett/termtx/stream"
	"github.com/matt-g-everett/termtx/terminal"
	"pkt.systems/pslog"
)

func newPlayCmd() *cobra.Command {
	var flags configFlags
	var plain bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play frames in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
				return playPlain(cmd.Context(), cfg, cmd.OutOrStdout())
			}
			return playInteractive(cmd.Context(), cfg)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "print frames as text instead of drawing the terminal")
	return cmd
}

func playInteractive(ctx context.Context, cfg stream.Config) error {
	log := pslog.Ctx(ctx)
	seq, job, err := frames(cfg)
	if err != nil {
		return err
	}
	opts := terminal.ModelOptions{
		Chrome: terminal.NewChrome(cfg.Terminal),
		Clock:  cfg.ClockOptions(),
	}
	if job != nil {
		opts.Load = terminal.LoadCmd(ctx, job)
		defer job.Discard()
	}

	prog := tea.NewProgram(terminal.NewModel(seq, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if cfg.Frames.Watch && cfg.Frames.Dir != "" {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := frame.Watch(watchCtx, cfg.Frames.Dir, func(seq *frame.Sequence) {
				prog.Send(terminal.SequenceMsg{Sequence: seq})
			})
			if err != nil {
				log.Warn("frame watch stopped", "err", err)
			}
		}()
	}

	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func playPlain(ctx context.Context, cfg stream.Config, out io.Writer) error {
	seq, err := loadFrames(ctx, cfg)
	if err != nil {
		return err
	}

	player := stream.NewPlayer(ctx, seq, stream.PlayerOptions{
		Clock: cfg.ClockOptions(),
		Title: cfg.Terminal.Title,
	})
	defer player.Close()

	printer := &terminal.Printer{W: out, Chrome: terminal.NewChrome(cfg.Terminal)}
	finished := make(chan struct{})
	var once sync.Once
	player.Subscribe(stream.SinkFunc(func(v stream.View) {
		printer.Render(v)
		if v.State == stream.Finished.String() {
			once.Do(func() { close(finished) })
		}
	}))
	player.Start()
	player.Play()
	if seq.Len() == 0 {
		// Nothing will ever play; the empty view has already been printed.
		return nil
	}

	select {
	case <-ctx.Done():
	case <-finished:
	}
	return nil
}
