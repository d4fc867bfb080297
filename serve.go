package main

import (
	"context"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matt-g-everett/termtx/api"
	"github.com/matt-g-everett/termtx/frame"
	"github.com/matt-g-everett/termtx/stream"
	"pkt.systems/pslog"
)

func newServeCmd() *cobra.Command {
	var flags configFlags
	var listen string
	var assets string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the homepage, the frame files and a live feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			if cmd.Flags().Changed("assets") {
				cfg.Server.Assets = assets
			}
			return serve(cmd.Context(), cfg)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address")
	cmd.Flags().StringVar(&assets, "assets", "", "directory served under /frames/")
	return cmd
}

func serve(ctx context.Context, cfg stream.Config) error {
	log := pslog.Ctx(ctx)
	seq, err := loadFrames(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info("frames loaded", "count", seq.Len())

	player := stream.NewPlayer(ctx, seq, stream.PlayerOptions{
		Clock: cfg.ClockOptions(),
		Title: cfg.Terminal.Title,
	})
	defer player.Close()

	var assets fs.FS
	switch {
	case cfg.Server.Assets != "":
		assets = os.DirFS(cfg.Server.Assets)
	case cfg.Frames.Dir != "":
		assets = os.DirFS(cfg.Frames.Dir)
	}

	srv, err := api.NewServer(ctx, api.Options{
		Listen:   cfg.Server.Listen,
		Frames:   assets,
		Player:   player,
		Terminal: cfg.Terminal,
	})
	if err != nil {
		return err
	}
	defer srv.Close()
	player.Start()

	if cfg.Frames.Watch && cfg.Frames.Dir != "" {
		go func() {
			if err := frame.Watch(ctx, cfg.Frames.Dir, player.SetSequence); err != nil {
				log.Warn("frame watch stopped", "err", err)
			}
		}()
	}
	return srv.Serve(ctx)
}
