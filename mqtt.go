package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matt-g-everett/termtx/frame"
	"github.com/matt-g-everett/termtx/stream"
	"pkt.systems/pslog"
)

func newStreamCmd() *cobra.Command {
	var flags configFlags
	var broker string
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Publish frames to an MQTT broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("broker") {
				cfg.Mqtt.URL = broker
			}
			return streamFrames(cmd.Context(), cfg)
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&broker, "broker", "", "MQTT broker URL")
	return cmd
}

func streamFrames(ctx context.Context, cfg stream.Config) error {
	if cfg.Mqtt.URL == "" {
		return errors.New("mqtt.url is required")
	}
	logger := pslog.Ctx(ctx).With("broker", cfg.Mqtt.URL)
	mqtt.ERROR = log.Default()

	seq, err := loadFrames(ctx, cfg)
	if err != nil {
		return err
	}
	player := stream.NewPlayer(ctx, seq, stream.PlayerOptions{
		Clock: cfg.ClockOptions(),
		Title: cfg.Terminal.Title,
	})
	defer player.Close()

	// The client is attached below; the connect handler needs the transport.
	transport := stream.NewMQTT(nil)
	streamer := stream.NewStreamer(ctx, player, transport, cfg.Mqtt.Topics.Stream)
	options := mqtt.NewClientOptions().
		AddBroker(cfg.Mqtt.URL).
		SetClientID("termtx-" + uuid.NewString()).
		SetUsername(cfg.Mqtt.Username).
		SetPassword(cfg.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			logger.Info("connected")
			if err := streamer.Listen(transport, cfg.Mqtt.Topics.Control); err != nil {
				logger.Warn("subscribe to control topic failed", "topic", cfg.Mqtt.Topics.Control, "err", err)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("connection lost", "err", err)
		})
	client := mqtt.NewClient(options)
	transport.Client = client

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to %s: %w", cfg.Mqtt.URL, token.Error())
	}
	defer client.Disconnect(250)

	if cfg.Frames.Watch && cfg.Frames.Dir != "" {
		go func() {
			if err := frame.Watch(ctx, cfg.Frames.Dir, player.SetSequence); err != nil {
				logger.Warn("frame watch stopped", "err", err)
			}
		}()
	}
	streamer.Run(ctx)
	return nil
}
