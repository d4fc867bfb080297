package stream

import (
	"context"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"pkt.systems/pslog"
)

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Subscriber delivers payloads published on a topic.
type Subscriber interface {
	Subscribe(topic string, fn func(payload []byte)) error
}

// ErrPublishTimeout is returned when the broker does not acknowledge a
// publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// MQTT adapts a paho client to Publisher and Subscriber.
type MQTT struct {
	Client  mqtt.Client
	QoS     byte
	Timeout time.Duration
}

// NewMQTT creates an MQTT transport over client.
func NewMQTT(client mqtt.Client) *MQTT {
	return &MQTT{Client: client, Timeout: 5 * time.Second}
}

// Publish implements Publisher.
func (m *MQTT) Publish(topic string, payload []byte) error {
	token := m.Client.Publish(topic, m.QoS, false, payload)
	if !token.WaitTimeout(m.Timeout) {
		return ErrPublishTimeout
	}
	return token.Error()
}

// Subscribe implements Subscriber.
func (m *MQTT) Subscribe(topic string, fn func(payload []byte)) error {
	token := m.Client.Subscribe(topic, m.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		fn(msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// Streamer publishes every view of a Player to a topic and applies commands
// received on a control topic. Views wait in a one-slot queue so a slow
// broker never holds up the Player; a newer view replaces one not yet sent.
type Streamer struct {
	player  *Player
	pub     Publisher
	topic   string
	pending chan []byte
	log     pslog.Logger
}

// NewStreamer creates an instance of a Streamer publishing to topic.
func NewStreamer(ctx context.Context, player *Player, pub Publisher, topic string) *Streamer {
	s := new(Streamer)
	s.player = player
	s.pub = pub
	s.topic = topic
	s.pending = make(chan []byte, 1)
	s.log = pslog.Ctx(ctx).With("topic", topic)
	return s
}

// Render implements Sink. It never blocks on the broker.
func (s *Streamer) Render(v View) {
	b, err := v.MarshalBinary()
	if err != nil {
		s.log.Error("encode view failed", "err", err)
		return
	}
	// Renders are serialised by the Player, so this loop has one producer.
	for {
		select {
		case s.pending <- b:
			return
		default:
		}
		select {
		case <-s.pending:
			s.log.Debug("broker behind, view dropped", "index", v.Index)
		default:
		}
	}
}

func (s *Streamer) publish(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-s.pending:
			if err := s.pub.Publish(s.topic, b); err != nil {
				s.log.Warn("publish view failed", "err", err)
			}
		}
	}
}

// Listen subscribes to the control topic.
func (s *Streamer) Listen(sub Subscriber, control string) error {
	return sub.Subscribe(control, s.handleControl)
}

func (s *Streamer) handleControl(payload []byte) {
	cmd, err := ParseCommand(payload)
	if err != nil {
		s.log.Warn("control message rejected", "err", err)
		return
	}
	s.log.Debug("control message", "command", string(cmd))
	cmd.Apply(s.player)
}

// Run attaches the Streamer to its Player and publishes its views until ctx
// is done.
func (s *Streamer) Run(ctx context.Context) {
	unsubscribe := s.player.Subscribe(s)
	defer unsubscribe()
	s.player.Start()
	s.publish(ctx)
}
