package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matt-g-everett/termtx/stream"
	"pkt.systems/pslog"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans the views of a Player out to websocket clients and applies the
// commands they send back.
type Hub struct {
	player  *stream.Player
	log     pslog.Logger
	mu      sync.Mutex
	clients map[string]*client
	last    []byte
	closed  bool
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a Hub for player. It does not subscribe to it.
func NewHub(ctx context.Context, player *stream.Player) *Hub {
	h := new(Hub)
	h.player = player
	h.log = pslog.Ctx(ctx)
	h.clients = make(map[string]*client)
	return h
}

// Render implements stream.Sink. Slow clients miss frames rather than
// holding up the player.
func (h *Hub) Render(v stream.View) {
	b, err := v.MarshalBinary()
	if err != nil {
		h.log.Error("encode view failed", "err", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = b
	for _, c := range h.clients {
		select {
		case c.send <- b:
		default:
			h.log.Debug("live client behind, frame dropped", "client", c.id, "index", v.Index)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and serves one live client until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.add(c) {
		conn.Close()
		return
	}
	log := h.log.With("client", c.id)
	log.Info("live client connected", "remote", r.RemoteAddr)

	go h.write(c)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		cmd, err := stream.ParseCommand(msg)
		if err != nil {
			log.Warn("live command rejected", "err", err)
			continue
		}
		log.Debug("live command", "command", string(cmd))
		cmd.Apply(h.player)
	}
	h.remove(c)
	log.Info("live client disconnected")
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	if h.last != nil {
		c.send <- h.last
	}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

func (h *Hub) write(c *client) {
	defer c.conn.Close()
	for b := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("live write failed", "client", c.id, "err", err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.send)
	}
}
