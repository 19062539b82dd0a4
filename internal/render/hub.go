package render

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/elsid/CodeBall-sub000/internal/shared/logger"
)

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Frame is what viewers receive for every recorded tick.
type Frame struct {
	Type    string  `json:"type"`
	Tick    int     `json:"tick"`
	Objects *Render `json:"objects"`
}

// Hub broadcasts render frames to websocket viewers. Slow viewers drop
// frames instead of blocking the strategy.
type Hub struct {
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Printf("websocket upgrade error: %v", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, 64)}
	h.register(c)
	h.log.Printf("viewer connected id=%s remote=%s", c.id, r.RemoteAddr)

	go h.writePump(c)
	h.readPump(c)
}

// Record implements Recorder.
func (h *Hub) Record(tick int, r *Render) {
	if err := h.Publish(tick, r); err != nil {
		h.log.Printf("publish render failed tick=%d: %v", tick, err)
	}
}

// Publish sends one frame to every viewer.
func (h *Hub) Publish(tick int, r *Render) error {
	payload, err := json.Marshal(Frame{Type: "render", Tick: tick, Objects: r})
	if err != nil {
		return errors.Wrap(err, "marshal render frame")
	}
	h.Broadcast(payload)
	return nil
}

// Broadcast queues payload for every viewer and returns how many took it.
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for _, c := range h.clients {
		select {
		case c.send <- payload:
			sent++
		default:
		}
	}
	return sent
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.send)
		delete(h.clients, id)
	}
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c.id)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Printf("read error viewer=%s err=%v", c.id, err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.send)
		delete(h.clients, id)
	}
}
