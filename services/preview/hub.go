package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"f1led-go/types"
)

const writeTimeout = time.Second

// Hub keeps the latest strip image and pushes every new one to websocket
// clients as JSON. Each client has its own writer, so a slow client only
// falls behind and never holds up Show.
type Hub struct {
	log zerolog.Logger

	mu        sync.Mutex // guards state and the client set
	colors    []types.RGBColor
	frameID   uint64
	startTime time.Time
	clients   map[*client]struct{}
	upgrader  websocket.Upgrader
}

// client owns one socket. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	out  chan []byte // latest frame wins
}

// offer queues raw, replacing a frame the writer has not picked up yet.
// Callers hold Hub.mu.
func (c *client) offer(raw []byte) {
	select {
	case c.out <- raw:
		return
	default:
	}
	select {
	case <-c.out:
	default:
	}
	select {
	case c.out <- raw:
	default:
	}
}

// FrameMsg is the websocket payload.
type FrameMsg struct {
	Type  string     `json:"type"` // "frame"
	Frame uint64     `json:"frame"`
	LEDs  [][3]uint8 `json:"leds"`
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:       log,
		startTime: time.Now(),
		clients:   map[*client]struct{}{},
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Show implements the simulated bus sink. It does no network I/O.
func (h *Hub) Show(colors []types.RGBColor) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors = append(h.colors[:0], colors...)
	h.frameID++
	raw, err := json.Marshal(h.frameLocked())
	if err != nil {
		h.log.Error().Err(err).Msg("encode frame")
		return
	}
	for c := range h.clients {
		c.offer(raw)
	}
}

func (h *Hub) frameLocked() FrameMsg {
	leds := make([][3]uint8, len(h.colors))
	for i, c := range h.colors {
		leds[i] = [3]uint8{c.R, c.G, c.B}
	}
	return FrameMsg{Type: "frame", Frame: h.frameID, LEDs: leds}
}

// writeLoop sends queued frames until out is closed. After a failed write
// the socket is closed and the rest of the queue is discarded.
func (h *Hub) writeLoop(c *client) {
	for raw := range c.out {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.log.Debug().Err(err).Str("remote", c.conn.RemoteAddr().String()).Msg("dropping preview client")
			c.conn.Close()
			for range c.out {
			}
			return
		}
	}
}

// HandleFramesWS upgrades the request and streams frames until the client
// goes away. The current image is sent immediately.
func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, out: make(chan []byte, 1)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.frameID > 0 {
		if raw, err := json.Marshal(h.frameLocked()); err == nil {
			c.offer(raw)
		}
	}
	h.mu.Unlock()
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("preview client connected")

	go h.writeLoop(c)
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, c)
			close(c.out)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    len(h.colors),
		"clients":  len(h.clients),
	}
	h.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler serves /ws and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Clients is the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
