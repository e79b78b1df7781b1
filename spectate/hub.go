package spectate

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lixenwraith/term-snake/core"
	"github.com/lixenwraith/term-snake/engine"
	"github.com/lixenwraith/term-snake/status"
)

const (
	// Frames buffered per spectator before new frames are dropped for it
	clientBufferSize = 8
	writeTimeout     = 2 * time.Second
	shutdownTimeout  = 2 * time.Second
)

// Message is one broadcast frame
type Message struct {
	Type    string   `json:"type"` // "frame"
	Session string   `json:"session"`
	Seq     uint64   `json:"seq"`
	Phase   string   `json:"phase"`
	Width   int      `json:"w"`
	Height  int      `json:"h"`
	Score   uint32   `json:"score"`
	Best    uint32   `json:"best"`
	Alive   bool     `json:"alive"`
	Rows    []string `json:"rows"` // Frame.Lines()
}

type client struct {
	conn *websocket.Conn
	send chan *Message
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans frames out to websocket spectators
// Publish never blocks the game loop; slow spectators miss frames
type Hub struct {
	session  string
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *Message
	closed  bool

	seq atomic.Uint64

	statLive    *atomic.Int64
	statDropped *atomic.Int64
}

// NewHub creates a hub tagging frames with session
func NewHub(session string, logger zerolog.Logger, metrics *status.Registry) *Hub {
	if metrics == nil {
		metrics = status.NewRegistry()
	}
	return &Hub{
		session: session,
		log:     logger.With().Str("component", "spectate").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:     make(map[*client]struct{}),
		statLive:    metrics.Ints.Get(status.SpectatorsLive),
		statDropped: metrics.Ints.Get(status.FramesDropped),
	}
}

// Publish implements engine.FramePublisher
func (h *Hub) Publish(phase engine.Phase, f engine.Frame) {
	msg := &Message{
		Type:    "frame",
		Session: h.session,
		Seq:     h.seq.Add(1),
		Phase:   phase.String(),
		Width:   f.Width,
		Height:  f.Height,
		Score:   f.Score,
		Best:    f.Best,
		Alive:   f.Alive,
		Rows:    f.Lines(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.statDropped.Add(1)
		}
	}
}

// Len returns the number of connected spectators
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams frames until the spectator leaves
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan *Message, clientBufferSize)}
	if !h.register(c) {
		conn.Close()
		return
	}
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("spectator joined")

	core.Go(func() {
		h.writeLoop(c)
	})

	// Spectators are read-only; reading detects the close handshake
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.unregister(c)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("spectator left")
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.statLive.Add(1)

	// Late joiners get the current screen immediately
	if h.last != nil {
		c.send <- h.last
	}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.statLive.Add(-1)
	}
	h.mu.Unlock()

	c.close()
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.Warn().Err(err).Msg("spectator send failed")
			// Unblocks the read loop in ServeHTTP
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}

	deadline := time.Now().Add(writeTimeout)
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"), deadline)
}

// Close disconnects all spectators and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}

// Handler returns a mux serving the hub on /ws
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return mux
}

// Serve listens on addr until ctx is done, then shuts the server down and closes the hub
func (h *Hub) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return h.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener
func (h *Hub) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	core.Go(func() {
		errCh <- srv.Serve(ln)
	})
	h.log.Info().Str("addr", ln.Addr().String()).Msg("spectator server started")

	select {
	case err := <-errCh:
		h.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	h.log.Info().Msg("spectator server stopped")
	return nil
}
