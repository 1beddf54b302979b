package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/hazards/internal/core/events/bus"
	"github.com/zeusync/hazards/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	readLimit    = 512
)

// FeedConfig tunes the websocket event feed.
type FeedConfig struct {
	// MaxClients caps concurrent connections; zero means unlimited.
	MaxClients int
	// SendBuffer is the per-client queue length. A client that falls this far
	// behind loses messages.
	SendBuffer int
	Auth       Authenticator
}

func DefaultFeedConfig() FeedConfig {
	return FeedConfig{SendBuffer: 256}
}

// FeedMetrics counts feed activity.
type FeedMetrics struct {
	Clients   int    `json:"clients"`
	Accepted  uint64 `json:"accepted"`
	Rejected  uint64 `json:"rejected"`
	Broadcast uint64 `json:"broadcast"`
	Dropped   uint64 `json:"dropped"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Feed streams hazard events to websocket clients. The simulation only ever
// touches it through Broadcast, which never blocks.
type Feed struct {
	cfg FeedConfig
	log log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool

	accepted  atomic.Uint64
	rejected  atomic.Uint64
	broadcast atomic.Uint64
	dropped   atomic.Uint64
}

func NewFeed(cfg FeedConfig, logger log.Log) *Feed {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultFeedConfig().SendBuffer
	}
	if cfg.Auth == nil {
		cfg.Auth = TokenAuth{}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Feed{
		cfg:     cfg,
		log:     logger,
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the feed to every event type on q.
func (f *Feed) Attach(q *bus.Queue) (bus.Subscription, error) {
	return q.SubscribeAll(func(e bus.Event) error {
		data, err := json.Marshal(NewMessage(e))
		if err != nil {
			return err
		}
		f.Broadcast(data)
		return nil
	})
}

// Broadcast queues data for every connected client.
func (f *Feed) Broadcast(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.broadcast.Add(1)
	for c := range f.clients {
		select {
		case c.send <- data:
		default:
			f.dropped.Add(1)
		}
	}
}

func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

func (f *Feed) Metrics() FeedMetrics {
	return FeedMetrics{
		Clients:   f.Clients(),
		Accepted:  f.accepted.Load(),
		Rejected:  f.rejected.Load(),
		Broadcast: f.broadcast.Load(),
		Dropped:   f.dropped.Load(),
	}
}

func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := f.cfg.Auth.Authenticate(r); err != nil {
		f.rejected.Add(1)
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.rejected.Add(1)
		f.log.Warn("websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, f.cfg.SendBuffer)}
	if err := f.register(c); err != nil {
		f.rejected.Add(1)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	f.accepted.Add(1)
	f.log.Info("feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go f.writePump(c)
	f.readPump(c)
}

func (f *Feed) register(c *client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrServerClosed
	}
	if f.cfg.MaxClients > 0 && len(f.clients) >= f.cfg.MaxClients {
		return ErrMaxClientsReached
	}
	f.clients[c] = struct{}{}
	return nil
}

func (f *Feed) unregister(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// readPump discards client input and detects disconnects.
func (f *Feed) readPump(c *client) {
	defer func() {
		f.unregister(c)
		_ = c.conn.Close()
		f.log.Info("feed client disconnected", log.String("remote", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.log.Warn("feed read failed", log.Error(err))
			}
			return
		}
	}
}

func (f *Feed) writePump(c *client) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// Close disconnects every client and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
}
