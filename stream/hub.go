// Package stream broadcasts simulation frames to websocket clients.
package stream

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/0x5844/rigid2d/engine"
)

const (
	DefaultWriteWait = time.Second
	shutdownTimeout  = 2 * time.Second
)

type Options struct {
	Version string
	FPS     int
	// Every sends one frame per Every steps; values below 1 send all.
	Every int
}

// Hub is an engine.Listener that keeps the latest snapshot and forwards
// steps to every connected client. Clients whose writes fail are dropped.
type Hub struct {
	upgrader websocket.Upgrader
	opts     Options

	mu      sync.RWMutex
	clients map[*SafeWriter]struct{}
	last    engine.Snapshot
}

func NewHub(opts Options) *Hub {
	if opts.Every < 1 {
		opts.Every = 1
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		opts:    opts,
		clients: make(map[*SafeWriter]struct{}),
	}
}

func (h *Hub) OnStep(s engine.Snapshot) {
	h.mu.Lock()
	h.last = s
	h.mu.Unlock()

	if s.Step%int64(h.opts.Every) != 0 {
		return
	}
	h.Broadcast(NewFrameMessage(s))
}

// Broadcast writes msg to every client and returns how many received it.
func (h *Hub) Broadcast(msg any) int {
	h.mu.RLock()
	clients := make([]*SafeWriter, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.WriteJSON(msg); err != nil {
			log.Printf("stream: dropping client %s: %v", c.RemoteAddr(), err)
			h.remove(c)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *SafeWriter) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *SafeWriter) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (h *Hub) hello() HelloMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HelloMessage{
		Type:    MessageTypeHello,
		Version: h.opts.Version,
		FPS:     h.opts.FPS,
		Bounds:  h.last.Bounds,
		Frame:   NewFrameMessage(h.last),
	}
}

// HandleWS upgrades the request, greets the client and then serves its
// pings until the connection closes.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream: websocket upgrade error: %v", err)
		return
	}
	client := NewSafeWriter(conn, DefaultWriteWait)
	log.Printf("stream: client connected from %s", client.RemoteAddr())

	if err := client.WriteJSON(h.hello()); err != nil {
		log.Printf("stream: error sending hello: %v", err)
		client.Close()
		return
	}
	h.add(client)
	defer h.remove(client)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("stream: websocket error: %v", err)
			}
			break
		}
		if err := reply(client, data); err != nil {
			log.Printf("stream: error replying to %s: %v", client.RemoteAddr(), err)
			break
		}
	}
	log.Printf("stream: client disconnected: %s", client.RemoteAddr())
}

// reply answers one client message: a pong for pings, an info message for
// anything it cannot parse. It returns the write error, if any.
func reply(client *SafeWriter, data []byte) error {
	msg, err := ParseMessage(data)
	if err != nil {
		return client.WriteJSON(NewInfoMessage(err.Error()))
	}
	if ping, ok := msg.(*PingMessage); ok {
		return client.WriteJSON(PongMessage{
			Type:       MessageTypePong,
			ClientTime: ping.ClientTime,
			ServerTime: time.Now().UnixMilli(),
		})
	}
	return nil
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWS)
	return mux
}

// ListenAndServe serves the hub on addr until ctx ends.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	errc := make(chan error, 1)
	go func() {
		log.Printf("stream: serving websocket frames on ws://%s/ws", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		h.closeAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*SafeWriter]struct{})
	h.mu.Unlock()
	for c := range clients {
		c.Close()
	}
}
