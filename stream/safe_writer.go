package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SafeWriter serializes writes to a websocket connection. Reads stay on
// the connection's own goroutine.
type SafeWriter struct {
	conn      *websocket.Conn
	mutex     sync.Mutex
	writeWait time.Duration
}

func NewSafeWriter(conn *websocket.Conn, writeWait time.Duration) *SafeWriter {
	return &SafeWriter{conn: conn, writeWait: writeWait}
}

func (w *SafeWriter) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.writeWait > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.writeWait)); err != nil {
			return err
		}
	}
	return w.conn.WriteJSON(v)
}

func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}

func (w *SafeWriter) RemoteAddr() string {
	return w.conn.RemoteAddr().String()
}
