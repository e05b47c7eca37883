package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Connection wraps a gorilla websocket with a single writer goroutine
// so WriteJSON is safe from any goroutine.
//
// Outbound contract: at-most-once, no queue beyond the write buffer.
// A full buffer or a closed connection drops the message with an error
// the caller is expected to at most log. Nothing is retried.
type Connection struct {
	conn         *websocket.Conn
	writeCh      chan []byte
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
	log          zerolog.Logger
}

// NewConnection wraps an upgraded websocket and starts its writer.
func NewConnection(conn *websocket.Conn, bufferSize int, writeTimeout time.Duration, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		writeCh:      make(chan []byte, bufferSize),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
		log:          logger,
	}
	go c.writeLoop()
	return c
}

// writeLoop is the sole goroutine allowed to touch conn for writes.
func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.cancel()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug().Err(err).Msg("write failed, closing writer")
				c.cancel()
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON marshals v and hands it to the writer without blocking.
func (c *Connection) WriteJSON(v interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		return ErrWriteBufferFull
	}
}

// IsOpen reports whether the connection still accepts writes.
func (c *Connection) IsOpen() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return true
	}
}

// Close tears down the connection. Idempotent.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// ReadMessage blocks for the next client frame. Only the read loop in
// the handler calls this.
func (c *Connection) ReadMessage() (int, []byte, error) {
	return c.conn.ReadMessage()
}
