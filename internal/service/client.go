package service

import (
	"sync"

	"github.com/gorilla/websocket"
)

const outboundBuffer = 256

// Client wraps one live websocket. The registry owns the handle; the
// write pump is the only goroutine touching the wire for sends.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte

	once sync.Once
	done chan struct{}
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, outboundBuffer),
		done:   make(chan struct{}),
	}
}

func (c *Client) UserID() string {
	return c.userID
}

// Enqueue hands a serialized frame to the write pump without blocking.
// False means the peer is gone or cannot keep up.
func (c *Client) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
