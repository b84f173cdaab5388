package ws

import (
	"time"

	"dispatch/internal/adapters/out/notify"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	replyBuffer    = 8
)

// client pumps hub frames and direct replies to one socket. Only writePump writes to ws.
type client struct {
	ws      *websocket.Conn
	sub     *notify.Subscription
	replies chan []byte
	done    chan struct{}
}

func newClient(ws *websocket.Conn, sub *notify.Subscription) *client {
	return &client{
		ws:      ws,
		sub:     sub,
		replies: make(chan []byte, replyBuffer),
		done:    make(chan struct{}),
	}
}

// reply queues a frame for this socket only. It never blocks.
func (c *client) reply(frame []byte) {
	select {
	case c.replies <- frame:
	default:
	}
}

// writePump runs until the subscription closes or a write fails.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.done)
	}()

	for {
		select {
		case frame, ok := <-c.sub.Frames():
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.drainReplies()
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case frame := <-c.replies:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) drainReplies() {
	for {
		select {
		case frame := <-c.replies:
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		default:
			return
		}
	}
}

// readPump hands every text message to handle until the peer goes away.
func (c *client) readPump(handle func(message []byte)) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, message, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.TextMessage && handle != nil {
			handle(message)
		}
	}
}

// close detaches from the hub and waits for the writer to finish.
func (c *client) close() {
	c.sub.Close()
	<-c.done
}
