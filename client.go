package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 16 // snapshots are large; a slow client skips frames instead
)

// Client is the websocket transport of one Session
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	session    *Session
	remoteAddr string
	binary     bool // msgpack frames instead of JSON text
	maxRate    int
	msgCount   int
	msgResetAt time.Time
	closeOnce  sync.Once
}

// NewClient creates a Client
func NewClient(hub *Hub, conn *websocket.Conn, session *Session, remoteAddr string, binary bool, maxRate int) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		session:    session,
		remoteAddr: remoteAddr,
		binary:     binary,
		maxRate:    maxRate,
	}
}

// ReadPump decodes client frames into intents until the connection fails
func (c *Client) ReadPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("remote", c.remoteAddr).Warn("ws read error")
			}
			return
		}

		if !c.allow(time.Now()) {
			log.WithField("remote", c.remoteAddr).Warn("rate limit exceeded, disconnecting")
			return
		}

		in, err := DecodeIntent(message, msgType == websocket.BinaryMessage)
		if err != nil {
			log.WithError(err).WithField("remote", c.remoteAddr).Debug("ignoring undecodable message")
			continue
		}
		c.session.Apply(in)
	}
}

// WritePump writes queued frames and keepalive pings. A write failure closes
// the connection, which ends ReadPump and runs the teardown.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	msgType := websocket.TextMessage
	if c.binary {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msgType, message); err != nil {
				log.WithError(err).WithField("remote", c.remoteAddr).Debug("ws write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendWelcome queues the player id message. Call before Register.
func (c *Client) SendWelcome(msg WelcomeMsg) error {
	data, err := Encode(msg, c.binary)
	if err != nil {
		return err
	}
	c.enqueue(data)
	return nil
}

// enqueue queues a frame without blocking, dropping it if the buffer is full.
// Callers must not race with Hub.Unregister closing the channel.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// allow applies the per-second message budget
func (c *Client) allow(now time.Time) bool {
	if c.maxRate <= 0 {
		return true
	}
	if now.After(c.msgResetAt) {
		c.msgCount = 0
		c.msgResetAt = now.Add(time.Second)
	}
	c.msgCount++
	return c.msgCount <= c.maxRate
}

// close is the Closed transition of the connection. It runs exactly once no
// matter which side failed first.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.session.Close()
		c.hub.Unregister(c)
		c.hub.TrackDisconnect(c.remoteAddr)
		c.conn.Close()
		log.WithFields(logrus.Fields{
			"player_id": c.session.PlayerID(),
			"remote":    c.remoteAddr,
		}).Debug("connection closed")
	})
}
