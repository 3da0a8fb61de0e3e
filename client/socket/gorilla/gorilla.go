// Package gorilla implements a websocket connection by wrapping gorilla/websocket.
package gorilla

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

type (
	// Dialer implements the socket.Dialer interface by wrapping a gorilla/websocket Dialer.
	Dialer struct {
		*websocket.Dialer
	}

	// Upgrader creates server connections by wrapping a gorilla/websocket Upgrader.
	Upgrader struct {
		*websocket.Upgrader
	}

	// Conn implements the socket.Conn interface by wrapping a gorilla/websocket Connection.
	Conn struct {
		*websocket.Conn
	}
)

var _ socket.Conn = (*Conn)(nil)

// NewDialer creates a dialer that creates gorilla websocket connections.
func NewDialer(handshakeTimeout time.Duration) *Dialer {
	d := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	return &Dialer{&d}
}

// Dial connects to the websocket url.
func (d *Dialer) Dial(ctx context.Context, url string) (socket.Conn, error) {
	c, resp, err := d.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing websocket (http status %v): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dialing websocket: %w", err)
	}
	return &Conn{c}, nil
}

// NewUpgrader returns a upgrader tha creates gorilla websocket connections.
func NewUpgrader() *Upgrader {
	u := new(websocket.Upgrader)
	return &Upgrader{u}
}

// Upgrade creates a Conn from the http request.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{c}, nil
}

// ReadMessage reads the next message from the connection.
// A frame that is not a message returns an error wrapping socket.ErrProtocol, the next message can still be read.
func (c *Conn) ReadMessage(m *message.Message) error {
	_, data, err := c.Conn.ReadMessage()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("%w: decoding %q: %v", socket.ErrProtocol, data, err)
	}
	return nil
}

// WriteMessage writes the message as json to the connection.
func (c *Conn) WriteMessage(m message.Message) error {
	return c.Conn.WriteJSON(m)
}

// WriteClose writes a close message on the connection.  The connection is NOT closed.
func (c *Conn) WriteClose(reason string) (err error) {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return c.Conn.WriteMessage(websocket.CloseMessage, data)
}

// IsNormalClose determines if the error message is not an unexpected close error.
func (*Conn) IsNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) { // only errors from gorilla can be normal close errors
		return false
	}
	return !websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
