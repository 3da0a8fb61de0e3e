package client

import (
	"context"
	"fmt"

	"github.com/jacobpatterson1549/who-took-that-photo/client/event"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

// connect opens the connection to the server and requests the game configuration.
func (c *Client) connect(ctx context.Context) error {
	if err := c.socket.Connect(ctx); err != nil {
		return fmt.Errorf("connecting client: %w", err)
	}
	go c.fetchConfig()
	return nil
}

// fetchConfig requests the game configuration.  Failures are logged, the configuration stays unavailable.
func (c *Client) fetchConfig() {
	ctx, cancel := context.WithTimeout(context.Background(), c.configTimeout)
	defer cancel()
	r, err := c.socket.Request(ctx, message.AskConfig)
	if err != nil {
		c.log.Printf("requesting game configuration: %v", err)
		return
	}
	var cfg game.Config
	if err := r.Arg(0, &cfg); err != nil {
		c.log.Printf("reading game configuration: %v", err)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameConfig = &cfg
}

// LeaveGame removes the player from the game and reconnects to the server so another game can be created or joined.
// Events from the old game are not delivered after it returns.  Games cannot be created or joined until it returns.
func (c *Client) LeaveGame(ctx context.Context) error {
	c.mu.Lock()
	m := c.current
	c.current = nil
	c.reconnecting++
	c.mu.Unlock()
	if m != nil {
		m.dispose()
	}
	return c.reconnect(ctx, "leaving game")
}

// reconnect disconnects and reconnects the socket.  The server removes the player from games when the connection closes.
// The reconnecting count must have been increased with the lock held when the membership was removed.
func (c *Client) reconnect(ctx context.Context, reason string) error {
	defer func() {
		c.mu.Lock()
		c.reconnecting--
		c.mu.Unlock()
	}()
	if err := c.socket.Reconnect(ctx, reason); err != nil {
		return fmt.Errorf("reconnecting after %v: %w", reason, err)
	}
	return nil
}

// connectionLost removes the player from the game when the connection fails.  The client does not reconnect on its own.
func (c *Client) connectionLost(err error) {
	c.mu.Lock()
	m := c.current
	c.current = nil
	c.mu.Unlock()
	if m != nil {
		m.dispose()
	}
	c.bus.Emit(event.Event{Name: event.ConnectionLost, Reason: err.Error()})
}
