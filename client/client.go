// Package client is the session client views use to play games on a server.
// It owns the connection to the server, tracks the player's game, and publishes what happens as events.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/client/auth"
	"github.com/jacobpatterson1549/who-took-that-photo/client/event"
	"github.com/jacobpatterson1549/who-took-that-photo/client/image"
	"github.com/jacobpatterson1549/who-took-that-photo/client/session"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
	"github.com/jacobpatterson1549/who-took-that-photo/log"
)

type (
	// Client plays games on a server for a single player at a time.
	Client struct {
		log            log.Logger
		socket         *socket.Socket
		bus            *event.Bus
		images         *image.Responder
		recorder       Recorder
		joinGrace      time.Duration
		requestTimeout time.Duration
		configTimeout  time.Duration

		mu           sync.Mutex
		current      *membership
		gameConfig   *game.Config
		reconnecting int
	}

	// Config contains the dependencies and timeouts of a Client.
	Config struct {
		// Log is used to log protocol problems and failures.
		Log log.Logger
		// ServerURL is the websocket address of the game server.
		ServerURL string
		// Token is an optional access token added to the server url.
		Token *auth.Token
		// Socket configures the connection to the server.
		Socket socket.Config
		// Images configures how images are picked and encoded when the server requests one.
		Images image.Config
		// Recorder optionally archives the final scores of games.
		Recorder Recorder
		// JoinGracePeriod is how long to wait after joining a game before asking for the players in it.
		// The server can take a moment to register the new player.
		JoinGracePeriod time.Duration
		// RequestTimeout is how long to wait for the server to reply to lobby requests.
		RequestTimeout time.Duration
		// ConfigTimeout is how long to wait for the server to reply with its game configuration.
		ConfigTimeout time.Duration
	}

	// Recorder archives the final scores of a game.
	Recorder interface {
		Record(ctx context.Context, gameCode, playerName string, sb game.Scoreboard) error
	}
)

const (
	// DefaultConnectTimeout is how long the first connection can take to open.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultJoinGracePeriod is the wait between joining a game and asking for its players.
	DefaultJoinGracePeriod = 50 * time.Millisecond
	// DefaultRequestTimeout is how long lobby requests wait for replies.
	DefaultRequestTimeout = 5 * time.Second
	// DefaultConfigTimeout is how long the configuration request waits for a reply.
	DefaultConfigTimeout = 2 * time.Second
)

var (
	// ErrNotReady is returned when the game configuration has not been received.
	ErrNotReady = errors.New("game configuration not received yet")
	// ErrNoSession is returned when the player is not in a game.
	ErrNoSession = errors.New("not in a game")
	// ErrSessionActive is returned when creating or joining a game while already in one.
	ErrSessionActive = errors.New("already in a game")
	// ErrNoRoundState is returned when reading scores before the game has started.
	ErrNoRoundState = errors.New("game not started")
	// ErrNotCreator is returned when a player that did not create the game tries to start it.
	ErrNotCreator = errors.New("only the creator can start the game")
	// ErrReconnecting is returned when creating or joining a game while the client is reconnecting after leaving a game.
	ErrReconnecting = errors.New("reconnecting to server")
)

// NewClient creates a client and connects it to the server.
// The game configuration is requested after connecting, it is not available until the server replies.
func (cfg Config) NewClient(ctx context.Context) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating client: validation: %w", err)
	}
	serverURL := cfg.ServerURL
	if cfg.Token != nil {
		u, err := cfg.Token.AddTo(serverURL)
		if err != nil {
			return nil, fmt.Errorf("creating client: %w", err)
		}
		serverURL = u
	}
	s, err := cfg.Socket.NewSocket(serverURL)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	images, err := cfg.Images.NewResponder()
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	c := Client{
		log:            cfg.Log,
		socket:         s,
		bus:            event.NewBus(),
		images:         images,
		recorder:       cfg.Recorder,
		joinGrace:      cfg.JoinGracePeriod,
		requestTimeout: cfg.RequestTimeout,
		configTimeout:  cfg.ConfigTimeout,
	}
	s.Handle(message.RequestImage, c.answerImageRequest)
	s.HandleLost(c.connectionLost)
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case len(cfg.ServerURL) == 0:
		return fmt.Errorf("server url required")
	case cfg.JoinGracePeriod < 0:
		return fmt.Errorf("non-negative join grace period required")
	case cfg.RequestTimeout <= 0:
		return fmt.Errorf("positive request timeout required")
	case cfg.ConfigTimeout <= 0:
		return fmt.Errorf("positive config timeout required")
	}
	return nil
}

// Events is the bus the client publishes what happens in games to.
func (c *Client) Events() *event.Bus {
	return c.bus
}

// SetImages replaces the images the player submits to games.
// The client keeps its own copy of the references.
func (c *Client) SetImages(refs []string) {
	c.images.SetImages(refs)
}

// Config returns the game configuration of the server.
func (c *Client) Config() (game.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gameConfig == nil {
		return game.Config{}, ErrNotReady
	}
	return *c.gameConfig, nil
}

// PlayersInLobby returns the names of the other players followed by the player's name.
// False is returned if the player is not in a game.
func (c *Client) PlayersInLobby() ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.activeSession()
	if s == nil {
		return nil, false
	}
	return s.Players(), true
}

// OurScore returns the player's score in the current game.
func (c *Client) OurScore() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.activeSession()
	switch {
	case s == nil:
		return 0, ErrNoSession
	case s.Round == nil:
		return 0, ErrNoRoundState
	}
	return s.Round.OurScore, nil
}

// Session returns a copy of the player's game.  False is returned if the player is not in a game.
func (c *Client) Session() (session.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.activeSession()
	if s == nil {
		return session.Session{}, false
	}
	return s.Copy(), true
}

// Phase is the state of the connection to the server.
func (c *Client) Phase() socket.Phase {
	return c.socket.Phase()
}

// Close leaves the game the player is in and disconnects from the server.
func (c *Client) Close() {
	c.mu.Lock()
	m := c.current
	c.current = nil
	c.mu.Unlock()
	if m != nil {
		m.dispose()
	}
	c.socket.Close()
}

// activeSession is the session of the game the player is in, or nil.  The lock must be held.
func (c *Client) activeSession() *session.Session {
	if c.current == nil {
		return nil
	}
	return c.current.Session
}

// answerImageRequest replies to the server with an image from the pool.
func (c *Client) answerImageRequest(ctx context.Context, m message.Message) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()
	return c.images.Respond(ctx)
}

// withTimeout creates a context for a lobby request.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.requestTimeout)
}
