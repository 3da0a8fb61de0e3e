package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/client/event"
	"github.com/jacobpatterson1549/who-took-that-photo/client/session"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

type (
	// membership is a game the player is creating, joining, or in.
	// Its subscriptions are added before the create or join request is sent so no events after the reply are missed.
	// Handlers wait until the request finishes, then only act if the membership is still current.
	membership struct {
		// Session is nil until the game is created or joined.
		*session.Session
		subs      []*socket.Subscription
		ready     chan struct{}
		readyOnce sync.Once
	}

	// RosterError is returned when the server cannot say which players are in a game that was just joined.
	RosterError struct {
		Status game.JoinStatus
	}

	// handler changes the session for a message and returns the events to publish.
	// It is called with the lock held.
	handler func(s *session.Session, m message.Message) []event.Event
)

// KickReason is the reason given when the server deletes the game the player is in.
const KickReason = "Creator left"

// Error describes the status.
func (e RosterError) Error() string {
	return fmt.Sprintf("reading players in game: %v", e.Status)
}

// CreateGame creates a game the player is the creator of.  The code other players can join with is returned.
func (c *Client) CreateGame(ctx context.Context, playerName string) (string, error) {
	if len(playerName) == 0 {
		return "", fmt.Errorf("creating game: player name required")
	}
	m, err := c.begin()
	if err != nil {
		return "", fmt.Errorf("creating game: %w", err)
	}
	defer m.markReady()
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	r, err := c.socket.Request(ctx, message.AskCreate, playerName)
	if err != nil {
		c.abandon(m)
		return "", fmt.Errorf("creating game: %w", err)
	}
	var code string
	if err := r.Arg(0, &code); err != nil || len(code) == 0 {
		c.abandon(m)
		return "", fmt.Errorf("creating game: game code reply: %w: %v", socket.ErrProtocol, r.Args)
	}
	s, err := session.New(playerName, code, true)
	if err != nil {
		c.abandon(m)
		return "", fmt.Errorf("creating game: %w", err)
	}
	if err := c.activate(m, s); err != nil {
		return "", fmt.Errorf("creating game: %w", err)
	}
	return code, nil
}

// JoinGame joins the game with the code.
// A status that is not game.Joined is the reason the server rejected the player, the player is not in a game.
// After the server accepts the player, the players already in the game are requested.
// If they cannot be read, the player leaves the game and an error is returned.
func (c *Client) JoinGame(ctx context.Context, playerName, gameCode string) (game.JoinStatus, error) {
	switch {
	case len(playerName) == 0:
		return 0, fmt.Errorf("joining game: player name required")
	case len(gameCode) == 0:
		return 0, fmt.Errorf("joining game: game code required")
	}
	m, err := c.begin()
	if err != nil {
		return 0, fmt.Errorf("joining game: %w", err)
	}
	defer m.markReady()
	status, err := c.requestJoin(ctx, playerName, gameCode)
	if err != nil || !status.OK() {
		c.abandon(m)
		return status, err
	}
	players, err := c.requestPlayers(ctx, gameCode)
	if err != nil {
		c.mu.Lock()
		if c.current == m {
			c.current = nil
		}
		c.reconnecting++
		c.mu.Unlock()
		m.dispose()
		if err2 := c.reconnect(ctx, "could not join game"); err2 != nil {
			c.log.Printf("leaving game after failed join: %v", err2)
		}
		return 0, fmt.Errorf("joining game: %w", err)
	}
	s, err := session.New(playerName, gameCode, false)
	if err != nil {
		c.abandon(m)
		return 0, fmt.Errorf("joining game: %w", err)
	}
	s.SetRoster(players)
	if err := c.activate(m, s); err != nil {
		return 0, fmt.Errorf("joining game: %w", err)
	}
	return game.Joined, nil
}

// StartGame asks the server to start the game.  Only the creator of the game can start it.
// The start is published as an event when the server starts the game.
func (c *Client) StartGame() error {
	c.mu.Lock()
	s := c.activeSession()
	c.mu.Unlock()
	switch {
	case s == nil:
		return fmt.Errorf("starting game: %w", ErrNoSession)
	case !s.IsCreator:
		return fmt.Errorf("starting game: %w", ErrNotCreator)
	}
	if err := c.socket.Emit(message.SayStartGame, s.GameCode); err != nil {
		return fmt.Errorf("starting game: %w", err)
	}
	return nil
}

func (c *Client) requestJoin(ctx context.Context, playerName, gameCode string) (game.JoinStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	j := message.JoinRequest{
		Name:     playerName,
		GameCode: gameCode,
	}
	r, err := c.socket.Request(ctx, message.AskJoin, j)
	if err != nil {
		return 0, fmt.Errorf("joining game: %w", err)
	}
	var status game.JoinStatus
	if err := r.Arg(0, &status); err != nil {
		return 0, fmt.Errorf("joining game: status reply: %w: %v", socket.ErrProtocol, err)
	}
	return status, nil
}

// requestPlayers waits for the server to register the player, then asks for the names of the players in the game.
// The server replies with a status if it cannot say.
func (c *Client) requestPlayers(ctx context.Context, gameCode string) ([]string, error) {
	if c.joinGrace > 0 {
		t := time.NewTimer(c.joinGrace)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	r, err := c.socket.Request(ctx, message.AskPlayers, gameCode)
	if err != nil {
		return nil, err
	}
	var players []string
	if err := r.Arg(0, &players); err == nil {
		return players, nil
	}
	var status game.JoinStatus
	if err := r.Arg(0, &status); err != nil {
		return nil, fmt.Errorf("players reply: %w: %v", socket.ErrProtocol, r.Args)
	}
	return nil, RosterError{Status: status}
}

// begin starts a membership with the handlers of the game.
func (c *Client) begin() (*membership, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.current != nil:
		return nil, ErrSessionActive
	case c.reconnecting > 0:
		return nil, ErrReconnecting
	}
	m := membership{
		ready: make(chan struct{}),
	}
	c.current = &m
	c.on(&m, message.PlayerJoined, c.playerJoined)
	c.on(&m, message.PlayerLeft, c.playerLeft)
	c.on(&m, message.RoundStart, c.roundStart)
	c.on(&m, message.TimeLeftInRound, c.timeLeftInRound)
	c.on(&m, message.RoundOver, c.roundOver)
	c.on(&m, message.GameEnded, c.gameEnded)
	c.on(&m, message.SyncRound, c.syncRound)
	m.subs = append(m.subs,
		c.socket.Once(message.GameStarted, c.wrap(&m, c.gameStarted)),
		c.socket.On(message.LobbyDeleted, c.lobbyDeleted(&m)),
	)
	return &m, nil
}

// activate makes the session the player's game.
func (c *Client) activate(m *membership, s *session.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != m {
		return ErrNoSession // left while waiting for the server
	}
	m.Session = s
	return nil
}

// abandon removes the membership if it is current.
func (c *Client) abandon(m *membership) {
	c.mu.Lock()
	if c.current == m {
		c.current = nil
	}
	c.mu.Unlock()
	m.dispose()
}

// on subscribes the handler to the event for the membership.
func (c *Client) on(m *membership, e message.Event, h handler) {
	m.subs = append(m.subs, c.socket.On(e, c.wrap(m, h)))
}

// wrap creates a socket handler that changes the session and publishes events if the membership is current.
func (c *Client) wrap(m *membership, h handler) socket.Handler {
	return func(msg message.Message) {
		<-m.ready
		c.mu.Lock()
		if c.current != m || m.Session == nil {
			c.mu.Unlock()
			return
		}
		events := h(m.Session, msg)
		c.mu.Unlock()
		for _, e := range events {
			c.bus.Emit(e)
		}
	}
}

func (c *Client) playerJoined(s *session.Session, m message.Message) []event.Event {
	var name string
	if err := m.Arg(0, &name); err != nil {
		c.log.Printf("ignoring player joined: %v", err)
		return nil
	}
	if !s.AddPlayer(name) {
		c.log.Printf("ignoring duplicate player joined %q in game %v", name, s.GameCode)
		return nil
	}
	return []event.Event{{Name: event.PlayerJoined, Player: name}}
}

func (c *Client) playerLeft(s *session.Session, m message.Message) []event.Event {
	var name string
	if err := m.Arg(0, &name); err != nil {
		c.log.Printf("ignoring player left: %v", err)
		return nil
	}
	if !s.RemovePlayer(name) {
		c.log.Printf("ignoring unknown player left %q in game %v", name, s.GameCode)
		return nil
	}
	return []event.Event{{Name: event.PlayerLeft, Player: name}}
}

func (c *Client) gameStarted(s *session.Session, m message.Message) []event.Event {
	if err := s.StartGame(); err != nil {
		c.log.Printf("ignoring game started: %v", err)
		return nil
	}
	return []event.Event{{Name: event.StartGame}}
}

// lobbyDeleted removes the player from the game when the server deletes it.
// The kick is published after reconnecting, so games created by subscribers use the new connection.
func (c *Client) lobbyDeleted(m *membership) socket.Handler {
	return func(msg message.Message) {
		<-m.ready
		c.mu.Lock()
		if c.current != m || m.Session == nil {
			c.mu.Unlock()
			return
		}
		m.ClearRoster()
		c.current = nil
		c.reconnecting++
		c.mu.Unlock()
		m.dispose()
		if err := c.reconnect(context.Background(), "game deleted"); err != nil && !errors.Is(err, socket.ErrClosed) {
			c.log.Printf("reconnecting after being kicked: %v", err)
		}
		c.bus.Emit(event.Event{Name: event.Kicked, Reason: KickReason})
	}
}

// dispose removes the subscriptions of the membership and stops handlers from waiting.
func (m *membership) dispose() {
	for _, sub := range m.subs {
		sub.Remove()
	}
	m.markReady()
}

func (m *membership) markReady() {
	m.readyOnce.Do(func() {
		close(m.ready)
	})
}
