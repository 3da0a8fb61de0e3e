// Package sockettest provides a game server for testing clients.
package sockettest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket/gorilla"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

type (
	// Server is a websocket server that records the messages clients send and answers requests with scripted replies.
	Server struct {
		srv      *httptest.Server
		upgrader *gorilla.Upgrader

		mu       sync.Mutex
		conns    []*serverConn
		answers  map[message.Event]AnswerFunc
		after    map[message.Event]func()
		received []message.Message
		taken    []bool
		lastID   int
		replies  map[int]chan message.Message
		changed  chan struct{}
	}

	// AnswerFunc creates the reply arguments to a client request.  No reply is sent if it returns nil.
	AnswerFunc func(m message.Message) []interface{}

	serverConn struct {
		*gorilla.Conn
		writeMu sync.Mutex
	}
)

// NewServer starts a server.  It should be closed when it is no longer used.
func NewServer() *Server {
	s := Server{
		upgrader: gorilla.NewUpgrader(),
		answers:  make(map[message.Event]AnswerFunc),
		after:    make(map[message.Event]func()),
		replies:  make(map[int]chan message.Message),
		changed:  make(chan struct{}),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serveWebsocket))
	return &s
}

// URL is the websocket address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// Close stops the server and closes its connections.
func (s *Server) Close() {
	s.mu.Lock()
	conns := s.conns
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
	s.srv.Close()
}

// Answer sets how requests for the event are replied to.
func (s *Server) Answer(event message.Event, f AnswerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[event] = f
}

// AnswerWith replies to every request for the event with the arguments.
func (s *Server) AnswerWith(event message.Event, args ...interface{}) {
	s.Answer(event, func(m message.Message) []interface{} {
		return args
	})
}

// After sets a function to call after replying to requests for the event.
// Messages it sends are written after the reply.
func (s *Server) After(event message.Event, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.after[event] = f
}

// Say sends an event to the most recent connection.
func (s *Server) Say(event message.Event, args ...interface{}) error {
	m, err := message.New(event, args...)
	if err != nil {
		return err
	}
	c, err := s.lastConn()
	if err != nil {
		return err
	}
	return c.write(*m)
}

// SayRaw sends an event with arguments that are already encoded to the most recent connection.
func (s *Server) SayRaw(event message.Event, rawArgs ...string) error {
	m := message.Message{Event: event}
	for _, a := range rawArgs {
		m.Args = append(m.Args, []byte(a))
	}
	c, err := s.lastConn()
	if err != nil {
		return err
	}
	return c.write(m)
}

// SayFrame sends the text as a frame to the most recent connection.  It does not need to be a message.
func (s *Server) SayFrame(text string) error {
	c, err := s.lastConn()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.Conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Drop closes the most recent connection without a close message, as if the network failed.
func (s *Server) Drop() error {
	c, err := s.lastConn()
	if err != nil {
		return err
	}
	return c.Close()
}

// Ask sends a request to the most recent connection and waits for the reply.
func (s *Server) Ask(ctx context.Context, event message.Event, args ...interface{}) (*message.Message, error) {
	m, err := message.New(event, args...)
	if err != nil {
		return nil, err
	}
	c, err := s.lastConn()
	if err != nil {
		return nil, err
	}
	replies := make(chan message.Message, 1)
	s.mu.Lock()
	s.lastID++
	m.ID = s.lastID
	s.replies[m.ID] = replies
	s.mu.Unlock()
	if err := c.write(*m); err != nil {
		return nil, err
	}
	select {
	case r := <-replies:
		return &r, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for reply to %v: %w", event, ctx.Err())
	}
}

// Connections is the number of connections that have been opened.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// WaitConnections waits until the number of connections that have been opened is at least n.
func (s *Server) WaitConnections(ctx context.Context, n int) error {
	for {
		s.mu.Lock()
		count, changed := len(s.conns), s.changed
		s.mu.Unlock()
		if count >= n {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("waiting for %v connections, have %v: %w", n, count, ctx.Err())
		}
	}
}

// Next waits for the oldest message received for the event that has not been returned yet.
func (s *Server) Next(ctx context.Context, event message.Event) (*message.Message, error) {
	for {
		s.mu.Lock()
		for i, m := range s.received {
			if !s.taken[i] && m.Event == event {
				s.taken[i] = true
				s.mu.Unlock()
				return &m, nil
			}
		}
		changed := s.changed
		s.mu.Unlock()
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %v message: %w", event, ctx.Err())
		}
	}
}

// Received is a copy of every message clients have sent that is not a reply.
func (s *Server) Received() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	received := make([]message.Message, len(s.received))
	copy(received, s.received)
	return received
}

// Count is the number of messages received for the event.
func (s *Server) Count(event message.Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.received {
		if m.Event == event {
			n++
		}
	}
	return n
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		return
	}
	c := serverConn{Conn: conn}
	s.mu.Lock()
	s.conns = append(s.conns, &c)
	s.notify()
	s.mu.Unlock()
	defer c.Close()
	for {
		var m message.Message
		if err := c.ReadMessage(&m); err != nil {
			if errors.Is(err, socket.ErrProtocol) {
				continue
			}
			return
		}
		s.handle(&c, m)
	}
}

func (s *Server) handle(c *serverConn, m message.Message) {
	s.mu.Lock()
	if m.IsAck() {
		replies, ok := s.replies[m.Ack]
		delete(s.replies, m.Ack)
		s.mu.Unlock()
		if ok {
			replies <- m
		}
		return
	}
	s.received = append(s.received, m)
	s.taken = append(s.taken, false)
	s.notify()
	f, ok := s.answers[m.Event]
	after := s.after[m.Event]
	s.mu.Unlock()
	if m.ID == 0 || !ok {
		return
	}
	args := f(m)
	if args == nil {
		return
	}
	r, err := m.Reply(args...)
	if err != nil {
		r = m.ReplyError(err)
	}
	c.write(*r)
	if after != nil {
		after()
	}
}

// notify wakes goroutines waiting for a change.  The lock must be held.
func (s *Server) notify() {
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Server) lastConn() (*serverConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		return nil, fmt.Errorf("no connections")
	}
	return s.conns[len(s.conns)-1], nil
}

func (c *serverConn) write(m message.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.WriteMessage(m)
}
