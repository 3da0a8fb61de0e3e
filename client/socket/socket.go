// Package socket handles communication with the game server using a websocket connection.
package socket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
	"github.com/jacobpatterson1549/who-took-that-photo/log"
	"github.com/jacobpatterson1549/who-took-that-photo/queue"
	"github.com/jacobpatterson1549/who-took-that-photo/runner"
)

type (
	// Socket reads and writes messages to the game server.
	// Events are handled one at a time in the order they are read.
	// Replies to requests are routed as soon as they are read, so handlers can make requests.
	Socket struct {
		runner.Runner
		Config
		url    string
		ctx    context.Context
		cancel context.CancelFunc
		inbox  *queue.Queue[inbound]

		// dialMu is held while connecting so only one connection is opened at a time.
		dialMu sync.Mutex

		mu      sync.Mutex
		conn    Conn
		gen     int
		phase   Phase
		closed  bool
		lastID  int
		pending map[int]chan<- reply

		writeMu sync.Mutex

		handlersMu      sync.Mutex
		subscriptions   map[message.Event][]*Subscription
		requestHandlers map[message.Event]RequestHandler
		lostHandler     LostHandler
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the messages that are read and written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// Dialer opens connections to the server.
		Dialer Dialer
		// ConnectTimeout is the amount of time a connection can take to open.
		ConnectTimeout time.Duration
		// WriteWait is the amount of time that the socket can take to write a message.
		WriteWait time.Duration
	}

	// Dialer opens connections.
	Dialer interface {
		// Dial connects to the url.
		Dial(ctx context.Context, url string) (Conn, error)
	}

	// Conn is the connection that backs the socket.
	Conn interface {
		// ReadMessage reads the next message from the connection.
		// Errors wrapping ErrProtocol are for a single message that could not be decoded, the connection is still usable.
		ReadMessage(m *message.Message) error
		// WriteMessage writes the message to the connection.
		WriteMessage(m message.Message) error
		// SetWriteDeadline sets when writes to the connection time out.
		SetWriteDeadline(t time.Time) error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// Close closes the connection.
		Close() error
		// IsNormalClose determines if the error message is not an unexpected close error.
		IsNormalClose(err error) bool
	}

	// Handler is called with messages for an event.
	Handler func(m message.Message)

	// RequestHandler answers a request from the server.  The returned value is the reply argument.
	RequestHandler func(ctx context.Context, m message.Message) (interface{}, error)

	// LostHandler is called when the connection fails without the socket closing it.
	LostHandler func(err error)

	// inbound is a message that was read, along with the generation of the connection it was read from.
	// If lost is set, the connection failed after the messages before it were read.
	inbound struct {
		gen  int
		m    message.Message
		lost error
	}

	reply struct {
		m   message.Message
		err error
	}
)

var (
	// ErrDisconnected is returned when the socket is not connected or the connection is lost while waiting.
	ErrDisconnected = errors.New("socket disconnected")
	// ErrTimeout is returned when the server does not reply or connect in time.
	ErrTimeout = errors.New("timed out")
	// ErrProtocol is returned when the server sends something it should not.
	ErrProtocol = errors.New("protocol violation")
	// ErrClosed is returned when using a socket that has been closed.
	ErrClosed = errors.New("socket closed")
)

// NewSocket creates a socket for the server url.  It does not connect.
func (cfg Config) NewSocket(url string) (*Socket, error) {
	if err := cfg.validate(url); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := Socket{
		Config:          cfg,
		url:             url,
		ctx:             ctx,
		cancel:          cancel,
		inbox:           queue.New[inbound](),
		pending:         make(map[int]chan<- reply),
		subscriptions:   make(map[message.Event][]*Subscription),
		requestHandlers: make(map[message.Event]RequestHandler),
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(url string) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Dialer == nil:
		return fmt.Errorf("dialer required")
	case len(url) == 0:
		return fmt.Errorf("server url required")
	case cfg.ConnectTimeout <= 0:
		return fmt.Errorf("positive connect timeout required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	}
	return nil
}

// Connect opens the first connection to the server and starts handling messages.
// A socket can only be connected once.  A failed connection is not retried.
func (s *Socket) Connect(ctx context.Context) error {
	if err := s.Runner.Run(); err != nil {
		return fmt.Errorf("connecting socket: %w", err)
	}
	go s.dispatchMessages()
	s.dialMu.Lock()
	defer s.dialMu.Unlock()
	if err := s.dial(ctx); err != nil {
		s.Close()
		return err
	}
	return nil
}

// Reconnect closes the current connection and opens a new one.
// Requests waiting for replies fail and messages read from the old connection that are not yet handled are dropped.
// Reconnects happen one at a time.  A reconnect that waits for another replaces the connection the other opened.
func (s *Socket) Reconnect(ctx context.Context, reason string) error {
	if !s.Runner.IsRunning() {
		return fmt.Errorf("reconnecting socket: %w", ErrClosed)
	}
	s.dialMu.Lock()
	defer s.dialMu.Unlock()
	s.mu.Lock()
	old := s.conn
	s.dropConnection(Connecting)
	s.mu.Unlock()
	if old != nil {
		s.closeConn(old, reason)
	}
	return s.dial(ctx)
}

// Close closes the connection and stops handling messages.
func (s *Socket) Close() {
	s.mu.Lock()
	old := s.conn
	s.closed = true
	s.dropConnection(Disconnected)
	s.mu.Unlock()
	if old != nil {
		s.closeConn(old, "client closing")
	}
	s.cancel()
	s.inbox.Close()
	s.Runner.Finish()
}

// Phase is the state of the connection.
func (s *Socket) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Emit writes a message that does not expect a reply.
func (s *Socket) Emit(event message.Event, args ...interface{}) error {
	m, err := message.New(event, args...)
	if err != nil {
		return err
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	return s.write(gen, *m)
}

// Request writes a message and waits for the server to reply to it.
// The context should have a deadline.  When it is exceeded, ErrTimeout is returned.
func (s *Socket) Request(ctx context.Context, event message.Event, args ...interface{}) (*message.Message, error) {
	m, err := message.New(event, args...)
	if err != nil {
		return nil, err
	}
	replies := make(chan reply, 1)
	s.mu.Lock()
	if s.conn == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("requesting %v: %w", event, ErrDisconnected)
	}
	s.lastID++
	m.ID = s.lastID
	gen := s.gen
	s.pending[m.ID] = replies
	s.mu.Unlock()
	defer s.forget(gen, m.ID)
	if err := s.write(gen, *m); err != nil {
		return nil, err
	}
	select { // BLOCKING
	case r := <-replies:
		switch {
		case r.err != nil:
			return nil, fmt.Errorf("waiting for %v reply: %w", event, r.err)
		case len(r.m.Error) != 0:
			return nil, fmt.Errorf("%v request failed: %v", event, r.m.Error)
		}
		return &r.m, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("waiting for %v reply: %w", event, ErrTimeout)
		}
		return nil, fmt.Errorf("waiting for %v reply: %w", event, ctx.Err())
	}
}

// Handle sets the handler that answers server requests for the event.
func (s *Socket) Handle(event message.Event, h RequestHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.requestHandlers[event] = h
}

// HandleLost sets the handler that is called after the messages read from a failed connection are handled.
// It is not called for connections the socket closes itself.
func (s *Socket) HandleLost(h LostHandler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.lostHandler = h
}

// dial opens a connection and starts reading from it.  The dial lock must be held.
// The connection is discarded if the socket is closed or reconnected while it is being opened.
func (s *Socket) dial(ctx context.Context) error {
	s.mu.Lock()
	s.phase = Connecting
	gen := s.gen
	s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, s.ConnectTimeout)
	defer cancel()
	conn, err := s.Dialer.Dial(ctx, s.url) // BLOCKING
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.phase = Disconnected
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("connecting to %v: %w: %v", s.url, ErrTimeout, err)
		}
		return fmt.Errorf("connecting to %v: %w", s.url, err)
	}
	switch {
	case s.closed:
		go conn.Close()
		return fmt.Errorf("connecting to %v: %w", s.url, ErrClosed)
	case s.gen != gen, s.conn != nil:
		go conn.Close()
		return fmt.Errorf("connecting to %v: connection replaced while opening: %w", s.url, ErrDisconnected)
	}
	s.conn = conn
	s.phase = Connected
	go s.readMessages(s.gen, conn)
	return nil
}

// dropConnection forgets the current connection and fails requests waiting on it.  The lock must be held.
func (s *Socket) dropConnection(phase Phase) {
	s.conn = nil
	s.gen++
	s.phase = phase
	s.failPending()
}

// failPending tells every waiting request the connection is gone.  The lock must be held.
func (s *Socket) failPending() {
	for id, replies := range s.pending {
		replies <- reply{err: ErrDisconnected}
		delete(s.pending, id)
	}
}

func (s *Socket) forget(gen, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		delete(s.pending, id)
	}
}

func (s *Socket) closeConn(conn Conn, reason string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(s.WriteWait))
	if err := conn.WriteClose(reason); err != nil && s.Debug {
		s.Log.Printf("writing socket close: %v", err)
	}
	conn.Close()
}

// readMessages reads messages from the connection until it fails.
// Replies are routed directly to waiting requests.  Other messages are queued to be dispatched.
func (s *Socket) readMessages(gen int, conn Conn) {
	for { // BLOCKING
		var m message.Message
		if err := conn.ReadMessage(&m); err != nil {
			if errors.Is(err, ErrProtocol) {
				s.Log.Printf("ignoring server message: %v", err)
				continue
			}
			s.lostConnection(gen, conn, err)
			return
		}
		if s.Debug {
			s.Log.Printf("socket read message: %v", m)
		}
		switch {
		case m.IsAck():
			s.resolve(gen, m)
		case len(m.Event) == 0:
			s.Log.Printf("ignoring server message with no event: %v", ErrProtocol)
		default:
			if !s.inbox.Push(inbound{gen: gen, m: m}) {
				return
			}
		}
	}
}

// lostConnection handles a read failure.  Failures of connections that were already replaced are expected.
// The loss is queued behind the messages already read so it is handled after them.
func (s *Socket) lostConnection(gen int, conn Conn, err error) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	if !conn.IsNormalClose(err) {
		s.Log.Printf("reading socket messages stopped: %v", err)
	}
	s.conn = nil
	s.phase = Disconnected
	s.failPending()
	s.mu.Unlock()
	go conn.Close()
	s.inbox.Push(inbound{gen: gen, lost: err})
}

// resolve passes the reply to the request waiting for it.
func (s *Socket) resolve(gen int, m message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replies, ok := s.pending[m.Ack]
	if !ok || s.gen != gen {
		s.Log.Printf("ignoring reply to unknown request: %v", m)
		return
	}
	delete(s.pending, m.Ack)
	replies <- reply{m: m}
}

// write sends the message on the connection of the generation.
func (s *Socket) write(gen int, m message.Message) error {
	s.mu.Lock()
	conn := s.conn
	current := s.gen == gen
	s.mu.Unlock()
	if conn == nil || !current {
		return fmt.Errorf("writing %v: %w", m, ErrDisconnected)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.Debug {
		s.Log.Printf("socket writing message: %v", m)
	}
	if err := conn.SetWriteDeadline(time.Now().Add(s.WriteWait)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := conn.WriteMessage(m); err != nil {
		return fmt.Errorf("writing socket message: %w", err)
	}
	return nil
}

// isCurrent determines if the generation is of the current connection.
func (s *Socket) isCurrent(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}
