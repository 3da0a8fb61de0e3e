package socket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

type mockDialer func(ctx context.Context, url string) (Conn, error)

func (m mockDialer) Dial(ctx context.Context, url string) (Conn, error) {
	return m(ctx, url)
}

type mockConn struct {
	ReadMessageFunc      func(m *message.Message) error
	WriteMessageFunc     func(m message.Message) error
	SetWriteDeadlineFunc func(t time.Time) error
	WriteCloseFunc       func(reason string) error
	CloseFunc            func() error
	IsNormalCloseFunc    func(err error) bool
}

func (m *mockConn) ReadMessage(msg *message.Message) error {
	return m.ReadMessageFunc(msg)
}

func (m *mockConn) WriteMessage(msg message.Message) error {
	return m.WriteMessageFunc(msg)
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return m.SetWriteDeadlineFunc(t)
}

func (m *mockConn) WriteClose(reason string) error {
	return m.WriteCloseFunc(reason)
}

func (m *mockConn) Close() error {
	return m.CloseFunc()
}

func (m *mockConn) IsNormalClose(err error) bool {
	return m.IsNormalCloseFunc(err)
}

var errMockClosed = errors.New("mock connection closed")

// newChanConn creates a connection that reads the messages sent on the channel it returns until it is closed.
func newChanConn() (*mockConn, chan<- message.Message) {
	in := make(chan message.Message, 16)
	done := make(chan struct{})
	var closeOnce sync.Once
	c := mockConn{
		ReadMessageFunc: func(m *message.Message) error {
			select {
			case m2 := <-in:
				*m = m2
				return nil
			case <-done:
				return errMockClosed
			}
		},
		WriteMessageFunc: func(m message.Message) error {
			return nil
		},
		SetWriteDeadlineFunc: func(t time.Time) error {
			return nil
		},
		WriteCloseFunc: func(reason string) error {
			return nil
		},
		CloseFunc: func() error {
			closeOnce.Do(func() { close(done) })
			return nil
		},
		IsNormalCloseFunc: func(err error) bool {
			return errors.Is(err, errMockClosed)
		},
	}
	return &c, in
}
