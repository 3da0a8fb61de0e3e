package socket

import (
	"fmt"
	"sync/atomic"

	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

type (
	// Phase is the state of the connection to the server.
	Phase int

	// Subscription is a handler attached to an event.  It is called until it is removed.
	Subscription struct {
		s       *Socket
		event   message.Event
		h       Handler
		once    bool
		removed atomic.Bool
	}
)

const (
	// Disconnected is the phase when there is no connection.
	Disconnected Phase = iota
	// Connecting is the phase while a connection is being opened.
	Connecting
	// Connected is the phase when messages can be sent.
	Connected
)

// String returns the display value for the phase.
func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "?"
}

// On calls the handler for every message of the event until the subscription is removed.
// Handlers for the same event are called in the order they were added.
func (s *Socket) On(event message.Event, h Handler) *Subscription {
	return s.subscribe(event, h, false)
}

// Once calls the handler for the next message of the event.
func (s *Socket) Once(event message.Event, h Handler) *Subscription {
	return s.subscribe(event, h, true)
}

func (s *Socket) subscribe(event message.Event, h Handler, once bool) *Subscription {
	sub := Subscription{
		s:     s,
		event: event,
		h:     h,
		once:  once,
	}
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	s.subscriptions[event] = append(s.subscriptions[event], &sub)
	return &sub
}

// Remove stops the handler from being called.  It is safe to call from a handler and to call more than once.
// A handler that is removed while messages are being dispatched is not called again.
func (sub *Subscription) Remove() {
	if sub.removed.Swap(true) {
		return
	}
	sub.detach()
}

// detach removes the subscription from the handlers of its event.
func (sub *Subscription) detach() {
	s := sub.s
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	subs := s.subscriptions[sub.event]
	for i, sub2 := range subs {
		if sub2 == sub {
			subs2 := make([]*Subscription, 0, len(subs)-1)
			subs2 = append(subs2, subs[:i]...)
			subs2 = append(subs2, subs[i+1:]...)
			s.subscriptions[sub.event] = subs2
			break
		}
	}
	if len(s.subscriptions[sub.event]) == 0 {
		delete(s.subscriptions, sub.event)
	}
}

// Removed determines if the subscription has been removed or has been called once.
func (sub *Subscription) Removed() bool {
	return sub.removed.Load()
}

// Event is the event the subscription handles.
func (sub *Subscription) Event() message.Event {
	return sub.event
}

// dispatchMessages handles queued messages in order until the socket is closed.
func (s *Socket) dispatchMessages() {
	for {
		in, ok := s.inbox.Pop(s.ctx) // BLOCKING
		if !ok {
			return
		}
		if !s.isCurrent(in.gen) {
			if s.Debug {
				s.Log.Printf("dropping message from old connection: %v", in.m)
			}
			continue
		}
		s.dispatch(in)
	}
}

// dispatch calls the subscriptions for an event or starts answering a request.
func (s *Socket) dispatch(in inbound) {
	if in.lost != nil {
		s.handleLost(in.lost)
		return
	}
	m := in.m
	if m.ID > 0 {
		s.handleRequest(in)
		return
	}
	s.handlersMu.Lock()
	subs := s.subscriptions[m.Event]
	s.handlersMu.Unlock()
	if len(subs) == 0 && s.Debug {
		s.Log.Printf("no handlers for message: %v", m)
	}
	for _, sub := range subs {
		switch {
		case sub.once:
			if sub.removed.Swap(true) {
				continue
			}
			sub.detach()
		case sub.removed.Load():
			continue
		}
		sub.h(m)
	}
}

// handleRequest answers a server request on a separate goroutine so other messages can be handled while it is answered.
// The reply is only written to the connection the request was read from.
func (s *Socket) handleRequest(in inbound) {
	m := in.m
	s.handlersMu.Lock()
	h, ok := s.requestHandlers[m.Event]
	s.handlersMu.Unlock()
	if !ok {
		s.Log.Printf("no handler for server request: %v", m)
		go s.writeReply(in.gen, m.ReplyError(fmt.Errorf("unsupported request: %v", m.Event)))
		return
	}
	go func() {
		v, err := h(s.ctx, m)
		if err != nil {
			s.Log.Printf("answering %v: %v", m, err)
			s.writeReply(in.gen, m.ReplyError(err))
			return
		}
		r, err := m.Reply(v)
		if err != nil {
			s.Log.Printf("answering %v: %v", m, err)
			r = m.ReplyError(err)
		}
		s.writeReply(in.gen, r)
	}()
}

func (s *Socket) writeReply(gen int, r *message.Message) {
	if err := s.write(gen, *r); err != nil {
		s.Log.Printf("writing reply: %v", err)
	}
}

func (s *Socket) handleLost(err error) {
	s.handlersMu.Lock()
	h := s.lostHandler
	s.handlersMu.Unlock()
	if h != nil {
		h(err)
	}
}
