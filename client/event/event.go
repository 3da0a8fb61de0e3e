// Package event contains the notifications the session client publishes for views.
package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jacobpatterson1549/who-took-that-photo/game"
	"github.com/jacobpatterson1549/who-took-that-photo/queue"
)

type (
	// Name identifies the kind of an event.
	Name string

	// Event is something that happened to the session that a view might show.
	// Only the fields relating to the name are set.
	Event struct {
		// Name is the kind of the event.
		Name Name
		// Player is the name of the player that joined or left.
		Player string
		// Reason is why the player was removed from the game or why the connection was lost.
		Reason string
		// Image is the image of the round.
		Image string
		// Choices are the names of the players that might have submitted the image.
		Choices []string
		// Scoreboard is the score of each player.
		Scoreboard game.Scoreboard
		// Seconds is the time left in the round.
		Seconds int
		// Round is the index of the current round.
		Round int
	}

	// Handler is called with events.
	Handler func(e Event)

	// Bus delivers events to subscribers in the order they are emitted.
	Bus struct {
		mu       sync.Mutex
		handlers []*Subscription
	}

	// Subscription is a handler on a bus.
	Subscription struct {
		bus     *Bus
		name    Name
		all     bool
		h       Handler
		removed atomic.Bool
	}
)

const (
	// PlayerJoined is published when another player joins the game.
	PlayerJoined Name = "lobby:playerJoined"
	// PlayerLeft is published when another player leaves the game.
	PlayerLeft Name = "lobby:playerLeft"
	// Kicked is published when the player is removed from the game by the server.
	Kicked Name = "lobby:kicked"
	// StartGame is published when the game starts.
	StartGame Name = "lobby:startGame"
	// RoundStart is published when a round starts.
	RoundStart Name = "game:roundStart"
	// RoundOver is published with the scores when a round ends.
	RoundOver Name = "game:roundOver"
	// GameOver is published with the final scores.
	GameOver Name = "game:gameOver"
	// TimeLeftInRound is published when the server says how much time is left.
	TimeLeftInRound Name = "game:timeLeftInRound"
	// SyncRound is published when the server says which round is being played.
	SyncRound Name = "game:syncRound"
	// ConnectionLost is published when the connection to the server fails.
	// The player is no longer in a game, leaving the game reconnects.
	ConnectionLost Name = "connection:lost"
)

// String describes the event.
func (e Event) String() string {
	switch e.Name {
	case PlayerJoined:
		return fmt.Sprintf("%v joined", e.Player)
	case PlayerLeft:
		return fmt.Sprintf("%v left", e.Player)
	case Kicked:
		return fmt.Sprintf("removed from game: %v", e.Reason)
	case StartGame:
		return "game started"
	case RoundStart:
		return fmt.Sprintf("round started, who took the photo: %v", e.Choices)
	case RoundOver:
		return fmt.Sprintf("round over: %v", e.Scoreboard.Ranked(""))
	case GameOver:
		return fmt.Sprintf("game over: %v", e.Scoreboard.Ranked(""))
	case TimeLeftInRound:
		return fmt.Sprintf("%v seconds left", e.Seconds)
	case SyncRound:
		return fmt.Sprintf("round %v", e.Round+1)
	case ConnectionLost:
		return fmt.Sprintf("connection to server lost: %v", e.Reason)
	}
	return string(e.Name)
}

// NewBus creates a bus with no subscribers.
func NewBus() *Bus {
	return new(Bus)
}

// Subscribe calls the handler for each event with the name until the subscription is removed.
func (b *Bus) Subscribe(name Name, h Handler) *Subscription {
	return b.add(&Subscription{name: name, h: h})
}

// SubscribeAll calls the handler for every event until the subscription is removed.
func (b *Bus) SubscribeAll(h Handler) *Subscription {
	return b.add(&Subscription{all: true, h: h})
}

func (b *Bus) add(sub *Subscription) *Subscription {
	sub.bus = b
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, sub)
	return sub
}

// Emit calls the handlers for the event on the calling goroutine, in the order they subscribed.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	handlers := b.handlers
	b.mu.Unlock()
	for _, sub := range handlers {
		if sub.removed.Load() || !(sub.all || sub.name == e.Name) {
			continue
		}
		sub.h(e)
	}
}

// Listen sends every event emitted on the returned channel until the context is done.
// Events are buffered without limit, so a slow reader never blocks the emitter.
// The channel is closed when the context is done.
func (b *Bus) Listen(ctx context.Context) <-chan Event {
	q := queue.New[Event]()
	sub := b.SubscribeAll(func(e Event) {
		q.Push(e)
	})
	events := make(chan Event)
	go func() {
		defer close(events)
		defer q.Close()
		defer sub.Remove()
		for {
			e, ok := q.Pop(ctx)
			if !ok {
				return
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}

// Remove stops the handler from being called.
func (sub *Subscription) Remove() {
	if sub.removed.Swap(true) {
		return
	}
	b := sub.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	handlers := make([]*Subscription, 0, len(b.handlers))
	for _, sub2 := range b.handlers {
		if sub2 != sub {
			handlers = append(handlers, sub2)
		}
	}
	b.handlers = handlers
}
