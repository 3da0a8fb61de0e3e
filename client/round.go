package client

import (
	"context"
	"fmt"

	"github.com/jacobpatterson1549/who-took-that-photo/client/event"
	"github.com/jacobpatterson1549/who-took-that-photo/client/session"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
	"github.com/jacobpatterson1549/who-took-that-photo/game/message"
)

// SendAnswer tells the server which player the player thinks submitted the image of the round.
// The server does not reply.
func (c *Client) SendAnswer(playerName string) error {
	c.mu.Lock()
	s := c.activeSession()
	c.mu.Unlock()
	if s == nil {
		return fmt.Errorf("sending answer: %w", ErrNoSession)
	}
	if err := c.socket.Emit(message.SayChooseAnswer, s.GameCode, playerName); err != nil {
		return fmt.Errorf("sending answer: %w", err)
	}
	return nil
}

func (c *Client) roundStart(s *session.Session, m message.Message) []event.Event {
	var rs game.RoundStart
	if err := m.Arg(0, &rs); err != nil {
		c.log.Printf("ignoring round start: %v", err)
		return nil
	}
	if err := s.StartRound(); err != nil {
		c.log.Printf("ignoring round start: %v", err)
		return nil
	}
	e := event.Event{
		Name:    event.RoundStart,
		Image:   rs.Image,
		Choices: rs.Options,
	}
	return []event.Event{e}
}

func (c *Client) timeLeftInRound(s *session.Session, m message.Message) []event.Event {
	var seconds int
	if err := m.Arg(0, &seconds); err != nil {
		c.log.Printf("ignoring time left in round: %v", err)
		return nil
	}
	increased, err := s.SetTimeLeft(seconds)
	if err != nil {
		c.log.Printf("ignoring time left in round: %v", err)
		return nil
	}
	if increased {
		c.log.Printf("time left in round increased to %v seconds in game %v", seconds, s.GameCode)
	}
	return []event.Event{{Name: event.TimeLeftInRound, Seconds: seconds}}
}

func (c *Client) roundOver(s *session.Session, m message.Message) []event.Event {
	var sb game.Scoreboard
	if err := m.Arg(0, &sb); err != nil {
		c.log.Printf("ignoring round over: %v", err)
		return nil
	}
	found, err := s.EndRound(sb)
	if err != nil {
		c.log.Printf("ignoring round over: %v", err)
		return nil
	}
	c.checkScoreFound(s, found)
	return []event.Event{{Name: event.RoundOver, Scoreboard: sb}}
}

// gameEnded records the final scores and archives them on a separate goroutine.
func (c *Client) gameEnded(s *session.Session, m message.Message) []event.Event {
	var sb game.Scoreboard
	if err := m.Arg(0, &sb); err != nil {
		c.log.Printf("ignoring game ended: %v", err)
		return nil
	}
	found, err := s.EndGame(sb)
	if err != nil {
		c.log.Printf("ignoring game ended: %v", err)
		return nil
	}
	c.checkScoreFound(s, found)
	if c.recorder != nil {
		go c.record(s.GameCode, s.PlayerName, sb.Copy())
	}
	return []event.Event{{Name: event.GameOver, Scoreboard: sb}}
}

func (c *Client) syncRound(s *session.Session, m message.Message) []event.Event {
	var index int
	if err := m.Arg(0, &index); err != nil {
		c.log.Printf("ignoring round sync: %v", err)
		return nil
	}
	if err := s.SyncRound(index); err != nil {
		c.log.Printf("ignoring round sync: %v", err)
		return nil
	}
	return []event.Event{{Name: event.SyncRound, Round: index}}
}

func (c *Client) checkScoreFound(s *session.Session, found bool) {
	if !found {
		c.log.Printf("scoreboard for game %v does not have score for %q, keeping score of %v", s.GameCode, s.PlayerName, s.Round.OurScore)
	}
}

func (c *Client) record(gameCode, playerName string, sb game.Scoreboard) {
	ctx, cancel := c.withTimeout(context.Background())
	defer cancel()
	if err := c.recorder.Record(ctx, gameCode, playerName, sb); err != nil {
		c.log.Printf("archiving scores of game %v: %v", gameCode, err)
	}
}
