// Package session contains the state of a player's membership in a game.
// The functions do not synchronize access, the owner of a Session must.
package session

import (
	"errors"
	"fmt"

	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

type (
	// Session is the membership of the player in a single game.
	Session struct {
		// PlayerName is the name of the player using the client.
		PlayerName string
		// GameCode identifies the game on the server.
		GameCode string
		// IsCreator is true when the player created the game.
		IsCreator bool
		// OtherPlayers are the names of the other players in the game, without duplicates.
		OtherPlayers []string
		// Round is the state of the game after it starts.
		Round *RoundState
	}

	// RoundState tracks scores and rounds after a game starts.
	RoundState struct {
		// Phase is where the game is in its lifecycle.
		Phase Phase
		// OurScore is the score of the player.
		OurScore int
		// CurrentRound is the index of the round the server says is being played.  It is -1 before the first round.
		CurrentRound int
		// OtherPlayersScores are the most recent scores of the other players.
		OtherPlayersScores map[string]int
		// Opponents are the other players, ordered from highest to lowest score.
		Opponents []game.PlayerScore
		// TimeLeft is the most recent number of seconds the server said are left in the round.  It is -1 until the server says.
		TimeLeft int
	}

	// Phase is the part of the game being played.
	Phase int
)

const (
	// LobbyActive is the phase when the game has started but the first round has not.
	LobbyActive Phase = iota
	// RoundInProgress is the phase when players can answer.
	RoundInProgress
	// RoundResolved is the phase between rounds.
	RoundResolved
	// GameResolved is the phase after the game has ended.
	GameResolved
)

var (
	// ErrIllegalTransition is returned when the game cannot move to a phase from the phase it is in.
	ErrIllegalTransition = errors.New("illegal phase transition")
	// ErrNoRound is returned when changing a round before the game has started.
	ErrNoRound = errors.New("game not started")
)

// String returns the display value for the phase.
func (p Phase) String() string {
	switch p {
	case LobbyActive:
		return "lobby"
	case RoundInProgress:
		return "round in progress"
	case RoundResolved:
		return "round over"
	case GameResolved:
		return "game over"
	}
	return "?"
}

// New creates a session for a player in a game.  The player has no other players until they are added.
func New(playerName, gameCode string, isCreator bool) (*Session, error) {
	switch {
	case len(playerName) == 0:
		return nil, fmt.Errorf("player name required")
	case len(gameCode) == 0:
		return nil, fmt.Errorf("game code required")
	}
	s := Session{
		PlayerName:   playerName,
		GameCode:     gameCode,
		IsCreator:    isCreator,
		OtherPlayers: []string{},
	}
	return &s, nil
}

// AddPlayer adds the name to the other players.
// False is returned if the name is the player's own name or is already an other player.
func (s *Session) AddPlayer(name string) bool {
	if name == s.PlayerName || s.hasPlayer(name) {
		return false
	}
	s.OtherPlayers = append(s.OtherPlayers, name)
	return true
}

// RemovePlayer removes every occurrence of the name from the other players.
// False is returned if the name was not an other player.
func (s *Session) RemovePlayer(name string) bool {
	players := make([]string, 0, len(s.OtherPlayers))
	for _, p := range s.OtherPlayers {
		if p != name {
			players = append(players, p)
		}
	}
	removed := len(players) != len(s.OtherPlayers)
	s.OtherPlayers = players
	return removed
}

// SetRoster replaces the other players with the names, excluding the player's own name and duplicates.
func (s *Session) SetRoster(names []string) {
	s.OtherPlayers = []string{}
	for _, name := range names {
		s.AddPlayer(name)
	}
}

// ClearRoster removes all other players.
func (s *Session) ClearRoster() {
	s.OtherPlayers = []string{}
}

// Players returns the other players followed by the player.
func (s Session) Players() []string {
	players := make([]string, 0, len(s.OtherPlayers)+1)
	players = append(players, s.OtherPlayers...)
	players = append(players, s.PlayerName)
	return players
}

// Copy creates a session that shares no memory with the original.
func (s Session) Copy() Session {
	s2 := s
	s2.OtherPlayers = append([]string{}, s.OtherPlayers...)
	if s.Round != nil {
		r := *s.Round
		r.OtherPlayersScores = make(map[string]int, len(s.Round.OtherPlayersScores))
		for name, score := range s.Round.OtherPlayersScores {
			r.OtherPlayersScores[name] = score
		}
		r.Opponents = append([]game.PlayerScore{}, s.Round.Opponents...)
		s2.Round = &r
	}
	return s2
}

func (s Session) hasPlayer(name string) bool {
	for _, p := range s.OtherPlayers {
		if p == name {
			return true
		}
	}
	return false
}
