package session

import (
	"fmt"

	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

// StartGame creates the round state, with a score of zero for every player in the game.
func (s *Session) StartGame() error {
	if s.Round != nil {
		return fmt.Errorf("starting game in %v phase: %w", s.Round.Phase, ErrIllegalTransition)
	}
	r := RoundState{
		Phase:              LobbyActive,
		CurrentRound:       -1,
		OtherPlayersScores: make(map[string]int, len(s.OtherPlayers)),
		Opponents:          make([]game.PlayerScore, 0, len(s.OtherPlayers)),
		TimeLeft:           -1,
	}
	for _, name := range s.OtherPlayers {
		r.OtherPlayersScores[name] = 0
	}
	r.Opponents = game.Scoreboard(r.OtherPlayersScores).Ranked(s.PlayerName)
	s.Round = &r
	return nil
}

// StartRound moves the game into a round.  The time left is unknown until the server says it.
func (s *Session) StartRound() error {
	if err := s.transition(RoundInProgress, LobbyActive, RoundResolved); err != nil {
		return err
	}
	s.Round.TimeLeft = -1
	return nil
}

// SetTimeLeft records the seconds left in the round.
// Increased is true if the time is more than the server previously said, which it should not be.
func (s *Session) SetTimeLeft(seconds int) (increased bool, err error) {
	if err := s.check("updating time left", RoundInProgress); err != nil {
		return false, err
	}
	r := s.Round
	increased = r.TimeLeft >= 0 && seconds > r.TimeLeft
	r.TimeLeft = seconds
	return increased, nil
}

// EndRound records the scores of a round.  Found is false if the player is not on the scoreboard.
func (s *Session) EndRound(sb game.Scoreboard) (found bool, err error) {
	if err := s.transition(RoundResolved, RoundInProgress); err != nil {
		return false, err
	}
	return s.setScores(sb), nil
}

// EndGame records the final scores.  Found is false if the player is not on the scoreboard.
func (s *Session) EndGame(sb game.Scoreboard) (found bool, err error) {
	if err := s.transition(GameResolved, RoundInProgress, RoundResolved); err != nil {
		return false, err
	}
	return s.setScores(sb), nil
}

// SyncRound sets the index of the round being played.  It does not change the phase.
func (s *Session) SyncRound(index int) error {
	switch {
	case s.Round == nil:
		return fmt.Errorf("syncing round: %w", ErrNoRound)
	case index < 0:
		return fmt.Errorf("syncing round: invalid index %v", index)
	}
	s.Round.CurrentRound = index
	return nil
}

// setScores records the scoreboard.  The score of the player is only changed if it is on the scoreboard.
func (s *Session) setScores(sb game.Scoreboard) bool {
	r := s.Round
	ourScore, found := sb[s.PlayerName]
	if found {
		r.OurScore = ourScore
	}
	r.OtherPlayersScores = make(map[string]int, len(sb))
	for name, score := range sb {
		if name != s.PlayerName {
			r.OtherPlayersScores[name] = score
		}
	}
	r.Opponents = sb.Ranked(s.PlayerName)
	return found
}

// transition moves the round to the phase if it is in one of the allowed phases.
func (s *Session) transition(to Phase, from ...Phase) error {
	if err := s.check(fmt.Sprintf("moving to %v phase", to), from...); err != nil {
		return err
	}
	s.Round.Phase = to
	return nil
}

func (s *Session) check(action string, allowed ...Phase) error {
	if s.Round == nil {
		return fmt.Errorf("%v: %w", action, ErrNoRound)
	}
	for _, p := range allowed {
		if s.Round.Phase == p {
			return nil
		}
	}
	return fmt.Errorf("%v from %v phase: %w", action, s.Round.Phase, ErrIllegalTransition)
}
