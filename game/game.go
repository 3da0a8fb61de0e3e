// Package game contains the values the session client and the game server exchange about a game.
package game

import (
	"fmt"
	"sort"
)

type (
	// Config is the negotiated configuration of games on a server.
	Config struct {
		// Rounds is the number of rounds in each game.
		Rounds int `json:"rounds"`
		// RoundLength is the number of seconds players have to answer in each round.
		RoundLength int `json:"roundLength"`
	}

	// Scoreboard maps player names to their scores, including the name of the player that receives it.
	Scoreboard map[string]int

	// PlayerScore is the score of a single player.
	PlayerScore struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
)

// String describes the configuration.
func (cfg Config) String() string {
	return fmt.Sprintf("%d rounds of %d seconds", cfg.Rounds, cfg.RoundLength)
}

// Ranked creates the scores of the players ordered from highest to lowest score.
// Players with the same score are ordered by name.  The excluded name is not included.
func (s Scoreboard) Ranked(exclude string) []PlayerScore {
	scores := make([]PlayerScore, 0, len(s))
	for name, score := range s {
		if name == exclude {
			continue
		}
		scores = append(scores, PlayerScore{Name: name, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Name < scores[j].Name
	})
	return scores
}

// Copy creates a new scoreboard with the same scores.
func (s Scoreboard) Copy() Scoreboard {
	if s == nil {
		return nil
	}
	s2 := make(Scoreboard, len(s))
	for name, score := range s {
		s2[name] = score
	}
	return s2
}
