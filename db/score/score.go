// Package score archives the final scores of games.
package score

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

type (
	// Result is the final scoreboard of a game, as seen by one player.
	Result struct {
		// ID identifies the result.  Game codes are reused by the server, so they cannot.
		ID         uuid.UUID
		GameCode   string
		PlayerName string
		Scores     game.Scoreboard
		FinishedAt time.Time
	}

	// Total is the sum of the points a player has scored in archived games.
	Total struct {
		PlayerName string
		Points     int
		Games      int
	}
)

// ErrNotFound is returned when reading the total of a player with no archived games.
var ErrNotFound = errors.New("no games archived for player")

// Points is the score of the player that recorded the result.
// Every player in a game records their own result, so totals only add these points.
func (r Result) Points() int {
	return r.Scores[r.PlayerName]
}

// validate checks that the result can be archived.
func (r Result) validate() error {
	switch {
	case r.ID == uuid.Nil:
		return fmt.Errorf("id required")
	case len(r.GameCode) == 0:
		return fmt.Errorf("game code required")
	case len(r.PlayerName) == 0:
		return fmt.Errorf("player name required")
	case len(r.Scores) == 0:
		return fmt.Errorf("scores required")
	}
	for name := range r.Scores {
		if len(name) == 0 {
			return fmt.Errorf("scores have a player without a name")
		}
	}
	return nil
}
