package score

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

type (
	// Dao archives results in a backend.
	Dao struct {
		backend   Backend
		timeFunc  func() time.Time
		newIDFunc func() uuid.UUID
	}

	// DaoConfig contains the dependencies of a Dao.
	DaoConfig struct {
		// Backend stores the results.
		Backend Backend
		// TimeFunc is used to stamp when games finish.
		TimeFunc func() time.Time
		// NewIDFunc creates the ids of results.
		NewIDFunc func() uuid.UUID
	}

	// Backend is the storage for results and the totals of players.
	Backend interface {
		// Setup prepares the backend, such as creating tables or indexes.
		Setup(ctx context.Context) error
		// Create stores the result and adds the scores to the totals of each player in it.
		Create(ctx context.Context, r Result) error
		// Read gets the total of the player, or ErrNotFound.
		Read(ctx context.Context, playerName string) (*Total, error)
	}
)

// NewDao creates a Dao on the backend.
func (cfg DaoConfig) NewDao() (*Dao, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating score dao: validation: %w", err)
	}
	d := Dao{
		backend:   cfg.Backend,
		timeFunc:  cfg.TimeFunc,
		newIDFunc: cfg.NewIDFunc,
	}
	return &d, nil
}

// validate checks fields to set up the dao.
func (cfg DaoConfig) validate() error {
	switch {
	case cfg.Backend == nil:
		return fmt.Errorf("backend required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.NewIDFunc == nil:
		return fmt.Errorf("new id func required")
	}
	return nil
}

// Setup initializes the backend.
func (d Dao) Setup(ctx context.Context) error {
	if err := d.backend.Setup(ctx); err != nil {
		return fmt.Errorf("setting up score dao: %w", err)
	}
	return nil
}

// Record archives the final scores of a game the player was in.
func (d Dao) Record(ctx context.Context, gameCode, playerName string, sb game.Scoreboard) error {
	r := Result{
		ID:         d.newIDFunc(),
		GameCode:   gameCode,
		PlayerName: playerName,
		Scores:     sb.Copy(),
		FinishedAt: d.timeFunc().UTC(),
	}
	if err := r.validate(); err != nil {
		return fmt.Errorf("recording scores: %w", err)
	}
	if err := d.backend.Create(ctx, r); err != nil {
		return fmt.Errorf("recording scores: %w", err)
	}
	return nil
}

// Read gets the total of the player's archived games.
func (d Dao) Read(ctx context.Context, playerName string) (*Total, error) {
	if len(playerName) == 0 {
		return nil, fmt.Errorf("reading score total: player name required")
	}
	t, err := d.backend.Read(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("reading score total: %w", err)
	}
	return t, nil
}
