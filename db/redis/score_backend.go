// Package redis archives scores in a redis server.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/db"
	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "wttp:"
	pointsKey = keyPrefix + "points"
	gamesKey  = keyPrefix + "games"
)

type (
	// ScoreBackend stores the points of players in a sorted set and the games they played in a hash.
	// Results are stored as json strings.
	ScoreBackend struct {
		rdb redis.Cmdable
		db.Config
	}

	resultValue struct {
		GameCode   string         `json:"gameCode"`
		PlayerName string         `json:"playerName"`
		Scores     map[string]int `json:"scores"`
		FinishedAt string         `json:"finishedAt"`
	}
)

// NewScoreBackend creates a backend on the server at the url, such as redis://localhost:6379/0.
func NewScoreBackend(cfg db.Config, databaseURL string) (*ScoreBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating redis score backend: validation: %w", err)
	}
	opts, err := redis.ParseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	sb := ScoreBackend{
		rdb:    redis.NewClient(opts),
		Config: cfg,
	}
	return &sb, nil
}

// Setup checks that the server can be reached.
func (sb *ScoreBackend) Setup(ctx context.Context) error {
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	if err := sb.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}
	return nil
}

// Create stores the result and increments the total of the player that recorded it in a transaction.
func (sb *ScoreBackend) Create(ctx context.Context, r score.Result) error {
	value, err := encodeResult(r)
	if err != nil {
		return fmt.Errorf("creating result: %w", err)
	}
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	if _, err := sb.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SetNX(ctx, resultKey(r), value, 0)
		p.ZIncrBy(ctx, pointsKey, float64(r.Points()), r.PlayerName)
		p.HIncrBy(ctx, gamesKey, r.PlayerName, 1)
		return nil
	}); err != nil {
		return fmt.Errorf("creating result: %w", err)
	}
	return nil
}

// Read gets the total of the player.
func (sb *ScoreBackend) Read(ctx context.Context, playerName string) (*score.Total, error) {
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	points, err := sb.rdb.ZScore(ctx, pointsKey, playerName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, score.ErrNotFound
		}
		return nil, fmt.Errorf("reading points: %w", err)
	}
	games, err := sb.rdb.HGet(ctx, gamesKey, playerName).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("reading games: %w", err)
	}
	t := score.Total{
		PlayerName: playerName,
		Points:     int(points),
		Games:      games,
	}
	return &t, nil
}

// Close closes the connections to the server.
func (sb *ScoreBackend) Close() error {
	if c, ok := sb.rdb.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}

func resultKey(r score.Result) string {
	return keyPrefix + "result:" + r.ID.String()
}

func encodeResult(r score.Result) (string, error) {
	v := resultValue{
		GameCode:   r.GameCode,
		PlayerName: r.PlayerName,
		Scores:     r.Scores,
		FinishedAt: r.FinishedAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(b), nil
}
