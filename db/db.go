// Package db stores the scores of finished games so they can be read after the client restarts.
package db

import (
	"context"
	"fmt"
	"time"
)

// Config contains common properties of databases.
type Config struct {
	// QueryPeriod is the amount of time that any database action can take before it should timeout.
	QueryPeriod time.Duration
}

// Validate ensures the query period is positive.
func (cfg Config) Validate() error {
	if cfg.QueryPeriod <= 0 {
		return fmt.Errorf("positive query period required")
	}
	return nil
}

// WithTimeout creates a context that times out after the query period.
func (cfg Config) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, cfg.QueryPeriod)
}
