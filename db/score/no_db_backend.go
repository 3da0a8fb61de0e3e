package score

import (
	"context"
	"fmt"
)

// NoDatabaseBackend discards results.  It is used when no archive is configured.
type NoDatabaseBackend struct{}

// Setup does nothing.
func (NoDatabaseBackend) Setup(ctx context.Context) error {
	return nil
}

// Create discards the result.
func (NoDatabaseBackend) Create(ctx context.Context, r Result) error {
	return nil
}

// Read returns an error.
func (NoDatabaseBackend) Read(ctx context.Context, playerName string) (*Total, error) {
	return nil, fmt.Errorf("no database to read scores of %q", playerName)
}
