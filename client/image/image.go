// Package image answers server requests for images from the player's pool.
package image

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jacobpatterson1549/who-took-that-photo/log"
)

type (
	// Responder picks images to send to the server.
	Responder struct {
		log      log.Logger
		encoder  Encoder
		pickFunc func(n int) int
		mu       sync.RWMutex
		pool     []string
	}

	// Config contains the dependencies of a Responder.
	Config struct {
		// Log is used to log which image is picked.
		Log log.Logger
		// Debug causes the picked images to be logged.
		Debug bool
		// Encoder turns the picked image reference into something the server can send to other players.
		Encoder Encoder
		// PickFunc returns a random number in [0,n).  It is used to pick an image.
		PickFunc func(n int) int
	}

	// Encoder resolves an image reference into a self-contained representation.
	Encoder interface {
		Encode(ctx context.Context, ref string) (string, error)
	}
)

// ErrEmptyPool is returned when an image is requested but none have been set.
var ErrEmptyPool = errors.New("no images to choose from")

// NewResponder creates a Responder with an empty pool.
func (cfg Config) NewResponder() (*Responder, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating image responder: validation: %w", err)
	}
	r := Responder{
		encoder:  cfg.Encoder,
		pickFunc: cfg.PickFunc,
	}
	if cfg.Debug {
		r.log = cfg.Log
	}
	return &r, nil
}

func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.Encoder == nil:
		return fmt.Errorf("encoder required")
	case cfg.PickFunc == nil:
		return fmt.Errorf("pick func required")
	}
	return nil
}

// SetImages replaces the pool of images.  The references are copied.
func (r *Responder) SetImages(refs []string) {
	pool := make([]string, len(refs))
	copy(pool, refs)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool = pool
}

// Images returns a copy of the pool.
func (r *Responder) Images() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pool := make([]string, len(r.pool))
	copy(pool, r.pool)
	return pool
}

// Respond picks an image from the pool and encodes it.
func (r *Responder) Respond(ctx context.Context) (string, error) {
	r.mu.RLock()
	n := len(r.pool)
	if n == 0 {
		r.mu.RUnlock()
		return "", ErrEmptyPool
	}
	ref := r.pool[r.pickFunc(n)]
	r.mu.RUnlock()
	if r.log != nil {
		r.log.Printf("sending image %v", ref)
	}
	image, err := r.encoder.Encode(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("encoding %v: %w", ref, err)
	}
	return image, nil
}
