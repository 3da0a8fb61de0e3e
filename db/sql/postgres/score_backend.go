// Package postgres implements a score backend for Postgres servers.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"github.com/jacobpatterson1549/who-took-that-photo/db/sql"
	_ "github.com/lib/pq" // register "postgres" database driver from package init() function
)

type (
	// ScoreBackend archives scores on a Postgres SQL Database using stored functions.
	ScoreBackend struct {
		Database
	}

	// Database contains methods to create, read, update, and delete data.
	Database interface {
		// Setup initializes the database by reading the files.
		Setup(ctx context.Context, files []io.Reader) error
		// Query reads from the database without updating it.
		Query(ctx context.Context, q sql.Query, dest ...interface{}) error
		// Exec makes a change to existing data, creating/modifying/removing it.
		Exec(ctx context.Context, queries ...sql.Query) error
	}
)

// DriverName is the name lib/pq registers its driver with.
const DriverName = "postgres"

//go:embed setup/*.sql
var setupFS embed.FS

// Setup creates the tables and functions.  The setup files are run in name order.
func (sb *ScoreBackend) Setup(ctx context.Context) error {
	files, err := setupFiles(setupFS)
	if err != nil {
		return fmt.Errorf("reading setup files: %w", err)
	}
	if err := sb.Database.Setup(ctx, files); err != nil {
		return fmt.Errorf("setting up score tables: %w", err)
	}
	return nil
}

// Create adds the result and increments the total of the player that recorded it.
func (sb *ScoreBackend) Create(ctx context.Context, r score.Result) error {
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return fmt.Errorf("encoding scores: %w", err)
	}
	q := sql.NewExecFunction("score_create", r.ID.String(), r.GameCode, r.PlayerName, string(scores), r.FinishedAt)
	if err := sb.Database.Exec(ctx, q); err != nil {
		return fmt.Errorf("creating result: %w", err)
	}
	return nil
}

// Read queries the total of the player.
func (sb *ScoreBackend) Read(ctx context.Context, playerName string) (*score.Total, error) {
	cols := []string{
		"player_name",
		"points",
		"games",
	}
	q := sql.NewQueryFunction("score_read", cols, playerName)
	var t score.Total
	if err := sb.Database.Query(ctx, q, &t.PlayerName, &t.Points, &t.Games); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, score.ErrNotFound
		}
		return nil, fmt.Errorf("querying total: %w", err)
	}
	return &t, nil
}

// setupFiles opens the sql files in the file system, sorted by name.
func setupFiles(fsys fs.FS) ([]io.Reader, error) {
	names, err := fs.Glob(fsys, "setup/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	files := make([]io.Reader, len(names))
	for i, n := range names {
		f, err := fsys.Open(n)
		if err != nil {
			return nil, err
		}
		files[i] = f
	}
	return files, nil
}
