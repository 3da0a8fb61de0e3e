// Package firestore uses a google cloud firestore database to archive scores.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/jacobpatterson1549/who-took-that-photo/db"
	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName     = "who-took-that-photo"
	resultsName     = "results"
	totalsName      = "totals"
	gameCodeField   = "gameCode"
	playerNameField = "playerName"
	scoresField     = "scores"
	finishedAtField = "finishedAt"
	pointsField     = "points"
	gamesField      = "games"
)

// ScoreBackend stores results and the totals of players in collections under the service document.
type ScoreBackend struct {
	client *firestore.Client
	db.Config
}

// NewScoreBackend creates a backend on the project.
func NewScoreBackend(ctx context.Context, cfg db.Config, projectID string) (*ScoreBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating firestore score backend: validation: %w", err)
	}
	client, err := firestore.NewClient(ctx, projectID) // the client outlives the context
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	sb := ScoreBackend{
		client: client,
		Config: cfg,
	}
	return &sb, nil
}

func (sb *ScoreBackend) collection(name string) *firestore.CollectionRef {
	return sb.client.Collection("services").Doc(serviceName).Collection(name)
}

// withTimeoutContext configures the context to timeout when running the function.
func (sb *ScoreBackend) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	return f(ctx)
}

// Setup does nothing, collections are created when documents are added to them.
func (sb *ScoreBackend) Setup(ctx context.Context) error {
	return nil
}

// Create adds the result and increments the total of the player that recorded it in a batch.
func (sb *ScoreBackend) Create(ctx context.Context, r score.Result) error {
	if err := sb.withTimeoutContext(ctx, func(ctx context.Context) error {
		b := sb.client.Batch()
		b.Create(sb.collection(resultsName).Doc(r.ID.String()), resultData(r))
		b.Set(sb.collection(totalsName).Doc(r.PlayerName), totalIncrement(r.Points()), firestore.MergeAll)
		_, err := b.Commit(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("creating result: %w", err)
	}
	return nil
}

// Read gets the total of the player.
func (sb *ScoreBackend) Read(ctx context.Context, playerName string) (*score.Total, error) {
	t := score.Total{
		PlayerName: playerName,
	}
	if err := sb.withTimeoutContext(ctx, func(ctx context.Context) error {
		snapshot, err := sb.collection(totalsName).Doc(playerName).Get(ctx)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return score.ErrNotFound
			}
			return err
		}
		var doc struct {
			Points int `firestore:"points"`
			Games  int `firestore:"games"`
		}
		if err := snapshot.DataTo(&doc); err != nil {
			return err
		}
		t.Points, t.Games = doc.Points, doc.Games
		return nil
	}); err != nil {
		return nil, fmt.Errorf("reading total: %w", err)
	}
	return &t, nil
}

// resultData creates the fields of a result document.
func resultData(r score.Result) map[string]interface{} {
	scores := make(map[string]interface{}, len(r.Scores))
	for name, points := range r.Scores {
		scores[name] = points
	}
	return map[string]interface{}{
		gameCodeField:   r.GameCode,
		playerNameField: r.PlayerName,
		scoresField:     scores,
		finishedAtField: r.FinishedAt,
	}
}

// totalIncrement creates the fields that add the points of a game to a total.
func totalIncrement(points int) map[string]interface{} {
	return map[string]interface{}{
		pointsField: firestore.FieldTransformIncrement(points),
		gamesField:  firestore.FieldTransformIncrement(1),
	}
}
