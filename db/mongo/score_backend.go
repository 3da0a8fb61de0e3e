// Package mongo implements a score backend for mongodb.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacobpatterson1549/who-took-that-photo/db"
	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	databaseName    = "who-took-that-photo"
	resultsName     = "results"
	totalsName      = "totals"
	idField         = "_id"
	gameCodeField   = "gameCode"
	playerNameField = "playerName"
	scoresField     = "scores"
	finishedAtField = "finishedAt"
	pointsField     = "points"
	gamesField      = "games"
)

// ScoreBackend stores results in one collection and the totals of players in another.
type ScoreBackend struct {
	Results *mongo.Collection
	Totals  *mongo.Collection
	db.Config
}

// NewScoreBackend connects to the database and creates a backend on its collections.
func NewScoreBackend(ctx context.Context, cfg db.Config, databaseURL string) (*ScoreBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating mongo score backend: validation: %w", err)
	}
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := cfg.WithTimeout(ctx)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	database := client.Database(databaseName)
	sb := ScoreBackend{
		Results: database.Collection(resultsName),
		Totals:  database.Collection(totalsName),
		Config:  cfg,
	}
	return &sb, nil
}

// Setup indexes results by player so they can be listed.
func (sb *ScoreBackend) Setup(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: d(e(playerNameField, 1), e(finishedAtField, -1)),
	}
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	if _, err := sb.Results.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating player results index: %w", err)
	}
	return nil
}

// Create inserts the result and increments the total of the player that recorded it.
func (sb *ScoreBackend) Create(ctx context.Context, r score.Result) error {
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	if _, err := sb.Results.InsertOne(ctx, resultDocument(r)); err != nil {
		return fmt.Errorf("creating result: %w", err)
	}
	filter, update := totalIncrement(r)
	opts := options.Update().SetUpsert(true)
	if _, err := sb.Totals.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("incrementing player total: %w", err)
	}
	return nil
}

// Read gets the total of the player.
func (sb *ScoreBackend) Read(ctx context.Context, playerName string) (*score.Total, error) {
	filter := d(e(idField, playerName))
	ctx, cancelFunc := sb.WithTimeout(ctx)
	defer cancelFunc()
	var doc struct {
		PlayerName string `bson:"_id"`
		Points     int    `bson:"points"`
		Games      int    `bson:"games"`
	}
	if err := sb.Totals.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, score.ErrNotFound
		}
		return nil, fmt.Errorf("reading total: %w", err)
	}
	t := score.Total{
		PlayerName: doc.PlayerName,
		Points:     doc.Points,
		Games:      doc.Games,
	}
	return &t, nil
}

// resultDocument creates the document of a result.
func resultDocument(r score.Result) bson.D {
	scores := make(bson.M, len(r.Scores))
	for name, points := range r.Scores {
		scores[name] = points
	}
	return d(
		e(idField, r.ID.String()),
		e(gameCodeField, r.GameCode),
		e(playerNameField, r.PlayerName),
		e(scoresField, scores),
		e(finishedAtField, r.FinishedAt),
	)
}

// totalIncrement creates the filter and update that add the points of the result to the total of its player.
func totalIncrement(r score.Result) (filter, update bson.D) {
	filter = d(e(idField, r.PlayerName))
	update = d(e("$inc", d(e(pointsField, r.Points()), e(gamesField, 1))))
	return filter, update
}

// d is a helper function to create bson.D elements.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson.E elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
