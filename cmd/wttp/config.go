package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jacobpatterson1549/who-took-that-photo/client"
	"github.com/jacobpatterson1549/who-took-that-photo/client/auth"
	"github.com/jacobpatterson1549/who-took-that-photo/client/image"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket"
	"github.com/jacobpatterson1549/who-took-that-photo/client/socket/gorilla"
	"github.com/jacobpatterson1549/who-took-that-photo/db"
	"github.com/jacobpatterson1549/who-took-that-photo/db/firestore"
	"github.com/jacobpatterson1549/who-took-that-photo/db/mongo"
	"github.com/jacobpatterson1549/who-took-that-photo/db/redis"
	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"github.com/jacobpatterson1549/who-took-that-photo/db/sql"
	"github.com/jacobpatterson1549/who-took-that-photo/db/sql/postgres"
	"github.com/jacobpatterson1549/who-took-that-photo/log"
)

const (
	queryPeriod    = 5 * time.Second
	writeWait      = 10 * time.Second
	imageFetchWait = 10 * time.Second
	maxImageSize   = 8 << 20 // 8 MiB
)

// validate checks the flags that have no defaults.
func (m mainFlags) validate() error {
	switch {
	case len(m.serverURL) == 0:
		return fmt.Errorf("missing server url")
	case m.joinGraceMS < 0:
		return fmt.Errorf("join grace period cannot be negative")
	}
	return nil
}

// token parses the access token, if there is one.
func (m mainFlags) token(now time.Time) (*auth.Token, error) {
	if len(m.accessToken) == 0 {
		return nil, nil
	}
	return auth.ParseToken(m.accessToken, now)
}

// defaultPlayerName is the player name flag, or the subject of the token.
func (m mainFlags) defaultPlayerName(t *auth.Token) string {
	if len(m.playerName) != 0 || t == nil {
		return m.playerName
	}
	return t.Subject
}

// imageRefs splits the images flag.
func (m mainFlags) imageRefs() []string {
	var refs []string
	for _, ref := range strings.Split(m.images, ",") {
		if ref = strings.TrimSpace(ref); len(ref) != 0 {
			refs = append(refs, ref)
		}
	}
	return refs
}

// clientConfig creates the configuration of the session client.
func (m mainFlags) clientConfig(log log.Logger, t *auth.Token, recorder client.Recorder) client.Config {
	socketCfg := socket.Config{
		Debug:          m.debug,
		Log:            log,
		Dialer:         gorilla.NewDialer(client.DefaultConnectTimeout),
		ConnectTimeout: client.DefaultConnectTimeout,
		WriteWait:      writeWait,
	}
	encoder := image.DataURLEncoder{
		HTTPClient: &http.Client{
			Timeout: imageFetchWait,
		},
		MaxSize: maxImageSize,
	}
	imageCfg := image.Config{
		Debug:    m.debug,
		Log:      log,
		Encoder:  encoder,
		PickFunc: rand.Intn,
	}
	cfg := client.Config{
		Log:             log,
		ServerURL:       m.serverURL,
		Token:           t,
		Socket:          socketCfg,
		Images:          imageCfg,
		Recorder:        recorder,
		JoinGracePeriod: time.Duration(m.joinGraceMS) * time.Millisecond,
		RequestTimeout:  client.DefaultRequestTimeout,
		ConfigTimeout:   client.DefaultConfigTimeout,
	}
	return cfg
}

// scoreDao creates and sets up the archive of final scores.
func (m mainFlags) scoreDao(ctx context.Context) (*score.Dao, error) {
	cfg := db.Config{
		QueryPeriod: queryPeriod,
	}
	b, err := scoreBackend(ctx, cfg, m.historyURL)
	if err != nil {
		return nil, fmt.Errorf("creating score backend: %w", err)
	}
	daoCfg := score.DaoConfig{
		Backend:   b,
		TimeFunc:  time.Now,
		NewIDFunc: uuid.New,
	}
	d, err := daoCfg.NewDao()
	if err != nil {
		return nil, err
	}
	if err := d.Setup(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// scoreBackend creates the backend for the scheme of the url.  No database is used if the url is empty.
func scoreBackend(ctx context.Context, cfg db.Config, historyURL string) (score.Backend, error) {
	if len(historyURL) == 0 {
		return score.NoDatabaseBackend{}, nil
	}
	u, err := url.Parse(historyURL)
	if err != nil {
		return nil, fmt.Errorf("parsing history url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		sqlCfg := sql.DatabaseConfig{
			DriverName:  postgres.DriverName,
			DatabaseURL: historyURL,
			Config:      cfg,
		}
		d, err := sqlCfg.NewDatabase()
		if err != nil {
			return nil, err
		}
		return &postgres.ScoreBackend{Database: d}, nil
	case "mongodb", "mongodb+srv":
		return mongo.NewScoreBackend(ctx, cfg, historyURL)
	case "redis", "rediss":
		return redis.NewScoreBackend(cfg, historyURL)
	case "firestore":
		if len(u.Host) == 0 {
			return nil, fmt.Errorf("firestore project id required as host of history url")
		}
		return firestore.NewScoreBackend(ctx, cfg, u.Host)
	}
	return nil, fmt.Errorf("unknown history url scheme %q", u.Scheme)
}
