// Package main plays games on a server from the terminal after configuring the client from supplied or standard arguments.
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jacobpatterson1549/who-took-that-photo/log"
	"go.uber.org/zap"
)

// main configures and runs the client.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	lookupEnvFunc, err := envFileLookupFunc(".env", os.LookupEnv)
	if err != nil {
		stdlog.Fatalf("loading environment: %v", err)
	}
	m := newMainFlags(os.Args, lookupEnvFunc)
	z, err := newLogger(m.debug)
	if err != nil {
		stdlog.Fatalf("creating logger: %v", err)
	}
	defer z.Sync()
	if err := run(ctx, m, zap.NewStdLog(z), os.Stdin, os.Stdout); err != nil {
		z.Error("running client", zap.Error(err))
		return
	}
	z.Info("client stopped")
}

// newLogger creates a development logger when debugging.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run connects the client and handles commands until the input ends or the context is done.
func run(ctx context.Context, m mainFlags, log log.Logger, in io.Reader, out io.Writer) error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("validating flags: %w", err)
	}
	t, err := m.token(time.Now())
	if err != nil {
		return fmt.Errorf("reading access token: %w", err)
	}
	scores, err := m.scoreDao(ctx)
	if err != nil {
		return fmt.Errorf("setting up score history: %w", err)
	}
	cfg := m.clientConfig(log, t, scores)
	c, err := cfg.NewClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	c.SetImages(m.imageRefs())
	r := repl{
		client:     c,
		scores:     scores,
		playerName: m.defaultPlayerName(t),
		in:         in,
		out:        out,
	}
	eventsCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	go r.printEvents(c.Events().Listen(eventsCtx))
	errC := make(chan error, 1)
	go func() {
		errC <- r.run(ctx)
	}()
	select { // BLOCKING
	case err := <-errC:
		return err
	case <-ctx.Done():
		r.println("interrupted")
		return nil
	}
}
