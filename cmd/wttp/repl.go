package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jacobpatterson1549/who-took-that-photo/client/event"
	"github.com/jacobpatterson1549/who-took-that-photo/db/score"
	"github.com/jacobpatterson1549/who-took-that-photo/game"
)

type (
	// repl reads commands for the client, one per line, and prints what happens.
	repl struct {
		client     gameClient
		scores     scoreReader
		playerName string
		in         io.Reader

		outMu sync.Mutex
		out   io.Writer
	}

	// gameClient is the part of the session client the commands use.
	gameClient interface {
		CreateGame(ctx context.Context, playerName string) (string, error)
		JoinGame(ctx context.Context, playerName, gameCode string) (game.JoinStatus, error)
		StartGame() error
		SendAnswer(playerName string) error
		SetImages(refs []string)
		PlayersInLobby() ([]string, bool)
		OurScore() (int, error)
		Config() (game.Config, error)
		LeaveGame(ctx context.Context) error
	}

	scoreReader interface {
		Read(ctx context.Context, playerName string) (*score.Total, error)
	}
)

const help = `commands:
  create [NAME]       create a game
  join [NAME] CODE    join the game with the code
  start               start the game you created
  answer NAME         guess who took the photo
  images PATH...      set the images to submit
  players             list the players in the game
  score               print your score
  config              print the game configuration of the server
  history [NAME]      print the archived points of a player
  leave               leave the game
  quit                stop playing`

// run handles commands until the input ends or quit is read.
func (r *repl) run(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		if !r.handle(ctx, scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}

// printEvents prints the events until the channel is closed.
func (r *repl) printEvents(events <-chan event.Event) {
	for e := range events {
		r.println(e.String())
	}
}

// handle runs the command on the line.  False is returned if the player quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	cmd, args := fields[0], fields[1:]
	var err error
	switch cmd {
	case "create":
		err = r.create(ctx, args)
	case "join":
		err = r.join(ctx, args)
	case "start":
		if err = r.client.StartGame(); err == nil {
			r.println("starting game")
		}
	case "answer":
		err = r.answer(args)
	case "images":
		r.client.SetImages(args)
		r.printf("set %v images", len(args))
	case "players":
		r.players()
	case "score":
		var s int
		if s, err = r.client.OurScore(); err == nil {
			r.printf("score: %v", s)
		}
	case "config":
		var cfg game.Config
		if cfg, err = r.client.Config(); err == nil {
			r.println(cfg.String())
		}
	case "history":
		err = r.history(ctx, args)
	case "leave":
		if err = r.client.LeaveGame(ctx); err == nil {
			r.println("left game")
		}
	case "quit", "exit":
		return false
	default:
		r.println(help)
	}
	if err != nil {
		r.printf("error: %v", err)
	}
	return true
}

func (r *repl) create(ctx context.Context, args []string) error {
	name, err := r.nameArg(args, 0)
	if err != nil {
		return err
	}
	code, err := r.client.CreateGame(ctx, name)
	if err != nil {
		return err
	}
	r.printf("created game %v, other players can join with the code", code)
	return nil
}

func (r *repl) join(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("game code required")
	}
	code := args[len(args)-1]
	name, err := r.nameArg(args, 1)
	if err != nil {
		return err
	}
	status, err := r.client.JoinGame(ctx, name, code)
	switch {
	case err != nil:
		return err
	case !status.OK():
		r.printf("could not join game %v: %v", code, status)
	default:
		r.printf("joined game %v", code)
	}
	return nil
}

func (r *repl) answer(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("one player name required")
	}
	if err := r.client.SendAnswer(args[0]); err != nil {
		return err
	}
	r.printf("answered %v", args[0])
	return nil
}

func (r *repl) players() {
	players, ok := r.client.PlayersInLobby()
	if !ok {
		r.println("not in a game")
		return
	}
	r.println(strings.Join(players, ", "))
}

func (r *repl) history(ctx context.Context, args []string) error {
	name, err := r.nameArg(args, 0)
	if err != nil {
		return err
	}
	t, err := r.scores.Read(ctx, name)
	if err != nil {
		return err
	}
	r.printf("%v: %v points in %v games", t.PlayerName, t.Points, t.Games)
	return nil
}

// nameArg is the first argument if there are more than the others, or the default player name.
func (r *repl) nameArg(args []string, others int) (string, error) {
	if len(args) > others {
		return args[0], nil
	}
	if len(r.playerName) == 0 {
		return "", fmt.Errorf("player name required")
	}
	return r.playerName, nil
}

func (r *repl) printf(format string, v ...interface{}) {
	r.println(fmt.Sprintf(format, v...))
}

func (r *repl) println(s string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.out, s)
}
