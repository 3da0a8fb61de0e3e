// Package message contains the envelope passed between the session client and the game server.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Event names the purpose of a message.
	// Names starting with "c:" are sent by clients and names starting with "s:" are sent by the server.
	// The "ask" names expect a reply, the "say" names do not.
	Event string

	// Message is a single frame on the socket.
	// Frames that answer another message have Ack set and no Event.
	Message struct {
		// Event is the purpose of the message.
		Event Event `json:"event,omitempty"`
		// ID is set when the sender expects a reply.
		ID int `json:"id,omitempty"`
		// Ack is the ID of the message being replied to.
		Ack int `json:"ack,omitempty"`
		// Args are the positional arguments.
		Args []json.RawMessage `json:"args,omitempty"`
		// Error is set when a request could not be answered.
		Error string `json:"error,omitempty"`
	}
)

const (
	// AskConfig is a client request for the game configuration.  The server replies with a game.Config.
	AskConfig Event = "c:ask:config"
	// AskJoin is a client request to join a game with a JoinRequest.  The server replies with a game.JoinStatus.
	AskJoin Event = "c:ask:menu/join"
	// AskCreate is a client request to create a game with the player name.  The server replies with the game code.
	AskCreate Event = "c:ask:menu/create"
	// AskPlayers is a client request for the names of the players in the game with the code.
	// The server replies with the names or a numeric status when the names cannot be read.
	AskPlayers Event = "c:ask:lobby/get-players-in-game"
	// SayStartGame is sent by the creator of a game with the game code to start it.
	SayStartGame Event = "c:say:lobby/start-game"
	// SayChooseAnswer is sent with the game code and a player name to answer a round.
	SayChooseAnswer Event = "c:say:game/choose-answer"

	// PlayerJoined is sent by the server with the name of a player that joined the game.
	PlayerJoined Event = "s:say:lobby:player-joined"
	// PlayerLeft is sent by the server with the name of a player that left the game.
	PlayerLeft Event = "s:say:lobby:player-left"
	// LobbyDeleted is sent by the server when the game is removed, such as when the creator leaves.
	LobbyDeleted Event = "s:say:lobby:lobby-del"
	// GameStarted is sent once by the server when the creator starts the game.
	GameStarted Event = "s:say:lobby/game-started"
	// RequestImage is a server request for an image from the player's pool.  The client replies with the encoded image.
	RequestImage Event = "s:ask:game/request-image"
	// RoundOver is sent by the server with the game.Scoreboard when a round ends.
	RoundOver Event = "s:say:game/round-over"
	// RoundStart is sent by the server with a game.RoundStart when a round begins.
	RoundStart Event = "s:say:game/round-start"
	// GameEnded is sent by the server with the final game.Scoreboard.
	GameEnded Event = "s:say:game/game-ended"
	// TimeLeftInRound is sent periodically by the server with the seconds left to answer.
	TimeLeftInRound Event = "s:say:game/time-left-in-round"
	// SyncRound is sent by the server with the index of the current round.
	SyncRound Event = "s:say:game/sync-round"
)

// JoinRequest is the argument of an AskJoin message.
type JoinRequest struct {
	Name     string `json:"name"`
	GameCode string `json:"gameId"`
}

// ErrMissingArg is returned when reading an argument the message does not have.
var ErrMissingArg = errors.New("missing argument")

// New creates a message for the event with arguments encoded as json.
func New(event Event, args ...interface{}) (*Message, error) {
	rawArgs, err := encodeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("creating %v message: %w", event, err)
	}
	m := Message{
		Event: event,
		Args:  rawArgs,
	}
	return &m, nil
}

// Reply creates a message that answers the message with the arguments.
func (m Message) Reply(args ...interface{}) (*Message, error) {
	rawArgs, err := encodeArgs(args)
	if err != nil {
		return nil, fmt.Errorf("creating reply to %v message: %w", m.Event, err)
	}
	m2 := Message{
		Ack:  m.ID,
		Args: rawArgs,
	}
	return &m2, nil
}

// ReplyError creates a message that tells the sender the message could not be answered.
func (m Message) ReplyError(err error) *Message {
	m2 := Message{
		Ack:   m.ID,
		Error: err.Error(),
	}
	return &m2
}

// IsAck determines if the message is a reply to another message.
func (m Message) IsAck() bool {
	return m.Ack > 0
}

// Arg decodes the argument at the index into v.
func (m Message) Arg(i int, v interface{}) error {
	if i < 0 || i >= len(m.Args) {
		return fmt.Errorf("reading argument %v of %v message: %w", i, m.Event, ErrMissingArg)
	}
	if err := json.Unmarshal(m.Args[i], v); err != nil {
		return fmt.Errorf("reading argument %v of %v message: %w", i, m.Event, err)
	}
	return nil
}

// String describes the message without its arguments, which can be large images.
func (m Message) String() string {
	switch {
	case m.IsAck() && len(m.Error) != 0:
		return fmt.Sprintf("ack %v (error: %v)", m.Ack, m.Error)
	case m.IsAck():
		return fmt.Sprintf("ack %v (%v args)", m.Ack, len(m.Args))
	case m.ID > 0:
		return fmt.Sprintf("%v #%v (%v args)", m.Event, m.ID, len(m.Args))
	}
	return fmt.Sprintf("%v (%v args)", m.Event, len(m.Args))
}

func encodeArgs(args []interface{}) ([]json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	rawArgs := make([]json.RawMessage, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("encoding argument %v: %w", i, err)
		}
		rawArgs[i] = b
	}
	return rawArgs, nil
}
