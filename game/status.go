package game

import "fmt"

// JoinStatus is the result code the server replies with when a player asks to join a game.
type JoinStatus int

const (
	// Joined is the status of a successful join.
	Joined JoinStatus = 0
	// InProgress is the status when the game has already started.
	InProgress JoinStatus = 101
	// NotStarted is the status when an action needs a game that has started.
	NotStarted JoinStatus = 102
	// Finished is the status when the game is over.
	Finished JoinStatus = 103
	// NotFound is the status when no game has the code.
	NotFound JoinStatus = 104
	// AlreadyAnswered is the status when the player already chose an answer in the round.
	AlreadyAnswered JoinStatus = 201
	// NameTaken is the status when a player with the same name is already in the game.
	NameTaken JoinStatus = 202
	// NotInGame is the status when the player is not in the game.
	NotInGame JoinStatus = 203
	// NotCreator is the status when only the creator of the game is allowed to do the action.
	NotCreator JoinStatus = 204
)

// OK reports whether the status is a success.
func (s JoinStatus) OK() bool {
	return s == Joined
}

// String returns the display value for the status.
func (s JoinStatus) String() string {
	switch s {
	case Joined:
		return "joined"
	case InProgress:
		return "game already in progress"
	case NotStarted:
		return "game not started yet"
	case Finished:
		return "game already finished"
	case NotFound:
		return "game with the code does not exist"
	case AlreadyAnswered:
		return "answer already submitted"
	case NameTaken:
		return "player name already in the game"
	case NotInGame:
		return "player not in the game"
	case NotCreator:
		return "only the creator can do that"
	}
	return fmt.Sprintf("unknown status %d", int(s))
}
