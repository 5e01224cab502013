package game

import "fmt"

// Kind classifies why an action was rejected.
type Kind string

const (
	DuplicateName       Kind = "duplicate_name"
	NotFound            Kind = "not_found"
	AlreadyStarted      Kind = "already_started"
	RoomFull            Kind = "room_full"
	InsufficientPlayers Kind = "insufficient_players"
	Forbidden           Kind = "forbidden"
	NotAMember          Kind = "not_a_member"
	NotInGame           Kind = "not_in_game"
)

// GameError is a validation failure: it is surfaced to the acting client as a
// game_error notification and never crashes the connection. Any other error
// escaping the engine is an infrastructure failure and is reported as
// server_error with a generic message.
type GameError struct {
	Kind    Kind
	Message string
}

func (e *GameError) Error() string { return e.Message }

func errDuplicateName(name string) error {
	return &GameError{Kind: DuplicateName, Message: fmt.Sprintf("a game named %q already exists", name)}
}

func errNoSuchRoom(name string) error {
	return &GameError{Kind: NotFound, Message: fmt.Sprintf("no game named %q exists", name)}
}

func errRoomGone() error {
	return &GameError{Kind: NotFound, Message: "game not found"}
}

func errAlreadyStarted() error {
	return &GameError{Kind: AlreadyStarted, Message: "the game has already started"}
}

func errRoomFull() error {
	return &GameError{Kind: RoomFull, Message: "the game is full"}
}

func errInsufficientPlayers() error {
	return &GameError{Kind: InsufficientPlayers, Message: "wait for at least one more player before starting"}
}

func errForbidden() error {
	return &GameError{Kind: Forbidden, Message: "you are not allowed to start the game"}
}

func errNotAMember() error {
	return &GameError{Kind: NotAMember, Message: "you are not a member of this game"}
}

func errNotInGame() error {
	return &GameError{Kind: NotInGame, Message: "you are not in a game"}
}
