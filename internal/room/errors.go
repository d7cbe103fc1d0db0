package room

import "errors"

var (
	// ErrNotAuthenticated is returned when a command carries no player identity.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRoomNotFound is returned when the room code has no backing record.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidRoomCode is returned for codes not of the form PING-XXXX.
	ErrInvalidRoomCode = errors.New("invalid room code")
	// ErrInsufficientPlayers is returned when a start is attempted below the minimum roster.
	ErrInsufficientPlayers = errors.New("insufficient players")
	// ErrNotHost is returned when someone other than the host starts the game.
	ErrNotHost = errors.New("only the host can start the game")
	// ErrAlreadyStarted is returned when starting a room that is already playing.
	ErrAlreadyStarted = errors.New("game already started")
	// ErrNotInRoom is returned when the acting or targeted player is not a member.
	ErrNotInRoom = errors.New("player not in room")
	// ErrPlayerPaired is returned when an invite would pair a player who already has a team.
	ErrPlayerPaired = errors.New("player already on a team")
	// ErrInviteNotFound is returned for unknown invite ids.
	ErrInviteNotFound = errors.New("invite not found")
	// ErrNoMatch is returned for score and vote commands while no match exists.
	ErrNoMatch = errors.New("no active match")
	// ErrMatchDecided is returned when a command targets a match that has already been decided.
	ErrMatchDecided = errors.New("match already decided")
	// ErrInvalidSide is returned for side labels other than incumbent/challenger.
	ErrInvalidSide = errors.New("invalid side")

	// ErrMissingTeam means the match references a team absent from the room.
	ErrMissingTeam = errors.New("team missing from room state")
	// ErrInvalidTeam means a team references a player absent from the room.
	ErrInvalidTeam = errors.New("invalid team: missing player data")
	// ErrEmptyQueue means a rotation needed a queued team but none existed.
	ErrEmptyQueue = errors.New("no teams in queue")

	// ErrWriteConflict is returned when a transition kept losing the version race.
	ErrWriteConflict = errors.New("room changed concurrently, retries exhausted")
)
