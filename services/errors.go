package services

import "errors"

// Validation errors surfaced to the caller. They are local and recoverable;
// rejecting one request never aborts a stage transition triggered by another.
var (
	// ErrRoomNotFound means the room does not exist, e.g. it was deleted
	// after all debaters left. Clients should stop polling.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNotYourTurn is a turn-gate rejection; the client should wait and retry.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrObserverCannotSpeak rejects debate messages from observers.
	ErrObserverCannotSpeak = errors.New("observers cannot speak")
	// ErrDebateClosed rejects mutations once the room is in verdict_pending
	// or ended.
	ErrDebateClosed = errors.New("debate ended or verdict pending")
	// ErrUnknownSession means the session has no roster entry; the client
	// should re-issue a join.
	ErrUnknownSession = errors.New("unknown session")
)
