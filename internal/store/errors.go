package store

import "errors"

var (
	// ErrNotFound indicates the referenced lock, command or device does
	// not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotOwned indicates the lock exists but belongs to a different
	// user than the one issuing the command.
	ErrNotOwned = errors.New("lock not owned by user")

	// ErrNoPending indicates a poll found no undelivered command. This is
	// a normal outcome of the protocol, not a failure.
	ErrNoPending = errors.New("no pending command")

	// ErrInvalidCommand indicates an unrecognized command kind.
	ErrInvalidCommand = errors.New("invalid command kind")

	// ErrInvalidStatus indicates an unrecognized lock status value.
	ErrInvalidStatus = errors.New("invalid lock status")
)
