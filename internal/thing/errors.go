package thing

import "errors"

var (
	// ErrUnknownMode is returned when a consumer writes a mode
	// string outside the supported enum.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrUnknownCommand is returned by Apply for a command kind the
	// loop does not implement.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrBadValue is returned when a command value has the wrong
	// kind for the command.
	ErrBadValue = errors.New("bad command value")

	// ErrIdentity is returned when the appliance cannot be
	// identified at loop construction.
	ErrIdentity = errors.New("identity lookup failed")

	// ErrAlreadyStarted is returned when a loop or fleet is started
	// twice.
	ErrAlreadyStarted = errors.New("already started")
)
