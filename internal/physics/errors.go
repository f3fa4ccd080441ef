package physics

import "errors"

var (
	// ErrUnknownBody indicates a handle that does not name a live body.
	ErrUnknownBody = errors.New("physics: unknown body")

	// ErrDiverged indicates a body position became NaN or infinite.
	ErrDiverged = errors.New("physics: world diverged")
)
