package game

import "errors"

// Contract violations by the host. None of them are retried.
var (
	ErrLengthMismatch  = errors.New("guess and secret lengths differ")
	ErrInvalidColor    = errors.New("invalid color")
	ErrGameAlreadyOver = errors.New("game already over")
)
