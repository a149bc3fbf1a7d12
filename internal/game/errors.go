package game

import "errors"

var (
	// ErrInputData marks audio that could not be read or decoded.
	ErrInputData = errors.New("invalid input data")
	// ErrConfig marks out of range difficulty or engine settings.
	ErrConfig = errors.New("invalid configuration")
	// ErrPoolExhausted is fatal for a play session.
	ErrPoolExhausted = errors.New("note pool exhausted")
	// ErrSerialization marks a malformed persisted chart.
	ErrSerialization = errors.New("malformed chart record")
	// ErrNoChart is returned when no chart could be produced for a track.
	ErrNoChart = errors.New("no chart could be produced")
)
