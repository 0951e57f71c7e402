package service

import "errors"

// Sentinel kinds for service errors. The HTTP layer maps them to status codes.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrQueueFull       = errors.New("simulation queue full")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNoPendingPick   = errors.New("no pick is awaited")
	ErrWrongTeam       = errors.New("pick submitted for the wrong team")
	ErrPickSubmitted   = errors.New("pick already submitted")
	ErrPickTimeout     = errors.New("human pick timed out")
	ErrPlayerNotInPool = errors.New("player not in pool")
)
