package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound    = errors.New("run not found")
	ErrInvalidVote = errors.New("invalid vote")
	ErrInvalidRun  = errors.New("invalid run")
)
