package config

import "errors"

// Errors returned by Load and Validate. Specific causes also wrap
// ErrInvalidConfig.
var (
	ErrLoadConfig    = errors.New("config: load failed")
	ErrInvalidConfig = errors.New("config: invalid")
	ErrOrderMismatch = errors.New("config: draft orders differ in length")
	ErrRemoteBaseURL = errors.New("config: remote.base_url is required when vote_source is remote")
)
