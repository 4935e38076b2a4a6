package domain

import "errors"

// Common domain errors.
var (
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrServiceNotRunning  = errors.New("focus service not running")
	ErrSessionNotFound    = errors.New("session not found")
	ErrDuplicateSession   = errors.New("session already recorded")
)
