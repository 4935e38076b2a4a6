package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionType distinguishes focus intervals from breaks.
type SessionType string

const (
	TypeFocus      SessionType = "focus"
	TypeShortBreak SessionType = "short_break"
	TypeLongBreak  SessionType = "long_break"
)

const (
	// DefaultShortBreak is the length of a short break.
	DefaultShortBreak = 5 * time.Minute

	// DefaultLongBreak is the length of a long break.
	DefaultLongBreak = 15 * time.Minute
)

// ParseSessionType parses a user supplied session type. An empty string
// selects a focus session.
func ParseSessionType(s string) (SessionType, error) {
	normalized := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch normalized {
	case "", "focus":
		return TypeFocus, nil
	case "short_break", "short", "break":
		return TypeShortBreak, nil
	case "long_break", "long":
		return TypeLongBreak, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionType, s)
	}
}

// IsValid returns true for the known session types.
func (t SessionType) IsValid() bool {
	return t == TypeFocus || t == TypeShortBreak || t == TypeLongBreak
}

// IsBreak returns true for short and long breaks.
func (t SessionType) IsBreak() bool {
	return t == TypeShortBreak || t == TypeLongBreak
}

// DefaultDuration returns the built-in length of a session of this type.
func (t SessionType) DefaultDuration() time.Duration {
	switch t {
	case TypeShortBreak:
		return DefaultShortBreak
	case TypeLongBreak:
		return DefaultLongBreak
	default:
		return DefaultDuration
	}
}

// GetSessionTypeLabel returns a human-readable label for a session type.
// An unset type is a focus session.
func GetSessionTypeLabel(t SessionType) string {
	switch t {
	case TypeFocus, "":
		return "Focus"
	case TypeShortBreak:
		return "Short Break"
	case TypeLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}
