package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence marks failures to read or write user state
	ErrPersistence = errors.New("state storage unavailable")

	// ErrAdapterUnavailable marks a failed call to an external service
	ErrAdapterUnavailable = errors.New("external service unavailable")

	// ErrInputFormat marks malformed user input
	ErrInputFormat = errors.New("invalid input format")

	// ErrOutOfRange marks a note position outside the list
	ErrOutOfRange = fmt.Errorf("position out of range: %w", ErrInputFormat)
)
