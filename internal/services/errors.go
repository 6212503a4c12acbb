package services

import "errors"

var (
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotLoaded is returned when the conversation list has never been
	// built successfully and the current rebuild could not run either.
	ErrNotLoaded = errors.New("conversation list not loaded yet")
)
