package session

import "errors"

var (
	// ErrBusy is returned when an operation is attempted while a request is in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyInput is returned when a blank message is sent.
	ErrEmptyInput = errors.New("message is empty")

	ErrUnknownLanguage = errors.New("unknown language")
	ErrUnknownLevel    = errors.New("unknown level")
	ErrUnknownMode     = errors.New("unknown mode")
)
