package server

import "errors"

var (
	// ErrMalformedFrame marks an inbound frame that is not a valid tagged JSON object.
	ErrMalformedFrame = errors.New("malformed frame")
	// ErrMissingType marks a frame without a "type" tag.
	ErrMissingType = errors.New("frame has no type")
	// ErrInvalidUsername marks a register frame whose username is blank or too long.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrAlreadyRegistered is returned by Registry.Add when the handle is already present.
	ErrAlreadyRegistered = errors.New("connection already registered")
)
