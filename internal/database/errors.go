package database

import "errors"

var (
	// ErrShortCodeExists is returned when an attempt is made to create
	// a link with a short code that is already taken.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrLinkNotFound is returned when no link matches the given short code.
	ErrLinkNotFound = errors.New("link not found")
)
