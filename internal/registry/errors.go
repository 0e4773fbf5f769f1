package registry

import "errors"

var (
	// ErrDuplicateRoom is returned by Create when the id is already taken.
	// Callers doing an idempotent join should use GetOrCreate instead.
	ErrDuplicateRoom = errors.New("room already exists")

	// ErrWrongPassword is returned when a private room is joined or verified
	// with a password that does not match the one set at creation.
	ErrWrongPassword = errors.New("wrong password")

	// ErrRoomNotFound is returned by lookups for an id with no room.
	ErrRoomNotFound = errors.New("room not found")

	// ErrPasswordRequired is returned when a private room is created without
	// a password.
	ErrPasswordRequired = errors.New("private rooms require a password")
)
