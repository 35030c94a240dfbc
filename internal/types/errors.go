package types

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID rejects a create whose id is already taken.
	ErrDuplicateID = errors.New("character id already exists")
	// ErrDuplicateName rejects a create whose name matches an existing character.
	ErrDuplicateName = errors.New("character name already exists")
)
