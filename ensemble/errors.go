package ensemble

import "errors"

var (
	// ErrNoCoords is returned by operations that need reference
	// coordinates before any have been set with SetCoords.
	ErrNoCoords = errors.New("ensemble: reference coordinates are not set, use SetCoords")

	// ErrNoConfs is returned by operations that need conformations before
	// any have been added with AddCoordset.
	ErrNoConfs = errors.New("ensemble: conformations are not set, use AddCoordset")

	// ErrModified reports that an ensemble's conformation stack or
	// selection changed while an iterator or conformation handle created
	// earlier was still in use.
	ErrModified = errors.New("ensemble: ensemble changed during iteration")
)
