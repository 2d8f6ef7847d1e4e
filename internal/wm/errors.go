package wm

import "errors"

var (
	// ErrParentKind is returned when a container is attached under a parent
	// kind that may not hold it.
	ErrParentKind = errors.New("invalid parent kind")

	// ErrAttached is returned when a container that already has a parent is
	// attached again.
	ErrAttached = errors.New("container already attached")

	// ErrDuplicateID is returned by NewEntry when two containers share an id.
	ErrDuplicateID = errors.New("duplicate container id")

	// ErrEntryNotFound is returned by Trace.Entry for an unknown timestamp.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrTimestampOrder is returned by NewTrace when timestamps are not
	// strictly increasing.
	ErrTimestampOrder = errors.New("timestamps not strictly increasing")
)
