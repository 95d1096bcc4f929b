package net

import "errors"

var (
	// ErrEmptyID is returned when a place or transition is declared with an
	// empty identifier.
	ErrEmptyID = errors.New("net: empty id")
	// ErrDuplicateID is returned when two places, two transitions, or a place
	// and a transition share the same id.
	ErrDuplicateID = errors.New("net: duplicate id")
	// ErrUnknownPlace is returned when an arc references a place id that was
	// never added to the net.
	ErrUnknownPlace = errors.New("net: unknown place")
	// ErrUnknownTransition is returned when an arc references a transition id
	// that was never added to the net.
	ErrUnknownTransition = errors.New("net: unknown transition")
	// ErrInvalidKind is returned when a transition's kind does not match one
	// of the four recognized kinds, or its kind-specific payload is missing.
	ErrInvalidKind = errors.New("net: invalid transition kind")
	// ErrInvalidArc is returned when an arc's weight is negative or its
	// direction/kind combination is not supported.
	ErrInvalidArc = errors.New("net: invalid arc")
)
