// Package apperr defines sentinel errors shared across Promptdeck layers.
package apperr

import "errors"

var (
	// ErrNotFound is returned by read paths when an item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCyclicMove rejects a move that would place a folder inside one of
	// its own descendants.
	ErrCyclicMove = errors.New("cyclic move")

	// ErrInvalidTarget rejects a move whose target is missing, or a move
	// "inside" an item that is not a folder.
	ErrInvalidTarget = errors.New("invalid move target")
)
