package model

import "errors"

var (
	// ErrNotFound is returned when an entity is required to exist and does not.
	ErrNotFound = errors.New("entity was not found")

	// ErrInvalidRating is returned when a rating is outside the 1..5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
