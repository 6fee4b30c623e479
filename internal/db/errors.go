package db

import "errors"

// Domain-level database error sentinels.
var (
	// Click count errors
	ErrClickCountNotFound = errors.New("click count not found")
)
