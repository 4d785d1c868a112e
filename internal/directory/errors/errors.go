package errors

import "errors"

var (
	ErrNotFound  = errors.New("directory entry not found")
	ErrInvalidID = errors.New("invalid directory ID format")
)
