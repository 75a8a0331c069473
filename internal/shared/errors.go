package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Remote store errors. Every failed store call wraps ErrStoreRequest regardless of cause.
	ErrStoreRequest = fmt.Errorf("store request failed")

	// Synchronizer errors
	ErrItemNotFound = fmt.Errorf("item not found")
	ErrClosed       = fmt.Errorf("synchronizer closed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
