package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Store errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrItemNotFound     = fmt.Errorf("item not found")
	ErrCommitFailed     = fmt.Errorf("store commit failed")

	// Shared container errors
	ErrNoIndex        = fmt.Errorf("playlist index not published")
	ErrAmbiguousMatch = fmt.Errorf("more than one playlist matches")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidID       = fmt.Errorf("invalid id")
	ErrInvalidURL      = fmt.Errorf("invalid url")
	ErrEmptyTitle      = fmt.Errorf("title must not be empty")
	ErrEmptyLabel      = fmt.Errorf("label must not be empty")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidPosition = fmt.Errorf("position out of range")
)
