package search

import "errors"

// ErrDirectoryUnavailable is returned when the search root cannot be opened for listing.
var ErrDirectoryUnavailable = errors.New("directory unavailable")

// ErrCancelled is returned when a session was cancelled before it completed.
// It is not a failure and should not be shown to users as one.
var ErrCancelled = errors.New("search cancelled")
