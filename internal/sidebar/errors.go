package sidebar

import "errors"

// Specification invariant violations surfaced at validation time.
var (
	ErrEmptyGroupLabel     = errors.New("group label must not be empty")
	ErrEmptyItemLabel      = errors.New("item label must not be empty")
	ErrDuplicateGroupLabel = errors.New("group labels must be unique within a sidebar")
	ErrMissingDirectory    = errors.New("autogenerate requires a directory")
)

// ErrBrokenReference is the single fatal resolution error: an explicit
// sidebar item points at a slug with no matching document. Publishing a dead
// navigation link is worse than failing the build.
var ErrBrokenReference = errors.New("broken navigation reference")
