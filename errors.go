package freelist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCapacity indicates a chunk capacity that is not positive or
	// does not fit below the free-link sentinel for the element type.
	ErrInvalidCapacity = errors.New("freelist: invalid chunk capacity")

	// ErrIndexOutOfRange indicates an index beyond the arena's capacity.
	ErrIndexOutOfRange = errors.New("freelist: index out of range")

	// ErrVacantSlot indicates an index that names a slot holding no value.
	ErrVacantSlot = errors.New("freelist: index doesn't hold value")

	// ErrMaxChunksExceeded is returned when growth would need a chunk ordinal
	// that doesn't fit a composite index.
	ErrMaxChunksExceeded = errors.New("freelist: max chunks exceeded")

	// ErrAllocationFailed wraps failures reported by the memory acquirer.
	ErrAllocationFailed = errors.New("freelist: allocation failed")
)

// IndexError reports a failed checked access.
//
// Err is ErrIndexOutOfRange or ErrVacantSlot and is reachable via errors.Is.
type IndexError struct {
	Index Index
	Err   error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Index)
}

func (e *IndexError) Unwrap() error { return e.Err }
