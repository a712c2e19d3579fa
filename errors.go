package willowkit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a missing target or an out-of-range
	// parameter. It is returned before any resource is allocated.
	ErrInvalidArgument = errors.New("willowkit: invalid argument")

	// ErrRenderBackend reports a failed target allocation, an unsupported
	// pixel format, or a failed readback.
	ErrRenderBackend = errors.New("willowkit: render backend error")
)

// SnapshotError records the state a snapshot was in when it failed. The scene
// has already been restored when a SnapshotError is returned.
type SnapshotError struct {
	State SnapshotState
	Err   error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("willowkit: snapshot failed while %s: %v", e.State, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
