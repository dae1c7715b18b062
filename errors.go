package wsl

// This file contains the errors the public surface can return.

import (
	"errors"
	"fmt"

	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/hresult"
)

var (
	// ErrWorkerUnavailable is returned when an operation can no longer reach
	// the background worker: the worker has terminated, or this particular
	// handle has been closed.
	ErrWorkerUnavailable = errors.New("the WSL session worker is no longer available")

	// ErrNotImplemented is returned for operations the current back-end
	// recognizes but does not support.
	ErrNotImplemented = backend.ErrNotImplemented
)

// InitError reports that the background worker could not initialize its COM
// apartment or connect to the WSL service. When New returns it, no worker is
// left running.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("could not initialize the WSL session: %v", e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// OperationError is a failure reported by the WSL service for a specific
// operation. Code carries the service's HRESULT unmodified.
type OperationError = hresult.Error
