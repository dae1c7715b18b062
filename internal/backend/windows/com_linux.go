//go:build !windows

package windows

// This file mocks the COM plumbing so that the package compiles on Linux.
// There is no WSL service to talk to, so every entry point fails.

import (
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/ubuntu/decorate"
)

// InitializeApartment initializes COM on the calling thread.
// This implementation will always fail on Linux.
func (Backend) InitializeApartment() (err error) {
	defer decorate.OnError(&err, "could not initialize COM")
	return backend.ErrNotImplemented
}

// UninitializeApartment closes COM on the calling thread.
// This implementation does nothing on Linux.
func (Backend) UninitializeApartment() {}

// NewSession connects to the WSL service.
// This implementation will always fail on Linux.
func (Backend) NewSession() (backend.Session, error) {
	return nil, backend.ErrNotImplemented
}
