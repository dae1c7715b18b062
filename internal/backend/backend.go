// Package backend defines all the actions that a back-end to this module
// must be able to perform in order to drive, or otherwise mock, the WSL
// user session service.
package backend

import (
	"errors"
	"os"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/flags"
	"github.com/mmastrac/wsl-go/internal/state"
)

// ErrNotImplemented is returned for operations a back-end recognizes but
// does not support.
var ErrNotImplemented = errors.New("not implemented")

// Backend owns the COM apartment lifecycle and session construction. All
// three methods are called from the same goroutine, which is locked to its
// OS thread for the apartment's whole lifetime.
type Backend interface {
	// InitializeApartment initializes COM on the calling thread. On success
	// it must be paired with UninitializeApartment on the same thread.
	InitializeApartment() error
	UninitializeApartment()

	// NewSession connects to the WSL service and returns the session object.
	NewSession() (Session, error)
}

// Session is the WSL user session object. It is apartment-affine: only the
// thread that initialized the apartment may call its methods, Release
// included. The session worker is the single place that enforces this.
type Session interface {
	// Shutdown terminates every running WSL instance.
	Shutdown(force bool) error

	// DefaultDistribution returns the GUID of the default distribution.
	DefaultDistribution() (uuid.UUID, error)

	// SetDefaultDistribution makes the given distribution the default one.
	SetDefaultDistribution(id uuid.UUID) error

	// EnumerateDistributions lists every registered distribution.
	EnumerateDistributions() ([]DistributionInfo, error)

	// DistributionID resolves a distribution name to its GUID.
	DistributionID(name string) (uuid.UUID, error)

	// RegisterDistribution creates a new distribution from a rootfs file.
	// It returns the new distribution's GUID and the name the service
	// actually installed it under. stderr must be a pipe.
	RegisterDistribution(name string, version uint32, rootfs, stderr *os.File, f flags.Import) (uuid.UUID, string, error)

	// ExportDistribution writes a distribution's filesystem to a file.
	// stderr must be a pipe.
	ExportDistribution(id uuid.UUID, file, stderr *os.File, f flags.Export) error

	// SetVersion changes the WSL version of a distribution.
	SetVersion(id uuid.UUID, version uint32, stderr *os.File) error

	// TerminateDistribution powers off a single distribution.
	TerminateDistribution(id uuid.UUID) error

	// Launch starts a process inside a distribution.
	Launch(distroName, command string, useCWD bool, stdin, stdout, stderr *os.File) (*os.Process, error)

	// Release drops the session object. No method may be called afterwards.
	Release()
}

// DistributionInfo is one entry of a distribution enumeration.
type DistributionInfo struct {
	Name    string
	ID      uuid.UUID
	State   state.State
	Version uint32
	Flags   uint32
}
