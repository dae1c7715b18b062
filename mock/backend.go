// Package mock mocks the WSL user session service, useful for tests as it
// allows parallelism, decoupling, and execution speed: tests need neither
// Windows nor a WSL installation.
package mock

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/state"
)

// Backend implements the backend.Backend interface with an in-memory
// distribution registry. It also records every session call so tests can
// assert on execution order and apartment lifecycle.
type Backend struct {
	mu sync.Mutex

	apartmentInits   int
	apartmentUninits int
	shutdowns        int
	calls            []string

	active     int
	overlapped bool

	distros       map[uuid.UUID]*distro
	defaultDistro uuid.UUID

	// Error injectors. These all have the form of:
	//
	// NameOfTheFunctionError
	//
	// Their effect is to make the relevant function return an error of type
	// mock.Error instantly upon being called.
	InitializeApartmentError    bool
	NewSessionError             bool
	ShutdownError               bool
	DefaultDistributionError    bool
	SetDefaultDistributionError bool
	EnumerateDistributionsError bool
	DistributionIDError         bool
	RegisterDistributionError   bool
	ExportDistributionError     bool
	SetVersionError             bool
	TerminateDistributionError  bool
	LaunchError                 bool

	// InitDelay makes InitializeApartment sleep before returning, useful to
	// test bounded start-up waits.
	InitDelay time.Duration

	// CallDelay makes every session call sleep while it executes, useful to
	// test callers that stop waiting for a reply.
	CallDelay time.Duration
}

type distro struct {
	name    string
	version uint32
	state   state.State
}

// New constructs a new mocked back-end for the WSL session service.
func New() *Backend {
	return &Backend{
		distros: make(map[uuid.UUID]*distro),
	}
}

// InitializeApartment pretends to initialize COM on the calling thread.
func (b *Backend) InitializeApartment() error {
	if b.InitDelay > 0 {
		time.Sleep(b.InitDelay)
	}
	if b.InitializeApartmentError {
		return Error{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.apartmentInits++
	return nil
}

// UninitializeApartment pretends to close COM on the calling thread.
func (b *Backend) UninitializeApartment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.apartmentUninits++
}

// NewSession returns a session backed by this back-end's registry.
func (b *Backend) NewSession() (backend.Session, error) {
	if b.NewSessionError {
		return nil, Error{}
	}
	return &session{b: b}, nil
}

// ApartmentInits returns how many times the apartment has been initialized.
func (b *Backend) ApartmentInits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apartmentInits
}

// ApartmentUninits returns how many times the apartment has been closed.
func (b *Backend) ApartmentUninits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.apartmentUninits
}

// Shutdowns returns how many times the session's Shutdown has executed.
func (b *Backend) Shutdowns() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shutdowns
}

// Calls returns every session call executed so far, in execution order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.calls...)
}

// Overlapped reports whether two session calls were ever in flight at the
// same time. It must stay false: the worker serializes all access.
func (b *Backend) Overlapped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlapped
}

// ResetErrors sets all the error flags to false.
func (b *Backend) ResetErrors() {
	b.InitializeApartmentError = false
	b.NewSessionError = false
	b.ShutdownError = false
	b.DefaultDistributionError = false
	b.SetDefaultDistributionError = false
	b.EnumerateDistributionsError = false
	b.DistributionIDError = false
	b.RegisterDistributionError = false
	b.ExportDistributionError = false
	b.SetVersionError = false
	b.TerminateDistributionError = false
	b.LaunchError = false
}

// Error is an error triggered by the mock, and not a real problem.
type Error struct{}

func (err Error) Error() string {
	return "error triggered by mock"
}
