package mock

// This file mocks the ILxssUserSession calls against the in-memory registry.

import (
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/flags"
	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/mmastrac/wsl-go/internal/state"
)

// session implements the backend.Session interface.
type session struct {
	b *Backend
}

// enter records the call and tracks how many calls are in flight, so tests
// can prove the worker never executes two commands concurrently. The
// returned function must be deferred.
func (s *session) enter(op string) func() {
	b := s.b

	b.mu.Lock()
	b.calls = append(b.calls, op)
	b.active++
	if b.active > 1 {
		b.overlapped = true
	}
	b.mu.Unlock()

	if b.CallDelay > 0 {
		time.Sleep(b.CallDelay)
	}

	return func() {
		b.mu.Lock()
		b.active--
		b.mu.Unlock()
	}
}

// Shutdown stops every registered distribution.
func (s *session) Shutdown(force bool) error {
	defer s.enter("Shutdown")()
	if s.b.ShutdownError {
		return Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	s.b.shutdowns++
	for _, d := range s.b.distros {
		d.state = state.Stopped
	}
	return nil
}

// DefaultDistribution returns the GUID of the default distribution.
func (s *session) DefaultDistribution() (uuid.UUID, error) {
	defer s.enter("DefaultDistribution")()
	if s.b.DefaultDistributionError {
		return uuid.Nil, Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.b.defaultDistro == uuid.Nil {
		return uuid.Nil, &hresult.Error{Code: hresult.WSL_E_DEFAULT_DISTRO_NOT_FOUND}
	}
	return s.b.defaultDistro, nil
}

// SetDefaultDistribution makes the given distribution the default one.
func (s *session) SetDefaultDistribution(id uuid.UUID) error {
	defer s.enter("SetDefaultDistribution " + id.String())()
	if s.b.SetDefaultDistributionError {
		return Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.distros[id]; !ok {
		return &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
	}
	s.b.defaultDistro = id
	return nil
}

// EnumerateDistributions lists the registered distributions sorted by name.
func (s *session) EnumerateDistributions() ([]backend.DistributionInfo, error) {
	defer s.enter("EnumerateDistributions")()
	if s.b.EnumerateDistributionsError {
		return nil, Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	distros := make([]backend.DistributionInfo, 0, len(s.b.distros))
	for id, d := range s.b.distros {
		distros = append(distros, backend.DistributionInfo{
			Name:    d.name,
			ID:      id,
			State:   d.state,
			Version: d.version,
		})
	}
	sort.Slice(distros, func(i, j int) bool { return distros[i].Name < distros[j].Name })
	return distros, nil
}

// DistributionID resolves a distribution name to its GUID.
func (s *session) DistributionID(name string) (uuid.UUID, error) {
	defer s.enter("DistributionID " + name)()
	if s.b.DistributionIDError {
		return uuid.Nil, Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	for id, d := range s.b.distros {
		if d.name == name {
			return id, nil
		}
	}
	return uuid.Nil, &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
}

// RegisterDistribution creates a new distribution. The rootfs and stderr
// files are accepted but not read: the mock fabricates the filesystem. The
// first registered distribution becomes the default, like in real WSL.
func (s *session) RegisterDistribution(name string, version uint32, rootfs, stderr *os.File, f flags.Import) (uuid.UUID, string, error) {
	defer s.enter("RegisterDistribution " + name)()
	if s.b.RegisterDistributionError {
		return uuid.Nil, "", Error{}
	}

	if name == "" {
		return uuid.Nil, "", &hresult.Error{Code: hresult.WSL_E_DISTRIBUTION_NAME_NEEDED}
	}
	if version != 1 && version != 2 {
		return uuid.Nil, "", &hresult.Error{Code: hresult.WSL_E_INVALID_USAGE, Context: "version must be 1 or 2"}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	for _, d := range s.b.distros {
		if d.name == name {
			return uuid.Nil, "", &hresult.Error{Code: hresult.WSL_E_INVALID_USAGE, Context: "name already registered"}
		}
	}

	id := uuid.New()
	s.b.distros[id] = &distro{name: name, version: version, state: state.Stopped}
	if s.b.defaultDistro == uuid.Nil {
		s.b.defaultDistro = id
	}
	return id, name, nil
}

// ExportDistribution pretends to write the distribution's filesystem.
func (s *session) ExportDistribution(id uuid.UUID, file, stderr *os.File, f flags.Export) error {
	defer s.enter("ExportDistribution " + id.String())()
	if s.b.ExportDistributionError {
		return Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if _, ok := s.b.distros[id]; !ok {
		return &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
	}
	return nil
}

// SetVersion changes the WSL version of a distribution.
func (s *session) SetVersion(id uuid.UUID, version uint32, stderr *os.File) error {
	defer s.enter("SetVersion " + id.String())()
	if s.b.SetVersionError {
		return Error{}
	}

	if version != 1 && version != 2 {
		return &hresult.Error{Code: hresult.WSL_E_INVALID_USAGE, Context: "version must be 1 or 2"}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	d, ok := s.b.distros[id]
	if !ok {
		return &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
	}
	if d.state != state.Stopped {
		return &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_STOPPED}
	}
	d.version = version
	return nil
}

// TerminateDistribution powers off a single distribution.
func (s *session) TerminateDistribution(id uuid.UUID) error {
	defer s.enter("TerminateDistribution " + id.String())()
	if s.b.TerminateDistributionError {
		return Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	d, ok := s.b.distros[id]
	if !ok {
		return &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
	}
	d.state = state.Stopped
	return nil
}

// Launch pretends to start a process in a distribution. It returns the
// current process so callers have something real to inspect.
func (s *session) Launch(distroName, command string, useCWD bool, stdin, stdout, stderr *os.File) (*os.Process, error) {
	defer s.enter("Launch " + distroName)()
	if s.b.LaunchError {
		return nil, Error{}
	}

	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	for _, d := range s.b.distros {
		if d.name == distroName {
			d.state = state.Running
			return os.FindProcess(os.Getpid())
		}
	}
	return nil, &hresult.Error{Code: hresult.WSL_E_DISTRO_NOT_FOUND}
}

// Release drops the session. The mock has nothing to free.
func (s *session) Release() {}
