package wsl

// This file contains the public operations. Each one packages its arguments
// into a command, sends it to the background worker, and waits for the
// reply. The ctx bounds only this caller's wait: once sent, a command always
// executes, and cancelling the wait merely discards the reply.

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/ubuntu/decorate"
)

// Shutdown terminates every running WSL instance. Set force to skip the
// graceful per-instance termination.
//
// Equivalent to:
//
//	wsl.exe --shutdown
//
// Shutdown only stops WSL instances: the worker and every handle remain
// usable afterwards, and calling it again succeeds. Use Close to end the
// worker's life.
func (s *Session) Shutdown(ctx context.Context, force bool) (err error) {
	defer decorate.OnError(&err, "could not shut down WSL")

	_, err = request(ctx, s, "Shutdown", func(session backend.Session) (struct{}, error) {
		return struct{}{}, session.Shutdown(force)
	})
	return err
}

// DefaultDistribution returns the GUID of the default distribution.
func (s *Session) DefaultDistribution(ctx context.Context) (id uuid.UUID, err error) {
	defer decorate.OnError(&err, "could not obtain the default distribution")

	return request(ctx, s, "GetDefaultDistribution", func(session backend.Session) (uuid.UUID, error) {
		return session.DefaultDistribution()
	})
}

// SetDefaultDistribution sets a particular distribution as the default one.
//
// Equivalent to:
//
//	wsl.exe --set-default <distro>
func (s *Session) SetDefaultDistribution(ctx context.Context, id uuid.UUID) (err error) {
	defer decorate.OnError(&err, "could not set %s as the default distribution", id)

	_, err = request(ctx, s, "SetDefaultDistribution", func(session backend.Session) (struct{}, error) {
		return struct{}{}, session.SetDefaultDistribution(id)
	})
	return err
}

// EnumerateDistributions returns every registered distribution.
//
// Equivalent to:
//
//	wsl.exe --list --verbose
func (s *Session) EnumerateDistributions(ctx context.Context) (distros []Distribution, err error) {
	defer decorate.OnError(&err, "could not enumerate distributions")

	infos, err := request(ctx, s, "EnumerateDistributions", func(session backend.Session) ([]backend.DistributionInfo, error) {
		return session.EnumerateDistributions()
	})
	if err != nil {
		return nil, err
	}

	distros = make([]Distribution, 0, len(infos))
	for _, info := range infos {
		distros = append(distros, newDistribution(info))
	}
	return distros, nil
}

// DistributionID resolves a distribution name to its GUID.
func (s *Session) DistributionID(ctx context.Context, name string) (id uuid.UUID, err error) {
	defer decorate.OnError(&err, "could not obtain the GUID of %q", name)

	return request(ctx, s, "GetDistributionId", func(session backend.Session) (uuid.UUID, error) {
		return session.DistributionID(name)
	})
}

// RegisterDistribution creates a new distribution in the default location,
// with a copy of the given rootfs as its filesystem. The distribution name
// must be unique. stderr must be a pipe; the service streams its progress
// and error output through it.
//
// It returns the new distribution's GUID and the name the service actually
// installed it under.
func (s *Session) RegisterDistribution(ctx context.Context, name string, version uint32, rootfs, stderr *os.File, f ImportFlags) (id uuid.UUID, installedName string, err error) {
	defer decorate.OnError(&err, "could not register %q", name)

	type registered struct {
		id   uuid.UUID
		name string
	}

	r, err := request(ctx, s, "RegisterDistribution", func(session backend.Session) (registered, error) {
		id, installedName, err := session.RegisterDistribution(name, version, rootfs, stderr, f)
		return registered{id: id, name: installedName}, err
	})
	return r.id, r.name, err
}

// ExportDistribution copies a distribution's filesystem to the given file.
// This copy can later be imported. stderr must be a pipe.
//
// Equivalent to:
//
//	wsl.exe --export <distro> <file>
func (s *Session) ExportDistribution(ctx context.Context, id uuid.UUID, file, stderr *os.File, f ExportFlags) (err error) {
	defer decorate.OnError(&err, "could not export %s", id)

	_, err = request(ctx, s, "ExportDistribution", func(session backend.Session) (struct{}, error) {
		return struct{}{}, session.ExportDistribution(id, file, stderr, f)
	})
	return err
}

// SetVersion changes the WSL version of a distribution. The distribution
// must be stopped. stderr must be a pipe.
//
// Equivalent to:
//
//	wsl.exe --set-version <distro> <version>
func (s *Session) SetVersion(ctx context.Context, id uuid.UUID, version uint32, stderr *os.File) (err error) {
	defer decorate.OnError(&err, "could not set %s to WSL%d", id, version)

	_, err = request(ctx, s, "SetVersion", func(session backend.Session) (struct{}, error) {
		return struct{}{}, session.SetVersion(id, version, stderr)
	})
	return err
}

// TerminateDistribution powers off a single distribution.
//
// Equivalent to:
//
//	wsl.exe --terminate <distro>
func (s *Session) TerminateDistribution(ctx context.Context, id uuid.UUID) (err error) {
	defer decorate.OnError(&err, "could not terminate %s", id)

	_, err = request(ctx, s, "TerminateDistribution", func(session backend.Session) (struct{}, error) {
		return struct{}{}, session.TerminateDistribution(id)
	})
	return err
}

// Launch starts a process inside the named distribution and returns it. The
// standard streams default to the current process' when nil.
func (s *Session) Launch(ctx context.Context, distroName, command string, useCWD bool, stdin, stdout, stderr *os.File) (p *os.Process, err error) {
	defer decorate.OnError(&err, "could not launch %q in %s", command, distroName)

	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return request(ctx, s, "Launch", func(session backend.Session) (*os.Process, error) {
		return session.Launch(distroName, command, useCWD, stdin, stdout, stderr)
	})
}
