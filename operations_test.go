//go:build wslmock

package wsl_test

// This file tests the operations forwarded to the session service, and the
// error pass-through from the service to the caller.

import (
	"testing"

	"github.com/google/uuid"
	wsl "github.com/mmastrac/wsl-go"
	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/mmastrac/wsl-go/mock"
	"github.com/stretchr/testify/require"
)

// requireCode asserts that err carries the given WSL service error code.
func requireCode(t *testing.T, err error, code hresult.HRESULT) {
	t.Helper()

	var opErr *wsl.OperationError
	require.ErrorAs(t, err, &opErr, "the error should come from the service")
	require.Equal(t, code, opErr.Code, "unexpected service error code")
}

func TestDefaultDistribution(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		register      bool
		injectedError bool

		wantErr     bool
		wantErrCode hresult.HRESULT
	}{
		"nominal": {register: true},

		"error when nothing is registered": {wantErr: true, wantErrCode: hresult.WSL_E_DEFAULT_DISTRO_NOT_FOUND},
		"error when the service fails":     {register: true, injectedError: true, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, b := testSetup(t)
			s := newSession(t, ctx)

			var want uuid.UUID
			if tc.register {
				var err error
				want, _, err = s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
				require.NoError(t, err, "Setup: could not register the distro")
			}
			b.DefaultDistributionError = tc.injectedError

			got, err := s.DefaultDistribution(ctx)
			if tc.wantErr {
				require.Error(t, err, "DefaultDistribution should have failed")
				if tc.wantErrCode != 0 {
					requireCode(t, err, tc.wantErrCode)
				}
				return
			}

			require.NoError(t, err, "DefaultDistribution should have succeeded")
			require.Equal(t, want, got, "the first registered distro should be the default")
		})
	}
}

func TestSetDefaultDistribution(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	_, _, err := s.RegisterDistribution(ctx, "first", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")
	second, _, err := s.RegisterDistribution(ctx, "second", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")

	require.NoError(t, s.SetDefaultDistribution(ctx, second))

	got, err := s.DefaultDistribution(ctx)
	require.NoError(t, err)
	require.Equal(t, second, got, "the default should have moved to the second distro")

	err = s.SetDefaultDistribution(ctx, uuid.New())
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_FOUND)
}

func TestRegisterDistribution(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		distroName    string
		version       uint32
		injectedError bool

		wantErr     bool
		wantErrCode hresult.HRESULT
	}{
		"nominal":   {distroName: "Ubuntu-24.04", version: wsl.WSL2},
		"with WSL1": {distroName: "Ubuntu-24.04", version: wsl.WSL1},

		"error with an empty name":      {version: wsl.WSL2, wantErr: true, wantErrCode: hresult.WSL_E_DISTRIBUTION_NAME_NEEDED},
		"error with an unknown version": {distroName: "Ubuntu-24.04", version: 7, wantErr: true, wantErrCode: hresult.WSL_E_INVALID_USAGE},
		"error when the service fails":  {distroName: "Ubuntu-24.04", version: wsl.WSL2, injectedError: true, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, b := testSetup(t)
			s := newSession(t, ctx)
			b.RegisterDistributionError = tc.injectedError

			id, installedName, err := s.RegisterDistribution(ctx, tc.distroName, tc.version, nil, nil, 0)
			if tc.wantErr {
				require.Error(t, err, "RegisterDistribution should have failed")
				if tc.wantErrCode != 0 {
					requireCode(t, err, tc.wantErrCode)
				}
				return
			}

			require.NoError(t, err, "RegisterDistribution should have succeeded")
			require.NotEqual(t, uuid.Nil, id, "the new distro should have a GUID")
			require.Equal(t, tc.distroName, installedName)

			// Double registration is disallowed.
			_, _, err = s.RegisterDistribution(ctx, tc.distroName, tc.version, nil, nil, 0)
			requireCode(t, err, hresult.WSL_E_INVALID_USAGE)
		})
	}
}

func TestEnumerateDistributions(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	distros, err := s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Empty(t, distros, "nothing should be registered yet")

	alpha, _, err := s.RegisterDistribution(ctx, "alpha", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")
	beta, _, err := s.RegisterDistribution(ctx, "beta", wsl.WSL1, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")

	distros, err = s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Equal(t, []wsl.Distribution{
		{Name: "alpha", ID: alpha, State: wsl.Stopped, Version: wsl.WSL2},
		{Name: "beta", ID: beta, State: wsl.Stopped, Version: wsl.WSL1},
	}, distros)
}

func TestDistributionID(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	want, _, err := s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")

	got, err := s.DistributionID(ctx, "Ubuntu-24.04")
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = s.DistributionID(ctx, "IAmNotRegistered")
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_FOUND)
}

func TestExportDistribution(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		register      bool
		injectedError bool

		wantErr     bool
		wantErrCode hresult.HRESULT
	}{
		"nominal": {register: true},

		"error when the distro does not exist": {wantErr: true, wantErrCode: hresult.WSL_E_DISTRO_NOT_FOUND},
		"error when the service fails":         {register: true, injectedError: true, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx, b := testSetup(t)
			s := newSession(t, ctx)

			id := uuid.New()
			if tc.register {
				var err error
				id, _, err = s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
				require.NoError(t, err, "Setup: could not register the distro")
			}
			b.ExportDistributionError = tc.injectedError

			err := s.ExportDistribution(ctx, id, nil, nil, wsl.ExportGzip)
			if tc.wantErr {
				require.Error(t, err, "ExportDistribution should have failed")
				if tc.wantErrCode != 0 {
					requireCode(t, err, tc.wantErrCode)
				}
				return
			}
			require.NoError(t, err, "ExportDistribution should have succeeded")
		})
	}
}

func TestSetVersion(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	id, _, err := s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")

	require.NoError(t, s.SetVersion(ctx, id, wsl.WSL1, nil))

	distros, err := s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Len(t, distros, 1)
	require.Equal(t, wsl.WSL1, distros[0].Version)

	err = s.SetVersion(ctx, id, 7, nil)
	requireCode(t, err, hresult.WSL_E_INVALID_USAGE)

	err = s.SetVersion(ctx, uuid.New(), wsl.WSL2, nil)
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_FOUND)
}

func TestLaunchAndTerminate(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	id, _, err := s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")

	p, err := s.Launch(ctx, "Ubuntu-24.04", "/bin/true", false, nil, nil, nil)
	require.NoError(t, err, "Launch should have succeeded")
	require.NotNil(t, p)

	distros, err := s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Len(t, distros, 1)
	require.Equal(t, wsl.Running, distros[0].State, "the distro should be running after a launch")

	// A running distro refuses a version change.
	err = s.SetVersion(ctx, id, wsl.WSL1, nil)
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_STOPPED)

	require.NoError(t, s.TerminateDistribution(ctx, id))

	distros, err = s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Equal(t, wsl.Stopped, distros[0].State, "the distro should be stopped after a termination")

	err = s.TerminateDistribution(ctx, uuid.New())
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_FOUND)

	_, err = s.Launch(ctx, "IAmNotRegistered", "/bin/true", false, nil, nil, nil)
	requireCode(t, err, hresult.WSL_E_DISTRO_NOT_FOUND)
}

func TestShutdownStopsInstances(t *testing.T) {
	t.Parallel()

	ctx, _ := testSetup(t)
	s := newSession(t, ctx)

	_, _, err := s.RegisterDistribution(ctx, "Ubuntu-24.04", wsl.WSL2, nil, nil, 0)
	require.NoError(t, err, "Setup: could not register the distro")
	_, err = s.Launch(ctx, "Ubuntu-24.04", "/bin/true", false, nil, nil, nil)
	require.NoError(t, err, "Setup: could not launch the distro")

	require.NoError(t, s.Shutdown(ctx, false))

	distros, err := s.EnumerateDistributions(ctx)
	require.NoError(t, err)
	require.Len(t, distros, 1)
	require.Equal(t, wsl.Stopped, distros[0].State, "shutdown should stop every instance")
}

func TestMockErrorInjection(t *testing.T) {
	t.Parallel()

	ctx, b := testSetup(t)
	s := newSession(t, ctx)

	b.EnumerateDistributionsError = true
	_, err := s.EnumerateDistributions(ctx)
	require.Error(t, err, "the injected error should surface")

	var mockErr mock.Error
	require.ErrorAs(t, err, &mockErr, "the injected error should pass through unmodified")

	b.ResetErrors()
	_, err = s.EnumerateDistributions(ctx)
	require.NoError(t, err, "the worker should be unaffected by a failed operation")
}
