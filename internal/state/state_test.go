package state_test

import (
	"testing"

	"github.com/mmastrac/wsl-go/internal/state"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		state state.State
		want  string
	}{
		"invalid":      {state: state.Invalid, want: "Invalid"},
		"stopped":      {state: state.Stopped, want: "Stopped"},
		"running":      {state: state.Running, want: "Running"},
		"installing":   {state: state.Installing, want: "Installing"},
		"uninstalling": {state: state.Uninstalling, want: "Uninstalling"},
		"upgrading":    {state: state.Upgrading, want: "Upgrading"},
		"out of range": {state: state.State(42), want: "Unknown state 42"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, tc.state.String())
		})
	}
}
