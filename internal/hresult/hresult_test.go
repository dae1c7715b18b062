package hresult_test

import (
	"testing"

	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/stretchr/testify/require"
)

func TestFailed(t *testing.T) {
	t.Parallel()

	require.False(t, hresult.OK.Failed())
	require.True(t, hresult.WSL_E_DISTRO_NOT_FOUND.Failed())
	require.True(t, hresult.ClassNotRegistered.Failed())
}

func TestMessage(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		code hresult.HRESULT
		want string
	}{
		"known WSL code":       {code: hresult.WSL_E_VM_CRASHED, want: "VM crashed"},
		"class not registered": {code: hresult.ClassNotRegistered, want: "WSL version not supported"},
		"unknown code":         {code: 0x80041234, want: ""},
		"success code":         {code: hresult.OK, want: ""},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, hresult.Message(tc.code))
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0x80040300", hresult.WSL_E_DEFAULT_DISTRO_NOT_FOUND.String())
}
