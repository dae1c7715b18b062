package wsl_test

import (
	"errors"
	"testing"

	wsl "github.com/mmastrac/wsl-go"
	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/stretchr/testify/require"
)

func TestInitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("the cause")
	err := &wsl.InitError{Err: cause}

	require.ErrorIs(t, err, cause, "InitError should expose its cause")
	require.Equal(t, "could not initialize the WSL session: the cause", err.Error())
}

func TestOperationError(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		code    hresult.HRESULT
		context string

		want string
	}{
		"known code":               {code: hresult.WSL_E_DISTRO_NOT_FOUND, want: "WSL error: Distribution not found"},
		"known code with context":  {code: hresult.WSL_E_INVALID_USAGE, context: "bad rootfs", want: "WSL error: Invalid usage: bad rootfs"},
		"unknown code":             {code: 0x80049999, want: "unknown WSL error 0x80049999"},
		"unknown code with detail": {code: 0x80049999, context: "boom", want: "unknown WSL error 0x80049999: boom"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := &wsl.OperationError{Code: tc.code, Context: tc.context}
			require.Equal(t, tc.want, err.Error())
		})
	}
}
