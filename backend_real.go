//go:build !wslmock

package wsl

import (
	"context"

	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/backend/windows"
)

func selectBackend(ctx context.Context) backend.Backend {
	return windows.Backend{}
}
