//go:build wslmock

package wsl

import (
	"context"

	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/backend/windows"
	"github.com/mmastrac/wsl-go/mock"
)

type backendQueryType int

const backendQuery backendQueryType = 0

// WithMock adds the mock back-end to the context.
func WithMock(ctx context.Context, backend *mock.Backend) context.Context {
	return context.WithValue(ctx, backendQuery, backend)
}

func selectBackend(ctx context.Context) backend.Backend {
	v := ctx.Value(backendQuery)

	if v == nil {
		return windows.Backend{}
	}

	//nolint: forcetypeassert // The panic is expected and welcome
	return v.(*mock.Backend)
}
