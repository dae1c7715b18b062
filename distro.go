package wsl

// This file contains the distribution values reported by the service, and
// the aliases that make the internal shared types part of the public
// surface.

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/flags"
	"github.com/mmastrac/wsl-go/internal/state"
)

// Distribution is a WSL distribution as reported by the session service.
type Distribution struct {
	// Name as shown in `wsl --list`.
	Name string

	// ID is the distribution's GUID.
	ID uuid.UUID

	// State is the distribution's lifecycle state.
	State State

	// Version is the distribution's WSL version, WSL1 or WSL2.
	Version uint32
}

func (d Distribution) String() string {
	return fmt.Sprintf("%s (%s, WSL%d, %s)", d.Name, d.ID, d.Version, d.State)
}

func newDistribution(info backend.DistributionInfo) Distribution {
	return Distribution{
		Name:    info.Name,
		ID:      info.ID,
		State:   info.State,
		Version: info.Version,
	}
}

// State is the lifecycle state of a distribution.
type State = state.State

const (
	Stopped      = state.Stopped
	Running      = state.Running
	Installing   = state.Installing
	Uninstalling = state.Uninstalling
	Upgrading    = state.Upgrading
)

// WSL versions understood by the service.
const (
	WSL1 uint32 = 1
	WSL2 uint32 = 2
)

// ExportFlags modify how ExportDistribution writes a distribution's
// filesystem.
type ExportFlags = flags.Export

const (
	ExportVHD     = flags.ExportVHD
	ExportGzip    = flags.ExportGzip
	ExportXzip    = flags.ExportXzip
	ExportVerbose = flags.ExportVerbose
)

// ImportFlags modify how RegisterDistribution creates a distribution.
type ImportFlags = flags.Import

const (
	ImportVHD            = flags.ImportVHD
	ImportCreateShortcut = flags.ImportCreateShortcut
	ImportNoOOBE         = flags.ImportNoOOBE
	ImportFixedVHD       = flags.ImportFixedVHD
)
