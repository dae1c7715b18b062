// Package state defines the lifecycle states the WSL service reports for
// its distributions, so that both back-ends can share them.
package state

import "fmt"

// State is the state of a distribution as reported by the session service
// when enumerating distributions.
type State uint32

// The values match the service's wire representation.
const (
	Invalid State = iota
	Stopped
	Running
	Installing
	Uninstalling
	Upgrading
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "Invalid"
	case Stopped:
		return "Stopped"
	case Running:
		return "Running"
	case Installing:
		return "Installing"
	case Uninstalling:
		return "Uninstalling"
	case Upgrading:
		return "Upgrading"
	}

	return fmt.Sprintf("Unknown state %d", uint32(s))
}
