// Package windows contains the back-end that drives the real WSL user
// session service, through COM for the session calls and through wslapi.dll
// for launching processes.
package windows

// Backend implements the backend.Backend interface by calling into the
// WSL service.
type Backend struct{}
