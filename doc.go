// Package wsl provides a thread-safe handle to the Windows Subsystem for
// Linux user session service.
//
// The service is a COM object that may only ever be touched from the thread
// that initialized its apartment. New spawns a background worker that owns
// that thread for its whole lifetime; every operation on a Session is sent
// to the worker and executed there, one at a time, in send order. A Session
// and its clones can therefore be used freely from any number of goroutines.
//
// This package also contains a mock WSL backend which can be useful for
// testing, as tests need neither Windows nor a WSL installation. This mock
// back-end is disabled by default, and can be enabled by building with the
// wslmock tag and using the context returned by the WithMock function.
package wsl
