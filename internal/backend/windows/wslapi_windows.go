//go:build windows

package windows

// This file contains the wslapi.dll imports. Launching a process goes
// through WslLaunch rather than the session's CreateLxProcess: the latter
// needs the whole interop relay that wsl.exe implements, while WslLaunch
// hands back a plain process handle.

import (
	"errors"
	"os"
	"syscall"
	"unsafe"

	"github.com/ubuntu/decorate"
	"golang.org/x/sys/windows"
)

var (
	wslAPIDll    = syscall.NewLazyDLL("wslapi.dll")
	apiWslLaunch = wslAPIDll.NewProc("WslLaunch")
)

// Windows' typedefs.
type wBOOL = int // Windows' BOOL

// Launch is a wrapper around the WslLaunch function in the wslApi.dll Win32
// library. It starts command inside the named distribution.
func (s *session) Launch(
	distroName string,
	command string,
	useCWD bool,
	stdin *os.File,
	stdout *os.File,
	stderr *os.File) (process *os.Process, err error) {
	defer decorate.OnError(&err, "WslLaunch")

	distroUTF16, err := syscall.UTF16PtrFromString(distroName)
	if err != nil {
		return nil, errors.New("could not convert distro name to UTF16")
	}

	commandUTF16, err := syscall.UTF16PtrFromString(command)
	if err != nil {
		return nil, errors.New("could not convert command to UTF16")
	}

	var useCwdInt wBOOL
	if useCWD {
		useCwdInt = 1
	}

	var handle windows.Handle
	_, err = callDll(apiWslLaunch,
		uintptr(unsafe.Pointer(distroUTF16)),
		uintptr(unsafe.Pointer(commandUTF16)),
		uintptr(useCwdInt),
		stdin.Fd(),
		stdout.Fd(),
		stderr.Fd(),
		uintptr(unsafe.Pointer(&handle)))
	if err != nil {
		return nil, err
	}

	if handle == windows.Handle(0) {
		return nil, errors.New("syscall returned a null handle")
	}

	pid, err := windows.GetProcessId(handle)
	if err != nil {
		return nil, errors.New("failed to find launched process")
	}

	return os.FindProcess(int(pid))
}

// callDll finds the DLL entry point and calls it, translating a non-zero
// HRESULT into an error.
func callDll(proc *syscall.LazyProc, args ...uintptr) (uintptr, error) {
	if err := proc.Find(); err != nil {
		return 0, err
	}

	r, _, _ := proc.Call(args...)
	if r != 0 {
		return r, errors.New("failed syscall to " + proc.Name)
	}
	return r, nil
}
