//go:build windows

package windows

// This file contains the calls into the ILxssUserSession COM interface.
// Every method must run on the thread that initialized the apartment; the
// session worker enforces that.

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/flags"
	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/mmastrac/wsl-go/internal/state"
	"github.com/ubuntu/decorate"
	"golang.org/x/sys/windows"
)

type session struct {
	ptr uintptr
}

// sessionVtbl mirrors the ILxssUserSession vtable. The entries this back-end
// does not call yet are still listed so that the offsets of the ones it does
// call are right.
type sessionVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr

	createInstance               uintptr
	registerDistribution         uintptr
	registerDistributionPipe     uintptr
	getDistributionID            uintptr
	terminateDistribution        uintptr
	unregisterDistribution       uintptr
	configureDistribution        uintptr
	getDistributionConfiguration uintptr
	getDefaultDistribution       uintptr
	resizeDistribution           uintptr
	setDefaultDistribution       uintptr
	setSparse                    uintptr
	enumerateDistributions       uintptr
	createLxProcess              uintptr
	setVersion                   uintptr
	exportDistribution           uintptr
	exportDistributionPipe       uintptr
	attachDisk                   uintptr
	detachDisk                   uintptr
	mountDisk                    uintptr
	shutdown                     uintptr
	importDistributionInplace    uintptr
	moveDistribution             uintptr
}

func (s *session) vtbl() *sessionVtbl {
	return *(**sessionVtbl)(unsafe.Pointer(s.ptr))
}

// lxssErrorInfo mirrors the LXSS_ERROR_INFO struct the service fills in on
// failure.
type lxssErrorInfo struct {
	flags        uint32
	context      uint64
	message      *uint16
	warnings     *uint16
	warningsPipe uint32
}

// lxssEnumerateInfo mirrors one LXSS_ENUMERATE_INFO entry.
type lxssEnumerateInfo struct {
	distroGUID windows.GUID
	state      uint32
	version    uint32
	flags      uint32
	distroName [257]uint16
}

// intoError translates an HRESULT and the error info the service filled in
// into an error, freeing the COM-allocated strings.
func intoError(r uintptr, e *lxssErrorInfo) error {
	defer func() {
		if e.message != nil {
			procCoTaskMemFree.Call(uintptr(unsafe.Pointer(e.message)))
		}
		if e.warnings != nil {
			procCoTaskMemFree.Call(uintptr(unsafe.Pointer(e.warnings)))
		}
	}()

	hr := hresult.HRESULT(uint32(r))
	if !hr.Failed() {
		return nil
	}

	var context string
	if e.message != nil {
		context = windows.UTF16PtrToString(e.message)
	}
	return &hresult.Error{Code: hr, Context: context}
}

func (s *session) Release() {
	if s.ptr == 0 {
		return
	}
	syscall.SyscallN(s.vtbl().release, s.ptr)
	s.ptr = 0
}

// Shutdown terminates every running WSL instance. Unlike the other calls,
// the service does not report error info for this one.
func (s *session) Shutdown(force bool) (err error) {
	defer decorate.OnError(&err, "Shutdown")

	var f uintptr
	if force {
		f = 1
	}

	r, _, _ := syscall.SyscallN(s.vtbl().shutdown, s.ptr, f)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return &hresult.Error{Code: hr}
	}
	return nil
}

// DefaultDistribution returns the GUID of the default distribution.
func (s *session) DefaultDistribution() (id uuid.UUID, err error) {
	defer decorate.OnError(&err, "GetDefaultDistribution")

	var e lxssErrorInfo
	var g windows.GUID
	r, _, _ := syscall.SyscallN(s.vtbl().getDefaultDistribution, s.ptr,
		uintptr(unsafe.Pointer(&e)),
		uintptr(unsafe.Pointer(&g)),
	)
	if err := intoError(r, &e); err != nil {
		return id, err
	}
	return toUUID(g), nil
}

// SetDefaultDistribution makes the given distribution the default one.
func (s *session) SetDefaultDistribution(id uuid.UUID) (err error) {
	defer decorate.OnError(&err, "SetDefaultDistribution %s", id)

	var e lxssErrorInfo
	g := toGUID(id)
	r, _, _ := syscall.SyscallN(s.vtbl().setDefaultDistribution, s.ptr,
		uintptr(unsafe.Pointer(&g)),
		uintptr(unsafe.Pointer(&e)),
	)
	return intoError(r, &e)
}

// TerminateDistribution powers off a single distribution.
func (s *session) TerminateDistribution(id uuid.UUID) (err error) {
	defer decorate.OnError(&err, "TerminateDistribution %s", id)

	var e lxssErrorInfo
	g := toGUID(id)
	r, _, _ := syscall.SyscallN(s.vtbl().terminateDistribution, s.ptr,
		uintptr(unsafe.Pointer(&g)),
		uintptr(unsafe.Pointer(&e)),
	)
	return intoError(r, &e)
}

// DistributionID resolves a distribution name to its GUID.
func (s *session) DistributionID(name string) (id uuid.UUID, err error) {
	defer decorate.OnError(&err, "GetDistributionId %q", name)

	name16, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return id, err
	}

	var e lxssErrorInfo
	var g windows.GUID
	r, _, _ := syscall.SyscallN(s.vtbl().getDistributionID, s.ptr,
		uintptr(unsafe.Pointer(name16)),
		0, // flags
		uintptr(unsafe.Pointer(&e)),
		uintptr(unsafe.Pointer(&g)),
	)
	if err := intoError(r, &e); err != nil {
		return id, err
	}
	return toUUID(g), nil
}

// EnumerateDistributions lists every registered distribution.
func (s *session) EnumerateDistributions() (distros []backend.DistributionInfo, err error) {
	defer decorate.OnError(&err, "EnumerateDistributions")

	var e lxssErrorInfo
	var count uint32
	var infos *lxssEnumerateInfo
	r, _, _ := syscall.SyscallN(s.vtbl().enumerateDistributions, s.ptr,
		uintptr(unsafe.Pointer(&count)),
		uintptr(unsafe.Pointer(&infos)),
		uintptr(unsafe.Pointer(&e)),
	)
	if err := intoError(r, &e); err != nil {
		return nil, err
	}
	defer procCoTaskMemFree.Call(uintptr(unsafe.Pointer(infos)))

	distros = make([]backend.DistributionInfo, 0, count)
	for _, info := range unsafe.Slice(infos, count) {
		distros = append(distros, backend.DistributionInfo{
			Name:    windows.UTF16ToString(info.distroName[:]),
			ID:      toUUID(info.distroGUID),
			State:   state.State(info.state),
			Version: info.version,
			Flags:   info.flags,
		})
	}
	return distros, nil
}

// RegisterDistribution creates a new distribution from a rootfs file in the
// default location. It returns the new distribution's GUID and the name the
// service installed it under.
func (s *session) RegisterDistribution(name string, version uint32, rootfs, stderr *os.File, f flags.Import) (id uuid.UUID, installedName string, err error) {
	defer decorate.OnError(&err, "RegisterDistribution %q", name)

	// Validated here rather than caller-side so the handles are known to
	// still be valid when they cross the COM boundary.
	if err := validateFile(rootfs, fileTypeDisk, "rootfs"); err != nil {
		return id, "", err
	}
	if err := validateFile(stderr, fileTypePipe, "stderr"); err != nil {
		return id, "", err
	}

	name16, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return id, "", err
	}

	var e lxssErrorInfo
	var g windows.GUID
	var installed *uint16
	r, _, _ := syscall.SyscallN(s.vtbl().registerDistribution, s.ptr,
		uintptr(unsafe.Pointer(name16)),
		uintptr(version),
		rootfs.Fd(),
		stderr.Fd(),
		0, // target directory: service default
		uintptr(f),
		0, // vhd size: service default
		0, // package family name: none
		uintptr(unsafe.Pointer(&installed)),
		uintptr(unsafe.Pointer(&e)),
		uintptr(unsafe.Pointer(&g)),
	)
	if err := intoError(r, &e); err != nil {
		return id, "", err
	}

	installedName = windows.UTF16PtrToString(installed)
	procCoTaskMemFree.Call(uintptr(unsafe.Pointer(installed)))
	return toUUID(g), installedName, nil
}

// ExportDistribution writes a distribution's filesystem to a file.
func (s *session) ExportDistribution(id uuid.UUID, file, stderr *os.File, f flags.Export) (err error) {
	defer decorate.OnError(&err, "ExportDistribution %s", id)

	if err := validateFile(file, fileTypeDisk, "file"); err != nil {
		return err
	}
	if err := validateFile(stderr, fileTypePipe, "stderr"); err != nil {
		return err
	}

	var e lxssErrorInfo
	g := toGUID(id)
	r, _, _ := syscall.SyscallN(s.vtbl().exportDistribution, s.ptr,
		uintptr(unsafe.Pointer(&g)),
		file.Fd(),
		stderr.Fd(),
		uintptr(f),
		uintptr(unsafe.Pointer(&e)),
	)
	return intoError(r, &e)
}

// SetVersion changes the WSL version of a distribution.
func (s *session) SetVersion(id uuid.UUID, version uint32, stderr *os.File) (err error) {
	defer decorate.OnError(&err, "SetVersion %s", id)

	if err := validateFile(stderr, fileTypePipe, "stderr"); err != nil {
		return err
	}

	var e lxssErrorInfo
	g := toGUID(id)
	r, _, _ := syscall.SyscallN(s.vtbl().setVersion, s.ptr,
		uintptr(unsafe.Pointer(&g)),
		uintptr(version),
		stderr.Fd(),
		uintptr(unsafe.Pointer(&e)),
	)
	return intoError(r, &e)
}

// Windows' file types, from winbase.h.
const (
	fileTypeDisk = 0x1
	fileTypePipe = 0x3
)

func fileTypeName(t uint32) string {
	switch t {
	case fileTypeDisk:
		return "file"
	case fileTypePipe:
		return "pipe"
	case 0x2:
		return "character device"
	case 0x8000:
		return "remote file"
	}
	return "unknown type"
}

// validateFile checks that a file is of the type the service expects before
// its handle crosses the COM boundary.
func validateFile(f *os.File, wantType uint32, name string) error {
	if f == nil {
		return &hresult.Error{Code: hresult.WSL_E_INVALID_USAGE, Context: fmt.Sprintf("%s is missing", name)}
	}

	t, err := windows.GetFileType(windows.Handle(f.Fd()))
	if err != nil {
		return &hresult.Error{Code: hresult.WSL_E_INVALID_USAGE, Context: fmt.Sprintf("%s is not a valid file handle: %v", name, err)}
	}
	if t != wantType {
		return &hresult.Error{
			Code:    hresult.WSL_E_INVALID_USAGE,
			Context: fmt.Sprintf("%s must be a %s (got a %s)", name, fileTypeName(wantType), fileTypeName(t)),
		}
	}
	return nil
}
