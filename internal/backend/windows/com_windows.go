//go:build windows

package windows

// This file contains the COM plumbing: apartment lifecycle, creation of the
// session object, and the security blanket adjustment the service requires.

import (
	"encoding/binary"
	"syscall"
	"unsafe"

	"github.com/google/uuid"
	"github.com/mmastrac/wsl-go/internal/backend"
	"github.com/mmastrac/wsl-go/internal/hresult"
	"github.com/ubuntu/decorate"
	"golang.org/x/sys/windows"
)

var (
	ole32                    = syscall.NewLazyDLL("ole32.dll")
	procCoInitializeEx       = ole32.NewProc("CoInitializeEx")
	procCoInitializeSecurity = ole32.NewProc("CoInitializeSecurity")
	procCoUninitialize       = ole32.NewProc("CoUninitialize")
	procCoCreateInstance     = ole32.NewProc("CoCreateInstance")
	procCoTaskMemFree        = ole32.NewProc("CoTaskMemFree")
)

// COM constants, from objbase.h, wtypesbase.h and objidl.h.
const (
	coinitMultithreaded    = 0x0
	clsctxLocalServer      = 0x4
	rpcAuthnLevelConnect   = 2
	rpcImpLevelIdentify    = 2
	rpcImpLevelImpersonate = 3
	eoacStaticCloaking     = 0x20
	eoacDynamicCloaking    = 0x40
)

var (
	clsidLxssUserSession = comGUID("a9b7a1b9-0671-405c-95f1-e0612cb4ce7e")
	iidILxssUserSession  = comGUID("38541bdc-f54f-4ceb-85d0-37f0f3d2617e")
	iidIClientSecurity   = comGUID("0000013d-0000-0000-c000-000000000046")
)

func comGUID(s string) windows.GUID {
	return toGUID(uuid.MustParse(s))
}

// toGUID converts a UUID to Windows' mixed-endianness GUID layout.
func toGUID(u uuid.UUID) windows.GUID {
	var g windows.GUID
	g.Data1 = binary.BigEndian.Uint32(u[0:4])
	g.Data2 = binary.BigEndian.Uint16(u[4:6])
	g.Data3 = binary.BigEndian.Uint16(u[6:8])
	copy(g.Data4[:], u[8:16])
	return g
}

func toUUID(g windows.GUID) uuid.UUID {
	var u uuid.UUID
	binary.BigEndian.PutUint32(u[0:4], g.Data1)
	binary.BigEndian.PutUint16(u[4:6], g.Data2)
	binary.BigEndian.PutUint16(u[6:8], g.Data3)
	copy(u[8:16], g.Data4[:])
	return u
}

// InitializeApartment initializes COM on the calling thread and sets the
// process-wide security defaults the session service expects.
func (Backend) InitializeApartment() (err error) {
	defer decorate.OnError(&err, "could not initialize COM")

	r, _, _ := procCoInitializeEx.Call(0, coinitMultithreaded)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return &hresult.Error{Code: hr}
	}

	r, _, _ = procCoInitializeSecurity.Call(
		0,           // security descriptor: none
		^uintptr(0), // authentication services: -1, let COM choose
		0,
		0, // reserved
		rpcAuthnLevelConnect,
		rpcImpLevelIdentify,
		0, // authentication list: default
		eoacStaticCloaking,
		0, // reserved
	)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		procCoUninitialize.Call()
		return &hresult.Error{Code: hr}
	}

	return nil
}

// UninitializeApartment closes COM on the calling thread.
func (Backend) UninitializeApartment() {
	procCoUninitialize.Call()
}

// NewSession connects to the WSL service's ILxssUserSession object.
func (Backend) NewSession() (s backend.Session, err error) {
	defer decorate.OnError(&err, "could not connect to the WSL service")

	var ptr uintptr
	r, _, _ := procCoCreateInstance.Call(
		uintptr(unsafe.Pointer(&clsidLxssUserSession)),
		0, // no aggregation
		clsctxLocalServer,
		uintptr(unsafe.Pointer(&iidILxssUserSession)),
		uintptr(unsafe.Pointer(&ptr)),
	)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return nil, &hresult.Error{Code: hr}
	}

	sess := &session{ptr: ptr}
	if err := setBlanket(sess); err != nil {
		sess.Release()
		return nil, err
	}

	return sess, nil
}

type clientSecurityVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	queryBlanket   uintptr
	setBlanket     uintptr
	copyProxy      uintptr
}

// setBlanket switches the session proxy from static to dynamic cloaking and
// raises the impersonation level, which the service requires to act on
// behalf of the calling user.
func setBlanket(s *session) (err error) {
	defer decorate.OnError(&err, "could not set the session security blanket")

	var csPtr uintptr
	r, _, _ := syscall.SyscallN(s.vtbl().queryInterface, s.ptr,
		uintptr(unsafe.Pointer(&iidIClientSecurity)),
		uintptr(unsafe.Pointer(&csPtr)),
	)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return &hresult.Error{Code: hr}
	}
	cs := *(**clientSecurityVtbl)(unsafe.Pointer(csPtr))
	defer syscall.SyscallN(cs.release, csPtr)

	var authnSvc, authzSvc, authnLvl, impLvl, capabilities uint32
	r, _, _ = syscall.SyscallN(cs.queryBlanket, csPtr, s.ptr,
		uintptr(unsafe.Pointer(&authnSvc)),
		uintptr(unsafe.Pointer(&authzSvc)),
		0, // server principal name: not needed
		uintptr(unsafe.Pointer(&authnLvl)),
		uintptr(unsafe.Pointer(&impLvl)),
		0, // auth identity: not needed
		uintptr(unsafe.Pointer(&capabilities)),
	)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return &hresult.Error{Code: hr}
	}

	capabilities &^= eoacStaticCloaking
	capabilities |= eoacDynamicCloaking

	r, _, _ = syscall.SyscallN(cs.setBlanket, csPtr, s.ptr,
		uintptr(authnSvc),
		uintptr(authzSvc),
		0, // keep the server principal name
		uintptr(authnLvl),
		rpcImpLevelImpersonate,
		0, // keep the auth identity
		uintptr(capabilities),
	)
	if hr := hresult.HRESULT(uint32(r)); hr.Failed() {
		return &hresult.Error{Code: hr}
	}

	return nil
}
