// Package hresult deals with the COM result codes surfaced by the WSL user
// session service: the code taxonomy, their human-readable descriptions, and
// the error type that carries them across the API boundary.
package hresult

import "fmt"

// HRESULT is a Windows COM result code.
type HRESULT uint32

// Failed reports whether hr carries the failure severity bit.
func (hr HRESULT) Failed() bool {
	return hr&0x80000000 != 0
}

func (hr HRESULT) String() string {
	return fmt.Sprintf("0x%08x", uint32(hr))
}

// General COM codes relevant to this module.
const (
	OK HRESULT = 0x00000000

	// ClassNotRegistered (REGDB_E_CLASSNOTREG) means the session service's
	// COM class is not on this machine: WSL is too old or not installed.
	ClassNotRegistered HRESULT = 0x80040154
)

// Error codes defined by the WSL service. Underscores kept to match the
// Windows names.
//
//nolint:revive,stylecheck
const (
	WSL_E_DEFAULT_DISTRO_NOT_FOUND           HRESULT = 0x80040300
	WSL_E_DISTRO_NOT_FOUND                   HRESULT = 0x80040301
	WSL_E_WSL1_NOT_SUPPORTED                 HRESULT = 0x80040302
	WSL_E_VM_MODE_NOT_SUPPORTED              HRESULT = 0x80040303
	WSL_E_TOO_MANY_DISKS_ATTACHED            HRESULT = 0x80040304
	WSL_E_CONSOLE                            HRESULT = 0x80040305
	WSL_E_CUSTOM_KERNEL_NOT_FOUND            HRESULT = 0x80040306
	WSL_E_USER_NOT_FOUND                     HRESULT = 0x80040307
	WSL_E_INVALID_USAGE                      HRESULT = 0x80040308
	WSL_E_EXPORT_FAILED                      HRESULT = 0x80040309
	WSL_E_IMPORT_FAILED                      HRESULT = 0x8004030a
	WSL_E_DISTRO_NOT_STOPPED                 HRESULT = 0x8004030b
	WSL_E_TTY_LIMIT                          HRESULT = 0x8004030c
	WSL_E_CUSTOM_SYSTEM_DISTRO_ERROR         HRESULT = 0x8004030d
	WSL_E_LOWER_INTEGRITY                    HRESULT = 0x8004030e
	WSL_E_HIGHER_INTEGRITY                   HRESULT = 0x8004030f
	WSL_E_FS_UPGRADE_NEEDED                  HRESULT = 0x80040310
	WSL_E_USER_VHD_ALREADY_ATTACHED          HRESULT = 0x80040311
	WSL_E_VM_MODE_INVALID_STATE              HRESULT = 0x80040312
	WSL_E_VM_MODE_MOUNT_NAME_ALREADY_EXISTS  HRESULT = 0x80040313
	WSL_E_ELEVATION_NEEDED_TO_MOUNT_DISK     HRESULT = 0x80040314
	WSL_E_DISK_ALREADY_ATTACHED              HRESULT = 0x80040315
	WSL_E_DISK_ALREADY_MOUNTED               HRESULT = 0x80040316
	WSL_E_DISK_MOUNT_FAILED                  HRESULT = 0x80040317
	WSL_E_DISK_UNMOUNT_FAILED                HRESULT = 0x80040318
	WSL_E_WSL2_NEEDED                        HRESULT = 0x80040319
	WSL_E_VM_MODE_INVALID_MOUNT_NAME         HRESULT = 0x8004031a
	WSL_E_GUI_APPLICATIONS_DISABLED          HRESULT = 0x8004031b
	WSL_E_DISTRO_ONLY_AVAILABLE_FROM_STORE   HRESULT = 0x8004031c
	WSL_E_WSL_MOUNT_NOT_SUPPORTED            HRESULT = 0x8004031d
	WSL_E_WSL_OPTIONAL_COMPONENT_REQUIRED    HRESULT = 0x8004031e
	WSL_E_VMSWITCH_NOT_FOUND                 HRESULT = 0x8004031f
	WSL_E_VMSWITCH_NOT_SET                   HRESULT = 0x80040320
	WSL_E_NOT_A_LINUX_DISTRO                 HRESULT = 0x80040321
	WSL_E_OS_NOT_SUPPORTED                   HRESULT = 0x80040322
	WSL_E_INSTALL_PROCESS_FAILED             HRESULT = 0x80040323
	WSL_E_INSTALL_COMPONENT_FAILED           HRESULT = 0x80040324
	WSL_E_DISK_MOUNT_DISABLED                HRESULT = 0x80040325
	WSL_E_WSL1_DISABLED                      HRESULT = 0x80040326
	WSL_E_VIRTUAL_MACHINE_PLATFORM_REQUIRED  HRESULT = 0x80040327
	WSL_E_LOCAL_SYSTEM_NOT_SUPPORTED         HRESULT = 0x80040328
	WSL_E_DISK_CORRUPTED                     HRESULT = 0x80040329
	WSL_E_DISTRIBUTION_NAME_NEEDED           HRESULT = 0x8004032a
	WSL_E_INVALID_JSON                       HRESULT = 0x8004032b
	WSL_E_VM_CRASHED                         HRESULT = 0x8004032c
)

// Message returns the human-readable description of hr, or an empty string
// if it is not one of the known WSL error codes.
func Message(hr HRESULT) string {
	return messages[hr]
}

var messages = map[HRESULT]string{
	ClassNotRegistered:                      "WSL version not supported",
	WSL_E_DEFAULT_DISTRO_NOT_FOUND:          "Default distribution not found",
	WSL_E_DISTRO_NOT_FOUND:                  "Distribution not found",
	WSL_E_WSL1_NOT_SUPPORTED:                "WSL 1 not supported",
	WSL_E_VM_MODE_NOT_SUPPORTED:             "VM mode not supported",
	WSL_E_TOO_MANY_DISKS_ATTACHED:           "Too many disks attached",
	WSL_E_CONSOLE:                           "Console",
	WSL_E_CUSTOM_KERNEL_NOT_FOUND:           "Custom kernel not found",
	WSL_E_USER_NOT_FOUND:                    "User not found",
	WSL_E_INVALID_USAGE:                     "Invalid usage",
	WSL_E_EXPORT_FAILED:                     "Export failed",
	WSL_E_IMPORT_FAILED:                     "Import failed",
	WSL_E_DISTRO_NOT_STOPPED:                "Distribution not stopped",
	WSL_E_TTY_LIMIT:                         "TTY limit",
	WSL_E_CUSTOM_SYSTEM_DISTRO_ERROR:        "Custom system distro error",
	WSL_E_LOWER_INTEGRITY:                   "Lower integrity",
	WSL_E_HIGHER_INTEGRITY:                  "Higher integrity",
	WSL_E_FS_UPGRADE_NEEDED:                 "FS upgrade needed",
	WSL_E_USER_VHD_ALREADY_ATTACHED:         "User VHD already attached",
	WSL_E_VM_MODE_INVALID_STATE:             "VM mode invalid state",
	WSL_E_VM_MODE_MOUNT_NAME_ALREADY_EXISTS: "VM mode mount name already exists",
	WSL_E_ELEVATION_NEEDED_TO_MOUNT_DISK:    "Elevation needed to mount disk",
	WSL_E_DISK_ALREADY_ATTACHED:             "Disk already attached",
	WSL_E_DISK_ALREADY_MOUNTED:              "Disk already mounted",
	WSL_E_DISK_MOUNT_FAILED:                 "Disk mount failed",
	WSL_E_DISK_UNMOUNT_FAILED:               "Disk unmount failed",
	WSL_E_WSL2_NEEDED:                       "WSL 2 needed",
	WSL_E_VM_MODE_INVALID_MOUNT_NAME:        "VM mode invalid mount name",
	WSL_E_GUI_APPLICATIONS_DISABLED:         "GUI applications disabled",
	WSL_E_DISTRO_ONLY_AVAILABLE_FROM_STORE:  "Distribution only available from store",
	WSL_E_WSL_MOUNT_NOT_SUPPORTED:           "WSL mount not supported",
	WSL_E_WSL_OPTIONAL_COMPONENT_REQUIRED:   "WSL optional component required",
	WSL_E_VMSWITCH_NOT_FOUND:                "VMSwitch not found",
	WSL_E_VMSWITCH_NOT_SET:                  "VMSwitch not set",
	WSL_E_NOT_A_LINUX_DISTRO:                "Not a Linux distro",
	WSL_E_OS_NOT_SUPPORTED:                  "OS not supported",
	WSL_E_INSTALL_PROCESS_FAILED:            "Install process failed",
	WSL_E_INSTALL_COMPONENT_FAILED:          "Install component failed",
	WSL_E_DISK_MOUNT_DISABLED:               "Disk mount disabled",
	WSL_E_WSL1_DISABLED:                     "WSL 1 disabled",
	WSL_E_VIRTUAL_MACHINE_PLATFORM_REQUIRED: "Virtual machine platform required",
	WSL_E_LOCAL_SYSTEM_NOT_SUPPORTED:        "Local system not supported",
	WSL_E_DISK_CORRUPTED:                    "Disk corrupted",
	WSL_E_DISTRIBUTION_NAME_NEEDED:          "Distribution name needed",
	WSL_E_INVALID_JSON:                      "Invalid JSON",
	WSL_E_VM_CRASHED:                        "VM crashed",
}

// Error is a failure reported by the WSL service. Code is the service's
// HRESULT, passed through as-is. Context optionally carries the message the
// service attached to the failure.
type Error struct {
	Code    HRESULT
	Context string
}

func (e *Error) Error() string {
	msg := Message(e.Code)
	switch {
	case msg == "" && e.Context == "":
		return fmt.Sprintf("unknown WSL error %s", e.Code)
	case msg == "":
		return fmt.Sprintf("unknown WSL error %s: %s", e.Code, e.Context)
	case e.Context == "":
		return fmt.Sprintf("WSL error: %s", msg)
	}
	return fmt.Sprintf("WSL error: %s: %s", msg, e.Context)
}
