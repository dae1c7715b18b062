// Package flags contains the flag bitfields understood by the WSL user
// session service when importing and exporting distributions.
package flags

// Export modifies how ExportDistribution writes a distribution's filesystem.
type Export uint32

const (
	ExportVHD     Export = 0x1 // Export as a virtual hard disk instead of a tarball.
	ExportGzip    Export = 0x2
	ExportXzip    Export = 0x4
	ExportVerbose Export = 0x8
)

// Import modifies how RegisterDistribution creates a distribution.
type Import uint32

const (
	ImportVHD            Import = 0x1 // The rootfs is a virtual hard disk instead of a tarball.
	ImportCreateShortcut Import = 0x2

	// ImportNoOOBE disables the distro's "out of box experience" script.
	ImportNoOOBE Import = 0x4

	ImportFixedVHD Import = 0x8
)
