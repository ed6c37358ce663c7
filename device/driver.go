package device

import (
	"github.com/Amjad50/OS/kernel"
	"io"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. Diagnostic output is
	// written to w, which the HAL prefixes with the driver's name/version.
	DriverInit(w io.Writer) *kernel.Error
}

// ProbeFn attempts to detect a particular piece of hardware and, if found,
// returns a Driver for it. It returns nil if the hardware is not present.
type ProbeFn func() Driver

// DetectOrder controls the relative order in which driver probes run.
type DetectOrder uint8

const (
	// DetectOrderEarly is used by drivers that must be probed before
	// anything else (e.g. the early VGA text console).
	DetectOrderEarly DetectOrder = iota

	// DetectOrderBeforeACPI is used by drivers whose presence influences
	// how ACPI tables are interpreted.
	DetectOrderBeforeACPI

	// DetectOrderACPI is used by the ACPI driver itself and by drivers
	// that depend on having parsed ACPI tables (e.g. devices enumerated
	// from the DSDT/SSDT).
	DetectOrderACPI

	// DetectOrderLast is used by drivers that should be probed after
	// everything else.
	DetectOrderLast
)

// DriverInfo associates a ProbeFn with a DetectOrder.
type DriverInfo struct {
	// Name identifies this driver in the build-time device manifest
	// (devices.toml, compiled in by cmd/mkdevices as Manifest). Empty if
	// the driver has no manifest entry, in which case Order is used as-is.
	Name  string
	Probe ProbeFn
	Order DetectOrder
}

// DriverInfoList implements sort.Interface ordering DriverInfo entries by
// ascending DetectOrder.
type DriverInfoList []*DriverInfo

func (l DriverInfoList) Len() int           { return len(l) }
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }
func (l DriverInfoList) Swap(i, j int)      { l[i], l[j] = l[j], l[i] }

var registeredDrivers DriverInfoList

// RegisterDriver adds a probe entry to the list returned by DriverList. It is
// meant to be called from a driver package's init() function. If info.Name
// has an entry in Manifest (the devices.toml table generated by
// cmd/mkdevices), that entry's Order overrides info.Order, letting probe
// ordering be retuned from the manifest without recompiling the driver.
func RegisterDriver(info *DriverInfo) {
	if info.Name != "" {
		if order, ok := Manifest[info.Name]; ok {
			info.Order = order
		}
	}
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the probes registered so far via RegisterDriver.
func DriverList() DriverInfoList {
	return registeredDrivers
}
