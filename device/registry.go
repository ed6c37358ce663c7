package device

import (
	"sort"

	"github.com/Amjad50/OS/kernel"
	"github.com/Amjad50/OS/kernel/sync"
)

// Readable is implemented by anything that can be exposed as a device file
// under the /devices virtual filesystem (device/devicefs). It is
// deliberately narrower than Driver: a Driver configures hardware, a
// Readable just answers byte-range reads for whatever that hardware exposes
// (a clock's current reading, an IDE disk's raw sectors, ...).
type Readable interface {
	// Name returns the device's registered name, used as its file name
	// under /devices.
	Name() string

	// Read copies up to len(buf) bytes starting at offset into buf,
	// returning the number of bytes copied.
	Read(offset uint32, buf []byte) (uint64, *kernel.Error)
}

// ErrAlreadyRegistered indicates that RegisterDevice was called twice with
// devices sharing the same name.
var ErrAlreadyRegistered = &kernel.Error{Module: "device", Message: "device already registered"}

var registry = sync.NewMutex(map[string]Readable{})

// RegisterDevice adds dev to the global name -> device map, making it
// visible as a file under /devices. Safe to call concurrently; typically
// called from a driver's DriverInit once the underlying hardware has been
// found and configured.
func RegisterDevice(dev Readable) *kernel.Error {
	g := registry.Lock()
	defer g.Unlock()

	m := g.Get()
	if _, exists := (*m)[dev.Name()]; exists {
		return ErrAlreadyRegistered
	}
	(*m)[dev.Name()] = dev
	return nil
}

// LookupDevice returns the device registered under name, if any.
func LookupDevice(name string) (Readable, bool) {
	g := registry.Lock()
	defer g.Unlock()

	dev, ok := (*g.Get())[name]
	return dev, ok
}

// DeviceNames returns the names of every currently registered device,
// sorted for stable directory listings.
func DeviceNames() []string {
	g := registry.Lock()
	defer g.Unlock()

	m := g.Get()
	names := make([]string, 0, len(*m))
	for name := range *m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
