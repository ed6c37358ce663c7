package sync

// ContentionSample is a point-in-time reading of one named lock's
// contention counters, as produced by Snapshot. It is the unit cmd/vmmprof
// consumes to build an offline profile; nothing in the kernel itself reads
// this type back in.
type ContentionSample struct {
	Name      string
	Acquires  uint64
	Contended uint64
}

// statsSource is satisfied by both *Spinlock and *Mutex[T]; NewNamedMutex
// registers the mutex's inner *Spinlock.
type statsSource interface {
	ContentionStats() (acquires, contended uint64)
}

var namedLocks = struct {
	names []string
	locks []statsSource
}{}

// registerNamed records lock under name so it shows up in Snapshot. Safe to
// call from an init function; not safe to call concurrently with itself
// (kernel init runs single-threaded before any lock is contended).
func registerNamed(name string, lock statsSource) {
	namedLocks.names = append(namedLocks.names, name)
	namedLocks.locks = append(namedLocks.locks, lock)
}

// NewNamedMutex creates a Mutex guarding data, registered under name so its
// contention counters appear in Snapshot.
func NewNamedMutex[T any](name string, data T) *Mutex[T] {
	m := NewMutex(data)
	registerNamed(name, &m.lock)
	return m
}

// Snapshot returns a ContentionSample for every lock created via
// NewNamedMutex, in registration order.
func Snapshot() []ContentionSample {
	samples := make([]ContentionSample, len(namedLocks.names))
	for i, name := range namedLocks.names {
		acquires, contended := namedLocks.locks[i].ContentionStats()
		samples[i] = ContentionSample{Name: name, Acquires: acquires, Contended: contended}
	}
	return samples
}
