package backend

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Factory opens a new device.
type Factory func() (Device, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	backendPriority = []string{BackendNoop, BackendMemory}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the named backend.
func Open(name string) (Device, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
	}
	d, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	return d, nil
}

// Default opens the first backend in priority order that opens
// successfully, then any other registered backend.
func Default() (Device, error) {
	tried := make(map[string]bool)
	for _, name := range slices.Concat(backendPriority, Available()) {
		if tried[name] || !IsRegistered(name) {
			continue
		}
		tried[name] = true
		if d, err := Open(name); err == nil {
			return d, nil
		}
	}
	return nil, ErrBackendNotAvailable
}
