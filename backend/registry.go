package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/video"
)

// Factory creates a visitor for a backend. provider is the shared GPU
// device supplied by the host application; backends that do not touch the
// GPU ignore it and accept nil.
type Factory func(provider gpucontext.DeviceProvider) (video.Visitor, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register makes a backend available by name. It is typically called from
// init() in the backend package:
//
//	func init() {
//	    backend.Register("headless", func(gpucontext.DeviceProvider) (video.Visitor, error) {
//	        return New(), nil
//	    })
//	}
//
// Register panics if factory is nil or name is already registered.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("backend: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("backend: Register called twice for " + name)
	}
	factories[name] = factory
}

// Unregister removes a backend. Unknown names are ignored.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// New creates a visitor from the backend registered under name.
func New(name string, provider gpucontext.DeviceProvider) (video.Visitor, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrUnknownBackend, name)
	}
	v, err := factory(provider)
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	video.Logger().Info("backend opened", "name", name)
	return v, nil
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}
