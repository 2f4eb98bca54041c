package storage

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// Options carries backend construction parameters. Path is the data file for
// the file backend and the database file for the sqlite backend; the memory
// backend ignores it.
type Options struct {
	Path   string
	Logger *log.Logger
}

// Constructor creates a Store from Options.
// Implementations register themselves with the registry using Register().
type Constructor func(opts Options) (Store, error)

// registry maps backend types to their constructors
var (
	registry      = make(map[Type]Constructor)
	registryMutex sync.RWMutex
)

// Register registers a backend constructor.
// This is called from init() functions in the backend packages.
//
// Example:
//
//	func init() {
//	    storage.Register(storage.TypeFile, New)
//	}
func Register(t Type, constructor Constructor) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if constructor == nil {
		panic(fmt.Sprintf("storage: Register constructor is nil for type %s", t))
	}

	if _, exists := registry[t]; exists {
		panic(fmt.Sprintf("storage: Register called twice for type %s", t))
	}

	registry[t] = constructor
}

// Open builds a Store of the given type. An empty type falls back to
// DefaultType. Unknown types report the registered alternatives so a
// misconfigured backend name fails with a useful message.
func Open(t Type, opts Options) (Store, error) {
	if t == "" {
		t = DefaultType
	}

	registryMutex.RLock()
	constructor := registry[t]
	registryMutex.RUnlock()

	if constructor == nil {
		return nil, fmt.Errorf("unknown storage backend %q (registered: %v)", t, RegisteredTypes())
	}
	return constructor(opts)
}

// IsRegistered returns true if a constructor is registered for the given type.
func IsRegistered(t Type) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, exists := registry[t]
	return exists
}

// RegisteredTypes returns all registered backend types, sorted for stable
// error messages.
func RegisteredTypes() []Type {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
