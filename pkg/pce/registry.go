package pce

import (
	"reflect"
	"sort"
	"sync"
)

// Descriptor binds a resource name to its Go type and PCE collection
// path. The path is relative: the endpoint builder prepends the org
// prefix and, for security policy resources, the policy version
// segment.
type Descriptor struct {
	// Name is the registry key, conventionally the collection path
	// segment (for example "workloads").
	Name string

	// Type is the Go struct type objects of this resource decode into.
	Type reflect.Type

	// Path is the collection path segment under the org (or sec_policy)
	// prefix.
	Path string

	// SecPolicy marks versioned security policy resources whose paths
	// carry a /sec_policy/{version}/ segment.
	SecPolicy bool

	// Global marks resources that live outside any organization and
	// never take the org prefix.
	Global bool

	// Parented marks resources addressed under a parent object, such as
	// rules under their rule set. Collection operations require a parent
	// reference.
	Parented bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Descriptor)
	byType     = make(map[reflect.Type]*Descriptor)
)

// Register adds a resource descriptor to the registry. It panics on a
// duplicate name; registration happens in init functions where a
// duplicate is a programming error.
func Register(desc Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[desc.Name]; exists {
		panic("pce: duplicate resource registration: " + desc.Name)
	}

	if desc.Path == "" {
		desc.Path = desc.Name
	}

	stored := desc
	registry[desc.Name] = &stored
	byType[desc.Type] = &stored

	// Pre-warm the type model so first decode pays no build cost.
	ModelOf(desc.Type)
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (*Descriptor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	desc, ok := registry[name]
	if !ok {
		return nil, &NotRegisteredError{Name: name}
	}

	return desc, nil
}

// LookupType returns the descriptor for a registered Go type.
func LookupType(t reflect.Type) (*Descriptor, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	desc, ok := byType[t]
	if !ok {
		return nil, &NotRegisteredError{Name: t.Name()}
	}

	return desc, nil
}

// ResourceNames returns every registered resource name, sorted.
func ResourceNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
