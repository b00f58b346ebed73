package checks

import (
	"fmt"
	"sort"
	"sync"
)

// Constructor builds a checker instance. params comes straight from the
// task's config block; constructors decode it with mapstructure into a
// typed args struct.
type Constructor func(name string, params map[string]any) (Checker, error)

// Registry maps check types to constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns a registry with every built-in checker
// registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor)}
	r.Register(TypeCodeQuality, newQualityChecker)
	r.Register(TypeTests, newTestChecker)
	r.Register(TypeSecurity, newSecurityChecker)
	r.Register(TypePerformance, newPerformanceChecker)
	return r
}

// Register adds or replaces the constructor for a check type.
func (r *Registry) Register(checkType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[checkType] = ctor
}

// Create instantiates a checker of the given type.
func (r *Registry) Create(checkType, name string, params map[string]any) (Checker, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[checkType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown check type %q (registered: %v)", checkType, r.Types())
	}
	return ctor(name, params)
}

// Types returns the registered check types in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
