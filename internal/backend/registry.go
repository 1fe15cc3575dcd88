// Package backend has the analysis backends and their static registry.
// Backends are looked up by name through an explicit mapping populated at
// build time; nothing is discovered at runtime.
package backend

import (
	"fmt"
	"sort"

	"github.com/codetrawl/codetrawl/internal/contract"
	"github.com/codetrawl/codetrawl/schema"
)

// Factory builds a backend from the validated run configuration.
type Factory func(cfg *contract.Config) (contract.Backend, error)

// registry maps backend names to constructors.
var registry = map[string]Factory{
	CoComName: newCoComFromConfig,
	CountName: newCountFromConfig,
	CoQuaName: newCoQuaFromConfig,
}

// New constructs the named backend.
func New(name string, cfg *contract.Config) (contract.Backend, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q. Available backends: %v", name, Names())
	}
	return factory(cfg)
}

// Names lists the registered backend names in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors lists the registered backends in stable order without
// constructing them.
func Descriptors() []schema.BackendDescriptor {
	return []schema.BackendDescriptor{
		{Name: CoComName, Version: coComVersion, Category: schema.CategoryCoCom},
		{Name: CountName, Version: countVersion, Category: schema.CategoryCount},
		{Name: CoQuaName, Version: coQuaVersion, Category: schema.CategoryCoQua},
	}
}
