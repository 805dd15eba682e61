package compute

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/orrery/internal/dynamo"
	"github.com/san-kum/orrery/internal/physics"
)

type Backend interface {
	Name() string
	// Forces returns the net gravitational force on every body, in body
	// order. Bodies are not modified.
	Forces(bodies []*physics.Body, g float64) ([]r2.Vec, error)
}

var backends = map[string]func() Backend{
	"pairwise":   func() Backend { return NewCPUBackend() },
	"barnes-hut": func() Backend { return NewBarnesHut(0.5) },
}

// Lookup returns a fresh backend by name.
func Lookup(name string) (Backend, error) {
	mk, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (available: %v)", dynamo.ErrInvalidParameter, name, Names())
	}
	return mk(), nil
}

// Names lists the registered backends, sorted.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
