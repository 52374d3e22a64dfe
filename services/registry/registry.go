// services/registry/registry.go
package registry

import (
	"f1led-go/errcode"
	"f1led-go/types"
)

// Registry maps driver numbers to display information. Immutable after New.
type Registry struct {
	byNum map[uint32]types.DriverInfo
	order []types.DriverInfo
}

// New builds a registry; driver numbers must be unique and non-zero.
func New(entries []types.DriverInfo) (*Registry, error) {
	r := &Registry{
		byNum: make(map[uint32]types.DriverInfo, len(entries)),
		order: make([]types.DriverInfo, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Number == 0 {
			return nil, errcode.New(errcode.InvalidParams, "registry.new", "driver number 0 is reserved")
		}
		if _, dup := r.byNum[e.Number]; dup {
			return nil, errcode.New(errcode.InvalidParams, "registry.new", "duplicate driver "+e.Code)
		}
		r.byNum[e.Number] = e
		r.order = append(r.order, e)
	}
	return r, nil
}

var std *Registry

func init() {
	r, err := New(grid)
	if err != nil {
		panic(err)
	}
	std = r
}

// Default returns the built-in 20-car grid.
func Default() *Registry { return std }

func (r *Registry) Lookup(n uint32) (types.DriverInfo, bool) {
	d, ok := r.byNum[n]
	return d, ok
}

// Color implements resolve.Lookup.
func (r *Registry) Color(n uint32) (types.RGBColor, bool) {
	d, ok := r.byNum[n]
	return d.Color, ok
}

// All returns entries in registration order. Callers must not modify it.
func (r *Registry) All() []types.DriverInfo { return r.order }

func (r *Registry) Len() int { return len(r.order) }
