package kizuna

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// MaxComponentTypes defines the maximum number of unique component types that
// can be registered in a World. This value is fixed at 256.
const MaxComponentTypes = 256

// ComponentID is the per-world identifier of a component type. IDs are
// assigned on first use and are not comparable across worlds.
type ComponentID uint8

// ComponentDesc describes one component type of a bundle.
type ComponentDesc struct {
	Type  reflect.Type
	Size  uintptr
	Align uintptr
}

// componentInfo is the type-erased function table of a registered component
// type. Every column of that type is created through newColumn.
type componentInfo struct {
	typ       reflect.Type
	size      uintptr
	align     uintptr
	newColumn func(capacity int) column
}

// componentRegistry maps runtime types to component IDs for one world.
type componentRegistry struct {
	compTypeMap map[reflect.Type]ComponentID
	infos       []componentInfo // indexed by ComponentID
}

func newComponentRegistry() componentRegistry {
	return componentRegistry{
		compTypeMap: make(map[reflect.Type]ComponentID, 16),
		infos:       make([]componentInfo, 0, 16),
	}
}

// lookup returns the ID of t without registering it.
func (r *componentRegistry) lookup(t reflect.Type) (ComponentID, bool) {
	id, ok := r.compTypeMap[t]
	return id, ok
}

// info returns the function table of a registered ID.
func (r *componentRegistry) info(id ComponentID) *componentInfo {
	return &r.infos[id]
}

// register adds T to the registry if needed and returns its ID.
func register[T any](r *componentRegistry) (ComponentID, error) {
	t := reflect.TypeFor[T]()
	if id, ok := r.compTypeMap[t]; ok {
		return id, nil
	}
	if len(r.infos) >= MaxComponentTypes {
		return 0, eris.Wrapf(ErrTooManyComponents, "register %s: limit is %d", t, MaxComponentTypes)
	}
	id := ComponentID(len(r.infos))
	r.compTypeMap[t] = id
	r.infos = append(r.infos, componentInfo{
		typ:       t,
		size:      t.Size(),
		align:     uintptr(t.Align()),
		newColumn: newTypedColumn[T],
	})
	return id, nil
}

// describe returns the descriptor of a registered component type.
func (r *componentRegistry) describe(id ComponentID) ComponentDesc {
	info := &r.infos[id]
	return ComponentDesc{Type: info.typ, Size: info.size, Align: info.align}
}

// RegisterComponent registers T with the world and returns its ID. Component
// types are registered implicitly on first use; calling this up front only
// fixes the ID order.
func RegisterComponent[T any](w *World) (ComponentID, error) {
	return register[T](&w.components)
}

// TryGetID returns the ComponentID of T in w and whether T has been
// registered.
func TryGetID[T any](w *World) (ComponentID, bool) {
	return w.components.lookup(reflect.TypeFor[T]())
}
