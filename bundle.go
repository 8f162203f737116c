package kizuna

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// BundleDescriptor lists the component types of a bundle in order.
type BundleDescriptor []ComponentDesc

// Types returns the runtime types of the descriptor.
func (d BundleDescriptor) Types() []reflect.Type {
	types := make([]reflect.Type, len(d))
	for i, c := range d {
		types[i] = c.Type
	}
	return types
}

// Bundle is a set of component values attached to an entity in one step.
// Bundles are created with NewBundle1..NewBundle4 or built dynamically with
// an EntityBuilder.
type Bundle interface {
	// Descriptor describes the component types of the bundle.
	Descriptor() BundleDescriptor

	// componentIDs registers the bundle's types in w and appends their IDs
	// to dst, in value order.
	componentIDs(w *World, dst []ComponentID) ([]ComponentID, error)
	// push appends every value to its column of a; ids is the result of
	// componentIDs.
	push(a *archetype, ids []ComponentID)
	// set overwrites every value at row of a.
	set(a *archetype, row int, ids []ComponentID)
}

// bundleMask folds ids into a signature, rejecting repeated types.
func bundleMask(ids []ComponentID) (bitmask256, error) {
	var mask bitmask256
	for _, id := range ids {
		if mask.containsBit(id) {
			return mask, eris.Wrapf(ErrDuplicateComponent, "component %d appears twice in bundle", id)
		}
		mask.set(id)
	}
	return mask, nil
}

func describe[T any]() ComponentDesc {
	t := reflect.TypeFor[T]()
	return ComponentDesc{Type: t, Size: t.Size(), Align: uintptr(t.Align())}
}

func pushValue[T any](a *archetype, id ComponentID, v T) {
	columnOf[T](a.column(id)).push(v)
}

func setValue[T any](a *archetype, row int, id ComponentID, v T) {
	columnOf[T](a.column(id)).data[row] = v
}

// Bundle1 is a bundle of a single component.
type Bundle1[T1 any] struct {
	C1 T1
}

// NewBundle1 bundles one component value.
func NewBundle1[T1 any](c1 T1) Bundle1[T1] {
	return Bundle1[T1]{C1: c1}
}

func (b Bundle1[T1]) Descriptor() BundleDescriptor {
	return BundleDescriptor{describe[T1]()}
}

func (b Bundle1[T1]) componentIDs(w *World, dst []ComponentID) ([]ComponentID, error) {
	id1, err := register[T1](&w.components)
	if err != nil {
		return dst, err
	}
	return append(dst, id1), nil
}

func (b Bundle1[T1]) push(a *archetype, ids []ComponentID) {
	pushValue(a, ids[0], b.C1)
}

func (b Bundle1[T1]) set(a *archetype, row int, ids []ComponentID) {
	setValue(a, row, ids[0], b.C1)
}

// Bundle2 is a bundle of two components.
type Bundle2[T1, T2 any] struct {
	C1 T1
	C2 T2
}

// NewBundle2 bundles two component values.
func NewBundle2[T1, T2 any](c1 T1, c2 T2) Bundle2[T1, T2] {
	return Bundle2[T1, T2]{C1: c1, C2: c2}
}

func (b Bundle2[T1, T2]) Descriptor() BundleDescriptor {
	return BundleDescriptor{describe[T1](), describe[T2]()}
}

func (b Bundle2[T1, T2]) componentIDs(w *World, dst []ComponentID) ([]ComponentID, error) {
	id1, err := register[T1](&w.components)
	if err != nil {
		return dst, err
	}
	id2, err := register[T2](&w.components)
	if err != nil {
		return dst, err
	}
	return append(dst, id1, id2), nil
}

func (b Bundle2[T1, T2]) push(a *archetype, ids []ComponentID) {
	pushValue(a, ids[0], b.C1)
	pushValue(a, ids[1], b.C2)
}

func (b Bundle2[T1, T2]) set(a *archetype, row int, ids []ComponentID) {
	setValue(a, row, ids[0], b.C1)
	setValue(a, row, ids[1], b.C2)
}

// Bundle3 is a bundle of three components.
type Bundle3[T1, T2, T3 any] struct {
	C1 T1
	C2 T2
	C3 T3
}

// NewBundle3 bundles three component values.
func NewBundle3[T1, T2, T3 any](c1 T1, c2 T2, c3 T3) Bundle3[T1, T2, T3] {
	return Bundle3[T1, T2, T3]{C1: c1, C2: c2, C3: c3}
}

func (b Bundle3[T1, T2, T3]) Descriptor() BundleDescriptor {
	return BundleDescriptor{describe[T1](), describe[T2](), describe[T3]()}
}

func (b Bundle3[T1, T2, T3]) componentIDs(w *World, dst []ComponentID) ([]ComponentID, error) {
	id1, err := register[T1](&w.components)
	if err != nil {
		return dst, err
	}
	id2, err := register[T2](&w.components)
	if err != nil {
		return dst, err
	}
	id3, err := register[T3](&w.components)
	if err != nil {
		return dst, err
	}
	return append(dst, id1, id2, id3), nil
}

func (b Bundle3[T1, T2, T3]) push(a *archetype, ids []ComponentID) {
	pushValue(a, ids[0], b.C1)
	pushValue(a, ids[1], b.C2)
	pushValue(a, ids[2], b.C3)
}

func (b Bundle3[T1, T2, T3]) set(a *archetype, row int, ids []ComponentID) {
	setValue(a, row, ids[0], b.C1)
	setValue(a, row, ids[1], b.C2)
	setValue(a, row, ids[2], b.C3)
}

// Bundle4 is a bundle of four components.
type Bundle4[T1, T2, T3, T4 any] struct {
	C1 T1
	C2 T2
	C3 T3
	C4 T4
}

// NewBundle4 bundles four component values.
func NewBundle4[T1, T2, T3, T4 any](c1 T1, c2 T2, c3 T3, c4 T4) Bundle4[T1, T2, T3, T4] {
	return Bundle4[T1, T2, T3, T4]{C1: c1, C2: c2, C3: c3, C4: c4}
}

func (b Bundle4[T1, T2, T3, T4]) Descriptor() BundleDescriptor {
	return BundleDescriptor{describe[T1](), describe[T2](), describe[T3](), describe[T4]()}
}

func (b Bundle4[T1, T2, T3, T4]) componentIDs(w *World, dst []ComponentID) ([]ComponentID, error) {
	id1, err := register[T1](&w.components)
	if err != nil {
		return dst, err
	}
	id2, err := register[T2](&w.components)
	if err != nil {
		return dst, err
	}
	id3, err := register[T3](&w.components)
	if err != nil {
		return dst, err
	}
	id4, err := register[T4](&w.components)
	if err != nil {
		return dst, err
	}
	return append(dst, id1, id2, id3, id4), nil
}

func (b Bundle4[T1, T2, T3, T4]) push(a *archetype, ids []ComponentID) {
	pushValue(a, ids[0], b.C1)
	pushValue(a, ids[1], b.C2)
	pushValue(a, ids[2], b.C3)
	pushValue(a, ids[3], b.C4)
}

func (b Bundle4[T1, T2, T3, T4]) set(a *archetype, row int, ids []ComponentID) {
	setValue(a, row, ids[0], b.C1)
	setValue(a, row, ids[1], b.C2)
	setValue(a, row, ids[2], b.C3)
	setValue(a, row, ids[3], b.C4)
}
