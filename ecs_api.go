package kizuna

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// GetComponent retrieves a pointer to the component of type T held by e. The
// pointer stays valid until the next structural change of the world.
//
// It fails with ErrStaleEntity if e is not alive and with
// ErrMissingComponent if e does not hold a T.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	meta := w.entities.meta(e)
	if meta == nil {
		return nil, eris.Wrapf(ErrStaleEntity, "get %s of %v", reflect.TypeFor[T](), e)
	}
	id, ok := w.components.lookup(reflect.TypeFor[T]())
	a := w.archetypes.archetypes[meta.archetypeIndex]
	if !ok || !a.mask.containsBit(id) {
		return nil, eris.Wrapf(ErrMissingComponent, "get %s of %v", reflect.TypeFor[T](), e)
	}
	return &columnOf[T](a.column(id)).data[meta.index], nil
}

// HasComponent reports whether e is alive and holds a component of type T.
func HasComponent[T any](w *World, e Entity) bool {
	meta := w.entities.meta(e)
	if meta == nil {
		return false
	}
	id, ok := w.components.lookup(reflect.TypeFor[T]())
	return ok && w.archetypes.archetypes[meta.archetypeIndex].mask.containsBit(id)
}

// SetComponent adds a component of type T with the given value to e, or
// overwrites it if e already holds one.
//
// Adding a new type moves e to a different archetype, which is much more
// expensive than updating an existing component.
func SetComponent[T any](w *World, e Entity, val T) error {
	if err := w.exclusive("set component"); err != nil {
		return err
	}
	meta := w.entities.meta(e)
	if meta == nil {
		return eris.Wrapf(ErrStaleEntity, "set %s on %v", reflect.TypeFor[T](), e)
	}
	id, err := register[T](&w.components)
	if err != nil {
		return err
	}
	src := w.archetypes.archetypes[meta.archetypeIndex]
	if src.mask.containsBit(id) {
		columnOf[T](src.column(id)).data[meta.index] = val
		return nil
	}
	dst := w.transition(src, id, true)
	w.scratch = append(w.scratch[:0], id)
	w.migrate(e, meta, src, dst, bitmask256{}, Bundle1[T]{C1: val}, w.scratch)
	return nil
}

// RemoveComponent removes the component of type T from e, moving it to the
// archetype without T. It fails with ErrMissingComponent, leaving the world
// unchanged, if e does not hold a T.
func RemoveComponent[T any](w *World, e Entity) error {
	_, err := TakeComponent[T](w, e)
	return err
}

// TakeComponent removes the component of type T from e and returns its last
// value.
func TakeComponent[T any](w *World, e Entity) (T, error) {
	var zero T
	if err := w.exclusive("remove component"); err != nil {
		return zero, err
	}
	meta := w.entities.meta(e)
	if meta == nil {
		return zero, eris.Wrapf(ErrStaleEntity, "remove %s from %v", reflect.TypeFor[T](), e)
	}
	id, ok := w.components.lookup(reflect.TypeFor[T]())
	src := w.archetypes.archetypes[meta.archetypeIndex]
	if !ok || !src.mask.containsBit(id) {
		return zero, eris.Wrapf(ErrMissingComponent, "remove %s from %v", reflect.TypeFor[T](), e)
	}
	val := columnOf[T](src.column(id)).data[meta.index]
	dst := w.transition(src, id, false)
	w.migrate(e, meta, src, dst, bitmask256{}, nil, nil)
	return val, nil
}
