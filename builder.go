package kizuna

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Releaser is implemented by components that own resources. The builder
// calls Release on staged values that are replaced or discarded without
// being spawned.
type Releaser interface {
	Release()
}

// stagedValue is one boxed component waiting in an EntityBuilder.
type stagedValue interface {
	typ() reflect.Type
	desc() ComponentDesc
	register(w *World) (ComponentID, error)
	push(a *archetype, id ComponentID)
	set(a *archetype, row int, id ComponentID)
	release()
}

type staged[T any] struct {
	v T
}

func (s *staged[T]) typ() reflect.Type   { return reflect.TypeFor[T]() }
func (s *staged[T]) desc() ComponentDesc { return describe[T]() }

func (s *staged[T]) register(w *World) (ComponentID, error) {
	return register[T](&w.components)
}

func (s *staged[T]) push(a *archetype, id ComponentID) {
	pushValue(a, id, s.v)
}

func (s *staged[T]) set(a *archetype, row int, id ComponentID) {
	setValue(a, row, id, s.v)
}

func (s *staged[T]) release() {
	if r, ok := any(s.v).(Releaser); ok {
		r.Release()
		return
	}
	if r, ok := any(&s.v).(Releaser); ok {
		r.Release()
	}
}

// EntityBuilder stages components of arbitrary types for a single entity.
// It is reusable: Build hands the staged values to a BuiltEntity and leaves
// the builder empty.
//
// Example:
//
//	b := kizuna.NewEntityBuilder()
//	kizuna.Add(b, Position{})
//	kizuna.Add(b, Velocity{X: 1})
//	e, err := w.Spawn(b.Build())
type EntityBuilder struct {
	values []stagedValue
	index  map[reflect.Type]int
}

// NewEntityBuilder returns an empty builder.
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{index: make(map[reflect.Type]int, 8)}
}

// Add stages v on b. A value of the same type staged earlier is released and
// replaced, keeping its original position.
func Add[T any](b *EntityBuilder, v T) *EntityBuilder {
	t := reflect.TypeFor[T]()
	if i, ok := b.index[t]; ok {
		b.values[i].release()
		b.values[i] = &staged[T]{v: v}
		return b
	}
	b.index[t] = len(b.values)
	b.values = append(b.values, &staged[T]{v: v})
	return b
}

// Len returns the number of staged components.
func (b *EntityBuilder) Len() int {
	return len(b.values)
}

// Build moves the staged values into a BuiltEntity and resets the builder.
func (b *EntityBuilder) Build() *BuiltEntity {
	built := &BuiltEntity{values: b.values}
	b.values = nil
	clear(b.index)
	return built
}

// Discard releases every staged value and resets the builder.
func (b *EntityBuilder) Discard() {
	for _, v := range b.values {
		v.release()
	}
	b.values = b.values[:0]
	clear(b.index)
}

// BuiltEntity is the Bundle produced by EntityBuilder.Build. It can be
// spawned or inserted once.
type BuiltEntity struct {
	values   []stagedValue
	consumed bool
}

// Descriptor describes the staged component types in insertion order.
func (b *BuiltEntity) Descriptor() BundleDescriptor {
	d := make(BundleDescriptor, len(b.values))
	for i, v := range b.values {
		d[i] = v.desc()
	}
	return d
}

// Discard releases the staged values of an unconsumed bundle.
func (b *BuiltEntity) Discard() {
	if b.consumed {
		return
	}
	for _, v := range b.values {
		v.release()
	}
	b.values = nil
	b.consumed = true
}

func (b *BuiltEntity) componentIDs(w *World, dst []ComponentID) ([]ComponentID, error) {
	if b.consumed {
		return dst, eris.Wrap(ErrBundleConsumed, "built entity")
	}
	for _, v := range b.values {
		id, err := v.register(w)
		if err != nil {
			return dst, err
		}
		dst = append(dst, id)
	}
	return dst, nil
}

func (b *BuiltEntity) push(a *archetype, ids []ComponentID) {
	for i, v := range b.values {
		v.push(a, ids[i])
	}
	b.consume()
}

func (b *BuiltEntity) set(a *archetype, row int, ids []ComponentID) {
	for i, v := range b.values {
		v.set(a, row, ids[i])
	}
	b.consume()
}

func (b *BuiltEntity) consume() {
	b.values = nil
	b.consumed = true
}
