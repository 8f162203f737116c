package kizuna

import (
	"reflect"

	"github.com/kamstrup/intmap"
)

const minArchetypeCapacity = 8

// archetype holds storage for one unique component-set mask. Row i of every
// column and of entities describes the same entity.
type archetype struct {
	entities  []Entity
	compOrder []ComponentID // ascending component IDs of this archetype
	columns   []column      // parallel to compOrder
	slots     [MaxComponentTypes]int16
	mask      bitmask256 // which component bits this arch uses
	index     int        // position in archetypeRegistry.archetypes
	capacity  int        // shared capacity of every column

	// Transition edges to neighbouring archetypes, keyed by the component
	// that is added or removed. Values are archetype indices.
	addEdges    *intmap.Map[ComponentID, int]
	removeEdges *intmap.Map[ComponentID, int]
}

func newArchetype(index int, mask bitmask256, components *componentRegistry) *archetype {
	a := &archetype{
		mask:        mask,
		index:       index,
		compOrder:   mask.ids(nil),
		addEdges:    intmap.New[ComponentID, int](4),
		removeEdges: intmap.New[ComponentID, int](4),
	}
	for i := range a.slots {
		a.slots[i] = -1
	}
	a.columns = make([]column, len(a.compOrder))
	for i, id := range a.compOrder {
		a.slots[id] = int16(i)
		a.columns[i] = components.info(id).newColumn(0)
	}
	return a
}

func (a *archetype) len() int {
	return len(a.entities)
}

// column returns the column of id, or nil if the archetype lacks it.
func (a *archetype) column(id ComponentID) column {
	slot := a.slots[id]
	if slot < 0 {
		return nil
	}
	return a.columns[slot]
}

// reserve makes room for additional rows in every column at once, doubling
// the shared capacity until it fits.
func (a *archetype) reserve(additional int) {
	need := len(a.entities) + additional
	if need <= a.capacity {
		return
	}
	newCap := max(a.capacity*2, minArchetypeCapacity)
	for newCap < need {
		newCap *= 2
	}
	entities := make([]Entity, len(a.entities), newCap)
	copy(entities, a.entities)
	a.entities = entities
	for _, c := range a.columns {
		c.grow(newCap)
	}
	a.capacity = newCap
}

// pushEntity appends e to the entity column and returns its row. Component
// columns must be pushed by the caller before the row is observable.
func (a *archetype) pushEntity(e Entity) int {
	a.entities = append(a.entities, e)
	return len(a.entities) - 1
}

// removeRow swaps the last row into row across every column. It returns the
// entity that now occupies row, if any did move.
func (a *archetype) removeRow(row int) (Entity, bool) {
	last := len(a.entities) - 1
	for _, c := range a.columns {
		c.swapRemove(row)
	}
	moved := row < last
	var ent Entity
	if moved {
		ent = a.entities[last]
		a.entities[row] = ent
	}
	a.entities = a.entities[:last]
	return ent, moved
}

// truncate drops every row while keeping capacity.
func (a *archetype) truncate() {
	for _, c := range a.columns {
		c.truncate()
	}
	a.entities = a.entities[:0]
}

func (a *archetype) types(components *componentRegistry) []reflect.Type {
	types := make([]reflect.Type, len(a.compOrder))
	for i, id := range a.compOrder {
		types[i] = components.info(id).typ
	}
	return types
}

// ArchetypeInfo is a read-only view of one archetype.
type ArchetypeInfo struct {
	// Index is the creation order of the archetype.
	Index int
	// Len is the number of entities currently stored.
	Len int
	// Types lists the component types in ascending ComponentID order.
	Types []reflect.Type
}
