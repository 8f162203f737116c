package kizuna

import (
	"maps"
	"reflect"
	"slices"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CloneMode selects how CloneWith copies entities.
type CloneMode uint8

const (
	// CloneBulk copies whole archetypes column by column. Entities of the
	// copy get fresh ids.
	CloneBulk CloneMode = iota
	// ClonePreserveIDs respawns every entity at its own id and version, so
	// handles of the source world address the same entities in the copy.
	// Slot generations and the free order are copied too: a handle stale in
	// the source stays stale in the copy, and both worlds issue the same
	// next ids.
	ClonePreserveIDs
)

func (m CloneMode) String() string {
	if m == ClonePreserveIDs {
		return "preserve-ids"
	}
	return "bulk"
}

// MissingPolicy decides what CloneWith does with a component type that is
// present in the world but absent from the CloneRegistry.
type MissingPolicy uint8

const (
	// CloneFailOnMissing aborts the clone with ErrUnregisteredComponent
	// before anything is copied.
	CloneFailOnMissing MissingPolicy = iota
	// CloneOmitMissing drops components of unregistered types from the copy.
	CloneOmitMissing
)

// CloneConfig configures CloneWith. The zero value clones in bulk and fails
// on unregistered types.
type CloneConfig struct {
	Mode      CloneMode
	OnMissing MissingPolicy
}

// cloneEntry is the type-erased copy table of one component type.
type cloneEntry struct {
	typ reflect.Type
	// addType registers the type in the destination world.
	addType func(dst *World) (ComponentID, error)
	// copyColumn appends copies of every value of src to dst.
	copyColumn func(dst, src column)
	// stage adds a copy of the value at row of src to b.
	stage func(b *EntityBuilder, src column, row int)
}

// CloneRegistry lists the component types a world may be cloned with and how
// each of them is copied.
//
//	reg := kizuna.NewCloneRegistry()
//	kizuna.Register[Position](reg)
//	kizuna.RegisterFunc(reg, func(p Path) Path { return Path{Points: slices.Clone(p.Points)} })
//	dup, err := w.Clone(reg)
type CloneRegistry struct {
	entries []cloneEntry
	byType  map[reflect.Type]int
}

// NewCloneRegistry returns an empty registry.
func NewCloneRegistry() *CloneRegistry {
	return &CloneRegistry{byType: make(map[reflect.Type]int, 8)}
}

// Len returns the number of registered types.
func (r *CloneRegistry) Len() int {
	return len(r.entries)
}

// Has reports whether T is registered.
func (r *CloneRegistry) Has(t reflect.Type) bool {
	_, ok := r.byType[t]
	return ok
}

// Register makes T clonable by plain assignment, which is a deep copy for
// types without pointers, slices or maps. Registering a type that is already
// present has no effect.
func Register[T any](r *CloneRegistry) *CloneRegistry {
	t := reflect.TypeFor[T]()
	if _, ok := r.byType[t]; ok {
		return r
	}
	r.put(cloneEntry{
		typ:     t,
		addType: addCloneType[T],
		copyColumn: func(dst, src column) {
			d := columnOf[T](dst)
			d.data = append(d.data, columnOf[T](src).data...)
		},
		stage: func(b *EntityBuilder, src column, row int) {
			Add(b, columnOf[T](src).data[row])
		},
	})
	return r
}

// RegisterFunc makes T clonable through fn, which must return a copy that
// shares no mutable state with its argument. It replaces any earlier
// registration of T.
func RegisterFunc[T any](r *CloneRegistry, fn func(T) T) *CloneRegistry {
	r.put(cloneEntry{
		typ:     reflect.TypeFor[T](),
		addType: addCloneType[T],
		copyColumn: func(dst, src column) {
			d := columnOf[T](dst)
			for _, v := range columnOf[T](src).data {
				d.data = append(d.data, fn(v))
			}
		},
		stage: func(b *EntityBuilder, src column, row int) {
			Add(b, fn(columnOf[T](src).data[row]))
		},
	})
	return r
}

func addCloneType[T any](dst *World) (ComponentID, error) {
	return register[T](&dst.components)
}

func (r *CloneRegistry) put(e cloneEntry) {
	if i, ok := r.byType[e.typ]; ok {
		r.entries[i] = e
		return
	}
	r.byType[e.typ] = len(r.entries)
	r.entries = append(r.entries, e)
}

// Clone is CloneWith using the zero CloneConfig.
func (w *World) Clone(reg *CloneRegistry) (*World, error) {
	return w.CloneWith(reg, CloneConfig{})
}

// CloneWith builds an independent world holding copies of every entity and
// component of w. The copy inherits the options of w.
//
// Parameters:
//   - reg: The registry naming every component type that may be copied and
//     how each is copied.
//   - cfg: The clone mode and the policy for types missing from reg.
//
// Returns:
//   - The new world.
//   - ErrUnregisteredComponent under CloneFailOnMissing when w holds a type
//     absent from reg; nothing is built in that case.
//   - ErrWorldBorrowed while a query or batch of w is open.
func (w *World) CloneWith(reg *CloneRegistry, cfg CloneConfig) (*World, error) {
	if err := w.exclusive("clone"); err != nil {
		return nil, err
	}
	plan, omitted, err := w.clonePlan(reg, cfg.OnMissing)
	if err != nil {
		return nil, err
	}
	if len(omitted) > 0 {
		w.log.Warn("clone omits unregistered components",
			zap.Strings("types", omitted),
			zap.Stringer("mode", cfg.Mode))
	}

	dst := newWorld(w.cfg)
	// src component ID -> dst component ID, for types that are copied
	translate := make(map[ComponentID]ComponentID, len(plan))
	for _, id := range slices.Sorted(maps.Keys(plan)) {
		dstID, err := plan[id].addType(dst)
		if err != nil {
			return nil, err
		}
		translate[id] = dstID
	}
	switch cfg.Mode {
	case ClonePreserveIDs:
		err = w.clonePreserving(dst, plan)
	default:
		dst.entities.reserve(w.Len())
		err = w.cloneBulk(dst, plan, translate)
	}
	if err != nil {
		return nil, err
	}
	w.log.Debug("world cloned",
		zap.Stringer("mode", cfg.Mode),
		zap.Int("entities", dst.Len()),
		zap.Int("archetypes", len(dst.archetypes.archetypes)))
	return dst, nil
}

// clonePlan maps every component ID used by a non-empty archetype of w to
// its registry entry. Types without an entry are either reported as an error
// or returned by name in omitted.
func (w *World) clonePlan(reg *CloneRegistry, policy MissingPolicy) (map[ComponentID]*cloneEntry, []string, error) {
	plan := make(map[ComponentID]*cloneEntry)
	var (
		seen    bitmask256
		omitted []string
	)
	for _, a := range w.archetypes.archetypes {
		if a.len() == 0 {
			continue
		}
		for _, id := range a.compOrder {
			if seen.containsBit(id) {
				continue
			}
			seen.set(id)
			t := w.components.info(id).typ
			i, ok := reg.byType[t]
			if ok {
				plan[id] = &reg.entries[i]
				continue
			}
			if policy == CloneFailOnMissing {
				return nil, nil, eris.Wrapf(ErrUnregisteredComponent, "clone: %s", t)
			}
			omitted = append(omitted, t.String())
		}
	}
	return plan, omitted, nil
}

// cloneBulk copies each archetype of w into the archetype of dst with the
// same registered types, giving every entity a fresh id.
func (w *World) cloneBulk(dst *World, plan map[ComponentID]*cloneEntry, translate map[ComponentID]ComponentID) error {
	for _, a := range w.archetypes.archetypes {
		n := a.len()
		if n == 0 {
			continue
		}
		var mask bitmask256
		for _, id := range a.compOrder {
			if dstID, ok := translate[id]; ok {
				mask.set(dstID)
			}
		}
		da := dst.getOrCreateArchetype(mask)
		da.reserve(n)
		for i, id := range a.compOrder {
			entry, ok := plan[id]
			if !ok {
				continue
			}
			entry.copyColumn(da.column(translate[id]), a.columns[i])
		}
		for range n {
			e, err := dst.entities.alloc()
			if err != nil {
				return err
			}
			dst.entities.place(e, da.index, da.pushEntity(e))
		}
	}
	return nil
}

// clonePreserving copies the slot table of w into dst, then places every
// entity of w at its own id and version.
func (w *World) clonePreserving(dst *World, plan map[ComponentID]*cloneEntry) error {
	dst.entities.copySlots(&w.entities)
	b := NewEntityBuilder()
	for _, a := range w.archetypes.archetypes {
		for row, e := range a.entities {
			for i, id := range a.compOrder {
				if entry, ok := plan[id]; ok {
					entry.stage(b, a.columns[i], row)
				}
			}
			built := b.Build()
			ids, mask, err := dst.signatureOf(built)
			if err != nil {
				built.Discard()
				return eris.Wrapf(err, "clone %v", e)
			}
			dst.insertRow(dst.getOrCreateArchetype(mask), e, built, ids)
		}
	}
	return nil
}
