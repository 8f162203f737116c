package kizuna

import (
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// archetypeRegistry is the signature directory of a World.
type archetypeRegistry struct {
	maskToArcIndex map[bitmask256]int // lookup mask→archetype index
	archetypes     []*archetype       // all archetypes in creation order
}

// World is a store of entities and their components. Entities with the same
// component set share an archetype whose columns are densely packed.
//
// A World is not safe for concurrent use. Queries may share it as long as
// their borrows do not conflict; structural operations require that no query
// is open.
type World struct {
	log        *zap.Logger
	cfg        config
	archetypes archetypeRegistry
	entities   entityRegistry
	components componentRegistry
	borrows    borrowTracker
	scratch    []ComponentID
}

// NewWorld creates an empty World.
func NewWorld(opts ...Option) *World {
	return newWorld(newConfig(opts))
}

func newWorld(cfg config) *World {
	return &World{
		log: cfg.logger,
		cfg: cfg,
		archetypes: archetypeRegistry{
			maskToArcIndex: make(map[bitmask256]int),
			archetypes:     make([]*archetype, 0, 16),
		},
		entities:   newEntityRegistry(cfg.initialCapacity),
		components: newComponentRegistry(),
	}
}

// IsValid reports whether e is alive in the world. Stale handles of
// despawned entities whose slot has been reused are never valid.
func (w *World) IsValid(e Entity) bool {
	return w.entities.meta(e) != nil
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.live
}

// Entities iterates every live entity, archetype by archetype. The world must
// not be structurally modified during the iteration.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, a := range w.archetypes.archetypes {
			for _, e := range a.entities {
				if !yield(e) {
					return
				}
			}
		}
	}
}

// Archetypes describes every archetype created so far, in creation order.
func (w *World) Archetypes() []ArchetypeInfo {
	infos := make([]ArchetypeInfo, len(w.archetypes.archetypes))
	for i, a := range w.archetypes.archetypes {
		infos[i] = ArchetypeInfo{Index: a.index, Len: a.len(), Types: a.types(&w.components)}
	}
	return infos
}

// Despawn removes e and all of its components. The slot's version is bumped
// so e and every copy of it become stale.
func (w *World) Despawn(e Entity) error {
	if err := w.exclusive("despawn"); err != nil {
		return err
	}
	meta := w.entities.meta(e)
	if meta == nil {
		return eris.Wrapf(ErrStaleEntity, "despawn %v", e)
	}
	w.removeFromArchetype(w.archetypes.archetypes[meta.archetypeIndex], meta)
	return w.entities.free(e)
}

// Clear despawns every entity. Archetypes are kept, so refilling the world
// with the same shapes does not allocate.
func (w *World) Clear() error {
	if err := w.exclusive("clear"); err != nil {
		return err
	}
	for _, a := range w.archetypes.archetypes {
		a.truncate()
	}
	w.entities.reset()
	return nil
}

// ComponentTypes lists the component types e currently holds.
func (w *World) ComponentTypes(e Entity) ([]reflect.Type, error) {
	meta := w.entities.meta(e)
	if meta == nil {
		return nil, eris.Wrapf(ErrStaleEntity, "component types of %v", e)
	}
	return w.archetypes.archetypes[meta.archetypeIndex].types(&w.components), nil
}

// exclusive fails when a query still borrows the world.
func (w *World) exclusive(op string) error {
	if w.borrows.open > 0 {
		return eris.Wrapf(ErrWorldBorrowed, "%s with %d open queries", op, w.borrows.open)
	}
	return nil
}

// getOrCreateArchetype returns the archetype for mask, creating it with
// empty columns on first demand.
func (w *World) getOrCreateArchetype(mask bitmask256) *archetype {
	if idx, ok := w.archetypes.maskToArcIndex[mask]; ok {
		return w.archetypes.archetypes[idx]
	}
	a := newArchetype(len(w.archetypes.archetypes), mask, &w.components)
	w.archetypes.archetypes = append(w.archetypes.archetypes, a)
	w.archetypes.maskToArcIndex[mask] = a.index
	if ce := w.log.Check(zap.DebugLevel, "archetype created"); ce != nil {
		names := make([]string, 0, len(a.compOrder))
		for _, t := range a.types(&w.components) {
			names = append(names, t.String())
		}
		ce.Write(zap.Int("index", a.index), zap.Strings("components", names))
	}
	return a
}

// transition returns the archetype reached from a by adding or removing id,
// caching the edge on a.
func (w *World) transition(a *archetype, id ComponentID, add bool) *archetype {
	edges := a.removeEdges
	if add {
		edges = a.addEdges
	}
	if idx, ok := edges.Get(id); ok {
		return w.archetypes.archetypes[idx]
	}
	mask := a.mask
	if add {
		mask.set(id)
	} else {
		mask.unset(id)
	}
	target := w.getOrCreateArchetype(mask)
	edges.Put(id, target.index)
	return target
}

// removeFromArchetype swap-removes the row of meta and repoints the entity
// that took its place. The slot of meta itself is left to the caller.
func (w *World) removeFromArchetype(a *archetype, meta *entityMeta) {
	row := meta.index
	if moved, ok := a.removeRow(row); ok {
		w.entities.metas[moved.ID].index = row
	}
}
