package kizuna

import (
	"fmt"
	"math"
	"slices"

	"github.com/rotisserie/eris"
)

// MaxEntities is the number of distinct entity slots a World can address.
const MaxEntities = math.MaxUint32

// Entity represents a unique identifier for an object in the World. It
// combines a 32-bit slot ID with a 32-bit version so that recycled IDs are
// never confused with the entity that previously held the slot.
type Entity struct {
	// ID is the recyclable slot index of the entity.
	ID uint32
	// Version is the generation of the slot when the entity was created. It
	// grows every time the slot is freed.
	Version uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.ID, e.Version)
}

// entityMeta is one slot of the location index.
type entityMeta struct {
	archetypeIndex int    // index in archetypeRegistry.archetypes, -1 if dead
	index          int    // row inside the archetype
	version        uint32 // current generation of the slot
	inFree         bool   // slot is available for allocation
}

func (m *entityMeta) alive() bool {
	return m.archetypeIndex >= 0
}

// entityRegistry is the id allocator and location index.
type entityRegistry struct {
	freeIDs []uint32     // stack of recycled slots, most recent last; may hold claimed leftovers
	metas   []entityMeta // indexed by Entity.ID
	freeLen int          // slots in freeIDs that are still available
	live    int
}

func newEntityRegistry(capacity int) entityRegistry {
	return entityRegistry{
		freeIDs: make([]uint32, 0, capacity),
		metas:   make([]entityMeta, 0, capacity),
	}
}

// meta returns the slot of a live entity, or nil when e is stale.
func (r *entityRegistry) meta(e Entity) *entityMeta {
	if int64(e.ID) >= int64(len(r.metas)) {
		return nil
	}
	m := &r.metas[e.ID]
	if !m.alive() || m.version != e.Version {
		return nil
	}
	return m
}

// available reports how many more entities can be allocated.
func (r *entityRegistry) available() int64 {
	return int64(r.freeLen) + (MaxEntities - int64(len(r.metas)))
}

// alloc reserves a fresh entity. The slot stays dead until the caller places
// it into an archetype via meta.
func (r *entityRegistry) alloc() (Entity, error) {
	for n := len(r.freeIDs); n > 0; n = len(r.freeIDs) {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		m := &r.metas[id]
		if !m.inFree || m.alive() {
			continue // claimed by SpawnAt after it was freed
		}
		m.inFree = false
		r.freeLen--
		return Entity{ID: id, Version: m.version}, nil
	}
	if int64(len(r.metas)) >= MaxEntities {
		return Entity{}, eris.Wrapf(ErrCapacityOverflow, "entity slots exhausted at %d", len(r.metas))
	}
	r.metas = append(r.metas, entityMeta{archetypeIndex: -1, index: -1, version: 1})
	return Entity{ID: uint32(len(r.metas) - 1), Version: 1}, nil
}

// reserve grows the slot table so that n more allocations do not
// reallocate it.
func (r *entityRegistry) reserve(n int) {
	if extra := n - r.freeLen; extra > 0 {
		r.metas = slices.Grow(r.metas, extra)
	}
}

// place records the location of a freshly allocated entity.
func (r *entityRegistry) place(e Entity, archetypeIndex, row int) {
	m := &r.metas[e.ID]
	m.archetypeIndex = archetypeIndex
	m.index = row
	m.version = e.Version
	r.live++
}

// free kills a live slot and bumps its generation. A slot whose generation
// would wrap is retired instead of recycled.
func (r *entityRegistry) free(e Entity) error {
	m := r.meta(e)
	if m == nil {
		return eris.Wrapf(ErrStaleEntity, "free %v", e)
	}
	m.archetypeIndex = -1
	m.index = -1
	r.live--
	if m.version == math.MaxUint32 {
		return nil
	}
	m.version++
	r.push(e.ID)
	return nil
}

func (r *entityRegistry) push(id uint32) {
	r.metas[id].inFree = true
	r.freeIDs = append(r.freeIDs, id)
	r.freeLen++
}

// claim prepares the slot of e for an explicit placement. Slots between the
// current end of the table and e.ID become free slots.
func (r *entityRegistry) claim(e Entity) error {
	if e.Version == 0 {
		return eris.Wrapf(ErrStaleEntity, "claim %v: version 0 is never issued", e)
	}
	if int64(e.ID) >= int64(len(r.metas)) {
		if int64(e.ID) >= MaxEntities {
			return eris.Wrapf(ErrCapacityOverflow, "claim %v", e)
		}
		for id := uint32(len(r.metas)); id < e.ID; id++ {
			r.metas = append(r.metas, entityMeta{archetypeIndex: -1, index: -1, version: 1})
			r.push(id)
		}
		r.metas = append(r.metas, entityMeta{archetypeIndex: -1, index: -1, version: e.Version})
		return nil
	}
	m := &r.metas[e.ID]
	if m.alive() {
		return eris.Wrapf(ErrDuplicateEntity, "claim %v: slot holds %v", e, Entity{ID: e.ID, Version: m.version})
	}
	if e.Version < m.version || !m.inFree {
		return eris.Wrapf(ErrStaleEntity, "claim %v: slot generation is %d", e, m.version)
	}
	m.inFree = false
	r.freeLen--
	m.version = e.Version
	return nil
}

// copySlots makes r a copy of the slot table of src in which every slot is
// dead. Generations and the free order are kept, and slots live in src are
// left out of the free list for placement at their current version.
func (r *entityRegistry) copySlots(src *entityRegistry) {
	r.metas = slices.Clone(src.metas)
	for i := range r.metas {
		r.metas[i].archetypeIndex = -1
		r.metas[i].index = -1
	}
	r.freeIDs = slices.Clone(src.freeIDs)
	r.freeLen = src.freeLen
	r.live = 0
}

// reset kills every live slot, bumping generations as free would.
func (r *entityRegistry) reset() {
	for id := range r.metas {
		m := &r.metas[id]
		if !m.alive() {
			continue
		}
		m.archetypeIndex = -1
		m.index = -1
		if m.version == math.MaxUint32 {
			continue
		}
		m.version++
		r.push(uint32(id))
	}
	r.live = 0
}
