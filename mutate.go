package kizuna

import (
	"github.com/rotisserie/eris"
)

// Insert adds the components of b to e. Components e already holds are
// overwritten in place; any new type moves e to the archetype of its
// extended signature.
func (w *World) Insert(e Entity, b Bundle) error {
	if err := w.exclusive("insert"); err != nil {
		return err
	}
	meta := w.entities.meta(e)
	if meta == nil {
		return eris.Wrapf(ErrStaleEntity, "insert into %v", e)
	}
	ids, mask, err := w.signatureOf(b)
	if err != nil {
		return eris.Wrapf(err, "insert into %v", e)
	}
	src := w.archetypes.archetypes[meta.archetypeIndex]
	target := src.mask.or(mask)
	if target == src.mask {
		b.set(src, meta.index, ids)
		return nil
	}
	dst := w.getOrCreateArchetype(target)
	w.migrate(e, meta, src, dst, mask, b, ids)
	return nil
}

// RemoveID removes the component with the given ID from e. It fails with
// ErrMissingComponent, leaving e untouched, if e does not hold it.
func (w *World) RemoveID(e Entity, id ComponentID) error {
	if err := w.exclusive("remove"); err != nil {
		return err
	}
	meta := w.entities.meta(e)
	if meta == nil {
		return eris.Wrapf(ErrStaleEntity, "remove from %v", e)
	}
	src := w.archetypes.archetypes[meta.archetypeIndex]
	if !src.mask.containsBit(id) {
		return eris.Wrapf(ErrMissingComponent, "remove component %d from %v", id, e)
	}
	dst := w.transition(src, id, false)
	w.migrate(e, meta, src, dst, bitmask256{}, nil, nil)
	return nil
}

// migrate moves the row of e from src to dst. Columns of src that dst lacks
// or that skip names are dropped; b, when not nil, supplies the values dst
// needs beyond the retained ones. The location index is updated together
// with the swap-remove in src.
func (w *World) migrate(e Entity, meta *entityMeta, src, dst *archetype, skip bitmask256, b Bundle, ids []ComponentID) {
	dst.reserve(1)
	row := meta.index
	for i, id := range src.compOrder {
		if skip.containsBit(id) {
			continue
		}
		if c := dst.column(id); c != nil {
			c.appendFrom(src.columns[i], row)
		}
	}
	if b != nil {
		b.push(dst, ids)
	}
	newRow := dst.pushEntity(e)
	w.removeFromArchetype(src, meta)
	meta.archetypeIndex = dst.index
	meta.index = newRow
}
