// Package kizuna is an archetype-based entity-component store.
//
// Entities with the same set of component types share an archetype whose
// columns are densely packed, one slice per type. Structural changes move
// an entity's row between archetypes; queries walk the rows of every
// archetype holding the requested types.
//
//	w := kizuna.NewWorld()
//	e, _ := w.Spawn(kizuna.NewBundle2(Position{}, Velocity{X: 1}))
//
//	q, _ := kizuna.NewQuery2[Position, Velocity](w, kizuna.AccessWrite, kizuna.AccessRead)
//	for q.Next() {
//		p, v := q.Get()
//		p.X += v.X
//	}
//
// Entity handles carry a generation, so a handle to a despawned entity is
// rejected with ErrStaleEntity even after its slot is reused.
//
// A World is single-threaded. Open queries hold per-type borrows: readers
// share a type, a writer excludes everyone else, and every structural
// operation fails with ErrWorldBorrowed until all queries are closed.
package kizuna
