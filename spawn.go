package kizuna

import (
	"iter"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Spawn creates an entity holding the components of b and returns it.
func (w *World) Spawn(b Bundle) (Entity, error) {
	if err := w.exclusive("spawn"); err != nil {
		return Entity{}, err
	}
	ids, mask, err := w.signatureOf(b)
	if err != nil {
		return Entity{}, eris.Wrap(err, "spawn")
	}
	e, err := w.entities.alloc()
	if err != nil {
		return Entity{}, err
	}
	w.insertRow(w.getOrCreateArchetype(mask), e, b, ids)
	return e, nil
}

// SpawnAt creates an entity with the exact id and version of e. It fails
// with ErrDuplicateEntity if e's slot is live, and with ErrStaleEntity if the
// slot has already moved past e.Version. Cloning uses it to preserve
// identities.
func (w *World) SpawnAt(e Entity, b Bundle) (Entity, error) {
	if err := w.exclusive("spawn at"); err != nil {
		return Entity{}, err
	}
	ids, mask, err := w.signatureOf(b)
	if err != nil {
		return Entity{}, eris.Wrapf(err, "spawn at %v", e)
	}
	if err := w.entities.claim(e); err != nil {
		return Entity{}, err
	}
	w.insertRow(w.getOrCreateArchetype(mask), e, b, ids)
	return e, nil
}

// signatureOf resolves the component IDs and signature of b. The returned
// ids alias a scratch buffer of w and are only valid until the next call.
func (w *World) signatureOf(b Bundle) ([]ComponentID, bitmask256, error) {
	ids, err := b.componentIDs(w, w.scratch[:0])
	w.scratch = ids
	if err != nil {
		return nil, bitmask256{}, err
	}
	mask, err := bundleMask(ids)
	if err != nil {
		return nil, mask, err
	}
	return ids, mask, nil
}

// insertRow appends one row for e to a and records its location.
func (w *World) insertRow(a *archetype, e Entity, b Bundle, ids []ComponentID) {
	a.reserve(1)
	b.push(a, ids)
	row := a.pushEntity(e)
	w.entities.place(e, a.index, row)
}

// BatchSpawn lazily spawns one entity per bundle pulled from a sequence. It
// is single-pass: entities are created as Next is called, and stopping early
// leaves the already created entities alive.
//
//	batch, err := kizuna.SpawnBatch(w, n, bundles)
//	defer batch.Close()
//	for batch.Next() {
//	    e := batch.Entity()
//	}
//	err = batch.Err()
type BatchSpawn struct {
	w     *World
	next  func() (Bundle, bool)
	stop  func()
	arch  *archetype
	ids   []ComponentID
	count int
	cur   Entity
	err   error
	done  bool
}

// SpawnBatch prepares to spawn count entities from bundles, which must all
// share one component set. Room for count rows is reserved once, when the
// first bundle reveals the archetype.
//
// Parameters:
//   - w: The World to spawn into.
//   - count: The number of entities to reserve room for. Bundles past count
//     are still spawned, growing the archetype as needed.
//   - bundles: The sequence of bundles, pulled one per call to Next.
//
// Returns:
//   - The batch, which spawns nothing until Next is called.
//   - ErrCapacityOverflow when count is negative or exceeds the free slots.
//   - ErrWorldBorrowed while a query of w is open.
func SpawnBatch[B Bundle](w *World, count int, bundles iter.Seq[B]) (*BatchSpawn, error) {
	if count < 0 || int64(count) > w.entities.available() {
		return nil, eris.Wrapf(ErrCapacityOverflow, "spawn batch of %d", count)
	}
	if err := w.exclusive("spawn batch"); err != nil {
		return nil, err
	}
	next, stop := iter.Pull(bundles)
	return &BatchSpawn{
		w: w,
		next: func() (Bundle, bool) {
			b, ok := next()
			return b, ok
		},
		stop:  stop,
		count: count,
	}, nil
}

// Next spawns the next entity. It returns false when the sequence is
// exhausted or an error occurred; check Err afterwards.
func (s *BatchSpawn) Next() bool {
	if s.done {
		return false
	}
	if err := s.w.exclusive("spawn batch"); err != nil {
		return s.fail(err)
	}
	b, ok := s.next()
	if !ok {
		s.Close()
		return false
	}
	ids, err := b.componentIDs(s.w, s.ids[:0])
	s.ids = ids
	if err != nil {
		return s.fail(eris.Wrap(err, "spawn batch"))
	}
	mask, err := bundleMask(ids)
	if err != nil {
		return s.fail(eris.Wrap(err, "spawn batch"))
	}
	if s.arch == nil {
		s.arch = s.w.getOrCreateArchetype(mask)
		s.arch.reserve(s.count)
		s.w.entities.reserve(s.count)
		s.w.log.Debug("spawn batch reserved",
			zap.Int("archetype", s.arch.index),
			zap.Int("count", s.count))
	} else if mask != s.arch.mask {
		return s.fail(eris.Wrapf(ErrSignatureMismatch, "spawn batch: bundle %v", b.Descriptor().Types()))
	}
	e, err := s.w.entities.alloc()
	if err != nil {
		return s.fail(err)
	}
	s.w.insertRow(s.arch, e, b, ids)
	s.cur = e
	return true
}

// Entity returns the entity spawned by the last successful Next.
func (s *BatchSpawn) Entity() Entity {
	return s.cur
}

// Err returns the error that stopped the batch, if any.
func (s *BatchSpawn) Err() error {
	return s.err
}

// Close stops pulling bundles. Entities spawned so far stay alive.
func (s *BatchSpawn) Close() {
	if s.done {
		return
	}
	s.done = true
	s.stop()
}

// All returns the remaining entities as a sequence, spawning them as it is
// ranged over. Breaking out of the loop closes the batch.
func (s *BatchSpawn) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for s.Next() {
			if !yield(s.cur) {
				s.Close()
				return
			}
		}
	}
}

func (s *BatchSpawn) fail(err error) bool {
	s.err = err
	s.Close()
	return false
}
