package kizuna

import (
	"reflect"
	"slices"

	"github.com/rotisserie/eris"
)

// Capability is one component type requested by a query together with the
// access mode the query needs on it.
type Capability struct {
	Type   reflect.Type
	Access Access

	register func(*componentRegistry) (ComponentID, error)
}

// Read requests shared access to components of type T.
func Read[T any]() Capability {
	return Capability{Type: reflect.TypeFor[T](), Access: AccessRead, register: register[T]}
}

// Write requests exclusive access to components of type T.
func Write[T any]() Capability {
	return Capability{Type: reflect.TypeFor[T](), Access: AccessWrite, register: register[T]}
}

// queryCursor walks the rows of the archetypes a query matched, in archetype
// creation order and then row order. It owns the query's borrows and gives
// them back when exhausted or closed.
type queryCursor struct {
	w        *World
	borrows  []borrow
	matching []*archetype
	cur      *archetype
	archIdx  int
	row      int
	size     int
	closed   bool
}

// newCursor resolves caps against the world's archetypes and takes the
// query's borrows.
func newCursor(w *World, caps []Capability) (queryCursor, error) {
	var mask bitmask256
	borrows := make([]borrow, 0, len(caps))
	empty := false
	for i, c := range caps {
		if slices.ContainsFunc(caps[:i], func(p Capability) bool { return p.Type == c.Type }) {
			return queryCursor{}, eris.Wrapf(ErrDuplicateComponent, "query requests %s twice", c.Type)
		}
		var (
			id  ComponentID
			ok  bool
			err error
		)
		if c.register != nil {
			id, err = c.register(&w.components)
			if err != nil {
				return queryCursor{}, err
			}
			ok = true
		} else {
			id, ok = w.components.lookup(c.Type)
		}
		if !ok {
			// A type the world has never seen matches no archetype.
			empty = true
			continue
		}
		mask.set(id)
		borrows = append(borrows, borrow{id: id, access: c.Access})
	}
	if err := w.borrows.acquire(w, borrows); err != nil {
		return queryCursor{}, err
	}
	q := queryCursor{w: w, borrows: borrows, archIdx: -1, row: -1}
	if !empty {
		for _, a := range w.archetypes.archetypes {
			if a.mask.contains(mask) {
				q.matching = append(q.matching, a)
			}
		}
	}
	return q, nil
}

// next advances to the next row. switched reports that the row belongs to a
// different archetype than the previous one.
func (q *queryCursor) next() (switched, ok bool) {
	if q.closed {
		return false, false
	}
	q.row++
	if q.row < q.size {
		return false, true
	}
	for q.archIdx+1 < len(q.matching) {
		q.archIdx++
		a := q.matching[q.archIdx]
		if a.len() == 0 {
			continue
		}
		q.cur = a
		q.size = a.len()
		q.row = 0
		return true, true
	}
	q.Close()
	return false, false
}

// Entity returns the entity of the current row. It should only be called
// after Next has returned true.
func (q *queryCursor) Entity() Entity {
	return q.cur.entities[q.row]
}

// Len returns the number of rows the query visits in total.
func (q *queryCursor) Len() int {
	n := 0
	for _, a := range q.matching {
		n += a.len()
	}
	return n
}

// Close releases the query's borrows. It is called automatically when Next
// reports the end of the iteration; calling it again is a no-op.
func (q *queryCursor) Close() {
	if q.closed {
		return
	}
	q.closed = true
	q.w.borrows.release(q.borrows)
	q.cur = nil
	q.size = 0
}

// Query iterates every entity holding a set of component types, handing out
// type-erased component pointers. Use NewQuery1..NewQuery4 for typed access.
//
// A query is single-pass: once Next returns false it is closed and a new one
// must be created to iterate again. While a query is open the world rejects
// structural changes, so close queries that are abandoned early.
type Query struct {
	queryCursor
	ids []ComponentID
	// columns of the current archetype, parallel to ids
	cols []column
}

// Query creates a query over every archetype that holds all types of caps.
// It fails with ErrBorrowConflict if an open query writes one of the types,
// or reads one this query wants to write.
func (w *World) Query(caps ...Capability) (*Query, error) {
	cur, err := newCursor(w, caps)
	if err != nil {
		return nil, eris.Wrap(err, "query")
	}
	q := &Query{queryCursor: cur, cols: make([]column, len(caps))}
	for _, c := range caps {
		id, ok := w.components.lookup(c.Type)
		if !ok {
			id = 0 // unreachable rows: the query matched nothing
		}
		q.ids = append(q.ids, id)
	}
	return q, nil
}

// Next advances to the next matching entity, returning false when the
// iteration is complete.
func (q *Query) Next() bool {
	switched, ok := q.next()
	if switched {
		for i, id := range q.ids {
			q.cols[i] = q.cur.column(id)
		}
	}
	return ok
}

// Get returns a pointer to the i-th requested component of the current
// entity, boxed in an interface (for example *Position).
func (q *Query) Get(i int) any {
	return q.cols[i].ptr(q.row)
}
