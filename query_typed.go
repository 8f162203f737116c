package kizuna

import (
	"iter"

	"github.com/rotisserie/eris"
)

// capabilityOf builds the capability of T for the n-th term of a typed
// query. Without explicit modes every term is borrowed for writing.
func capabilityOf[T any](access []Access, n int) Capability {
	if len(access) > n && access[n] == AccessRead {
		return Read[T]()
	}
	return Write[T]()
}

func checkAccess(access []Access, terms int) error {
	if len(access) != 0 && len(access) != terms {
		return eris.Wrapf(ErrAccessMismatch, "query of %d components given %d access modes", terms, len(access))
	}
	return nil
}

// Query1 iterates entities holding a T1.
//
//	q, err := kizuna.NewQuery1[Position](w, kizuna.AccessRead)
//	for q.Next() {
//	    pos := q.Get()
//	}
type Query1[T1 any] struct {
	queryCursor
	id1 ComponentID
	c1  []T1
}

// NewQuery1 creates a query over every entity holding a T1. The query holds
// its borrows until it is exhausted or closed.
//
// Parameters:
//   - w: The World to query.
//   - access: The borrow mode of each component type in order. When empty,
//     every type is borrowed with AccessWrite.
//
// Returns:
//   - The query, positioned before its first entity.
//   - ErrAccessMismatch when access is neither empty nor one mode per type.
//   - ErrBorrowConflict when an open query conflicts with the borrows.
func NewQuery1[T1 any](w *World, access ...Access) (*Query1[T1], error) {
	if err := checkAccess(access, 1); err != nil {
		return nil, err
	}
	cur, err := newCursor(w, []Capability{capabilityOf[T1](access, 0)})
	if err != nil {
		return nil, eris.Wrap(err, "query")
	}
	q := &Query1[T1]{queryCursor: cur}
	q.id1, _ = TryGetID[T1](w)
	return q, nil
}

// Next advances to the next matching entity.
func (q *Query1[T1]) Next() bool {
	switched, ok := q.next()
	if switched {
		q.c1 = columnOf[T1](q.cur.column(q.id1)).data
	}
	return ok
}

// Get returns the component of the current entity.
func (q *Query1[T1]) Get() *T1 {
	return &q.c1[q.row]
}

// All ranges over the remaining entities and their components. Breaking
// out of the loop closes the query.
func (q *Query1[T1]) All() iter.Seq2[Entity, *T1] {
	return func(yield func(Entity, *T1) bool) {
		for q.Next() {
			if !yield(q.Entity(), q.Get()) {
				q.Close()
				return
			}
		}
	}
}

// Query2 iterates entities holding a T1 and a T2.
type Query2[T1, T2 any] struct {
	queryCursor
	id1, id2 ComponentID
	c1       []T1
	c2       []T2
}

// NewQuery2 creates a query over every entity holding a T1 and a T2.
func NewQuery2[T1, T2 any](w *World, access ...Access) (*Query2[T1, T2], error) {
	if err := checkAccess(access, 2); err != nil {
		return nil, err
	}
	cur, err := newCursor(w, []Capability{
		capabilityOf[T1](access, 0),
		capabilityOf[T2](access, 1),
	})
	if err != nil {
		return nil, eris.Wrap(err, "query")
	}
	q := &Query2[T1, T2]{queryCursor: cur}
	q.id1, _ = TryGetID[T1](w)
	q.id2, _ = TryGetID[T2](w)
	return q, nil
}

// Next advances to the next matching entity.
func (q *Query2[T1, T2]) Next() bool {
	switched, ok := q.next()
	if switched {
		q.c1 = columnOf[T1](q.cur.column(q.id1)).data
		q.c2 = columnOf[T2](q.cur.column(q.id2)).data
	}
	return ok
}

// Get returns the components of the current entity.
func (q *Query2[T1, T2]) Get() (*T1, *T2) {
	return &q.c1[q.row], &q.c2[q.row]
}

// Query3 iterates entities holding a T1, a T2 and a T3.
type Query3[T1, T2, T3 any] struct {
	queryCursor
	id1, id2, id3 ComponentID
	c1            []T1
	c2            []T2
	c3            []T3
}

// NewQuery3 creates a query over every entity holding a T1, a T2 and a T3.
func NewQuery3[T1, T2, T3 any](w *World, access ...Access) (*Query3[T1, T2, T3], error) {
	if err := checkAccess(access, 3); err != nil {
		return nil, err
	}
	cur, err := newCursor(w, []Capability{
		capabilityOf[T1](access, 0),
		capabilityOf[T2](access, 1),
		capabilityOf[T3](access, 2),
	})
	if err != nil {
		return nil, eris.Wrap(err, "query")
	}
	q := &Query3[T1, T2, T3]{queryCursor: cur}
	q.id1, _ = TryGetID[T1](w)
	q.id2, _ = TryGetID[T2](w)
	q.id3, _ = TryGetID[T3](w)
	return q, nil
}

// Next advances to the next matching entity.
func (q *Query3[T1, T2, T3]) Next() bool {
	switched, ok := q.next()
	if switched {
		q.c1 = columnOf[T1](q.cur.column(q.id1)).data
		q.c2 = columnOf[T2](q.cur.column(q.id2)).data
		q.c3 = columnOf[T3](q.cur.column(q.id3)).data
	}
	return ok
}

// Get returns the components of the current entity.
func (q *Query3[T1, T2, T3]) Get() (*T1, *T2, *T3) {
	return &q.c1[q.row], &q.c2[q.row], &q.c3[q.row]
}

// Query4 iterates entities holding a T1, a T2, a T3 and a T4.
type Query4[T1, T2, T3, T4 any] struct {
	queryCursor
	id1, id2, id3, id4 ComponentID
	c1                 []T1
	c2                 []T2
	c3                 []T3
	c4                 []T4
}

// NewQuery4 creates a query over every entity holding a T1, a T2, a T3 and
// a T4.
func NewQuery4[T1, T2, T3, T4 any](w *World, access ...Access) (*Query4[T1, T2, T3, T4], error) {
	if err := checkAccess(access, 4); err != nil {
		return nil, err
	}
	cur, err := newCursor(w, []Capability{
		capabilityOf[T1](access, 0),
		capabilityOf[T2](access, 1),
		capabilityOf[T3](access, 2),
		capabilityOf[T4](access, 3),
	})
	if err != nil {
		return nil, eris.Wrap(err, "query")
	}
	q := &Query4[T1, T2, T3, T4]{queryCursor: cur}
	q.id1, _ = TryGetID[T1](w)
	q.id2, _ = TryGetID[T2](w)
	q.id3, _ = TryGetID[T3](w)
	q.id4, _ = TryGetID[T4](w)
	return q, nil
}

// Next advances to the next matching entity.
func (q *Query4[T1, T2, T3, T4]) Next() bool {
	switched, ok := q.next()
	if switched {
		q.c1 = columnOf[T1](q.cur.column(q.id1)).data
		q.c2 = columnOf[T2](q.cur.column(q.id2)).data
		q.c3 = columnOf[T3](q.cur.column(q.id3)).data
		q.c4 = columnOf[T4](q.cur.column(q.id4)).data
	}
	return ok
}

// Get returns the components of the current entity.
func (q *Query4[T1, T2, T3, T4]) Get() (*T1, *T2, *T3, *T4) {
	return &q.c1[q.row], &q.c2[q.row], &q.c3[q.row], &q.c4[q.row]
}
