package kizuna

import "github.com/rotisserie/eris"

// Access is the mode in which a query borrows a component type.
type Access uint8

const (
	// AccessRead allows other readers of the same type.
	AccessRead Access = iota
	// AccessWrite excludes every other borrow of the same type.
	AccessWrite
)

func (a Access) String() string {
	if a == AccessWrite {
		return "write"
	}
	return "read"
}

type borrow struct {
	id     ComponentID
	access Access
}

// borrowTracker holds the runtime guard tokens of open queries. A positive
// state counts readers of a type, -1 marks a writer.
type borrowTracker struct {
	state [MaxComponentTypes]int32
	open  int
}

// acquire takes every borrow or none of them.
func (t *borrowTracker) acquire(w *World, borrows []borrow) error {
	for _, b := range borrows {
		s := t.state[b.id]
		if s < 0 || (b.access == AccessWrite && s > 0) {
			return eris.Wrapf(ErrBorrowConflict, "%s %s", b.access, w.components.info(b.id).typ)
		}
	}
	for _, b := range borrows {
		if b.access == AccessWrite {
			t.state[b.id] = -1
		} else {
			t.state[b.id]++
		}
	}
	t.open++
	return nil
}

func (t *borrowTracker) release(borrows []borrow) {
	for _, b := range borrows {
		if b.access == AccessWrite {
			t.state[b.id] = 0
		} else {
			t.state[b.id]--
		}
	}
	t.open--
}
