package kizuna

import "github.com/rotisserie/eris"

// Errors returned by World operations. They are always wrapped with context,
// so compare with errors.Is or eris.Is.
var (
	// ErrStaleEntity is returned when an Entity's version no longer matches
	// the live slot, either because it was despawned or never allocated.
	ErrStaleEntity = eris.New("stale entity")
	// ErrMissingComponent is returned when an entity does not hold the
	// requested component type.
	ErrMissingComponent = eris.New("missing component")
	// ErrDuplicateEntity is returned by SpawnAt when the id is already live.
	ErrDuplicateEntity = eris.New("entity already exists")
	// ErrCapacityOverflow is returned when a request exceeds the number of
	// representable entities or rows.
	ErrCapacityOverflow = eris.New("capacity overflow")
	// ErrDuplicateComponent is returned when a bundle or a capability set
	// names the same component type twice.
	ErrDuplicateComponent = eris.New("duplicate component type")
	// ErrSignatureMismatch is returned when a bundle does not have the
	// component set a batch or archetype expects.
	ErrSignatureMismatch = eris.New("bundle signature mismatch")
	// ErrAccessMismatch is returned when a typed query is given a number of
	// access modes other than zero or its number of components.
	ErrAccessMismatch = eris.New("access modes do not match query components")
	// ErrBundleConsumed is returned when a BuiltEntity is spawned twice.
	ErrBundleConsumed = eris.New("bundle already consumed")
	// ErrBorrowConflict is returned when a query would alias a component
	// type that another open query is writing, or write one it is reading.
	ErrBorrowConflict = eris.New("conflicting component borrow")
	// ErrWorldBorrowed is returned by structural operations while any query
	// is still open.
	ErrWorldBorrowed = eris.New("world is borrowed by an open query")
	// ErrUnregisteredComponent is returned by CloneWith when a component
	// type present in the world has no clone registry entry.
	ErrUnregisteredComponent = eris.New("component type not registered for cloning")
	// ErrTooManyComponents is returned when a world would exceed
	// MaxComponentTypes distinct component types.
	ErrTooManyComponents = eris.New("too many component types")
)
