package kizuna_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/edwinsyarief/kizuna"
)

// --- Test Components ---
type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }
type Health struct{ Current, Max int }
type Name string
type Tag struct{}

// Path owns a slice and needs a deep copy when cloned.
type Path struct{ Points []int }

// Handle counts how often it was released.
type Handle struct{ released *int }

func (h Handle) Release() { *h.released++ }

func spawnN(t testing.TB, w *kizuna.World, n int) []kizuna.Entity {
	t.Helper()
	out := make([]kizuna.Entity, 0, n)
	for i := range n {
		e, err := w.Spawn(kizuna.NewBundle2(Position{X: float64(i)}, Velocity{X: 1}))
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

// go test -run ^TestSpawn$ . -count 1
func TestSpawn(t *testing.T) {
	w := kizuna.NewWorld()
	e, err := w.Spawn(kizuna.NewBundle2(Position{X: 1, Y: 2}, Velocity{X: 3, Y: 4}))
	require.NoError(t, err)

	assert.Equal(t, kizuna.Entity{ID: 0, Version: 1}, e)
	assert.True(t, w.IsValid(e))
	assert.Equal(t, 1, w.Len())

	p, err := kizuna.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1, Y: 2}, *p)
	v, err := kizuna.GetComponent[Velocity](w, e)
	require.NoError(t, err)
	assert.Equal(t, Velocity{X: 3, Y: 4}, *v)

	_, err = kizuna.GetComponent[Health](w, e)
	assert.ErrorIs(t, err, kizuna.ErrMissingComponent)
	assert.False(t, kizuna.HasComponent[Health](w, e))
	assert.True(t, kizuna.HasComponent[Position](w, e))
}

// go test -run ^TestSpawnSameSignatureSharesArchetype$ . -count 1
func TestSpawnSameSignatureSharesArchetype(t *testing.T) {
	w := kizuna.NewWorld()
	_, err := w.Spawn(kizuna.NewBundle2(Position{}, Velocity{}))
	require.NoError(t, err)
	_, err = w.Spawn(kizuna.NewBundle2(Velocity{}, Position{}))
	require.NoError(t, err)
	_, err = w.Spawn(kizuna.NewBundle1(Position{}))
	require.NoError(t, err)

	infos := w.Archetypes()
	require.Len(t, infos, 2)
	assert.Equal(t, 2, infos[0].Len)
	assert.Equal(t, 1, infos[1].Len)
	assert.ElementsMatch(t,
		[]reflect.Type{reflect.TypeFor[Position](), reflect.TypeFor[Velocity]()},
		infos[0].Types)
}

// go test -run ^TestSpawnDuplicateComponent$ . -count 1
func TestSpawnDuplicateComponent(t *testing.T) {
	w := kizuna.NewWorld()
	_, err := w.Spawn(kizuna.NewBundle2(Position{}, Position{X: 1}))
	assert.ErrorIs(t, err, kizuna.ErrDuplicateComponent)
	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.Archetypes())
}

// go test -run ^TestDespawn$ . -count 1
func TestDespawn(t *testing.T) {
	w := kizuna.NewWorld()
	ents := spawnN(t, w, 3)

	require.NoError(t, w.Despawn(ents[0]))
	assert.False(t, w.IsValid(ents[0]))
	assert.Equal(t, 2, w.Len())
	assert.ErrorIs(t, w.Despawn(ents[0]), kizuna.ErrStaleEntity)

	// the last entity was swapped into the freed row and must still resolve
	p, err := kizuna.GetComponent[Position](w, ents[2])
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.X)

	_, err = kizuna.GetComponent[Position](w, ents[0])
	assert.ErrorIs(t, err, kizuna.ErrStaleEntity)

	reused, err := w.Spawn(kizuna.NewBundle1(Health{Current: 1}))
	require.NoError(t, err)
	assert.Equal(t, ents[0].ID, reused.ID)
	assert.Greater(t, reused.Version, ents[0].Version)
	assert.False(t, w.IsValid(ents[0]))
}

// go test -run ^TestSpawnAt$ . -count 1
func TestSpawnAt(t *testing.T) {
	w := kizuna.NewWorld()
	target := kizuna.Entity{ID: 10, Version: 3}
	e, err := w.SpawnAt(target, kizuna.NewBundle1(Name("at")))
	require.NoError(t, err)
	assert.Equal(t, target, e)

	n, err := kizuna.GetComponent[Name](w, target)
	require.NoError(t, err)
	assert.Equal(t, Name("at"), *n)

	_, err = w.SpawnAt(target, kizuna.NewBundle1(Name("again")))
	assert.ErrorIs(t, err, kizuna.ErrDuplicateEntity)

	// ids below the claimed one were never used and remain allocatable
	other, err := w.Spawn(kizuna.NewBundle1(Name("other")))
	require.NoError(t, err)
	assert.Less(t, other.ID, target.ID)

	require.NoError(t, w.Despawn(target))
	_, err = w.SpawnAt(target, kizuna.NewBundle1(Name("old")))
	assert.ErrorIs(t, err, kizuna.ErrStaleEntity)

	newer := kizuna.Entity{ID: target.ID, Version: target.Version + 5}
	_, err = w.SpawnAt(newer, kizuna.NewBundle1(Name("newer")))
	require.NoError(t, err)
	assert.True(t, w.IsValid(newer))
	assert.False(t, w.IsValid(target))
}

// go test -run ^TestEntitiesAndComponentTypes$ . -count 1
func TestEntitiesAndComponentTypes(t *testing.T) {
	w := kizuna.NewWorld()
	a, err := w.Spawn(kizuna.NewBundle1(Position{}))
	require.NoError(t, err)
	b, err := w.Spawn(kizuna.NewBundle2(Position{}, Tag{}))
	require.NoError(t, err)

	var seen []kizuna.Entity
	for e := range w.Entities() {
		seen = append(seen, e)
	}
	assert.ElementsMatch(t, []kizuna.Entity{a, b}, seen)

	types, err := w.ComponentTypes(b)
	require.NoError(t, err)
	assert.ElementsMatch(t, []reflect.Type{reflect.TypeFor[Position](), reflect.TypeFor[Tag]()}, types)

	require.NoError(t, w.Despawn(b))
	_, err = w.ComponentTypes(b)
	assert.ErrorIs(t, err, kizuna.ErrStaleEntity)
}

// go test -run ^TestClear$ . -count 1
func TestClear(t *testing.T) {
	w := kizuna.NewWorld()
	ents := spawnN(t, w, 100)
	require.NoError(t, w.Clear())

	assert.Equal(t, 0, w.Len())
	for _, e := range ents {
		assert.False(t, w.IsValid(e))
	}
	infos := w.Archetypes()
	require.Len(t, infos, 1)
	assert.Equal(t, 0, infos[0].Len)

	again := spawnN(t, w, 100)
	assert.Len(t, w.Archetypes(), 1)
	for _, e := range again {
		assert.Equal(t, uint32(2), e.Version)
	}
}

// go test -run ^TestRegisterComponent$ . -count 1
func TestRegisterComponent(t *testing.T) {
	w := kizuna.NewWorld()
	_, ok := kizuna.TryGetID[Health](w)
	assert.False(t, ok)

	id, err := kizuna.RegisterComponent[Health](w)
	require.NoError(t, err)
	again, err := kizuna.RegisterComponent[Health](w)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	got, ok := kizuna.TryGetID[Health](w)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

// go test -run ^TestWorldLogsArchetypeCreation$ . -count 1
func TestWorldLogsArchetypeCreation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := kizuna.NewWorld(kizuna.WithLogger(zap.New(core)), kizuna.WithInitialCapacity(16))

	spawnN(t, w, 5)
	created := logs.FilterMessage("archetype created").All()
	require.Len(t, created, 1)
	assert.Equal(t, int64(0), created[0].ContextMap()["index"])
}
