package kizuna_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edwinsyarief/kizuna"
)

// go test -run ^TestEntityBuilderSpawn$ . -count 1
func TestEntityBuilderSpawn(t *testing.T) {
	w := kizuna.NewWorld()
	b := kizuna.NewEntityBuilder()
	kizuna.Add(b, Position{X: 1})
	kizuna.Add(b, Velocity{Y: 2})
	kizuna.Add(b, Name("built"))
	assert.Equal(t, 3, b.Len())

	built := b.Build()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t,
		[]reflect.Type{reflect.TypeFor[Position](), reflect.TypeFor[Velocity](), reflect.TypeFor[Name]()},
		built.Descriptor().Types())

	e, err := w.Spawn(built)
	require.NoError(t, err)
	p, err := kizuna.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, Position{X: 1}, *p)
	n, err := kizuna.GetComponent[Name](w, e)
	require.NoError(t, err)
	assert.Equal(t, Name("built"), *n)

	_, err = w.Spawn(built)
	assert.ErrorIs(t, err, kizuna.ErrBundleConsumed)
	assert.Equal(t, 1, w.Len())
}

// go test -run ^TestEntityBuilderSharesArchetypeWithBundles$ . -count 1
func TestEntityBuilderSharesArchetypeWithBundles(t *testing.T) {
	w := kizuna.NewWorld()
	_, err := w.Spawn(kizuna.NewBundle2(Position{}, Velocity{}))
	require.NoError(t, err)

	b := kizuna.NewEntityBuilder()
	kizuna.Add(kizuna.Add(b, Velocity{}), Position{})
	_, err = w.Spawn(b.Build())
	require.NoError(t, err)

	infos := w.Archetypes()
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].Len)
}

// go test -run ^TestEntityBuilderReplaceReleases$ . -count 1
func TestEntityBuilderReplaceReleases(t *testing.T) {
	var first, second int
	w := kizuna.NewWorld()
	b := kizuna.NewEntityBuilder()
	kizuna.Add(b, Position{X: 1})
	kizuna.Add(b, Handle{released: &first})
	kizuna.Add(b, Position{X: 7})
	kizuna.Add(b, Handle{released: &second})

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)

	built := b.Build()
	// a replaced value keeps the position of the original
	assert.Equal(t, reflect.TypeFor[Position](), built.Descriptor()[0].Type)

	e, err := w.Spawn(built)
	require.NoError(t, err)
	p, err := kizuna.GetComponent[Position](w, e)
	require.NoError(t, err)
	assert.Equal(t, 7.0, p.X)

	// spawned values belong to the world and are not released
	built.Discard()
	assert.Equal(t, 0, second)
}

// go test -run ^TestEntityBuilderDiscard$ . -count 1
func TestEntityBuilderDiscard(t *testing.T) {
	var released int
	b := kizuna.NewEntityBuilder()
	kizuna.Add(b, Handle{released: &released})
	b.Discard()
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, b.Len())

	kizuna.Add(b, Handle{released: &released})
	built := b.Build()
	built.Discard()
	built.Discard()
	assert.Equal(t, 2, released)

	w := kizuna.NewWorld()
	_, err := w.Spawn(built)
	assert.ErrorIs(t, err, kizuna.ErrBundleConsumed)
}

// go test -run ^TestEntityBuilderDescriptor$ . -count 1
func TestEntityBuilderDescriptor(t *testing.T) {
	b := kizuna.NewEntityBuilder()
	kizuna.Add(b, Health{})
	kizuna.Add(b, Tag{})
	d := b.Build().Descriptor()
	require.Len(t, d, 2)
	assert.Equal(t, reflect.TypeFor[Health]().Size(), d[0].Size)
	assert.Equal(t, uintptr(0), d[1].Size)
	assert.Equal(t, uintptr(reflect.TypeFor[Health]().Align()), d[0].Align)
}
