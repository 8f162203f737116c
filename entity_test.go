package kizuna

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allocPlaced(t *testing.T, r *entityRegistry) Entity {
	t.Helper()
	e, err := r.alloc()
	require.NoError(t, err)
	r.place(e, 0, r.live)
	return e
}

// go test -run ^TestEntityAllocReusesMostRecentlyFreed$ . -count 1
func TestEntityAllocReusesMostRecentlyFreed(t *testing.T) {
	r := newEntityRegistry(4)
	a := allocPlaced(t, &r)
	b := allocPlaced(t, &r)
	c := allocPlaced(t, &r)
	assert.Equal(t, Entity{ID: 0, Version: 1}, a)
	assert.Equal(t, Entity{ID: 1, Version: 1}, b)
	assert.Equal(t, Entity{ID: 2, Version: 1}, c)

	require.NoError(t, r.free(a))
	require.NoError(t, r.free(c))
	assert.Equal(t, 1, r.live)

	assert.Equal(t, Entity{ID: 2, Version: 2}, allocPlaced(t, &r))
	assert.Equal(t, Entity{ID: 0, Version: 2}, allocPlaced(t, &r))
	assert.Equal(t, Entity{ID: 3, Version: 1}, allocPlaced(t, &r))
}

// go test -run ^TestEntityGenerationsStrictlyIncrease$ . -count 1
func TestEntityGenerationsStrictlyIncrease(t *testing.T) {
	r := newEntityRegistry(0)
	var seen []Entity
	for range 50 {
		e := allocPlaced(t, &r)
		require.Equal(t, uint32(0), e.ID)
		for _, old := range seen {
			require.Greater(t, e.Version, old.Version)
			require.Nil(t, r.meta(old), "stale handle %v resolved", old)
		}
		seen = append(seen, e)
		require.NoError(t, r.free(e))
	}
}

// go test -run ^TestEntityFreeStale$ . -count 1
func TestEntityFreeStale(t *testing.T) {
	r := newEntityRegistry(0)
	e := allocPlaced(t, &r)
	require.NoError(t, r.free(e))
	assert.ErrorIs(t, r.free(e), ErrStaleEntity)
	assert.ErrorIs(t, r.free(Entity{ID: 42, Version: 1}), ErrStaleEntity)
	assert.Nil(t, r.meta(Entity{ID: 0, Version: 0}))
}

// go test -run ^TestEntityRetiresExhaustedSlot$ . -count 1
func TestEntityRetiresExhaustedSlot(t *testing.T) {
	r := newEntityRegistry(0)
	e, err := r.alloc()
	require.NoError(t, err)
	e.Version = math.MaxUint32
	r.place(e, 0, 0)

	require.NoError(t, r.free(e))
	assert.Equal(t, 0, r.freeLen)

	next := allocPlaced(t, &r)
	assert.Equal(t, Entity{ID: 1, Version: 1}, next)
}

// go test -run ^TestEntityClaim$ . -count 1
func TestEntityClaim(t *testing.T) {
	r := newEntityRegistry(0)

	target := Entity{ID: 3, Version: 5}
	require.NoError(t, r.claim(target))
	r.place(target, 0, 0)
	assert.Len(t, r.metas, 4)
	assert.Equal(t, 3, r.freeLen)
	assert.NotNil(t, r.meta(target))

	assert.ErrorIs(t, r.claim(target), ErrDuplicateEntity)
	assert.ErrorIs(t, r.claim(Entity{ID: 1, Version: 0}), ErrStaleEntity)

	// gap slots are handed out before the table grows
	assert.Equal(t, Entity{ID: 2, Version: 1}, allocPlaced(t, &r))

	require.NoError(t, r.free(target))
	assert.ErrorIs(t, r.claim(target), ErrStaleEntity)

	newer := Entity{ID: 3, Version: 9}
	require.NoError(t, r.claim(newer))
	r.place(newer, 0, 1)

	// the claimed slot is no longer offered by alloc
	assert.Equal(t, Entity{ID: 1, Version: 1}, allocPlaced(t, &r))
	assert.Equal(t, Entity{ID: 0, Version: 1}, allocPlaced(t, &r))
	assert.Equal(t, Entity{ID: 4, Version: 1}, allocPlaced(t, &r))
}

// go test -run ^TestEntityReset$ . -count 1
func TestEntityReset(t *testing.T) {
	r := newEntityRegistry(0)
	a := allocPlaced(t, &r)
	b := allocPlaced(t, &r)
	r.reset()

	assert.Equal(t, 0, r.live)
	assert.Nil(t, r.meta(a))
	assert.Nil(t, r.meta(b))
	assert.Equal(t, int64(MaxEntities), r.available())

	e := allocPlaced(t, &r)
	assert.Equal(t, uint32(2), e.Version)
}

// go test -run ^TestEntityCopySlots$ . -count 1
func TestEntityCopySlots(t *testing.T) {
	src := newEntityRegistry(0)
	a := allocPlaced(t, &src)
	b := allocPlaced(t, &src)
	c := allocPlaced(t, &src)
	retired, err := src.alloc()
	require.NoError(t, err)
	retired.Version = math.MaxUint32
	src.place(retired, 0, 3)
	require.NoError(t, src.free(retired))
	require.NoError(t, src.free(a))
	require.NoError(t, src.free(c))

	var dst entityRegistry
	dst.copySlots(&src)
	assert.Equal(t, 0, dst.live)
	assert.Nil(t, dst.meta(b))
	dst.place(b, 0, 0)
	assert.NotNil(t, dst.meta(b))
	assert.Equal(t, 1, dst.live)

	// same free order and generations as the source, retired slot skipped
	for _, want := range []Entity{{ID: 2, Version: 2}, {ID: 0, Version: 2}, {ID: 4, Version: 1}} {
		assert.Equal(t, want, allocPlaced(t, &dst))
	}
	assert.Nil(t, dst.meta(a))
	assert.Nil(t, dst.meta(c))

	// the source is untouched
	assert.Equal(t, 2, src.freeLen)
	assert.Len(t, src.metas, 4)
	assert.Equal(t, Entity{ID: 2, Version: 2}, allocPlaced(t, &src))
}
