package kizuna

import "fmt"

// column is one contiguous, homogeneously typed buffer of an archetype. The
// archetype owns the capacity schedule; columns only follow it.
type column interface {
	len() int
	// grow reallocates the buffer to exactly capacity, keeping contents.
	grow(capacity int)
	// swapRemove moves the last value into row and shrinks by one.
	swapRemove(row int)
	// appendFrom appends a copy of src's value at row. src must hold the
	// same type.
	appendFrom(src column, row int)
	// truncate drops every value.
	truncate()
	// ptr returns a pointer to the value at row, boxed.
	ptr(row int) any
}

// typedColumn is the column implementation for values of type T.
type typedColumn[T any] struct {
	data []T
}

func newTypedColumn[T any](capacity int) column {
	return &typedColumn[T]{data: make([]T, 0, capacity)}
}

func (c *typedColumn[T]) len() int { return len(c.data) }

func (c *typedColumn[T]) grow(capacity int) {
	if capacity <= cap(c.data) {
		return
	}
	data := make([]T, len(c.data), capacity)
	copy(data, c.data)
	c.data = data
}

func (c *typedColumn[T]) swapRemove(row int) {
	last := len(c.data) - 1
	if row < last {
		c.data[row] = c.data[last]
	}
	var zero T
	c.data[last] = zero // drop references held by the vacated slot
	c.data = c.data[:last]
}

func (c *typedColumn[T]) appendFrom(src column, row int) {
	s, ok := src.(*typedColumn[T])
	if !ok {
		panic(fmt.Sprintf("ecs: column type mismatch: %T into %T", src, c))
	}
	c.data = append(c.data, s.data[row])
}

func (c *typedColumn[T]) truncate() {
	clear(c.data)
	c.data = c.data[:0]
}

func (c *typedColumn[T]) ptr(row int) any {
	return &c.data[row]
}

func (c *typedColumn[T]) push(v T) {
	c.data = append(c.data, v)
}

// columnOf asserts c to the typed column for T. A failed assertion means the
// archetype directory is corrupt.
func columnOf[T any](c column) *typedColumn[T] {
	tc, ok := c.(*typedColumn[T])
	if !ok {
		panic(fmt.Sprintf("ecs: column type mismatch: have %T, want %T", c, tc))
	}
	return tc
}
