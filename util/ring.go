package util

// Ring is a fixed capacity FIFO. Pushing onto a full ring evicts the oldest
// item. Storage is allocated once, in NewRing.
type Ring[T any] struct {
	items []T
	head  int
	size  int
}

// NewRing returns an empty ring that holds at most capacity items.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v as the newest item. It reports whether an item was evicted
// to make room.
func (r *Ring[T]) Push(v T) bool {
	evicted := false

	if r.size == len(r.items) {
		r.head = (r.head + 1) % len(r.items)
		r.size--
		evicted = true
	}

	r.items[(r.head+r.size)%len(r.items)] = v
	r.size++

	return evicted
}

// At returns the i-th item, 0 being the oldest. It panics if i is out of
// range.
func (r *Ring[T]) At(i int) T {
	return *r.Ptr(i)
}

// Ptr returns a pointer to the i-th item, 0 being the oldest, so the item can
// be mutated in place.
func (r *Ring[T]) Ptr(i int) *T {
	if i < 0 || i >= r.size {
		panic("util: ring index out of range")
	}

	return &r.items[(r.head+i)%len(r.items)]
}

// Last returns the newest item. ok is false if the ring is empty.
func (r *Ring[T]) Last() (v T, ok bool) {
	if r.size == 0 {
		return v, false
	}

	return r.At(r.size - 1), true
}

// Each calls fn with a pointer to every item, oldest first.
func (r *Ring[T]) Each(fn func(*T)) {
	for i := 0; i < r.size; i++ {
		fn(&r.items[(r.head+i)%len(r.items)])
	}
}

// Slice copies the items, oldest first, into a new slice.
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	r.Each(func(v *T) { out = append(out, *v) })
	return out
}

// Clear empties the ring without releasing its storage.
func (r *Ring[T]) Clear() {
	var zero T
	for i := range r.items {
		r.items[i] = zero
	}

	r.head = 0
	r.size = 0
}

// Len returns the number of items held.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the maximum number of items.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}
