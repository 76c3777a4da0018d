package video

// slot is one cell of a Registry. Occupancy is tracked explicitly so growth
// and removal never expose a value that was not written.
type slot[T any] struct {
	generation uint32
	occupied   bool
	value      T
}

// Registry is a handle-indexed arena storing one resource kind.
//
// Freed slots are recycled LIFO. Every free bumps the slot's generation,
// which invalidates all handles issued for the previous occupant.
//
// Registry is not safe for concurrent use. Shared guards each registry with
// its own sync.RWMutex.
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

// NewRegistry creates an empty registry with room for capacity slots.
func NewRegistry[T any](capacity int) *Registry[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Registry[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Create stores v and returns its handle. A freed slot is reused when one
// is available, otherwise the registry grows.
func (r *Registry[T]) Create(v T) Handle {
	var index uint32
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		// #nosec G115 -- registry size is bounded by available memory, well under uint32 max
		index = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{generation: 1})
	}

	s := &r.slots[index]
	s.occupied = true
	s.value = v
	r.live++

	return Handle{index: index, generation: s.generation}
}

// lookup returns the occupied slot addressed by h, or nil.
func (r *Registry[T]) lookup(h Handle) *slot[T] {
	if h.generation == 0 || int(h.index) >= len(r.slots) {
		return nil
	}
	s := &r.slots[h.index]
	if !s.occupied || s.generation != h.generation {
		return nil
	}
	return s
}

// Get returns the value stored for h.
// Returns (zero, false) if h is unknown, freed or stale.
func (r *Registry[T]) Get(h Handle) (T, bool) {
	if s := r.lookup(h); s != nil {
		return s.value, true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer to the value stored for h, or nil.
// The pointer is invalidated by the next Create.
func (r *Registry[T]) GetMut(h Handle) *T {
	if s := r.lookup(h); s != nil {
		return &s.value
	}
	return nil
}

// Contains reports whether h addresses a live value.
func (r *Registry[T]) Contains(h Handle) bool {
	return r.lookup(h) != nil
}

// Free removes the value stored for h and returns it.
// Freeing an unknown or already freed handle returns (zero, false) and
// changes nothing.
func (r *Registry[T]) Free(h Handle) (T, bool) {
	s := r.lookup(h)
	if s == nil {
		var zero T
		return zero, false
	}

	v := s.value
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	if s.generation == 0 {
		// Skip the reserved nil generation on wrap-around.
		s.generation = 1
	}
	r.free = append(r.free, h.index)
	r.live--

	return v, true
}

// Len returns the number of live values.
func (r *Registry[T]) Len() int {
	return r.live
}

// Range calls fn for every live value in slot order until fn returns false.
func (r *Registry[T]) Range(fn func(h Handle, v T) bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if !s.occupied {
			continue
		}
		// #nosec G115 -- registry size is bounded by available memory, well under uint32 max
		if !fn(Handle{index: uint32(i), generation: s.generation}, s.value) {
			return
		}
	}
}

// Clear frees every live value. Handles issued before Clear become stale.
func (r *Registry[T]) Clear() {
	var zero T
	for i := range r.slots {
		s := &r.slots[i]
		if !s.occupied {
			continue
		}
		s.value = zero
		s.occupied = false
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		// #nosec G115 -- registry size is bounded by available memory, well under uint32 max
		r.free = append(r.free, uint32(i))
	}
	r.live = 0
}
