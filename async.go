package video

// AsyncState is the lifecycle of a resource whose payload may stream in
// after its handle has been handed out.
//
// The zero value is NotReady.
type AsyncState[T any] struct {
	ready bool
	value T
}

// NotReady returns a pending state.
func NotReady[T any]() AsyncState[T] {
	return AsyncState[T]{}
}

// Ready returns a committed state holding v.
func Ready[T any](v T) AsyncState[T] {
	return AsyncState[T]{ready: true, value: v}
}

// IsReady reports whether the payload has been committed.
func (s AsyncState[T]) IsReady() bool { return s.ready }

// Get returns the committed value, or (zero, false) while pending.
func (s AsyncState[T]) Get() (T, bool) {
	return s.value, s.ready
}
