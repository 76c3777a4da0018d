package video

import (
	"io"
	"time"
)

// FrameInfo reports what one call to Advance did.
type FrameInfo struct {
	Duration  time.Duration
	DrawCalls int
	Triangles int

	AliveSurfaces       int
	AliveShaders        int
	AliveMeshes         int
	AliveTextures       int
	AliveRenderTextures int
}

// System owns the backend visitor and the consumer side of the frame
// queue. Advance must be called from the goroutine that owns the native
// graphics context; all other goroutines use Shared.
type System struct {
	visitor Visitor
	back    *BackFrame
	shared  *Shared
	dims    Dimensions
}

// New creates a System dispatching to visitor.
func New(visitor Visitor, opts ...Option) *System {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	front, back := NewDoubleFrame(o.maxCommands, o.maxBytes)
	Logger().Info("video: system created",
		"max_commands", o.maxCommands, "max_bytes", o.maxBytes,
		"width", o.dimensions.Width, "height", o.dimensions.Height)

	return &System{
		visitor: visitor,
		back:    back,
		shared:  newShared(front),
		dims:    o.dimensions,
	}
}

// Shared returns the facade producers record through. It is safe to share
// between goroutines.
func (s *System) Shared() *Shared {
	return s.shared
}

// Dimensions returns the dimensions of the last Advance.
func (s *System) Dimensions() Dimensions {
	return s.dims
}

// Advance runs one tick: it resizes the visitor if dims changed, swaps the
// frames and dispatches everything recorded since the previous tick.
//
// A backend failure is returned as a *BackendError together with the
// statistics gathered before the failure.
func (s *System) Advance(dims Dimensions) (FrameInfo, error) {
	start := time.Now()
	var info FrameInfo

	if dims != s.dims {
		Logger().Info("video: resize", "width", dims.Width, "height", dims.Height)
		if err := s.visitor.Resize(dims); err != nil {
			return info, &BackendError{Command: CmdResize, Err: err}
		}
		s.dims = dims
	}

	s.back.Swap()
	stats, err := s.back.Dispatch(s.visitor, dims, s.shared)

	info.DrawCalls = stats.DrawCalls
	info.Triangles = stats.Triangles
	s.shared.liveCounts(&info)
	info.Duration = time.Since(start)
	return info, err
}

// Close releases the visitor if it implements io.Closer. Commands recorded
// but not yet dispatched are discarded.
func (s *System) Close() error {
	if c, ok := s.visitor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
