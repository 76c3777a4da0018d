package video

import "fmt"

// Handle is an opaque reference to a registry slot.
//
// A handle packs the slot index together with the slot's generation at the
// time the handle was issued. Two handles are equal only if both fields
// match, so a handle issued after a slot has been freed and reused never
// compares equal to one issued before the free.
//
// The zero Handle is never issued and is always invalid.
type Handle struct {
	index      uint32
	generation uint32
}

// Index returns the slot index.
func (h Handle) Index() uint32 { return h.index }

// Generation returns the slot generation the handle was issued with.
func (h Handle) Generation() uint32 { return h.generation }

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool { return h.generation == 0 }

// String returns a "index:generation" representation for diagnostics.
func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.index, h.generation)
}

// SurfaceHandle references a surface.
type SurfaceHandle struct{ Handle }

// ShaderHandle references a shader.
type ShaderHandle struct{ Handle }

// MeshHandle references a mesh.
type MeshHandle struct{ Handle }

// TextureHandle references a texture.
type TextureHandle struct{ Handle }

// RenderTextureHandle references a render texture.
type RenderTextureHandle struct{ Handle }
