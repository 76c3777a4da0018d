package video

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxFramebufferAttachments is the maximum number of color attachments a
// surface may render into.
const MaxFramebufferAttachments = 8

// Dimensions is the size in pixels of the default framebuffer.
type Dimensions struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether both sides are zero.
func (d Dimensions) IsZero() bool { return d.Width == 0 && d.Height == 0 }

// SurfaceParams describes a render target and the way it is cleared when it
// is bound for the first time in a frame.
//
// A surface without attachments targets the default framebuffer.
type SurfaceParams struct {
	// Colors are the color attachments. Every handle must reference a live
	// render texture with a color format.
	Colors []RenderTextureHandle

	// Depth is the optional depth/stencil attachment. The zero handle means
	// no depth attachment.
	Depth RenderTextureHandle

	ClearColor       mgl32.Vec4
	ShouldClearColor bool

	ClearDepth       float32
	ShouldClearDepth bool

	ClearStencil       int32
	ShouldClearStencil bool

	// Order sorts surfaces inside a frame. Lower values are drawn first.
	Order uint64
}

// DefaultSurfaceParams returns params for the default framebuffer cleared
// to opaque black with depth 1.
func DefaultSurfaceParams() SurfaceParams {
	return SurfaceParams{
		ClearColor:       mgl32.Vec4{0, 0, 0, 1},
		ShouldClearColor: true,
		ClearDepth:       1,
		ShouldClearDepth: true,
	}
}

// HasAttachments reports whether the surface renders into render textures
// instead of the default framebuffer.
func (p *SurfaceParams) HasAttachments() bool {
	return len(p.Colors) > 0 || !p.Depth.IsNil()
}

func (p SurfaceParams) clone() SurfaceParams {
	if p.Colors != nil {
		p.Colors = append([]RenderTextureHandle(nil), p.Colors...)
	}
	return p
}

// validate checks attachment count and formats. lookup resolves render
// textures and must be called with the render texture registry locked.
func (p *SurfaceParams) validate(lookup func(RenderTextureHandle) (RenderTextureParams, bool)) error {
	if len(p.Colors) > MaxFramebufferAttachments {
		return validationErrorf("surface has %d color attachments, limit is %d",
			len(p.Colors), MaxFramebufferAttachments)
	}

	var size Dimensions
	check := func(h RenderTextureHandle, rt RenderTextureParams) error {
		d := Dimensions{Width: rt.Width, Height: rt.Height}
		if size.IsZero() {
			size = d
			return nil
		}
		if d != size {
			return validationErrorf("attachment %v is %dx%d, expected %dx%d",
				h.Handle, d.Width, d.Height, size.Width, size.Height)
		}
		return nil
	}

	seen := make(map[RenderTextureHandle]struct{}, len(p.Colors))
	for i, h := range p.Colors {
		if _, dup := seen[h]; dup {
			return validationErrorf("color attachment %d duplicates %v", i, h.Handle)
		}
		seen[h] = struct{}{}

		rt, ok := lookup(h)
		if !ok {
			return invalidHandle("render texture", h.Handle)
		}
		if rt.Format.IsDepthStencil() {
			return validationErrorf("color attachment %d has depth format %s", i, rt.Format)
		}
		if err := check(h, rt); err != nil {
			return err
		}
	}

	if !p.Depth.IsNil() {
		rt, ok := lookup(p.Depth)
		if !ok {
			return invalidHandle("render texture", p.Depth.Handle)
		}
		if !rt.Format.HasDepth() {
			return validationErrorf("depth attachment has color format %s", rt.Format)
		}
		if err := check(p.Depth, rt); err != nil {
			return err
		}
	}
	return nil
}

// SurfaceScissor restricts drawing on a surface to a rectangle. The zero
// value disables the scissor test.
type SurfaceScissor struct {
	Enabled bool
	X, Y    int32
	Width   uint32
	Height  uint32
}

// SurfaceViewport maps normalized device coordinates to a rectangle of the
// bound surface.
type SurfaceViewport struct {
	X, Y   int32
	Width  uint32
	Height uint32
}
