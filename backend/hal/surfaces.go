package hal

import (
	"fmt"

	"github.com/gogpu/video"
)

// CreateSurface implements video.Visitor. Surfaces own no HAL objects;
// their attachments must already be resident.
func (v *Visitor) CreateSurface(h video.SurfaceHandle, p video.SurfaceParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, c := range p.Colors {
		if _, ok := v.renderTextures[c]; !ok {
			return notResident("render texture", c.Handle)
		}
	}
	if !p.Depth.IsNil() {
		if _, ok := v.renderTextures[p.Depth]; !ok {
			return notResident("render texture", p.Depth.Handle)
		}
	}
	v.surfaces[h] = p
	return nil
}

// DeleteSurface implements video.Visitor.
func (v *Visitor) DeleteSurface(h video.SurfaceHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.surfaces[h]; !ok {
		return notResident("surface", h.Handle)
	}
	delete(v.surfaces, h)
	if v.bound == h {
		v.bound = video.SurfaceHandle{}
	}
	return nil
}

// Bind implements video.Visitor.
func (v *Visitor) Bind(h video.SurfaceHandle, _ video.Dimensions) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.surfaces[h]; !ok {
		return notResident("surface", h.Handle)
	}
	v.bound = h
	return nil
}

// UpdateScissor implements video.Visitor.
func (v *Visitor) UpdateScissor(video.SurfaceScissor) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bound.IsNil() {
		return ErrNotBound
	}
	return nil
}

// UpdateViewport implements video.Visitor.
func (v *Visitor) UpdateViewport(video.SurfaceViewport) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.bound.IsNil() {
		return ErrNotBound
	}
	return nil
}

// Draw implements video.Visitor. It checks that the draw only references
// resident resources and counts it.
func (v *Visitor) Draw(inv *video.DrawInvocation) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if inv.Surface.IsNil() || inv.Surface != v.bound {
		return ErrNotBound
	}
	if _, ok := v.shaders[inv.Shader]; !ok {
		return notResident("shader", inv.Shader.Handle)
	}
	m, ok := v.meshes[inv.Mesh]
	if !ok {
		return notResident("mesh", inv.Mesh.Handle)
	}
	if inv.From < 0 || inv.From+inv.Count > m.params.NumIdxes {
		return fmt.Errorf("%w: indices [%d, %d) of %d", ErrOutOfBounds, inv.From, inv.From+inv.Count, m.params.NumIdxes)
	}

	v.frame.DrawCalls++
	v.frame.Indices += inv.Count
	return nil
}
