package headless

import (
	"fmt"

	"github.com/gogpu/video"
)

// Bind implements video.Visitor.
func (v *Visitor) Bind(h video.SurfaceHandle, _ video.Dimensions) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.surfaces[h]; !ok {
		return notResident("surface", h.Handle)
	}
	v.bound = h
	v.log(video.CmdBind, h.Handle)
	return nil
}

// UpdateScissor implements video.Visitor.
func (v *Visitor) UpdateScissor(s video.SurfaceScissor) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.bound.IsNil() {
		return ErrNotBound
	}
	v.scissor = s
	v.log(video.CmdUpdateScissor, v.bound.Handle)
	return nil
}

// UpdateViewport implements video.Visitor.
func (v *Visitor) UpdateViewport(vp video.SurfaceViewport) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.bound.IsNil() {
		return ErrNotBound
	}
	v.viewport = vp
	v.log(video.CmdUpdateViewport, v.bound.Handle)
	return nil
}

// State returns the bound surface and its scissor and viewport.
func (v *Visitor) State() (video.SurfaceHandle, video.SurfaceScissor, video.SurfaceViewport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bound, v.scissor, v.viewport
}

// Draw implements video.Visitor. Every resource the draw references,
// including textures bound through uniforms, must be resident. Unset
// texture uniforms are ignored.
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

	for _, u := range inv.ShaderParams.Uniforms.Variables() {
		if u.Type != video.UniformTexture && u.Type != video.UniformRenderTexture {
			continue
		}
		val, err := video.DecodeUniform(inv.Uniforms, u)
		if err != nil {
			return err
		}
		switch h := val.(type) {
		case video.TextureHandle:
			if _, ok := v.textures[h]; !ok && !h.IsNil() {
				return notResident("texture", h.Handle)
			}
		case video.RenderTextureHandle:
			if _, ok := v.renderTextures[h]; !ok && !h.IsNil() {
				return notResident("render texture", h.Handle)
			}
		}
	}

	v.frame.DrawCalls++
	v.frame.Indices += inv.Count
	v.log(video.CmdDraw, inv.Mesh.Handle)
	return nil
}
