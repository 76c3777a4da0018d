package headless

import (
	"fmt"

	"github.com/gogpu/video"
)

// Counts is the number of resident resources per kind.
type Counts struct {
	Surfaces       int
	Shaders        int
	Meshes         int
	Textures       int
	RenderTextures int
}

// Resident returns the number of resident resources per kind.
func (v *Visitor) Resident() Counts {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Counts{
		Surfaces:       len(v.surfaces),
		Shaders:        len(v.shaders),
		Meshes:         len(v.meshes),
		Textures:       len(v.textures),
		RenderTextures: len(v.renderTextures),
	}
}

// CreateSurface implements video.Visitor.
func (v *Visitor) CreateSurface(h video.SurfaceHandle, p video.SurfaceParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.surfaces[h]; ok {
		return alreadyResident("surface", h.Handle)
	}
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
	v.log(video.CmdCreateSurface, h.Handle)
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
	v.log(video.CmdDeleteSurface, h.Handle)
	return nil
}

// CreateShader implements video.Visitor. Sources are not compiled.
func (v *Visitor) CreateShader(h video.ShaderHandle, p video.ShaderParams, _, _ string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.shaders[h]; ok {
		return alreadyResident("shader", h.Handle)
	}
	v.shaders[h] = p
	v.log(video.CmdCreateShader, h.Handle)
	return nil
}

// DeleteShader implements video.Visitor.
func (v *Visitor) DeleteShader(h video.ShaderHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.shaders[h]; !ok {
		return notResident("shader", h.Handle)
	}
	delete(v.shaders, h)
	v.log(video.CmdDeleteShader, h.Handle)
	return nil
}

// CreateMesh implements video.Visitor. Buffers without initial data are
// zero filled.
func (v *Visitor) CreateMesh(h video.MeshHandle, p video.MeshParams, data *video.MeshData) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.meshes[h]; ok {
		return alreadyResident("mesh", h.Handle)
	}
	m := &mesh{
		params:  p,
		vertex:  make([]byte, p.VertexBufferLen()),
		indices: make([]byte, p.IndexBufferLen()),
	}
	if data != nil {
		copy(m.vertex, data.VPtr)
		copy(m.indices, data.IPtr)
	}
	v.meshes[h] = m
	v.log(video.CmdCreateMesh, h.Handle)
	return nil
}

// UpdateVertexBuffer implements video.Visitor.
func (v *Visitor) UpdateVertexBuffer(h video.MeshHandle, offset int, data []byte) error {
	return v.updateMesh(video.CmdUpdateVertexBuffer, h, offset, data)
}

// UpdateIndexBuffer implements video.Visitor.
func (v *Visitor) UpdateIndexBuffer(h video.MeshHandle, offset int, data []byte) error {
	return v.updateMesh(video.CmdUpdateIndexBuffer, h, offset, data)
}

func (v *Visitor) updateMesh(t video.CommandType, h video.MeshHandle, offset int, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, ok := v.meshes[h]
	if !ok {
		return notResident("mesh", h.Handle)
	}
	buf := m.vertex
	if t == video.CmdUpdateIndexBuffer {
		buf = m.indices
	}
	if offset < 0 || len(data) > len(buf) || offset > len(buf)-len(data) {
		return fmt.Errorf("%w: %s [%d, %d) of %d bytes", ErrOutOfBounds, t, offset, offset+len(data), len(buf))
	}
	copy(buf[offset:], data)
	v.log(t, h.Handle)
	return nil
}

// DeleteMesh implements video.Visitor.
func (v *Visitor) DeleteMesh(h video.MeshHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.meshes[h]; !ok {
		return notResident("mesh", h.Handle)
	}
	delete(v.meshes, h)
	v.log(video.CmdDeleteMesh, h.Handle)
	return nil
}

// Mesh returns copies of the vertex and index buffers of h.
func (v *Visitor) Mesh(h video.MeshHandle) (vertex, indices []byte, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, ok := v.meshes[h]
	if !ok {
		return nil, nil, false
	}
	return append([]byte(nil), m.vertex...), append([]byte(nil), m.indices...), true
}

// CreateTexture implements video.Visitor. Missing mip levels are zero
// filled.
func (v *Visitor) CreateTexture(h video.TextureHandle, p video.TextureParams, data *video.TextureData) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.textures[h]; ok {
		return alreadyResident("texture", h.Handle)
	}
	t := &texture{params: p, levels: make([][]byte, p.MipLevels())}
	for i := range t.levels {
		t.levels[i] = make([]byte, p.LevelSize(i))
		if data != nil && i < len(data.Bytes) {
			copy(t.levels[i], data.Bytes[i])
		}
	}
	v.textures[h] = t
	v.log(video.CmdCreateTexture, h.Handle)
	return nil
}

// UpdateTexture implements video.Visitor. Only level 0 is updated.
func (v *Visitor) UpdateTexture(h video.TextureHandle, region video.TextureRegion, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.textures[h]
	if !ok {
		return notResident("texture", h.Handle)
	}
	bpp := video.BytesPerPixel(t.params.Format)
	if !region.Within(t.params.Width, t.params.Height) || len(data) != region.Area()*bpp {
		return fmt.Errorf("%w: texture region %+v", ErrOutOfBounds, region)
	}

	pitch := int(t.params.Width) * bpp
	row := int(region.Width) * bpp
	for y := 0; y < int(region.Height); y++ {
		dst := (int(region.Y)+y)*pitch + int(region.X)*bpp
		copy(t.levels[0][dst:dst+row], data[y*row:])
	}
	v.log(video.CmdUpdateTexture, h.Handle)
	return nil
}

// DeleteTexture implements video.Visitor.
func (v *Visitor) DeleteTexture(h video.TextureHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.textures[h]; !ok {
		return notResident("texture", h.Handle)
	}
	delete(v.textures, h)
	v.log(video.CmdDeleteTexture, h.Handle)
	return nil
}

// Texture returns a copy of mip level of h.
func (v *Visitor) Texture(h video.TextureHandle, level int) ([]byte, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.textures[h]
	if !ok || level < 0 || level >= len(t.levels) {
		return nil, false
	}
	return append([]byte(nil), t.levels[level]...), true
}

// CreateRenderTexture implements video.Visitor.
func (v *Visitor) CreateRenderTexture(h video.RenderTextureHandle, p video.RenderTextureParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.renderTextures[h]; ok {
		return alreadyResident("render texture", h.Handle)
	}
	v.renderTextures[h] = p
	v.log(video.CmdCreateRenderTexture, h.Handle)
	return nil
}

// DeleteRenderTexture implements video.Visitor.
func (v *Visitor) DeleteRenderTexture(h video.RenderTextureHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.renderTextures[h]; !ok {
		return notResident("render texture", h.Handle)
	}
	delete(v.renderTextures, h)
	v.log(video.CmdDeleteRenderTexture, h.Handle)
	return nil
}
