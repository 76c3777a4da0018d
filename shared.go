package video

import (
	"sync"
)

// store guards one registry with its own reader/writer lock.
type store[T any] struct {
	mu  sync.RWMutex
	reg *Registry[T]
}

func newStore[T any]() *store[T] {
	return &store[T]{reg: NewRegistry[T](64)}
}

func (s *store[T]) get(h Handle) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Get(h)
}

func (s *store[T]) contains(h Handle) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Contains(h)
}

func (s *store[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Len()
}

func (s *store[T]) create(v T) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reg.Create(v)
}

// Shared is the thread-safe face of a System. Any goroutine may create,
// update, delete and draw resources through it.
//
// Every mutating call records its command into the front frame and updates
// the registry inside the same critical section, so a handle is never
// observable before the command that creates it has been recorded.
//
// Locks are always taken in this order: the front frame, then render
// textures, surfaces, shaders, meshes, textures.
type Shared struct {
	front *FrontFrame

	renderTextures *store[RenderTextureParams]
	surfaces       *store[SurfaceParams]
	shaders        *store[ShaderParams]
	meshes         *store[AsyncState[MeshParams]]
	textures       *store[AsyncState[TextureParams]]
}

func newShared(front *FrontFrame) *Shared {
	return &Shared{
		front:          front,
		renderTextures: newStore[RenderTextureParams](),
		surfaces:       newStore[SurfaceParams](),
		shaders:        newStore[ShaderParams](),
		meshes:         newStore[AsyncState[MeshParams]](),
		textures:       newStore[AsyncState[TextureParams]](),
	}
}

// --------------------------------------------------------------------------
// Surfaces
// --------------------------------------------------------------------------

// CreateSurface creates a surface. Attachments must reference live render
// textures of matching size.
func (s *Shared) CreateSurface(params SurfaceParams) (SurfaceHandle, error) {
	params = params.clone()

	var h SurfaceHandle
	err := s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}

		s.renderTextures.mu.RLock()
		err := params.validate(func(rt RenderTextureHandle) (RenderTextureParams, bool) {
			return s.renderTextures.reg.Get(rt.Handle)
		})
		s.renderTextures.mu.RUnlock()
		if err != nil {
			return err
		}

		h = SurfaceHandle{s.surfaces.create(params)}
		return f.Push(CreateSurfaceCommand{Handle: h, Params: params.clone()})
	})
	return h, err
}

// Surface returns the params of a live surface.
func (s *Shared) Surface(h SurfaceHandle) (SurfaceParams, bool) {
	p, ok := s.surfaces.get(h.Handle)
	if !ok {
		return SurfaceParams{}, false
	}
	return p.clone(), true
}

// DeleteSurface deletes a surface. Deleting an unknown or already deleted
// handle does nothing.
func (s *Shared) DeleteSurface(h SurfaceHandle) error {
	return deleteResource(s.front, s.surfaces, h.Handle, DeleteSurfaceCommand{Handle: h})
}

// UpdateScissor records a scissor change for a surface.
func (s *Shared) UpdateScissor(surface SurfaceHandle, scissor SurfaceScissor) error {
	return s.recordOnSurface(surface, UpdateScissorCommand{Scissor: scissor})
}

// UpdateViewport records a viewport change for a surface.
func (s *Shared) UpdateViewport(surface SurfaceHandle, viewport SurfaceViewport) error {
	return s.recordOnSurface(surface, UpdateViewportCommand{Viewport: viewport})
}

func (s *Shared) recordOnSurface(surface SurfaceHandle, cmd Command) error {
	return s.front.Record(func(f *Frame) error {
		if !s.surfaces.contains(surface.Handle) {
			return invalidHandle("surface", surface.Handle)
		}
		if err := f.Push(BindCommand{Surface: surface}); err != nil {
			return err
		}
		return f.Push(cmd)
	})
}

// --------------------------------------------------------------------------
// Shaders
// --------------------------------------------------------------------------

// CreateShader creates a shader from vertex and fragment sources. The
// declared attributes must be referenced by vs and every uniform by vs or
// fs.
func (s *Shared) CreateShader(params ShaderParams, vs, fs string) (ShaderHandle, error) {
	if err := params.validate(vs, fs); err != nil {
		return ShaderHandle{}, err
	}
	params = params.clone()

	var h ShaderHandle
	err := s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}
		h = ShaderHandle{s.shaders.create(params)}
		return f.Push(CreateShaderCommand{Handle: h, Params: params.clone(), VS: vs, FS: fs})
	})
	return h, err
}

// Shader returns the params of a live shader.
func (s *Shared) Shader(h ShaderHandle) (ShaderParams, bool) {
	p, ok := s.shaders.get(h.Handle)
	if !ok {
		return ShaderParams{}, false
	}
	return p.clone(), true
}

// DeleteShader deletes a shader. Deleting an unknown or already deleted
// handle does nothing.
func (s *Shared) DeleteShader(h ShaderHandle) error {
	return deleteResource(s.front, s.shaders, h.Handle, DeleteShaderCommand{Handle: h})
}

// --------------------------------------------------------------------------
// Render textures
// --------------------------------------------------------------------------

// CreateRenderTexture creates a texture surfaces can render into.
func (s *Shared) CreateRenderTexture(params RenderTextureParams) (RenderTextureHandle, error) {
	if err := params.validate(); err != nil {
		return RenderTextureHandle{}, err
	}

	var h RenderTextureHandle
	err := s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}
		h = RenderTextureHandle{s.renderTextures.create(params)}
		return f.Push(CreateRenderTextureCommand{Handle: h, Params: params})
	})
	return h, err
}

// RenderTexture returns the params of a live render texture.
func (s *Shared) RenderTexture(h RenderTextureHandle) (RenderTextureParams, bool) {
	return s.renderTextures.get(h.Handle)
}

// DeleteRenderTexture deletes a render texture. Deleting an unknown or
// already deleted handle does nothing.
func (s *Shared) DeleteRenderTexture(h RenderTextureHandle) error {
	return deleteResource(s.front, s.renderTextures, h.Handle, DeleteRenderTextureCommand{Handle: h})
}

// --------------------------------------------------------------------------
// Drawing
// --------------------------------------------------------------------------

// Draw records a bind of surface followed by dc. Uniform values are
// encoded into the frame arena before Draw returns.
//
// Drawing a mesh that is still loading records nothing and returns nil.
func (s *Shared) Draw(surface SurfaceHandle, dc *DrawCall) error {
	return s.front.Record(func(f *Frame) error {
		if !s.surfaces.contains(surface.Handle) {
			return invalidHandle("surface", surface.Handle)
		}
		sp, ok := s.shaders.get(dc.Shader.Handle)
		if !ok {
			return invalidHandle("shader", dc.Shader.Handle)
		}
		st, ok := s.meshes.get(dc.Mesh.Handle)
		if !ok {
			return invalidHandle("mesh", dc.Mesh.Handle)
		}
		mp, ready := st.Get()
		if !ready {
			Logger().Debug("video: draw of pending mesh ignored", "mesh", dc.Mesh.Handle)
			return nil
		}
		if _, _, ok := dc.Index.Resolve(&mp); !ok {
			return validationErrorf("draw index range outside mesh %v", dc.Mesh.Handle)
		}
		if err := dc.checkUniforms(sp.Uniforms); err != nil {
			return err
		}

		size := sp.Uniforms.Size()
		if err := f.Reserve(2, size); err != nil {
			return err
		}
		ptr, block, err := f.alloc(size)
		if err != nil {
			return err
		}
		dc.encodeUniforms(sp.Uniforms, block)

		if err := f.Push(BindCommand{Surface: surface}); err != nil {
			return err
		}
		return f.Push(DrawCommand{
			Shader:   dc.Shader,
			Mesh:     dc.Mesh,
			Index:    dc.Index,
			Uniforms: ptr,
		})
	})
}

// deleteResource frees h and records cmd. Unknown handles are ignored.
func deleteResource[T any](front *FrontFrame, st *store[T], h Handle, cmd Command) error {
	return front.Record(func(f *Frame) error {
		st.mu.Lock()
		defer st.mu.Unlock()

		if !st.reg.Contains(h) {
			return nil
		}
		if err := f.Push(cmd); err != nil {
			return err
		}
		st.reg.Free(h)
		return nil
	})
}

// liveCounts reports the number of live resources of each kind.
func (s *Shared) liveCounts(info *FrameInfo) {
	info.AliveSurfaces = s.surfaces.len()
	info.AliveShaders = s.shaders.len()
	info.AliveMeshes = s.meshes.len()
	info.AliveTextures = s.textures.len()
	info.AliveRenderTextures = s.renderTextures.len()
}
