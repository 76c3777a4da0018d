package video

// --------------------------------------------------------------------------
// Meshes
// --------------------------------------------------------------------------

// CreateMesh creates a mesh. data may be nil for Stream and Dynamic meshes
// that are filled later with UpdateVertexBuffer and UpdateIndexBuffer.
func (s *Shared) CreateMesh(params MeshParams, data *MeshData) (MeshHandle, error) {
	params, data, err := prepareMesh(params, data)
	if err != nil {
		return MeshHandle{}, err
	}

	var h MeshHandle
	err = s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}
		h = MeshHandle{s.meshes.create(Ready(params.clone()))}
		return f.Push(CreateMeshCommand{Handle: h, Params: params, Data: data})
	})
	return h, err
}

func prepareMesh(params MeshParams, data *MeshData) (MeshParams, *MeshData, error) {
	if err := params.validate(data); err != nil {
		return params, nil, err
	}
	params = params.clone()
	if params.Aabb.IsZero() && data != nil {
		params.Aabb = computeAabb(params.Layout, params.NumVerts, data.VPtr)
	}
	return params, data.clone(), nil
}

// ReserveMesh allocates a mesh handle whose content is committed later
// with CommitMesh. Until then the mesh is pending: Mesh and MeshAabb
// report it unavailable and draws of it are ignored.
//
// Nothing is recorded for a reservation.
func (s *Shared) ReserveMesh() MeshHandle {
	return MeshHandle{s.meshes.create(NotReady[MeshParams]())}
}

// CommitMesh validates the content of a reserved mesh, records its
// creation and marks it ready, as one step. Committing an unknown handle
// or a mesh that is already ready fails with ErrHandleInvalid.
func (s *Shared) CommitMesh(h MeshHandle, params MeshParams, data *MeshData) error {
	params, data, err := prepareMesh(params, data)
	if err != nil {
		return err
	}

	return s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}

		s.meshes.mu.Lock()
		defer s.meshes.mu.Unlock()

		slot := s.meshes.reg.GetMut(h.Handle)
		if slot == nil || slot.IsReady() {
			return invalidHandle("pending mesh", h.Handle)
		}
		if err := f.Push(CreateMeshCommand{Handle: h, Params: params.clone(), Data: data}); err != nil {
			return err
		}
		*slot = Ready(params)
		return nil
	})
}

// Mesh returns the params of a live, committed mesh.
func (s *Shared) Mesh(h MeshHandle) (MeshParams, bool) {
	st, ok := s.meshes.get(h.Handle)
	if !ok {
		return MeshParams{}, false
	}
	p, ok := st.Get()
	if !ok {
		return MeshParams{}, false
	}
	return p.clone(), true
}

// MeshAabb returns the bounding box of a committed mesh. It reports false
// while the mesh is pending or after it was deleted, and never blocks on
// the loader.
func (s *Shared) MeshAabb(h MeshHandle) (Aabb3, bool) {
	st, ok := s.meshes.get(h.Handle)
	if !ok {
		return Aabb3{}, false
	}
	p, ok := st.Get()
	return p.Aabb, ok
}

// UpdateVertexBuffer records a replacement of vertex buffer bytes starting
// at offset. Only the given bytes are transferred.
func (s *Shared) UpdateVertexBuffer(h MeshHandle, offset int, data []byte) error {
	return s.updateMesh(h, offset, data, false)
}

// UpdateIndexBuffer records a replacement of index buffer bytes starting
// at offset. Only the given bytes are transferred.
func (s *Shared) UpdateIndexBuffer(h MeshHandle, offset int, data []byte) error {
	return s.updateMesh(h, offset, data, true)
}

func (s *Shared) updateMesh(h MeshHandle, offset int, data []byte, index bool) error {
	return s.front.Record(func(f *Frame) error {
		st, ok := s.meshes.get(h.Handle)
		if !ok {
			return invalidHandle("mesh", h.Handle)
		}
		p, ready := st.Get()
		if !ready {
			return invalidHandle("pending mesh", h.Handle)
		}
		if p.Hint == BufferHintImmutable {
			return validationErrorf("mesh %v is immutable", h.Handle)
		}

		limit := p.VertexBufferLen()
		if index {
			limit = p.IndexBufferLen()
		}
		if offset < 0 || len(data) > limit || offset > limit-len(data) {
			return validationErrorf("update [%d, %d) exceeds buffer of %d bytes",
				offset, offset+len(data), limit)
		}

		ptr, err := f.Extend(data)
		if err != nil {
			return err
		}
		if index {
			return f.Push(UpdateIndexBufferCommand{Handle: h, Offset: offset, Data: ptr})
		}
		return f.Push(UpdateVertexBufferCommand{Handle: h, Offset: offset, Data: ptr})
	})
}

// DeleteMesh deletes a mesh. Deleting an unknown or already deleted handle
// does nothing. A pending mesh is released without recording anything.
func (s *Shared) DeleteMesh(h MeshHandle) error {
	return deleteAsync(s.front, s.meshes, h.Handle, DeleteMeshCommand{Handle: h})
}

// --------------------------------------------------------------------------
// Textures
// --------------------------------------------------------------------------

// CreateTexture creates a texture. data may be nil for Stream and Dynamic
// textures that are filled later with UpdateTexture.
func (s *Shared) CreateTexture(params TextureParams, data *TextureData) (TextureHandle, error) {
	if err := params.validate(data); err != nil {
		return TextureHandle{}, err
	}
	data = data.clone()

	var h TextureHandle
	err := s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}
		h = TextureHandle{s.textures.create(Ready(params))}
		return f.Push(CreateTextureCommand{Handle: h, Params: params, Data: data})
	})
	return h, err
}

// ReserveTexture allocates a texture handle whose content is committed
// later with CommitTexture. Nothing is recorded for a reservation.
func (s *Shared) ReserveTexture() TextureHandle {
	return TextureHandle{s.textures.create(NotReady[TextureParams]())}
}

// CommitTexture validates the content of a reserved texture, records its
// creation and marks it ready, as one step. Committing an unknown handle
// or a texture that is already ready fails with ErrHandleInvalid.
func (s *Shared) CommitTexture(h TextureHandle, params TextureParams, data *TextureData) error {
	if err := params.validate(data); err != nil {
		return err
	}
	data = data.clone()

	return s.front.Record(func(f *Frame) error {
		if err := f.Reserve(1, 0); err != nil {
			return err
		}

		s.textures.mu.Lock()
		defer s.textures.mu.Unlock()

		slot := s.textures.reg.GetMut(h.Handle)
		if slot == nil || slot.IsReady() {
			return invalidHandle("pending texture", h.Handle)
		}
		if err := f.Push(CreateTextureCommand{Handle: h, Params: params, Data: data}); err != nil {
			return err
		}
		*slot = Ready(params)
		return nil
	})
}

// Texture returns the params of a live, committed texture.
func (s *Shared) Texture(h TextureHandle) (TextureParams, bool) {
	st, ok := s.textures.get(h.Handle)
	if !ok {
		return TextureParams{}, false
	}
	return st.Get()
}

// UpdateTexture records a replacement of a region of mip level 0. data
// holds the region's rows tightly packed.
func (s *Shared) UpdateTexture(h TextureHandle, region TextureRegion, data []byte) error {
	return s.front.Record(func(f *Frame) error {
		st, ok := s.textures.get(h.Handle)
		if !ok {
			return invalidHandle("texture", h.Handle)
		}
		p, ready := st.Get()
		if !ready {
			return invalidHandle("pending texture", h.Handle)
		}
		if p.Hint == BufferHintImmutable {
			return validationErrorf("texture %v is immutable", h.Handle)
		}
		if !region.Within(p.Width, p.Height) {
			return validationErrorf("region %+v outside %dx%d texture", region, p.Width, p.Height)
		}
		if want := region.Area() * BytesPerPixel(p.Format); len(data) != want {
			return validationErrorf("region data is %d bytes, want %d", len(data), want)
		}

		ptr, err := f.Extend(data)
		if err != nil {
			return err
		}
		return f.Push(UpdateTextureCommand{Handle: h, Region: region, Data: ptr})
	})
}

// DeleteTexture deletes a texture. Deleting an unknown or already deleted
// handle does nothing. A pending texture is released without recording
// anything.
func (s *Shared) DeleteTexture(h TextureHandle) error {
	return deleteAsync(s.front, s.textures, h.Handle, DeleteTextureCommand{Handle: h})
}

// deleteAsync frees h. The delete command is recorded only if the backend
// has seen the creation, i.e. the resource was committed.
func deleteAsync[T any](front *FrontFrame, st *store[AsyncState[T]], h Handle, cmd Command) error {
	return front.Record(func(f *Frame) error {
		st.mu.Lock()
		defer st.mu.Unlock()

		state, ok := st.reg.Get(h)
		if !ok {
			return nil
		}
		if state.IsReady() {
			if err := f.Push(cmd); err != nil {
				return err
			}
		}
		st.reg.Free(h)
		return nil
	})
}
