package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/video"
)

// Decoder parses a mesh file. data may be nil only for meshes whose hint
// allows filling them later.
type Decoder func(r io.Reader) (video.MeshParams, *video.MeshData, error)

// LoadMesh returns a handle for the mesh file at location, decoded with
// dec on the worker pool. It deduplicates like LoadTexture. Draws of the
// handle are skipped until the mesh is committed.
func (l *Loader) LoadMesh(location string, dec Decoder) (video.MeshHandle, error) {
	if dec == nil {
		return video.MeshHandle{}, errors.New("loader: nil mesh decoder")
	}
	if l.closed.Load() {
		return video.MeshHandle{}, ErrClosed
	}
	k := key(location)

	h, created, _ := l.meshes.GetOrCreate(k, func() (video.MeshHandle, error) {
		return l.shared.ReserveMesh(), nil
	})
	if !created {
		return h, nil
	}

	if !l.submit(func() { l.loadMesh(k, h, dec) }) {
		l.meshes.Delete(k)
		_ = l.shared.DeleteMesh(h)
		return video.MeshHandle{}, ErrClosed
	}
	video.Logger().Debug("loader: mesh queued", "location", k, "handle", h)
	return h, nil
}

func (l *Loader) loadMesh(location string, h video.MeshHandle, dec Decoder) {
	params, data, err := decodeMesh(location, dec)
	if err == nil {
		err = l.shared.CommitMesh(h, params, data)
	}
	if errors.Is(err, video.ErrHandleInvalid) {
		video.Logger().Debug("loader: mesh dropped", "location", location)
		return
	}
	if err != nil {
		l.meshes.DeleteIf(location, func(v video.MeshHandle) bool { return v == h })
		_ = l.shared.DeleteMesh(h)
		l.fail(location, err)
		return
	}
	l.loaded.Add(1)
	video.Logger().Debug("loader: mesh ready", "location", location,
		"verts", params.NumVerts, "indices", params.NumIdxes)
}

func decodeMesh(location string, dec Decoder) (params video.MeshParams, data *video.MeshData, err error) {
	f, err := open(location)
	if err != nil {
		return params, nil, err
	}
	defer f.Close()

	params, data, err = dec(f)
	if err != nil {
		return params, nil, fmt.Errorf("decode: %w", err)
	}
	return params, data, nil
}

// UnloadMesh forgets location and deletes its mesh.
func (l *Loader) UnloadMesh(location string) error {
	k := key(location)
	h, ok := l.meshes.Get(k)
	if !ok {
		return nil
	}
	l.meshes.Delete(k)
	return l.shared.DeleteMesh(h)
}
