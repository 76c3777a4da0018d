package hal

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/video"
	"github.com/gogpu/wgpu/hal"
)

// copyAlign is the granularity of queue buffer writes.
const copyAlign = 4

func alignUp(n int) int {
	return (n + copyAlign - 1) &^ (copyAlign - 1)
}

func (v *Visitor) createBuffer(label string, size int, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := v.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(size), // #nosec G115 -- size is a non-negative buffer length
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("hal: create %s: %w", label, err)
	}
	return buf, nil
}

// CreateMesh implements video.Visitor.
func (v *Visitor) CreateMesh(h video.MeshHandle, p video.MeshParams, data *video.MeshData) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.meshes[h]; ok {
		return fmt.Errorf("hal: mesh %s already resident", h.Handle)
	}

	m := &meshBuffers{
		params:  p,
		vshadow: make([]byte, alignUp(p.VertexBufferLen())),
		ishadow: make([]byte, alignUp(p.IndexBufferLen())),
	}
	var err error
	if m.vertex, err = v.createBuffer("video_vertex_"+h.String(), len(m.vshadow), gputypes.BufferUsageVertex); err != nil {
		return err
	}
	if m.index, err = v.createBuffer("video_index_"+h.String(), len(m.ishadow), gputypes.BufferUsageIndex); err != nil {
		v.device.DestroyBuffer(m.vertex)
		return err
	}

	if data != nil {
		copy(m.vshadow, data.VPtr)
		copy(m.ishadow, data.IPtr)
		v.write(m.vertex, 0, m.vshadow)
		v.write(m.index, 0, m.ishadow)
	}
	v.meshes[h] = m
	video.Logger().Debug("hal: mesh resident", "mesh", h.Handle,
		"vertex_bytes", len(m.vshadow), "index_bytes", len(m.ishadow))
	return nil
}

// UpdateVertexBuffer implements video.Visitor.
func (v *Visitor) UpdateVertexBuffer(h video.MeshHandle, offset int, data []byte) error {
	return v.updateMesh(h, offset, data, false)
}

// UpdateIndexBuffer implements video.Visitor.
func (v *Visitor) UpdateIndexBuffer(h video.MeshHandle, offset int, data []byte) error {
	return v.updateMesh(h, offset, data, true)
}

func (v *Visitor) updateMesh(h video.MeshHandle, offset int, data []byte, index bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, ok := v.meshes[h]
	if !ok {
		return notResident("mesh", h.Handle)
	}
	buf, shadow, limit := m.vertex, m.vshadow, m.params.VertexBufferLen()
	if index {
		buf, shadow, limit = m.index, m.ishadow, m.params.IndexBufferLen()
	}
	if offset < 0 || len(data) > limit || offset > limit-len(data) {
		return fmt.Errorf("%w: [%d, %d) of %d bytes", ErrOutOfBounds, offset, offset+len(data), limit)
	}

	copy(shadow[offset:], data)
	start := offset &^ (copyAlign - 1)
	end := alignUp(offset + len(data))
	v.write(buf, start, shadow[start:end])
	return nil
}

func (v *Visitor) write(buf hal.Buffer, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	v.queue.WriteBuffer(buf, uint64(offset), data) // #nosec G115 -- offset is checked against the buffer size
	v.frame.BytesWritten += len(data)
}

// MeshBuffers returns the HAL buffers of a resident mesh. The renderer
// that encodes draws binds them.
func (v *Visitor) MeshBuffers(h video.MeshHandle) (vertex, index hal.Buffer, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, ok := v.meshes[h]
	if !ok {
		return nil, nil, false
	}
	return m.vertex, m.index, true
}

// DeleteMesh implements video.Visitor.
func (v *Visitor) DeleteMesh(h video.MeshHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	m, ok := v.meshes[h]
	if !ok {
		return notResident("mesh", h.Handle)
	}
	v.destroyMesh(m)
	delete(v.meshes, h)
	return nil
}

func (v *Visitor) destroyMesh(m *meshBuffers) {
	v.device.DestroyBuffer(m.vertex)
	v.device.DestroyBuffer(m.index)
}
