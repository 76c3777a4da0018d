package video

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// BufferHint tells the backend how often a buffer will be rewritten.
type BufferHint uint8

const (
	// BufferHintImmutable buffers are initialized once and never updated.
	BufferHintImmutable BufferHint = iota
	// BufferHintStream buffers are rewritten every frame.
	BufferHintStream
	// BufferHintDynamic buffers are rewritten occasionally.
	BufferHintDynamic
)

// String returns the hint name.
func (h BufferHint) String() string {
	switch h {
	case BufferHintImmutable:
		return "Immutable"
	case BufferHintStream:
		return "Stream"
	case BufferHintDynamic:
		return "Dynamic"
	default:
		return "Unknown"
	}
}

// IndexSize returns the width in bytes of one index, or 0 for an
// undefined format.
func IndexSize(f gputypes.IndexFormat) int {
	switch f {
	case gputypes.IndexFormatUint16:
		return 2
	case gputypes.IndexFormatUint32:
		return 4
	default:
		return 0
	}
}

// Aabb3 is an axis-aligned bounding box. The zero value means "not set".
type Aabb3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAabb3 returns an inverted box that any Extend call replaces.
func EmptyAabb3() Aabb3 {
	inf := math32.Inf(1)
	return Aabb3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsZero reports whether the box is the zero value.
func (a Aabb3) IsZero() bool { return a == Aabb3{} }

// IsEmpty reports whether the box contains no point.
func (a Aabb3) IsEmpty() bool {
	return a.Min[0] > a.Max[0] || a.Min[1] > a.Max[1] || a.Min[2] > a.Max[2]
}

// Extend grows the box to contain p.
func (a *Aabb3) Extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		a.Min[i] = math32.Min(a.Min[i], p[i])
		a.Max[i] = math32.Max(a.Max[i], p[i])
	}
}

// Center returns the midpoint of the box.
func (a Aabb3) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Dim returns the size of the box along each axis.
func (a Aabb3) Dim() mgl32.Vec3 {
	return a.Max.Sub(a.Min)
}

// Corners returns the eight corners of the box.
func (a Aabb3) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		p := a.Min
		if i&1 != 0 {
			p[0] = a.Max[0]
		}
		if i&2 != 0 {
			p[1] = a.Max[1]
		}
		if i&4 != 0 {
			p[2] = a.Max[2]
		}
		c[i] = p
	}
	return c
}

// MeshParams describes the layout and size of a mesh. The params are stored
// in the registry and returned by queries.
type MeshParams struct {
	Hint        BufferHint
	Layout      VertexLayout
	IndexFormat gputypes.IndexFormat
	Primitive   gputypes.PrimitiveTopology
	NumVerts    int
	NumIdxes    int

	// SubMeshOffsets are the first index of each sub-mesh. Empty means one
	// sub-mesh spanning all indices.
	SubMeshOffsets []int

	// Aabb is the bounding box of the vertices. When left zero it is
	// computed from the Position attribute of the initial data.
	Aabb Aabb3
}

// DefaultMeshParams returns params for an immutable triangle list with
// 16-bit indices.
func DefaultMeshParams() MeshParams {
	return MeshParams{
		Hint:        BufferHintImmutable,
		IndexFormat: gputypes.IndexFormatUint16,
		Primitive:   gputypes.PrimitiveTopologyTriangleList,
	}
}

// VertexBufferLen returns the vertex buffer size in bytes.
func (p *MeshParams) VertexBufferLen() int {
	return p.NumVerts * int(p.Layout.Stride())
}

// IndexBufferLen returns the index buffer size in bytes.
func (p *MeshParams) IndexBufferLen() int {
	return p.NumIdxes * IndexSize(p.IndexFormat)
}

// SubMeshCount returns the number of sub-meshes.
func (p *MeshParams) SubMeshCount() int {
	if len(p.SubMeshOffsets) == 0 {
		return 1
	}
	return len(p.SubMeshOffsets)
}

// SubMesh returns the index range of sub-mesh i.
func (p *MeshParams) SubMesh(i int) (from, count int, ok bool) {
	if len(p.SubMeshOffsets) == 0 {
		if i != 0 {
			return 0, 0, false
		}
		return 0, p.NumIdxes, true
	}
	if i < 0 || i >= len(p.SubMeshOffsets) {
		return 0, 0, false
	}
	from = p.SubMeshOffsets[i]
	to := p.NumIdxes
	if i+1 < len(p.SubMeshOffsets) {
		to = p.SubMeshOffsets[i+1]
	}
	return from, to - from, true
}

func (p MeshParams) clone() MeshParams {
	if p.SubMeshOffsets != nil {
		p.SubMeshOffsets = append([]int(nil), p.SubMeshOffsets...)
	}
	return p
}

func (p *MeshParams) validate(data *MeshData) error {
	if p.Layout.Len() == 0 || p.Layout.Stride() == 0 {
		return validationErrorf("mesh vertex layout is empty")
	}
	if p.NumVerts <= 0 {
		return validationErrorf("mesh has %d vertices", p.NumVerts)
	}
	if p.NumIdxes <= 0 {
		return validationErrorf("mesh has %d indices", p.NumIdxes)
	}
	if IndexSize(p.IndexFormat) == 0 {
		return validationErrorf("mesh index format %s is not supported", p.IndexFormat)
	}
	if p.IndexFormat == gputypes.IndexFormatUint16 && p.NumVerts > math.MaxUint16+1 {
		return validationErrorf("mesh has %d vertices, too many for 16-bit indices", p.NumVerts)
	}
	if p.Primitive > gputypes.PrimitiveTopologyTriangleStrip {
		return validationErrorf("mesh primitive %s is not supported", p.Primitive)
	}

	last := 0
	for i, off := range p.SubMeshOffsets {
		if off < last {
			return validationErrorf("sub-mesh %d offset %d is before offset %d", i, off, last)
		}
		if off > p.NumIdxes {
			return validationErrorf("sub-mesh %d offset %d exceeds %d indices", i, off, p.NumIdxes)
		}
		last = off
	}

	if data == nil {
		if p.Hint == BufferHintImmutable {
			return validationErrorf("immutable mesh created without data")
		}
		return nil
	}
	if n := p.VertexBufferLen(); len(data.VPtr) != n {
		return validationErrorf("vertex data is %d bytes, want %d verts x %d stride = %d",
			len(data.VPtr), p.NumVerts, p.Layout.Stride(), n)
	}
	if n := p.IndexBufferLen(); len(data.IPtr) != n {
		return validationErrorf("index data is %d bytes, want %d", len(data.IPtr), n)
	}
	return nil
}

// MeshData is the initial content of a mesh. Encoded lengths must equal
// NumVerts x stride and NumIdxes x index width.
type MeshData struct {
	VPtr []byte
	IPtr []byte
}

func (d *MeshData) clone() *MeshData {
	if d == nil {
		return nil
	}
	return &MeshData{
		VPtr: append([]byte(nil), d.VPtr...),
		IPtr: append([]byte(nil), d.IPtr...),
	}
}

// computeAabb reads the Position attribute of every vertex. It returns the
// zero box when the layout has no float position.
func computeAabb(layout VertexLayout, numVerts int, vptr []byte) Aabb3 {
	pos, ok := layout.Element(AttributePosition)
	if !ok || pos.Format != VertexFormatFloat || pos.Size < 2 {
		return Aabb3{}
	}

	stride := int(layout.Stride())
	box := EmptyAabb3()
	for i := 0; i < numVerts; i++ {
		base := i*stride + int(pos.Offset)
		var p mgl32.Vec3
		for c := 0; c < int(pos.Size) && c < 3; c++ {
			bits := binary.LittleEndian.Uint32(vptr[base+c*4:])
			p[c] = math.Float32frombits(bits)
		}
		box.Extend(p)
	}
	return box
}

// MeshIndex selects the index range drawn by a draw call.
type MeshIndex struct {
	kind  meshIndexKind
	first int
	count int
}

type meshIndexKind uint8

const (
	meshIndexAll meshIndexKind = iota
	meshIndexSubMesh
	meshIndexRange
)

// MeshAll draws every index of the mesh. It is the zero MeshIndex.
func MeshAll() MeshIndex { return MeshIndex{} }

// SubMeshIndex draws sub-mesh i.
func SubMeshIndex(i int) MeshIndex { return MeshIndex{kind: meshIndexSubMesh, first: i} }

// MeshRange draws count indices starting at first.
func MeshRange(first, count int) MeshIndex {
	return MeshIndex{kind: meshIndexRange, first: first, count: count}
}

// Resolve returns the index range selected in a mesh with params p.
func (m MeshIndex) Resolve(p *MeshParams) (from, count int, ok bool) {
	switch m.kind {
	case meshIndexAll:
		return 0, p.NumIdxes, true
	case meshIndexSubMesh:
		return p.SubMesh(m.first)
	case meshIndexRange:
		if m.first < 0 || m.count < 0 || m.first+m.count > p.NumIdxes {
			return 0, 0, false
		}
		return m.first, m.count, true
	}
	return 0, 0, false
}

// Triangles returns the number of triangles n indices form.
func Triangles(primitive gputypes.PrimitiveTopology, n int) int {
	switch primitive {
	case gputypes.PrimitiveTopologyTriangleList:
		return n / 3
	case gputypes.PrimitiveTopologyTriangleStrip:
		if n < 3 {
			return 0
		}
		return n - 2
	default:
		return 0
	}
}
