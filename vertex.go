package video

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// MaxAttributes is the maximum number of attributes in a VertexLayout.
const MaxAttributes = 12

// Attribute names a vertex attribute by its role. The name returned by
// String is the identifier shaders use to reference the attribute.
type Attribute uint8

// Predefined vertex attributes.
const (
	AttributePosition Attribute = iota
	AttributeNormal
	AttributeTangent
	AttributeBitangent
	AttributeColor0
	AttributeColor1
	AttributeIndices
	AttributeWeight
	AttributeTexcoord0
	AttributeTexcoord1
	AttributeTexcoord2
	AttributeTexcoord3
)

var attributeNames = [...]string{
	AttributePosition:  "Position",
	AttributeNormal:    "Normal",
	AttributeTangent:   "Tangent",
	AttributeBitangent: "Bitangent",
	AttributeColor0:    "Color0",
	AttributeColor1:    "Color1",
	AttributeIndices:   "Indices",
	AttributeWeight:    "Weight",
	AttributeTexcoord0: "Texcoord0",
	AttributeTexcoord1: "Texcoord1",
	AttributeTexcoord2: "Texcoord2",
	AttributeTexcoord3: "Texcoord3",
}

// String returns the shader identifier of the attribute.
func (a Attribute) String() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return "Unknown"
}

// ParseAttribute returns the attribute whose shader identifier is name.
func ParseAttribute(name string) (Attribute, bool) {
	for i, n := range attributeNames {
		if n == name {
			return Attribute(i), true
		}
	}
	return 0, false
}

// VertexFormat is the component type of a vertex attribute.
type VertexFormat uint8

// Vertex component types.
const (
	VertexFormatByte VertexFormat = iota
	VertexFormatUByte
	VertexFormatShort
	VertexFormatUShort
	VertexFormatFloat
)

// Size returns the size in bytes of one component.
func (f VertexFormat) Size() uint8 {
	switch f {
	case VertexFormatByte, VertexFormatUByte:
		return 1
	case VertexFormatShort, VertexFormatUShort:
		return 2
	case VertexFormatFloat:
		return 4
	default:
		return 0
	}
}

// VertexAttributeDesc describes one attribute of a vertex layout.
type VertexAttributeDesc struct {
	Name       Attribute
	Format     VertexFormat
	Size       uint8 // components, 1..4
	Normalized bool
	Offset     uint8
}

// GPUFormat maps the attribute to the closest WebGPU vertex format.
// Returns VertexFormatUndefined for combinations WebGPU cannot express,
// such as three-component byte attributes.
func (d VertexAttributeDesc) GPUFormat() gputypes.VertexFormat {
	switch d.Format {
	case VertexFormatFloat:
		switch d.Size {
		case 1:
			return gputypes.VertexFormatFloat32
		case 2:
			return gputypes.VertexFormatFloat32x2
		case 3:
			return gputypes.VertexFormatFloat32x3
		case 4:
			return gputypes.VertexFormatFloat32x4
		}
	case VertexFormatUByte:
		switch {
		case d.Size == 2 && d.Normalized:
			return gputypes.VertexFormatUnorm8x2
		case d.Size == 4 && d.Normalized:
			return gputypes.VertexFormatUnorm8x4
		case d.Size == 2:
			return gputypes.VertexFormatUint8x2
		case d.Size == 4:
			return gputypes.VertexFormatUint8x4
		}
	case VertexFormatByte:
		switch {
		case d.Size == 2 && d.Normalized:
			return gputypes.VertexFormatSnorm8x2
		case d.Size == 4 && d.Normalized:
			return gputypes.VertexFormatSnorm8x4
		case d.Size == 2:
			return gputypes.VertexFormatSint8x2
		case d.Size == 4:
			return gputypes.VertexFormatSint8x4
		}
	case VertexFormatUShort:
		switch {
		case d.Size == 2 && d.Normalized:
			return gputypes.VertexFormatUnorm16x2
		case d.Size == 4 && d.Normalized:
			return gputypes.VertexFormatUnorm16x4
		case d.Size == 2:
			return gputypes.VertexFormatUint16x2
		case d.Size == 4:
			return gputypes.VertexFormatUint16x4
		}
	case VertexFormatShort:
		switch {
		case d.Size == 2 && d.Normalized:
			return gputypes.VertexFormatSnorm16x2
		case d.Size == 4 && d.Normalized:
			return gputypes.VertexFormatSnorm16x4
		case d.Size == 2:
			return gputypes.VertexFormatSint16x2
		case d.Size == 4:
			return gputypes.VertexFormatSint16x4
		}
	}
	return gputypes.VertexFormatUndefined
}

// VertexLayout describes the interleaved structure of one vertex.
// Build layouts with NewVertexLayout.
type VertexLayout struct {
	stride   uint8
	len      uint8
	elements [MaxAttributes]VertexAttributeDesc
}

// Stride returns the size in bytes of one vertex.
func (l VertexLayout) Stride() uint8 { return l.stride }

// Len returns the number of attributes.
func (l VertexLayout) Len() int { return int(l.len) }

// Elements returns the attributes in declaration order.
func (l VertexLayout) Elements() []VertexAttributeDesc {
	return append([]VertexAttributeDesc(nil), l.elements[:l.len]...)
}

// Element returns the description of attribute a.
func (l VertexLayout) Element(a Attribute) (VertexAttributeDesc, bool) {
	for i := uint8(0); i < l.len; i++ {
		if l.elements[i].Name == a {
			return l.elements[i], true
		}
	}
	return VertexAttributeDesc{}, false
}

// Offset returns the byte offset of attribute a inside a vertex.
func (l VertexLayout) Offset(a Attribute) (uint8, bool) {
	e, ok := l.Element(a)
	return e.Offset, ok
}

// VertexLayoutBuilder accumulates attributes for a VertexLayout.
type VertexLayoutBuilder struct {
	layout VertexLayout
}

// NewVertexLayout starts an empty layout.
func NewVertexLayout() *VertexLayoutBuilder {
	return &VertexLayoutBuilder{}
}

// With appends an attribute, or replaces it if already declared.
// It panics if size is outside 1..4 or the layout is full; both are
// programmer errors in static vertex declarations.
func (b *VertexLayoutBuilder) With(a Attribute, format VertexFormat, size uint8, normalized bool) *VertexLayoutBuilder {
	if size == 0 || size > 4 {
		panic(fmt.Sprintf("video: attribute %s has %d components, want 1..4", a, size))
	}

	desc := VertexAttributeDesc{Name: a, Format: format, Size: size, Normalized: normalized}
	for i := uint8(0); i < b.layout.len; i++ {
		if b.layout.elements[i].Name == a {
			b.layout.elements[i] = desc
			return b
		}
	}

	if int(b.layout.len) >= MaxAttributes {
		panic("video: vertex layout is full")
	}
	b.layout.elements[b.layout.len] = desc
	b.layout.len++
	return b
}

// Finish computes offsets and stride and returns the layout.
func (b *VertexLayoutBuilder) Finish() VertexLayout {
	l := b.layout
	l.stride = 0
	for i := uint8(0); i < l.len; i++ {
		l.elements[i].Offset = l.stride
		l.stride += l.elements[i].Size * l.elements[i].Format.Size()
	}
	return l
}
