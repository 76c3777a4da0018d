package video

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformVariableType is the type of a shader uniform.
type UniformVariableType uint8

// Uniform types.
const (
	UniformTexture UniformVariableType = iota
	UniformRenderTexture
	UniformI32
	UniformF32
	UniformVector2f
	UniformVector3f
	UniformVector4f
	UniformMatrix2f
	UniformMatrix3f
	UniformMatrix4f
)

var uniformTypeNames = [...]string{
	UniformTexture:       "Texture",
	UniformRenderTexture: "RenderTexture",
	UniformI32:           "I32",
	UniformF32:           "F32",
	UniformVector2f:      "Vector2f",
	UniformVector3f:      "Vector3f",
	UniformVector4f:      "Vector4f",
	UniformMatrix2f:      "Matrix2f",
	UniformMatrix3f:      "Matrix3f",
	UniformMatrix4f:      "Matrix4f",
}

// String returns the type name.
func (t UniformVariableType) String() string {
	if int(t) < len(uniformTypeNames) {
		return uniformTypeNames[t]
	}
	return "Unknown"
}

// Size returns the encoded size in bytes. Handles encode as index and
// generation, 4 bytes each.
func (t UniformVariableType) Size() int {
	switch t {
	case UniformTexture, UniformRenderTexture:
		return 8
	case UniformI32, UniformF32:
		return 4
	case UniformVector2f:
		return 8
	case UniformVector3f:
		return 12
	case UniformVector4f, UniformMatrix2f:
		return 16
	case UniformMatrix3f:
		return 36
	case UniformMatrix4f:
		return 64
	default:
		return 0
	}
}

// UniformVariable is one uniform of a shader and its position in the
// encoded uniform block.
type UniformVariable struct {
	Name   string
	Type   UniformVariableType
	Offset int
}

// UniformVariableLayout is the ordered list of uniforms of a shader.
// Values are packed back to back, without padding, into a block of Size
// bytes.
type UniformVariableLayout struct {
	vars []UniformVariable
	size int
}

// NewUniformLayout starts an empty uniform layout.
func NewUniformLayout() *UniformLayoutBuilder {
	return &UniformLayoutBuilder{}
}

// Len returns the number of uniforms.
func (l UniformVariableLayout) Len() int { return len(l.vars) }

// Size returns the size in bytes of the encoded uniform block.
func (l UniformVariableLayout) Size() int { return l.size }

// Variables returns a copy of the uniforms.
func (l UniformVariableLayout) Variables() []UniformVariable {
	return append([]UniformVariable(nil), l.vars...)
}

// Variable looks a uniform up by name.
func (l UniformVariableLayout) Variable(name string) (UniformVariable, bool) {
	for _, v := range l.vars {
		if v.Name == name {
			return v, true
		}
	}
	return UniformVariable{}, false
}

// UniformLayoutBuilder accumulates uniforms.
type UniformLayoutBuilder struct {
	vars []UniformVariable
}

// With appends a uniform.
func (b *UniformLayoutBuilder) With(name string, t UniformVariableType) *UniformLayoutBuilder {
	b.vars = append(b.vars, UniformVariable{Name: name, Type: t})
	return b
}

// Finish assigns offsets and returns the layout.
func (b *UniformLayoutBuilder) Finish() UniformVariableLayout {
	l := UniformVariableLayout{vars: append([]UniformVariable(nil), b.vars...)}
	for i := range l.vars {
		l.vars[i].Offset = l.size
		l.size += l.vars[i].Type.Size()
	}
	return l
}

// uniformType returns the uniform type a Go value encodes as.
func uniformType(v any) (UniformVariableType, bool) {
	switch v.(type) {
	case TextureHandle:
		return UniformTexture, true
	case RenderTextureHandle:
		return UniformRenderTexture, true
	case int32:
		return UniformI32, true
	case float32:
		return UniformF32, true
	case mgl32.Vec2:
		return UniformVector2f, true
	case mgl32.Vec3:
		return UniformVector3f, true
	case mgl32.Vec4:
		return UniformVector4f, true
	case mgl32.Mat2:
		return UniformMatrix2f, true
	case mgl32.Mat3:
		return UniformMatrix3f, true
	case mgl32.Mat4:
		return UniformMatrix4f, true
	}
	return 0, false
}

// encodeUniform writes v little-endian into dst, which must be at least
// the size of v's uniform type.
func encodeUniform(dst []byte, v any) {
	le := binary.LittleEndian
	putFloats := func(fs []float32) {
		for i, f := range fs {
			le.PutUint32(dst[i*4:], math.Float32bits(f))
		}
	}

	switch x := v.(type) {
	case TextureHandle:
		le.PutUint32(dst, x.index)
		le.PutUint32(dst[4:], x.generation)
	case RenderTextureHandle:
		le.PutUint32(dst, x.index)
		le.PutUint32(dst[4:], x.generation)
	case int32:
		le.PutUint32(dst, uint32(x)) // #nosec G115 -- bit-preserving reinterpretation
	case float32:
		le.PutUint32(dst, math.Float32bits(x))
	case mgl32.Vec2:
		putFloats(x[:])
	case mgl32.Vec3:
		putFloats(x[:])
	case mgl32.Vec4:
		putFloats(x[:])
	case mgl32.Mat2:
		putFloats(x[:])
	case mgl32.Mat3:
		putFloats(x[:])
	case mgl32.Mat4:
		putFloats(x[:])
	}
}

// DecodeUniform reads the value of v from an encoded uniform block.
// Backends use it to unpack DrawInvocation.Uniforms. The dynamic type of
// the result matches the one accepted by DrawCall.SetUniform.
func DecodeUniform(block []byte, v UniformVariable) (any, error) {
	size := v.Type.Size()
	if size == 0 || v.Offset < 0 || v.Offset+size > len(block) {
		return nil, validationErrorf("uniform %q out of block bounds", v.Name)
	}
	src := block[v.Offset : v.Offset+size]
	le := binary.LittleEndian
	floats := func(dst []float32) {
		for i := range dst {
			dst[i] = math.Float32frombits(le.Uint32(src[i*4:]))
		}
	}

	switch v.Type {
	case UniformTexture:
		return TextureHandle{Handle{index: le.Uint32(src), generation: le.Uint32(src[4:])}}, nil
	case UniformRenderTexture:
		return RenderTextureHandle{Handle{index: le.Uint32(src), generation: le.Uint32(src[4:])}}, nil
	case UniformI32:
		return int32(le.Uint32(src)), nil // #nosec G115 -- bit-preserving reinterpretation
	case UniformF32:
		return math.Float32frombits(le.Uint32(src)), nil
	case UniformVector2f:
		var x mgl32.Vec2
		floats(x[:])
		return x, nil
	case UniformVector3f:
		var x mgl32.Vec3
		floats(x[:])
		return x, nil
	case UniformVector4f:
		var x mgl32.Vec4
		floats(x[:])
		return x, nil
	case UniformMatrix2f:
		var x mgl32.Mat2
		floats(x[:])
		return x, nil
	case UniformMatrix3f:
		var x mgl32.Mat3
		floats(x[:])
		return x, nil
	default:
		var x mgl32.Mat4
		floats(x[:])
		return x, nil
	}
}
