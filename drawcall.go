package video

// DrawCall describes one draw: which shader renders which mesh range, and
// the uniform values to bind.
//
// Uniform values are validated against the shader's uniform layout and
// copied into the frame arena when the call is passed to Shared.Draw, so a
// DrawCall may be reused or mutated right after Draw returns.
type DrawCall struct {
	Shader ShaderHandle
	Mesh   MeshHandle
	Index  MeshIndex

	uniforms []uniformValue
}

type uniformValue struct {
	name  string
	value any
}

// NewDrawCall returns a draw call of the whole mesh.
func NewDrawCall(shader ShaderHandle, mesh MeshHandle) *DrawCall {
	return &DrawCall{Shader: shader, Mesh: mesh}
}

// SetUniform sets the value of a named uniform, replacing any previous
// value. v must be one of TextureHandle, RenderTextureHandle, int32,
// float32, mgl32.Vec2, mgl32.Vec3, mgl32.Vec4, mgl32.Mat2, mgl32.Mat3 or
// mgl32.Mat4, matching the declared uniform type.
func (dc *DrawCall) SetUniform(name string, v any) *DrawCall {
	for i := range dc.uniforms {
		if dc.uniforms[i].name == name {
			dc.uniforms[i].value = v
			return dc
		}
	}
	dc.uniforms = append(dc.uniforms, uniformValue{name: name, value: v})
	return dc
}

// ClearUniforms removes every uniform value.
func (dc *DrawCall) ClearUniforms() {
	clear(dc.uniforms)
	dc.uniforms = dc.uniforms[:0]
}

// checkUniforms validates the values against layout.
func (dc *DrawCall) checkUniforms(layout UniformVariableLayout) error {
	for _, u := range dc.uniforms {
		decl, ok := layout.Variable(u.name)
		if !ok {
			return validationErrorf("shader has no uniform %q", u.name)
		}
		t, ok := uniformType(u.value)
		if !ok {
			return validationErrorf("uniform %q: unsupported value type %T", u.name, u.value)
		}
		if t != decl.Type {
			return validationErrorf("uniform %q is %s, got %s", u.name, decl.Type, t)
		}
	}
	return nil
}

// encodeUniforms writes the values into block, which is laid out by
// layout. Values must have passed checkUniforms.
func (dc *DrawCall) encodeUniforms(layout UniformVariableLayout, block []byte) {
	for _, u := range dc.uniforms {
		decl, _ := layout.Variable(u.name)
		encodeUniform(block[decl.Offset:], u.value)
	}
}
