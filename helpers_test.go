package video

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
)

var errInjected = errors.New("injected backend failure")

// recordingVisitor records the command types it receives and can fail on
// one of them.
type recordingVisitor struct {
	NopVisitor

	mu       sync.Mutex
	ops      []CommandType
	draws    []DrawInvocation
	payloads [][]byte
	resized  []Dimensions
	failOn   CommandType // CmdBegin means never
	closed   bool
}

func (v *recordingVisitor) record(t CommandType) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ops = append(v.ops, t)
	if v.failOn != CmdBegin && v.failOn == t {
		return errInjected
	}
	return nil
}

func (v *recordingVisitor) recordPayload(t CommandType, data []byte) error {
	v.mu.Lock()
	v.payloads = append(v.payloads, append([]byte(nil), data...))
	v.mu.Unlock()
	return v.record(t)
}

func (v *recordingVisitor) types() []CommandType {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]CommandType(nil), v.ops...)
}

func (v *recordingVisitor) Resize(d Dimensions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failOn == CmdResize {
		return errInjected
	}
	v.resized = append(v.resized, d)
	return nil
}

func (v *recordingVisitor) CreateSurface(SurfaceHandle, SurfaceParams) error {
	return v.record(CmdCreateSurface)
}

func (v *recordingVisitor) DeleteSurface(SurfaceHandle) error {
	return v.record(CmdDeleteSurface)
}

func (v *recordingVisitor) CreateShader(ShaderHandle, ShaderParams, string, string) error {
	return v.record(CmdCreateShader)
}

func (v *recordingVisitor) DeleteShader(ShaderHandle) error {
	return v.record(CmdDeleteShader)
}

func (v *recordingVisitor) CreateMesh(MeshHandle, MeshParams, *MeshData) error {
	return v.record(CmdCreateMesh)
}

func (v *recordingVisitor) UpdateVertexBuffer(_ MeshHandle, _ int, data []byte) error {
	return v.recordPayload(CmdUpdateVertexBuffer, data)
}

func (v *recordingVisitor) UpdateIndexBuffer(_ MeshHandle, _ int, data []byte) error {
	return v.recordPayload(CmdUpdateIndexBuffer, data)
}

func (v *recordingVisitor) DeleteMesh(MeshHandle) error {
	return v.record(CmdDeleteMesh)
}

func (v *recordingVisitor) CreateTexture(TextureHandle, TextureParams, *TextureData) error {
	return v.record(CmdCreateTexture)
}

func (v *recordingVisitor) UpdateTexture(_ TextureHandle, _ TextureRegion, data []byte) error {
	return v.recordPayload(CmdUpdateTexture, data)
}

func (v *recordingVisitor) DeleteTexture(TextureHandle) error {
	return v.record(CmdDeleteTexture)
}

func (v *recordingVisitor) CreateRenderTexture(RenderTextureHandle, RenderTextureParams) error {
	return v.record(CmdCreateRenderTexture)
}

func (v *recordingVisitor) DeleteRenderTexture(RenderTextureHandle) error {
	return v.record(CmdDeleteRenderTexture)
}

func (v *recordingVisitor) Bind(SurfaceHandle, Dimensions) error {
	return v.record(CmdBind)
}

func (v *recordingVisitor) UpdateScissor(SurfaceScissor) error {
	return v.record(CmdUpdateScissor)
}

func (v *recordingVisitor) UpdateViewport(SurfaceViewport) error {
	return v.record(CmdUpdateViewport)
}

func (v *recordingVisitor) Draw(inv *DrawInvocation) error {
	v.mu.Lock()
	d := *inv
	d.Uniforms = append([]byte(nil), inv.Uniforms...)
	v.draws = append(v.draws, d)
	v.mu.Unlock()
	return v.record(CmdDraw)
}

func (v *recordingVisitor) Close() error {
	v.closed = true
	return nil
}

// quadParams describes a 4-vertex quad with float positions and byte
// colors, drawn as two triangles.
func quadParams() MeshParams {
	p := DefaultMeshParams()
	p.Layout = NewVertexLayout().
		With(AttributePosition, VertexFormatFloat, 3, false).
		With(AttributeColor0, VertexFormatUByte, 4, true).
		Finish()
	p.NumVerts = 4
	p.NumIdxes = 6
	return p
}

func quadData() *MeshData {
	positions := [4][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}
	vptr := make([]byte, 0, 4*16)
	for _, p := range positions {
		for _, c := range p {
			vptr = binary.LittleEndian.AppendUint32(vptr, math.Float32bits(c))
		}
		vptr = append(vptr, 155, 155, 155, 255)
	}

	iptr := make([]byte, 0, 12)
	for _, i := range []uint16{0, 1, 2, 2, 3, 0} {
		iptr = binary.LittleEndian.AppendUint16(iptr, i)
	}
	return &MeshData{VPtr: vptr, IPtr: iptr}
}

const (
	colorVS = `
in vec3 Position;
in vec4 Color0;
uniform mat4 u_MVP;
out vec4 v_Color;
void main() {
	gl_Position = u_MVP * vec4(Position, 1.0);
	v_Color = Color0;
}`
	colorFS = `
in vec4 v_Color;
uniform vec4 u_Tint;
out vec4 color;
void main() {
	color = v_Color * u_Tint;
}`
)

func colorShaderParams() ShaderParams {
	p := DefaultShaderParams()
	p.Attributes = NewAttributeLayout().
		With(AttributePosition, 3).
		With(AttributeColor0, 4).
		Finish()
	p.Uniforms = NewUniformLayout().
		With("u_MVP", UniformMatrix4f).
		With("u_Tint", UniformVector4f).
		Finish()
	return p
}

func rgbaTextureParams(w, h uint32) TextureParams {
	p := DefaultTextureParams()
	p.Width, p.Height = w, h
	return p
}
