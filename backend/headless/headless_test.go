package headless

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/video"
	"github.com/gogpu/video/backend"
)

const (
	texturedVS = `
@group(0) @binding(0) var<uniform> u_MVP: mat4x4<f32>;

struct VertexOutput {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) Position: vec3<f32>, @location(1) Texcoord0: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.pos = u_MVP * vec4<f32>(Position, 1.0);
    out.uv = Texcoord0;
    return out;
}`
	texturedFS = `
@group(0) @binding(1) var u_Texture: texture_2d<f32>;
@group(0) @binding(2) var u_Sampler: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(u_Texture, u_Sampler, uv);
}`
)

var (
	issuedMu sync.Mutex
	issued   = video.NewRegistry[struct{}](0)
)

// issue returns a live handle distinct from every other one, as the
// facade would hand out.
func issue() video.Handle {
	issuedMu.Lock()
	defer issuedMu.Unlock()
	return issued.Create(struct{}{})
}

func texturedShader() video.ShaderParams {
	p := video.DefaultShaderParams()
	p.Attributes = video.NewAttributeLayout().
		With(video.AttributePosition, 3).
		With(video.AttributeTexcoord0, 2).
		Finish()
	p.Uniforms = video.NewUniformLayout().
		With("u_MVP", video.UniformMatrix4f).
		With("u_Texture", video.UniformTexture).
		Finish()
	return p
}

func quad() (video.MeshParams, *video.MeshData) {
	p := video.DefaultMeshParams()
	p.Layout = video.NewVertexLayout().
		With(video.AttributePosition, video.VertexFormatFloat, 3, false).
		With(video.AttributeTexcoord0, video.VertexFormatFloat, 2, false).
		Finish()
	p.NumVerts = 4
	p.NumIdxes = 6

	verts := [][5]float32{
		{-1, -1, 0, 0, 1},
		{1, -1, 0, 1, 1},
		{1, 1, 0, 1, 0},
		{-1, 1, 0, 0, 0},
	}
	vb := make([]byte, 0, 4*20)
	for _, v := range verts {
		for _, f := range v {
			vb = binary.LittleEndian.AppendUint32(vb, math.Float32bits(f))
		}
	}
	ib := make([]byte, 0, 12)
	for _, i := range []uint16{0, 1, 2, 2, 3, 0} {
		ib = binary.LittleEndian.AppendUint16(ib, i)
	}
	return p, &video.MeshData{VPtr: vb, IPtr: ib}
}

func checker() (video.TextureParams, *video.TextureData) {
	p := video.DefaultTextureParams()
	p.Width, p.Height = 2, 2
	p.Hint = video.BufferHintDynamic
	return p, &video.TextureData{Bytes: [][]byte{{
		255, 255, 255, 255, 0, 0, 0, 255,
		0, 0, 0, 255, 255, 255, 255, 255,
	}}}
}

type scene struct {
	sys     *video.System
	v       *Visitor
	surface video.SurfaceHandle
	shader  video.ShaderHandle
	mesh    video.MeshHandle
	tex     video.TextureHandle
}

func newScene(t *testing.T) *scene {
	t.Helper()

	v := New()
	sc := &scene{sys: video.New(v), v: v}
	s := sc.sys.Shared()

	var err error
	if sc.surface, err = s.CreateSurface(video.DefaultSurfaceParams()); err != nil {
		t.Fatalf("CreateSurface = %v", err)
	}
	if sc.shader, err = s.CreateShader(texturedShader(), texturedVS, texturedFS); err != nil {
		t.Fatalf("CreateShader = %v", err)
	}
	mp, md := quad()
	if sc.mesh, err = s.CreateMesh(mp, md); err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}
	tp, td := checker()
	if sc.tex, err = s.CreateTexture(tp, td); err != nil {
		t.Fatalf("CreateTexture = %v", err)
	}
	return sc
}

func (sc *scene) draw(t *testing.T, tex video.TextureHandle) {
	t.Helper()
	dc := video.NewDrawCall(sc.shader, sc.mesh).
		SetUniform("u_MVP", mgl32.Ident4()).
		SetUniform("u_Texture", tex)
	if err := sc.sys.Shared().Draw(sc.surface, dc); err != nil {
		t.Fatalf("Draw = %v", err)
	}
}

func TestRegistered(t *testing.T) {
	v, err := backend.New(Name, nil)
	if err != nil {
		t.Fatalf("backend.New(%q) = %v", Name, err)
	}
	if _, ok := v.(*Visitor); !ok {
		t.Errorf("backend.New(%q) returned %T", Name, v)
	}
}

func TestSceneResidency(t *testing.T) {
	sc := newScene(t)
	sc.draw(t, sc.tex)

	info, err := sc.sys.Advance(video.Dimensions{Width: 64, Height: 64})
	if err != nil {
		t.Fatalf("Advance = %v", err)
	}
	if info.DrawCalls != 1 || info.Triangles != 2 {
		t.Errorf("FrameInfo draws=%d tris=%d, want 1, 2", info.DrawCalls, info.Triangles)
	}

	want := Counts{Surfaces: 1, Shaders: 1, Meshes: 1, Textures: 1}
	if got := sc.v.Resident(); got != want {
		t.Errorf("Resident() = %+v, want %+v", got, want)
	}
	if st := sc.v.Stats(); st.Frames != 1 || st.DrawCalls != 1 || st.Indices != 6 {
		t.Errorf("Stats() = %+v", st)
	}
	if d := sc.v.Dimensions(); d.Width != 64 {
		t.Errorf("Dimensions() = %+v after resize", d)
	}

	wantOps := []video.CommandType{
		video.CmdCreateSurface, video.CmdCreateShader, video.CmdCreateMesh,
		video.CmdCreateTexture, video.CmdBind, video.CmdDraw,
	}
	ops := sc.v.Ops()
	if len(ops) != len(wantOps) {
		t.Fatalf("Ops() = %v, want %v", ops, wantOps)
	}
	for i, op := range ops {
		if op.Type != wantOps[i] {
			t.Errorf("op %d = %s, want %s", i, op.Type, wantOps[i])
		}
	}

	// Deletes drain the resident sets.
	s := sc.sys.Shared()
	s.DeleteTexture(sc.tex)
	s.DeleteMesh(sc.mesh)
	s.DeleteShader(sc.shader)
	s.DeleteSurface(sc.surface)
	if _, err := sc.sys.Advance(video.Dimensions{Width: 64, Height: 64}); err != nil {
		t.Fatalf("Advance = %v", err)
	}
	if got := sc.v.Resident(); got != (Counts{}) {
		t.Errorf("Resident() = %+v after deletes, want empty", got)
	}
}

func TestUpdatesApplyToCopies(t *testing.T) {
	sc := newScene(t)
	s := sc.sys.Shared()

	// Immutable resources reject updates; recreate them as dynamic.
	mp, md := quad()
	mp.Hint = video.BufferHintDynamic
	mesh, err := s.CreateMesh(mp, md)
	if err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}
	if err := s.UpdateIndexBuffer(mesh, 2, []byte{9, 0}); err != nil {
		t.Fatalf("UpdateIndexBuffer = %v", err)
	}
	red := []byte{255, 0, 0, 255}
	if err := s.UpdateTexture(sc.tex, video.TextureRegion{X: 1, Y: 1, Width: 1, Height: 1}, red); err != nil {
		t.Fatalf("UpdateTexture = %v", err)
	}
	if _, err := sc.sys.Advance(video.Dimensions{}); err != nil {
		t.Fatalf("Advance = %v", err)
	}

	_, idx, ok := sc.v.Mesh(mesh)
	if !ok || idx[2] != 9 || idx[4] != 2 {
		t.Errorf("index buffer = %v", idx)
	}
	level, ok := sc.v.Texture(sc.tex, 0)
	if !ok || level[12] != 255 || level[13] != 0 {
		t.Errorf("texel (1,1) = %v", level[12:16])
	}
	if level[0] != 255 || level[4] != 0 {
		t.Error("texels outside the region changed")
	}
}

func TestDrawWithDeletedTextureFailsFrame(t *testing.T) {
	sc := newScene(t)
	if _, err := sc.sys.Advance(video.Dimensions{}); err != nil {
		t.Fatalf("Advance = %v", err)
	}

	stale := sc.tex
	sc.sys.Shared().DeleteTexture(stale)
	if _, err := sc.sys.Advance(video.Dimensions{}); err != nil {
		t.Fatalf("Advance = %v", err)
	}

	sc.draw(t, stale)
	_, err := sc.sys.Advance(video.Dimensions{})
	if !errors.Is(err, video.ErrBackend) || !errors.Is(err, ErrNotResident) {
		t.Fatalf("Advance = %v, want backend error wrapping ErrNotResident", err)
	}
	var be *video.BackendError
	if errors.As(err, &be) && be.Command != video.CmdDraw {
		t.Errorf("BackendError.Command = %s, want Draw", be.Command)
	}
}

func TestUnsetTextureUniformDraws(t *testing.T) {
	sc := newScene(t)
	dc := video.NewDrawCall(sc.shader, sc.mesh).SetUniform("u_MVP", mgl32.Ident4())
	if err := sc.sys.Shared().Draw(sc.surface, dc); err != nil {
		t.Fatalf("Draw = %v", err)
	}
	if _, err := sc.sys.Advance(video.Dimensions{}); err != nil {
		t.Fatalf("Advance = %v", err)
	}
	if st := sc.v.Stats(); st.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, want 1", st.DrawCalls)
	}
}

func TestVisitorErrors(t *testing.T) {
	v := New()
	mesh := video.MeshHandle{Handle: issue()}
	mp, md := quad()

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"delete unknown surface", func() error { return v.DeleteSurface(video.SurfaceHandle{}) }, ErrNotResident},
		{"update unknown mesh", func() error { return v.UpdateVertexBuffer(mesh, 0, []byte{1}) }, ErrNotResident},
		{"create mesh", func() error { return v.CreateMesh(mesh, mp, md) }, nil},
		{"create mesh twice", func() error { return v.CreateMesh(mesh, mp, md) }, ErrAlreadyResident},
		{"vertex update past end", func() error { return v.UpdateVertexBuffer(mesh, 79, []byte{1, 2}) }, ErrOutOfBounds},
		{"vertex update at end", func() error { return v.UpdateVertexBuffer(mesh, 78, []byte{1, 2}) }, nil},
		{"scissor without bind", func() error { return v.UpdateScissor(video.SurfaceScissor{}) }, ErrNotBound},
		{"draw without bind", func() error { return v.Draw(&video.DrawInvocation{Mesh: mesh}) }, ErrNotBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if tt.want == nil && err != nil {
				t.Errorf("err = %v, want nil", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOpLogDisabled(t *testing.T) {
	v := New()
	v.SetOpLog(false)
	v.CreateShader(video.ShaderHandle{Handle: issue()}, video.ShaderParams{}, "", "")
	if ops := v.Ops(); len(ops) != 0 {
		t.Errorf("Ops() = %v with op log disabled", ops)
	}
}

func TestVisitorRejectsOverflowingOffset(t *testing.T) {
	v := New()
	mp, md := quad()
	h := video.MeshHandle{Handle: issue()}
	if err := v.CreateMesh(h, mp, md); err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}
	if err := v.UpdateVertexBuffer(h, math.MaxInt, []byte{1}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("UpdateVertexBuffer(MaxInt) = %v, want ErrOutOfBounds", err)
	}
	if err := v.UpdateIndexBuffer(h, math.MaxInt-1, []byte{1, 2}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("UpdateIndexBuffer(MaxInt-1) = %v, want ErrOutOfBounds", err)
	}
}
