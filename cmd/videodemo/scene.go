package main

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/video"
	"github.com/gogpu/video/loader"
)

const (
	solidVS = `
@group(0) @binding(0) var<uniform> u_MVP: mat4x4<f32>;

@vertex
fn vs_main(@location(0) Position: vec3<f32>) -> @builtin(position) vec4<f32> {
    return u_MVP * vec4<f32>(Position, 1.0);
}`
	solidFS = `
@group(0) @binding(1) var<uniform> u_Color: vec4<f32>;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return u_Color;
}`
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

// scene holds the resources every producer shares.
type scene struct {
	shared   *video.Shared
	surface  video.SurfaceHandle
	solid    video.ShaderHandle
	textured video.ShaderHandle
	quad     video.MeshHandle

	mu       sync.Mutex
	textures []video.TextureHandle
}

func newScene(s *video.Shared) (*scene, error) {
	sc := &scene{shared: s}

	var err error
	if sc.surface, err = s.CreateSurface(video.DefaultSurfaceParams()); err != nil {
		return nil, err
	}

	sp := video.DefaultShaderParams()
	sp.Attributes = video.NewAttributeLayout().With(video.AttributePosition, 3).Finish()
	sp.Uniforms = video.NewUniformLayout().
		With("u_MVP", video.UniformMatrix4f).
		With("u_Color", video.UniformVector4f).
		Finish()
	if sc.solid, err = s.CreateShader(sp, solidVS, solidFS); err != nil {
		return nil, err
	}

	tp := video.DefaultShaderParams()
	tp.Attributes = video.NewAttributeLayout().
		With(video.AttributePosition, 3).
		With(video.AttributeTexcoord0, 2).
		Finish()
	tp.Uniforms = video.NewUniformLayout().
		With("u_MVP", video.UniformMatrix4f).
		With("u_Texture", video.UniformTexture).
		Finish()
	if sc.textured, err = s.CreateShader(tp, texturedVS, texturedFS); err != nil {
		return nil, err
	}

	qp, qd := quad()
	if sc.quad, err = s.CreateMesh(qp, qd); err != nil {
		return nil, err
	}
	return sc, nil
}

// loadAssets queues every image in dir and watches dir for changes.
func (sc *scene) loadAssets(l *loader.Loader, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		default:
			continue
		}
		h, err := l.LoadTexture(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		sc.mu.Lock()
		sc.textures = append(sc.textures, h)
		sc.mu.Unlock()
	}
	return l.Watch(dir)
}

// texture returns the i-th loaded texture that is ready, if any.
func (sc *scene) texture(i int) (video.TextureHandle, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if len(sc.textures) == 0 {
		return video.TextureHandle{}, false
	}
	h := sc.textures[i%len(sc.textures)]
	_, ok := sc.shared.Texture(h)
	return h, ok
}

// produce animates one triangle, and one textured quad when assets are
// loaded, until ctx is done.
func (sc *scene) produce(ctx context.Context, id int) {
	p := video.DefaultMeshParams()
	p.Hint = video.BufferHintStream
	p.Layout = video.NewVertexLayout().
		With(video.AttributePosition, video.VertexFormatFloat, 3, false).
		Finish()
	p.NumVerts = 3
	p.NumIdxes = 3
	p.Aabb = video.Aabb3{Min: mgl32.Vec3{-1, -1, 0}, Max: mgl32.Vec3{1, 1, 0}}

	tri, err := sc.shared.CreateMesh(p, nil)
	if err != nil {
		slog.Error("producer: create mesh", "id", id, "err", err)
		return
	}
	defer func() { _ = sc.shared.DeleteMesh(tri) }()

	if err := sc.shared.UpdateIndexBuffer(tri, 0, encodeIndices(0, 1, 2)); err != nil {
		slog.Error("producer: indices", "id", id, "err", err)
		return
	}

	color := mgl32.Vec4{float32(id%3) / 2, float32(id%5) / 4, 1, 1}
	offset := mgl32.Translate3D(float32(id%4)/2-0.75, float32(id/4)/2-0.75, 0)
	start := time.Now()
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		angle := float32(time.Since(start).Seconds()) * (1 + float32(id)/4)
		err := sc.shared.UpdateVertexBuffer(tri, 0, triangle(angle, 0.2))
		if err == nil {
			err = sc.shared.Draw(sc.surface, video.NewDrawCall(sc.solid, tri).
				SetUniform("u_MVP", offset).
				SetUniform("u_Color", color))
		}
		if tex, ok := sc.texture(id); ok && err == nil {
			mvp := offset.Mul4(mgl32.HomogRotate3DZ(angle)).Mul4(mgl32.Scale3D(0.1, 0.1, 1))
			err = sc.shared.Draw(sc.surface, video.NewDrawCall(sc.textured, sc.quad).
				SetUniform("u_MVP", mvp).
				SetUniform("u_Texture", tex))
		}

		switch {
		case err == nil:
		case errors.Is(err, video.ErrCapacityExceeded):
			slog.Debug("producer: frame full", "id", id)
		default:
			slog.Warn("producer: record", "id", id, "err", err)
		}
	}
}

// triangle returns an equilateral triangle of radius r rotated by angle.
func triangle(angle, r float32) []byte {
	b := make([]byte, 0, 3*12)
	for i := range 3 {
		a := angle + float32(i)*2*math32.Pi/3
		for _, f := range []float32{r * math32.Cos(a), r * math32.Sin(a), 0} {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	return b
}

func encodeIndices(idx ...uint16) []byte {
	b := make([]byte, 0, 2*len(idx))
	for _, i := range idx {
		b = binary.LittleEndian.AppendUint16(b, i)
	}
	return b
}

// quad is a unit square with texture coordinates.
func quad() (video.MeshParams, *video.MeshData) {
	p := video.DefaultMeshParams()
	p.Layout = video.NewVertexLayout().
		With(video.AttributePosition, video.VertexFormatFloat, 3, false).
		With(video.AttributeTexcoord0, video.VertexFormatFloat, 2, false).
		Finish()
	p.NumVerts = 4
	p.NumIdxes = 6

	vb := make([]byte, 0, 4*20)
	for _, v := range [][5]float32{
		{-1, -1, 0, 0, 1},
		{1, -1, 0, 1, 1},
		{1, 1, 0, 1, 0},
		{-1, 1, 0, 0, 0},
	} {
		for _, f := range v {
			vb = binary.LittleEndian.AppendUint32(vb, math.Float32bits(f))
		}
	}
	return p, &video.MeshData{VPtr: vb, IPtr: encodeIndices(0, 1, 2, 2, 3, 0)}
}
