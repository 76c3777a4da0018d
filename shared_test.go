package video

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

func TestCreateSurfaceRoundTrip(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()

	params := DefaultSurfaceParams()
	params.ClearColor = mgl32.Vec4{0.2, 0.3, 0.4, 1}
	params.Order = 3

	h, err := s.CreateSurface(params)
	if err != nil {
		t.Fatalf("CreateSurface = %v", err)
	}
	got, ok := s.Surface(h)
	if !ok {
		t.Fatal("Surface(h) not found")
	}
	if got.ClearColor != params.ClearColor || got.Order != 3 {
		t.Errorf("Surface(h) = %+v, want %+v", got, params)
	}

	if err := s.DeleteSurface(h); err != nil {
		t.Fatalf("DeleteSurface = %v", err)
	}
	if _, ok := s.Surface(h); ok {
		t.Error("Surface(h) found after delete")
	}

	h2, _ := s.CreateSurface(params)
	if h2 == h {
		t.Error("handle reused with the same generation")
	}
}

func TestDeleteTwiceRecordsOneCommand(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	h, _ := s.CreateSurface(DefaultSurfaceParams())
	if err := s.DeleteSurface(h); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteSurface(h); err != nil {
		t.Fatalf("second DeleteSurface = %v, want nil", err)
	}
	if err := s.DeleteSurface(SurfaceHandle{}); err != nil {
		t.Fatalf("DeleteSurface(nil) = %v, want nil", err)
	}

	if _, err := sys.Advance(Dimensions{}); err != nil {
		t.Fatal(err)
	}
	want := []CommandType{CmdCreateSurface, CmdDeleteSurface}
	if got := v.types(); !slices.Equal(got, want) {
		t.Errorf("dispatched %v, want %v", got, want)
	}
}

func TestCreateMeshBeforeUpdate(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	params := quadParams()
	params.Hint = BufferHintDynamic
	h, err := s.CreateMesh(params, quadData())
	if err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}
	if err := s.UpdateVertexBuffer(h, 16, make([]byte, 16)); err != nil {
		t.Fatalf("UpdateVertexBuffer = %v", err)
	}
	if err := s.UpdateIndexBuffer(h, 0, []byte{0, 0, 1, 0}); err != nil {
		t.Fatalf("UpdateIndexBuffer = %v", err)
	}

	if _, err := sys.Advance(Dimensions{}); err != nil {
		t.Fatal(err)
	}
	want := []CommandType{CmdCreateMesh, CmdUpdateVertexBuffer, CmdUpdateIndexBuffer}
	if got := v.types(); !slices.Equal(got, want) {
		t.Errorf("dispatched %v, want %v", got, want)
	}
	if len(v.payloads) != 2 || len(v.payloads[0]) != 16 || len(v.payloads[1]) != 4 {
		t.Errorf("update payload sizes wrong: %d payloads", len(v.payloads))
	}
}

func TestQuadMeshRoundTrip(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()

	params := quadParams()
	h, err := s.CreateMesh(params, quadData())
	if err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}

	got, ok := s.Mesh(h)
	if !ok {
		t.Fatal("Mesh(h) not found")
	}
	if got.NumVerts != 4 || got.NumIdxes != 6 {
		t.Errorf("counts = %d/%d, want 4/6", got.NumVerts, got.NumIdxes)
	}
	if got.Layout != params.Layout {
		t.Error("layout changed through round trip")
	}
	if got.Layout.Stride() != 16 {
		t.Errorf("stride = %d, want 16", got.Layout.Stride())
	}

	box, ok := s.MeshAabb(h)
	if !ok {
		t.Fatal("MeshAabb not available for committed mesh")
	}
	want := Aabb3{Min: mgl32.Vec3{-1, -1, 0}, Max: mgl32.Vec3{1, 1, 0}}
	if box != want {
		t.Errorf("MeshAabb = %+v, want %+v", box, want)
	}
}

func TestCreateMeshValidation(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()

	tests := []struct {
		name   string
		mutate func(*MeshParams, *MeshData)
	}{
		{"decreasing sub-mesh offsets", func(p *MeshParams, _ *MeshData) { p.SubMeshOffsets = []int{0, 3, 2} }},
		{"sub-mesh offset past indices", func(p *MeshParams, _ *MeshData) { p.SubMeshOffsets = []int{0, 7} }},
		{"short vertex data", func(_ *MeshParams, d *MeshData) { d.VPtr = d.VPtr[:60] }},
		{"long index data", func(_ *MeshParams, d *MeshData) { d.IPtr = append(d.IPtr, 0, 0) }},
		{"no vertices", func(p *MeshParams, _ *MeshData) { p.NumVerts = 0 }},
		{"empty layout", func(p *MeshParams, _ *MeshData) { p.Layout = VertexLayout{} }},
		{"undefined index format", func(p *MeshParams, _ *MeshData) { p.IndexFormat = gputypes.IndexFormatUndefined }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, d := quadParams(), quadData()
			tt.mutate(&p, d)
			if _, err := s.CreateMesh(p, d); !errors.Is(err, ErrValidation) {
				t.Errorf("CreateMesh = %v, want ErrValidation", err)
			}
		})
	}

	if n := s.meshes.len(); n != 0 {
		t.Errorf("%d meshes alive after rejected creates", n)
	}
	if cmds, _ := s.front.Usage(); cmds != 0 {
		t.Errorf("%d commands recorded by rejected creates", cmds)
	}
}

func TestUpdateErrors(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()

	immutable, _ := s.CreateMesh(quadParams(), quadData())
	dp := quadParams()
	dp.Hint = BufferHintStream
	dynamic, _ := s.CreateMesh(dp, nil)

	if err := s.UpdateVertexBuffer(MeshHandle{}, 0, []byte{1}); !errors.Is(err, ErrHandleInvalid) {
		t.Errorf("update of nil handle = %v", err)
	}
	if err := s.UpdateVertexBuffer(immutable, 0, []byte{1}); !errors.Is(err, ErrValidation) {
		t.Errorf("update of immutable mesh = %v", err)
	}
	if err := s.UpdateVertexBuffer(dynamic, 60, make([]byte, 8)); !errors.Is(err, ErrValidation) {
		t.Errorf("update past buffer end = %v", err)
	}

	s.DeleteMesh(dynamic)
	if err := s.UpdateIndexBuffer(dynamic, 0, []byte{1, 0}); !errors.Is(err, ErrHandleInvalid) {
		t.Errorf("update of deleted mesh = %v", err)
	}
}

func TestUpdateRejectsOverflowingOffset(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	dp := quadParams()
	dp.Hint = BufferHintDynamic
	h, err := s.CreateMesh(dp, quadData())
	if err != nil {
		t.Fatalf("CreateMesh = %v", err)
	}

	tests := []struct {
		name   string
		offset int
		data   []byte
	}{
		{"max offset", math.MaxInt, []byte{1}},
		{"max offset minus one", math.MaxInt - 1, []byte{1, 2}},
		{"data longer than buffer", 0, make([]byte, dp.VertexBufferLen()+1)},
		{"negative offset", -1, []byte{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.UpdateVertexBuffer(h, tt.offset, tt.data); !errors.Is(err, ErrValidation) {
				t.Errorf("UpdateVertexBuffer = %v, want ErrValidation", err)
			}
			if err := s.UpdateIndexBuffer(h, tt.offset, tt.data); !errors.Is(err, ErrValidation) {
				t.Errorf("UpdateIndexBuffer = %v, want ErrValidation", err)
			}
		})
	}

	if _, err := sys.Advance(Dimensions{}); err != nil {
		t.Fatalf("Advance = %v", err)
	}
	if got := v.types(); !slices.Equal(got, []CommandType{CmdCreateMesh}) {
		t.Errorf("dispatched %v, want only the create", got)
	}
}

func TestConcurrentCreateSurface(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()

	const n = 64
	handles := make([]SurfaceHandle, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := s.CreateSurface(DefaultSurfaceParams())
			if err != nil {
				t.Errorf("CreateSurface = %v", err)
			}
			handles[i] = h
		}()
	}
	wg.Wait()

	seen := make(map[SurfaceHandle]bool, n)
	for _, h := range handles {
		if h.IsNil() {
			t.Fatal("nil handle returned")
		}
		if seen[h] {
			t.Fatalf("handle %v returned twice", h.Handle)
		}
		seen[h] = true
	}

	info, err := sys.Advance(Dimensions{})
	if err != nil {
		t.Fatal(err)
	}
	if info.AliveSurfaces != n {
		t.Errorf("AliveSurfaces = %d, want %d", info.AliveSurfaces, n)
	}
}

func TestReserveCommitMesh(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	h := s.ReserveMesh()
	if _, ok := s.MeshAabb(h); ok {
		t.Fatal("MeshAabb available before commit")
	}
	if _, ok := s.Mesh(h); ok {
		t.Fatal("Mesh available before commit")
	}
	if cmds, _ := s.front.Usage(); cmds != 0 {
		t.Fatalf("reservation recorded %d commands", cmds)
	}

	if err := s.CommitMesh(h, quadParams(), quadData()); err != nil {
		t.Fatalf("CommitMesh = %v", err)
	}
	box, ok := s.MeshAabb(h)
	if !ok || box.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("MeshAabb after commit = %+v, %v", box, ok)
	}

	if err := s.CommitMesh(h, quadParams(), quadData()); !errors.Is(err, ErrHandleInvalid) {
		t.Errorf("second CommitMesh = %v, want ErrHandleInvalid", err)
	}

	sys.Advance(Dimensions{})
	if got := v.types(); !slices.Equal(got, []CommandType{CmdCreateMesh}) {
		t.Errorf("dispatched %v, want one CreateMesh", got)
	}
}

func TestReserveCommitConcurrentReaders(t *testing.T) {
	sys := New(&recordingVisitor{})
	s := sys.Shared()
	h := s.ReserveMesh()
	want := Aabb3{Min: mgl32.Vec3{-1, -1, 0}, Max: mgl32.Vec3{1, 1, 0}}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if box, ok := s.MeshAabb(h); ok && box != want {
					t.Errorf("partial state observed: %+v", box)
					return
				}
			}
		}()
	}

	if err := s.CommitMesh(h, quadParams(), quadData()); err != nil {
		t.Errorf("CommitMesh = %v", err)
	}
	close(stop)
	wg.Wait()
}

func TestDeletePendingMeshRecordsNothing(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	h := s.ReserveMesh()
	if err := s.DeleteMesh(h); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitMesh(h, quadParams(), quadData()); !errors.Is(err, ErrHandleInvalid) {
		t.Errorf("commit after delete = %v, want ErrHandleInvalid", err)
	}

	sys.Advance(Dimensions{})
	if got := v.types(); len(got) != 0 {
		t.Errorf("dispatched %v, want nothing", got)
	}
}

func TestTextureLifecycle(t *testing.T) {
	v := &recordingVisitor{}
	sys := New(v)
	s := sys.Shared()

	params := rgbaTextureParams(4, 4)
	params.Hint = BufferHintDynamic
	h, err := s.CreateTexture(params, &TextureData{Bytes: [][]byte{make([]byte, 64)}})
	if err != nil {
		t.Fatalf("CreateTexture = %v", err)
	}

	region := TextureRegion{X: 1, Y: 1, Width: 2, Height: 2}
	if err := s.UpdateTexture(h, region, make([]byte, 16)); err != nil {
		t.Errorf("UpdateTexture = %v", err)
	}
	if err := s.UpdateTexture(h, region, make([]byte, 15)); !errors.Is(err, ErrValidation) {
		t.Errorf("short region data = %v", err)
	}
	if err := s.UpdateTexture(h, TextureRegion{X: 3, Width: 2, Height: 1}, make([]byte, 8)); !errors.Is(err, ErrValidation) {
		t.Errorf("region outside texture = %v", err)
	}

	pending := s.ReserveTexture()
	if err := s.UpdateTexture(pending, region, make([]byte, 16)); !errors.Is(err, ErrHandleInvalid) {
		t.Errorf("update of pending texture = %v", err)
	}
	if err := s.CommitTexture(pending, rgbaTextureParams(2, 2), &TextureData{Bytes: [][]byte{make([]byte, 16)}}); err != nil {
		t.Errorf("CommitTexture = %v", err)
	}
	s.DeleteTexture(h)

	info, err := sys.Advance(Dimensions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []CommandType{CmdCreateTexture, CmdUpdateTexture, CmdCreateTexture, CmdDeleteTexture}
	if got := v.types(); !slices.Equal(got, want) {
		t.Errorf("dispatched %v, want %v", got, want)
	}
	if info.AliveTextures != 1 {
		t.Errorf("AliveTextures = %d, want 1", info.AliveTextures)
	}
}

func TestTextureValidation(t *testing.T) {
	s := New(&recordingVisitor{}).Shared()

	tests := []struct {
		name   string
		params TextureParams
		data   *TextureData
	}{
		{"zero size", rgbaTextureParams(0, 4), &TextureData{Bytes: [][]byte{nil}}},
		{"depth format", TextureParams{Format: gputypes.TextureFormatDepth24Plus, Width: 1, Height: 1}, &TextureData{Bytes: [][]byte{make([]byte, 4)}}},
		{"wrong level size", rgbaTextureParams(2, 2), &TextureData{Bytes: [][]byte{make([]byte, 15)}}},
		{"too many levels", rgbaTextureParams(2, 2), &TextureData{Bytes: [][]byte{make([]byte, 16), make([]byte, 4)}}},
		{"immutable without data", rgbaTextureParams(2, 2), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.CreateTexture(tt.params, tt.data); !errors.Is(err, ErrValidation) {
				t.Errorf("CreateTexture = %v, want ErrValidation", err)
			}
		})
	}

	mip := rgbaTextureParams(4, 2)
	mip.Mipmap = true
	if mip.MipLevels() != 3 {
		t.Errorf("MipLevels = %d, want 3", mip.MipLevels())
	}
	levels := &TextureData{Bytes: [][]byte{make([]byte, 32), make([]byte, 8), make([]byte, 4)}}
	if _, err := s.CreateTexture(mip, levels); err != nil {
		t.Errorf("CreateTexture with full mip chain = %v", err)
	}
}

func TestSurfaceAttachments(t *testing.T) {
	s := New(&recordingVisitor{}).Shared()

	color, err := s.CreateRenderTexture(RenderTextureParams{
		Format: gputypes.TextureFormatRGBA8Unorm, Width: 64, Height: 64, Sampler: true,
	})
	if err != nil {
		t.Fatalf("CreateRenderTexture(color) = %v", err)
	}
	depth, err := s.CreateRenderTexture(RenderTextureParams{
		Format: gputypes.TextureFormatDepth24PlusStencil8, Width: 64, Height: 64,
	})
	if err != nil {
		t.Fatalf("CreateRenderTexture(depth) = %v", err)
	}
	small, _ := s.CreateRenderTexture(RenderTextureParams{
		Format: gputypes.TextureFormatRGBA8Unorm, Width: 32, Height: 32,
	})

	ok := DefaultSurfaceParams()
	ok.Colors = []RenderTextureHandle{color}
	ok.Depth = depth
	if _, err := s.CreateSurface(ok); err != nil {
		t.Errorf("CreateSurface with attachments = %v", err)
	}

	tests := []struct {
		name   string
		colors []RenderTextureHandle
		depth  RenderTextureHandle
		want   error
	}{
		{"depth as color", []RenderTextureHandle{depth}, RenderTextureHandle{}, ErrValidation},
		{"color as depth", nil, color, ErrValidation},
		{"duplicate color", []RenderTextureHandle{color, color}, RenderTextureHandle{}, ErrValidation},
		{"size mismatch", []RenderTextureHandle{color, small}, RenderTextureHandle{}, ErrValidation},
		{"dead attachment", []RenderTextureHandle{{}}, RenderTextureHandle{}, ErrHandleInvalid},
		{"too many", make([]RenderTextureHandle, MaxFramebufferAttachments+1), RenderTextureHandle{}, ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultSurfaceParams()
			p.Colors = tt.colors
			p.Depth = tt.depth
			if _, err := s.CreateSurface(p); !errors.Is(err, tt.want) {
				t.Errorf("CreateSurface = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateSurfaceCapacityExceeded(t *testing.T) {
	s := New(&recordingVisitor{}, WithCapacity(1, 16)).Shared()

	if _, err := s.CreateSurface(DefaultSurfaceParams()); err != nil {
		t.Fatal(err)
	}
	_, err := s.CreateSurface(DefaultSurfaceParams())
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("CreateSurface on full frame = %v", err)
	}
	if n := s.surfaces.len(); n != 1 {
		t.Errorf("%d surfaces alive, want 1: failed create left a registry entry", n)
	}
}
