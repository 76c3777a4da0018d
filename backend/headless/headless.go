// Package headless provides a video.Visitor that keeps every resource in
// memory and executes no GPU work.
//
// It tracks which handles are resident, applies buffer and texture updates
// to CPU copies and keeps a log of the operations it executed. Commands that
// reference resources the visitor does not hold fail, which aborts the
// frame with a video.BackendError. Use it for servers, tests and tools that
// need the pipeline without a device.
package headless

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/video"
	"github.com/gogpu/video/backend"
)

// Name is the registry name of the headless backend.
const Name = "headless"

// Errors returned from visitor methods.
var (
	ErrNotResident     = errors.New("headless: resource not resident")
	ErrAlreadyResident = errors.New("headless: resource already resident")
	ErrOutOfBounds     = errors.New("headless: update outside resource")
	ErrNotBound        = errors.New("headless: no surface bound")
)

func init() {
	backend.Register(Name, func(gpucontext.DeviceProvider) (video.Visitor, error) {
		return New(), nil
	})
}

// Op is one executed command.
type Op struct {
	Type   video.CommandType
	Handle video.Handle
}

// Stats counts the work of the last completed frame.
type Stats struct {
	Frames    int
	DrawCalls int
	Indices   int
}

type mesh struct {
	params  video.MeshParams
	vertex  []byte
	indices []byte
}

type texture struct {
	params video.TextureParams
	levels [][]byte
}

// Visitor is the headless backend. The zero value is not usable; create
// one with New.
type Visitor struct {
	mu sync.Mutex

	surfaces       map[video.SurfaceHandle]video.SurfaceParams
	shaders        map[video.ShaderHandle]video.ShaderParams
	meshes         map[video.MeshHandle]*mesh
	textures       map[video.TextureHandle]*texture
	renderTextures map[video.RenderTextureHandle]video.RenderTextureParams

	dims     video.Dimensions
	bound    video.SurfaceHandle
	scissor  video.SurfaceScissor
	viewport video.SurfaceViewport

	ops     []Op
	frame   Stats
	last    Stats
	logOps  bool
	inFrame bool
}

var _ video.Visitor = (*Visitor)(nil)

// New returns an empty headless visitor that records its op log.
func New() *Visitor {
	return &Visitor{
		surfaces:       make(map[video.SurfaceHandle]video.SurfaceParams),
		shaders:        make(map[video.ShaderHandle]video.ShaderParams),
		meshes:         make(map[video.MeshHandle]*mesh),
		textures:       make(map[video.TextureHandle]*texture),
		renderTextures: make(map[video.RenderTextureHandle]video.RenderTextureParams),
		logOps:         true,
	}
}

// SetOpLog enables or disables the op log. Disabling it also clears it.
func (v *Visitor) SetOpLog(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.logOps = enabled
	if !enabled {
		v.ops = nil
	}
}

func (v *Visitor) log(t video.CommandType, h video.Handle) {
	if v.logOps {
		v.ops = append(v.ops, Op{Type: t, Handle: h})
	}
}

// Ops returns a copy of the op log.
func (v *Visitor) Ops() []Op {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Op(nil), v.ops...)
}

// Stats returns the counters of the last completed frame.
func (v *Visitor) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Resize implements video.Visitor.
func (v *Visitor) Resize(dims video.Dimensions) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dims = dims
	return nil
}

// Dimensions returns the default framebuffer size.
func (v *Visitor) Dimensions() video.Dimensions {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dims
}

// Begin implements video.Visitor.
func (v *Visitor) Begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFrame = true
	v.bound = video.SurfaceHandle{}
	v.frame = Stats{Frames: v.last.Frames}
	return nil
}

// End implements video.Visitor.
func (v *Visitor) End() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inFrame = false
	v.frame.Frames++
	v.last = v.frame
	return nil
}

func notResident(kind string, h video.Handle) error {
	return fmt.Errorf("%w: %s %s", ErrNotResident, kind, h)
}

func alreadyResident(kind string, h video.Handle) error {
	return fmt.Errorf("%w: %s %s", ErrAlreadyResident, kind, h)
}
