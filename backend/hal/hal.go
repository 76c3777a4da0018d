// Package hal provides a video.Visitor that keeps resources resident on a
// wgpu HAL device.
//
// Meshes become vertex and index buffers, textures and render textures
// become HAL textures, and shader sources are compiled from WGSL to SPIR-V
// with naga and loaded as shader modules. Buffer and texture updates go
// through the device queue. The visitor validates draws against the
// resident set and counts them; pipeline creation and render pass
// encoding belong to the application renderer that owns the surface.
//
// The visitor either shares a device with the host application through a
// gpucontext.DeviceProvider, or wraps an explicit hal.Device and hal.Queue:
//
//	v, err := hal.NewFromProvider(provider)
//	if err != nil {
//		return err
//	}
//	defer v.Close()
//	sys := video.New(v)
package hal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/video"
	"github.com/gogpu/video/backend"
	"github.com/gogpu/wgpu/hal"
)

// Name is the registry name of the HAL backend.
const Name = "hal"

// Errors returned by the HAL backend.
var (
	ErrNoDevice      = errors.New("hal: provider does not expose a HAL device")
	ErrNotResident   = errors.New("hal: resource not resident")
	ErrOutOfBounds   = errors.New("hal: update outside resource")
	ErrNotBound      = errors.New("hal: no surface bound")
	ErrShaderCompile = errors.New("hal: shader compilation failed")
	ErrClosed        = errors.New("hal: visitor closed")
)

func init() {
	backend.Register(Name, func(p gpucontext.DeviceProvider) (video.Visitor, error) {
		return NewFromProvider(p)
	})
}

// Stats counts the work of the last completed frame.
type Stats struct {
	Frames       int
	DrawCalls    int
	Indices      int
	BytesWritten int
}

type meshBuffers struct {
	params        video.MeshParams
	vertex, index hal.Buffer

	// CPU copies let unaligned updates be widened to the 4-byte
	// granularity of queue writes.
	vshadow, ishadow []byte
}

type gpuTexture struct {
	params video.TextureParams
	tex    hal.Texture
}

type gpuRenderTexture struct {
	params video.RenderTextureParams
	tex    hal.Texture
}

type shaderModules struct {
	params video.ShaderParams
	vs, fs hal.ShaderModule
}

// Visitor is the HAL backend. Create one with New or NewFromProvider.
type Visitor struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	closed bool

	surfaces       map[video.SurfaceHandle]video.SurfaceParams
	shaders        map[video.ShaderHandle]*shaderModules
	meshes         map[video.MeshHandle]*meshBuffers
	textures       map[video.TextureHandle]*gpuTexture
	renderTextures map[video.RenderTextureHandle]*gpuRenderTexture

	dims  video.Dimensions
	bound video.SurfaceHandle
	frame Stats
	last  Stats
}

var _ video.Visitor = (*Visitor)(nil)

// New returns a visitor that allocates on device and uploads through
// queue. The caller keeps ownership of both.
func New(device hal.Device, queue hal.Queue) (*Visitor, error) {
	if device == nil || queue == nil {
		return nil, ErrNoDevice
	}
	return &Visitor{
		device:         device,
		queue:          queue,
		surfaces:       make(map[video.SurfaceHandle]video.SurfaceParams),
		shaders:        make(map[video.ShaderHandle]*shaderModules),
		meshes:         make(map[video.MeshHandle]*meshBuffers),
		textures:       make(map[video.TextureHandle]*gpuTexture),
		renderTextures: make(map[video.RenderTextureHandle]*gpuRenderTexture),
	}, nil
}

// NewFromProvider returns a visitor sharing the provider's device. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Visitor, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoDevice)
	}
	return New(device, queue)
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

// Begin implements video.Visitor.
func (v *Visitor) Begin() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrClosed
	}
	v.bound = video.SurfaceHandle{}
	v.frame = Stats{Frames: v.last.Frames}
	return nil
}

// End implements video.Visitor.
func (v *Visitor) End() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frame.Frames++
	v.last = v.frame
	return nil
}

// Close destroys every resident resource. The device and queue are not
// destroyed. Close is called by video.System.Close.
func (v *Visitor) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true

	for h, m := range v.meshes {
		v.destroyMesh(m)
		delete(v.meshes, h)
	}
	for h, t := range v.textures {
		v.device.DestroyTexture(t.tex)
		delete(v.textures, h)
	}
	for h, t := range v.renderTextures {
		v.device.DestroyTexture(t.tex)
		delete(v.renderTextures, h)
	}
	for h, s := range v.shaders {
		v.destroyShader(s)
		delete(v.shaders, h)
	}
	clear(v.surfaces)
	video.Logger().Info("hal: visitor closed")
	return nil
}

func notResident(kind string, h video.Handle) error {
	return fmt.Errorf("%w: %s %s", ErrNotResident, kind, h)
}
