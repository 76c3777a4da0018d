package hal

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Provider is a gpucontext.DeviceProvider over a HAL device and queue the
// application opened itself. It routes such a device through
// backend.New.
//
// The gpucontext views of the device are nil; the HAL backend only reads
// HalDevice and HalQueue.
type Provider struct {
	device  hal.Device
	queue   hal.Queue
	format  gputypes.TextureFormat
	info    gpucontext.AdapterInfo
	release func()
}

// NewProvider wraps device and queue. The caller keeps ownership of both.
func NewProvider(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) *Provider {
	return &Provider{
		device: device,
		queue:  queue,
		format: format,
		info:   gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown},
	}
}

// OpenNoop opens a device on the noop HAL API, which accepts every call
// and renders nothing. Close releases it.
func OpenNoop() (*Provider, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("hal: noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: noop API has no adapter", ErrNoDevice)
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("hal: open noop device: %w", err)
	}

	p := NewProvider(open.Device, open.Queue, gputypes.TextureFormatBGRA8Unorm)
	p.info = gpucontext.AdapterInfo{Name: "noop", Type: gpucontext.AdapterTypeSoftware}
	p.release = func() {
		open.Device.Destroy()
		instance.Destroy()
	}
	return p, nil
}

// Close releases a device opened by OpenNoop. It does nothing for
// providers made with NewProvider.
func (p *Provider) Close() {
	if p.release != nil {
		p.release()
		p.release = nil
	}
}

func (p *Provider) Device() gpucontext.Device             { return nil }
func (p *Provider) Queue() gpucontext.Queue               { return nil }
func (p *Provider) Adapter() gpucontext.Adapter           { return nil }
func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }

// AdapterInfo reports a software adapter for noop devices and an unknown
// adapter otherwise.
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo { return p.info }

// HalDevice returns the wrapped hal.Device.
func (p *Provider) HalDevice() any { return p.device }

// HalQueue returns the wrapped hal.Queue.
func (p *Provider) HalQueue() any { return p.queue }

var _ gpucontext.DeviceProvider = (*Provider)(nil)
