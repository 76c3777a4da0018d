package hal

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/video"
	"github.com/gogpu/video/internal/mipmap"
	"github.com/gogpu/wgpu/hal"
)

// eightBitChannels returns the number of 8-bit channels of f, or 0 when f
// is not an 8-bit format. Only 8-bit formats get generated mip levels.
func eightBitChannels(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm,
		gputypes.TextureFormatRG8Unorm,
		gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return video.BytesPerPixel(f)
	}
	return 0
}

func (v *Visitor) createTexture(label string, width, height uint32, levels int, format gputypes.TextureFormat, usage gputypes.TextureUsage) (hal.Texture, error) {
	tex, err := v.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: uint32(levels), // #nosec G115 -- at most 32 levels
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("hal: create %s: %w", label, err)
	}
	return tex, nil
}

func (v *Visitor) writeTexture(tex hal.Texture, level int, region video.TextureRegion, bpp int, data []byte) {
	v.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: uint32(level), // #nosec G115 -- at most 32 levels
			Origin:   hal.Origin3D{X: region.X, Y: region.Y},
		},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  region.Width * uint32(bpp), // #nosec G115 -- bpp is at most 16
			RowsPerImage: region.Height,
		},
		&hal.Extent3D{Width: region.Width, Height: region.Height, DepthOrArrayLayers: 1},
	)
	v.frame.BytesWritten += len(data)
}

// CreateTexture implements video.Visitor. When the texture has a mip
// chain and data supplies fewer levels, the missing levels of 8-bit
// formats are generated with a box filter.
func (v *Visitor) CreateTexture(h video.TextureHandle, p video.TextureParams, data *video.TextureData) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.textures[h]; ok {
		return fmt.Errorf("hal: texture %s already resident", h.Handle)
	}

	levels := p.MipLevels()
	tex, err := v.createTexture("video_texture_"+h.String(), p.Width, p.Height, levels,
		p.Format, gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}

	if data != nil {
		chain := data.Bytes
		if ch := eightBitChannels(p.Format); ch > 0 && len(chain) < levels {
			chain = mipmap.Extend(append([][]byte(nil), chain...), int(p.Width), int(p.Height), ch, levels)
		}
		bpp := video.BytesPerPixel(p.Format)
		for i, level := range chain {
			w, hgt := max(p.Width>>i, 1), max(p.Height>>i, 1)
			v.writeTexture(tex, i, video.TextureRegion{Width: w, Height: hgt}, bpp, level)
		}
	}

	v.textures[h] = &gpuTexture{params: p, tex: tex}
	video.Logger().Debug("hal: texture resident", "texture", h.Handle,
		"width", p.Width, "height", p.Height, "levels", levels)
	return nil
}

// UpdateTexture implements video.Visitor. Only level 0 is updated.
func (v *Visitor) UpdateTexture(h video.TextureHandle, region video.TextureRegion, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.textures[h]
	if !ok {
		return notResident("texture", h.Handle)
	}
	bpp := video.BytesPerPixel(t.params.Format)
	if !region.Within(t.params.Width, t.params.Height) || len(data) != region.Area()*bpp {
		return fmt.Errorf("%w: texture region %+v", ErrOutOfBounds, region)
	}
	v.writeTexture(t.tex, 0, region, bpp, data)
	return nil
}

// DeleteTexture implements video.Visitor.
func (v *Visitor) DeleteTexture(h video.TextureHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.textures[h]
	if !ok {
		return notResident("texture", h.Handle)
	}
	v.device.DestroyTexture(t.tex)
	delete(v.textures, h)
	return nil
}

// Texture returns the HAL texture of a resident texture.
func (v *Visitor) Texture(h video.TextureHandle) (hal.Texture, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.textures[h]
	if !ok {
		return nil, false
	}
	return t.tex, true
}

// CreateRenderTexture implements video.Visitor.
func (v *Visitor) CreateRenderTexture(h video.RenderTextureHandle, p video.RenderTextureParams) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.renderTextures[h]; ok {
		return fmt.Errorf("hal: render texture %s already resident", h.Handle)
	}

	usage := gputypes.TextureUsageRenderAttachment
	if p.Sampler {
		usage |= gputypes.TextureUsageTextureBinding
	}
	tex, err := v.createTexture("video_render_texture_"+h.String(), p.Width, p.Height, 1, p.Format, usage)
	if err != nil {
		return err
	}
	v.renderTextures[h] = &gpuRenderTexture{params: p, tex: tex}
	return nil
}

// DeleteRenderTexture implements video.Visitor.
func (v *Visitor) DeleteRenderTexture(h video.RenderTextureHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	t, ok := v.renderTextures[h]
	if !ok {
		return notResident("render texture", h.Handle)
	}
	v.device.DestroyTexture(t.tex)
	delete(v.renderTextures, h)
	return nil
}
