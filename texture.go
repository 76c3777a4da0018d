package video

import (
	"github.com/gogpu/gputypes"
)

// BytesPerPixel returns the texel size of the uncompressed color formats
// textures may be created with, or 0 for unsupported formats.
func BytesPerPixel(f gputypes.TextureFormat) int {
	switch f {
	case gputypes.TextureFormatR8Unorm:
		return 1
	case gputypes.TextureFormatRG8Unorm:
		return 2
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return 4
	case gputypes.TextureFormatRGBA16Float:
		return 8
	case gputypes.TextureFormatRGBA32Float:
		return 16
	default:
		return 0
	}
}

// TextureParams describes a sampled texture.
type TextureParams struct {
	Format gputypes.TextureFormat
	Wrap   gputypes.AddressMode
	Filter gputypes.FilterMode
	Hint   BufferHint
	Width  uint32
	Height uint32

	// Mipmap requests a full mip chain. Initial data may then carry one
	// slice per level.
	Mipmap bool
}

// DefaultTextureParams returns an immutable RGBA8 texture with linear
// filtering and clamped addressing.
func DefaultTextureParams() TextureParams {
	return TextureParams{
		Format: gputypes.TextureFormatRGBA8Unorm,
		Wrap:   gputypes.AddressModeClampToEdge,
		Filter: gputypes.FilterModeLinear,
		Hint:   BufferHintImmutable,
	}
}

// MipLevels returns the number of levels in the texture's mip chain.
func (p *TextureParams) MipLevels() int {
	if !p.Mipmap {
		return 1
	}
	n := 1
	for w, h := p.Width, p.Height; w > 1 || h > 1; n++ {
		w, h = max(w/2, 1), max(h/2, 1)
	}
	return n
}

// LevelSize returns the byte size of mip level i.
func (p *TextureParams) LevelSize(i int) int {
	w, h := max(p.Width>>i, 1), max(p.Height>>i, 1)
	return int(w) * int(h) * BytesPerPixel(p.Format)
}

func (p *TextureParams) validate(data *TextureData) error {
	if p.Width == 0 || p.Height == 0 {
		return validationErrorf("texture is %dx%d", p.Width, p.Height)
	}
	if BytesPerPixel(p.Format) == 0 {
		return validationErrorf("texture format %s is not supported", p.Format)
	}

	if data == nil {
		if p.Hint == BufferHintImmutable {
			return validationErrorf("immutable texture created without data")
		}
		return nil
	}
	if len(data.Bytes) == 0 {
		return validationErrorf("texture data has no levels")
	}
	if len(data.Bytes) > p.MipLevels() {
		return validationErrorf("texture data has %d levels, texture has %d",
			len(data.Bytes), p.MipLevels())
	}
	for i, level := range data.Bytes {
		if want := p.LevelSize(i); len(level) != want {
			return validationErrorf("texture level %d is %d bytes, want %d", i, len(level), want)
		}
	}
	return nil
}

// TextureData is the initial content of a texture, one slice per mip level
// starting at level 0. Missing levels are generated by the backend.
type TextureData struct {
	Bytes [][]byte
}

func (d *TextureData) clone() *TextureData {
	if d == nil {
		return nil
	}
	c := &TextureData{Bytes: make([][]byte, len(d.Bytes))}
	for i, b := range d.Bytes {
		c.Bytes[i] = append([]byte(nil), b...)
	}
	return c
}

// TextureRegion is a rectangle of texels.
type TextureRegion struct {
	X, Y          uint32
	Width, Height uint32
}

// Area returns the number of texels in the region.
func (r TextureRegion) Area() int { return int(r.Width) * int(r.Height) }

// Within reports whether the region lies inside a width x height texture.
func (r TextureRegion) Within(width, height uint32) bool {
	return uint64(r.X)+uint64(r.Width) <= uint64(width) &&
		uint64(r.Y)+uint64(r.Height) <= uint64(height)
}

// RenderTextureParams describes a texture that can be attached to a
// surface.
type RenderTextureParams struct {
	Format gputypes.TextureFormat
	Wrap   gputypes.AddressMode
	Filter gputypes.FilterMode
	Width  uint32
	Height uint32

	// Sampler makes the render texture bindable as a shader texture.
	Sampler bool
}

func (p *RenderTextureParams) validate() error {
	if p.Width == 0 || p.Height == 0 {
		return validationErrorf("render texture is %dx%d", p.Width, p.Height)
	}
	if !p.Format.HasDepth() && BytesPerPixel(p.Format) == 0 {
		return validationErrorf("render texture format %s is not supported", p.Format)
	}
	if p.Sampler && p.Format.IsDepthStencil() {
		return validationErrorf("depth render texture %s cannot be sampled", p.Format)
	}
	return nil
}
