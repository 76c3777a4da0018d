package loader

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoding
	_ "image/jpeg" // register JPEG decoding
	_ "image/png"  // register PNG decoding

	"github.com/gogpu/gputypes"
	"github.com/gogpu/video"
	"github.com/gogpu/video/internal/mipmap"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoding
	_ "golang.org/x/image/tiff" // register TIFF decoding
	_ "golang.org/x/image/webp" // register WebP decoding
)

// LoadTexture returns a handle for the image file at location. The first
// request for a location reserves a pending texture and decodes the file
// in the background; later requests return the same handle until it is
// unloaded.
//
// Decode failures are reported through Errors. The handle of a failed
// load is deleted, so it stays invalid.
func (l *Loader) LoadTexture(location string) (video.TextureHandle, error) {
	if l.closed.Load() {
		return video.TextureHandle{}, ErrClosed
	}
	k := key(location)

	h, created, _ := l.textures.GetOrCreate(k, func() (video.TextureHandle, error) {
		return l.shared.ReserveTexture(), nil
	})
	if !created {
		return h, nil
	}

	// Submit outside the shard lock: a full pool waits for workers that
	// may need the same shard.
	if !l.submit(func() { l.loadTexture(k, h) }) {
		l.textures.Delete(k)
		_ = l.shared.DeleteTexture(h)
		return video.TextureHandle{}, ErrClosed
	}
	video.Logger().Debug("loader: texture queued", "location", k, "handle", h)
	return h, nil
}

func (l *Loader) loadTexture(location string, h video.TextureHandle) {
	params, data, err := l.decodeTexture(location)
	if err == nil {
		err = l.shared.CommitTexture(h, params, data)
	}
	if errors.Is(err, video.ErrHandleInvalid) {
		// Unloaded while decoding.
		video.Logger().Debug("loader: texture dropped", "location", location)
		return
	}
	if err != nil {
		l.textures.DeleteIf(location, func(v video.TextureHandle) bool { return v == h })
		_ = l.shared.DeleteTexture(h)
		l.fail(location, err)
		return
	}
	l.loaded.Add(1)
	video.Logger().Debug("loader: texture ready", "location", location,
		"width", params.Width, "height", params.Height)
}

// UnloadTexture forgets location and deletes its texture. A load still in
// progress is abandoned.
func (l *Loader) UnloadTexture(location string) error {
	k := key(location)
	h, ok := l.textures.Get(k)
	if !ok {
		return nil
	}
	l.textures.Delete(k)
	return l.shared.DeleteTexture(h)
}

func (l *Loader) decodeTexture(location string) (video.TextureParams, *video.TextureData, error) {
	img, err := decodeImage(location, l.opts.maxSize)
	if err != nil {
		return video.TextureParams{}, nil, err
	}

	b := img.Bounds()
	params := video.DefaultTextureParams()
	params.Format = gputypes.TextureFormatRGBA8Unorm
	params.Hint = l.opts.textureHint
	params.Width = uint32(b.Dx())  // #nosec G115 -- image bounds are positive
	params.Height = uint32(b.Dy()) // #nosec G115
	params.Mipmap = l.opts.mipmaps

	levels := [][]byte{img.Pix}
	if params.Mipmap {
		levels = mipmap.Extend(levels, b.Dx(), b.Dy(), 4, params.MipLevels())
	}
	return params, &video.TextureData{Bytes: levels}, nil
}

// decodeImage reads the image at location as tightly packed RGBA8,
// downscaled to fit maxSize when maxSize is positive.
func decodeImage(location string, maxSize int) (*image.NRGBA, error) {
	f, err := open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", format)
	}

	w, h := fitSize(b.Dx(), b.Dy(), maxSize)
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	}
	return dst, nil
}

// fitSize scales w x h down to fit a limit x limit box, keeping the
// aspect ratio.
func fitSize(w, h, limit int) (int, int) {
	if limit <= 0 || (w <= limit && h <= limit) {
		return w, h
	}
	if w >= h {
		return limit, max(h*limit/w, 1)
	}
	return max(w*limit/h, 1), limit
}
