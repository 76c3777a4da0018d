package loader

import "github.com/gogpu/video"

// Option configures a Loader.
type Option func(*options)

type options struct {
	workers       int
	cacheCapacity int
	mipmaps       bool
	maxSize       int
	textureHint   video.BufferHint
	updateChunk   int
}

func defaultOptions() options {
	return options{
		textureHint: video.BufferHintImmutable,
		updateChunk: 16 * 1024,
	}
}

// WithWorkers sets the number of decoding goroutines. Zero or negative
// means one per CPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCacheCapacity sets how many locations per cache shard are
// remembered for deduplication. Evicted locations are loaded again on the
// next request.
func WithCacheCapacity(n int) Option {
	return func(o *options) {
		o.cacheCapacity = n
	}
}

// WithMipmaps makes loaded textures carry a full mip chain.
func WithMipmaps(enabled bool) Option {
	return func(o *options) {
		o.mipmaps = enabled
	}
}

// WithMaxSize downscales images whose width or height exceeds px, keeping
// the aspect ratio. Zero disables scaling.
func WithMaxSize(px int) Option {
	return func(o *options) {
		o.maxSize = max(px, 0)
	}
}

// WithTextureHint sets the buffer hint of loaded textures. Hot reload
// requires a hint other than BufferHintImmutable.
func WithTextureHint(h video.BufferHint) Option {
	return func(o *options) {
		o.textureHint = h
	}
}

// WithUpdateChunk bounds the bytes of a single texture update recorded by
// a hot reload. Reloads are split into row bands of at most this size so
// they fit the frame arena.
func WithUpdateChunk(bytes int) Option {
	return func(o *options) {
		if bytes > 0 {
			o.updateChunk = bytes
		}
	}
}
