package video

// Frame capacity defaults.
const (
	DefaultMaxCommands = 16384
	DefaultMaxBytes    = 64 * 1024
)

// Option configures a System during creation.
//
// Example:
//
//	sys := video.New(visitor,
//	    video.WithCapacity(4096, 1<<20),
//	    video.WithDimensions(video.Dimensions{Width: 1280, Height: 720}),
//	)
type Option func(*options)

// options holds optional configuration for System creation.
type options struct {
	maxCommands int
	maxBytes    int
	dimensions  Dimensions
}

// defaultOptions returns the default system options.
func defaultOptions() options {
	return options{
		maxCommands: DefaultMaxCommands,
		maxBytes:    DefaultMaxBytes,
	}
}

// WithCapacity sets the per-frame command and arena capacity. Recording
// beyond either limit fails with ErrCapacityExceeded. Non-positive values
// keep the defaults.
func WithCapacity(maxCommands, maxBytes int) Option {
	return func(o *options) {
		if maxCommands > 0 {
			o.maxCommands = maxCommands
		}
		if maxBytes > 0 {
			o.maxBytes = maxBytes
		}
	}
}

// WithDimensions sets the initial framebuffer dimensions. The visitor is
// not resized until Advance observes different dimensions.
func WithDimensions(d Dimensions) Option {
	return func(o *options) {
		o.dimensions = d
	}
}
