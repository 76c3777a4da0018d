package video

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrConfigFormat is returned by LoadConfig for unknown file extensions.
var ErrConfigFormat = errors.New("video: unsupported config format")

// Config is the file form of the System options plus the settings the
// loader and the demo command read.
type Config struct {
	MaxCommands int    `toml:"max_commands" yaml:"max_commands"`
	MaxBytes    int    `toml:"max_bytes" yaml:"max_bytes"`
	Width       uint32 `toml:"width" yaml:"width"`
	Height      uint32 `toml:"height" yaml:"height"`

	// Backend names a registered backend, e.g. "headless" or "hal".
	Backend string `toml:"backend" yaml:"backend"`

	// LoaderWorkers is the number of asset decoding goroutines. Zero means
	// one per CPU.
	LoaderWorkers int `toml:"loader_workers" yaml:"loader_workers"`

	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration New uses without options.
func DefaultConfig() Config {
	return Config{
		MaxCommands: DefaultMaxCommands,
		MaxBytes:    DefaultMaxBytes,
		Backend:     "headless",
		LogLevel:    "info",
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file. Fields
// missing from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the caller
	if err != nil {
		return Config{}, fmt.Errorf("video: read config: %w", err)
	}
	return ParseConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseConfig decodes data in the given format ("toml", "yaml" or "yml").
func ParseConfig(data []byte, format string) (Config, error) {
	c := DefaultConfig()

	var err error
	switch strings.ToLower(format) {
	case "toml":
		err = toml.Unmarshal(data, &c)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &c)
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrConfigFormat, format)
	}
	if err != nil {
		return Config{}, fmt.Errorf("video: parse %s config: %w", format, err)
	}

	if c.MaxCommands < 0 || c.MaxBytes < 0 || c.LoaderWorkers < 0 {
		return Config{}, validationErrorf("config has negative capacity")
	}
	if _, err := c.Level(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Level parses LogLevel. An empty LogLevel is slog.LevelInfo.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return l, validationErrorf("log level %q: %v", c.LogLevel, err)
	}
	return l, nil
}

// Options converts the config into System options.
func (c Config) Options() []Option {
	return []Option{
		WithCapacity(c.MaxCommands, c.MaxBytes),
		WithDimensions(Dimensions{Width: c.Width, Height: c.Height}),
	}
}
