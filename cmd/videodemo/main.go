// Command videodemo drives a video.System with several producer
// goroutines recording meshes and draws while the main goroutine advances
// frames on a backend.
//
// Usage:
//
//	videodemo [-config video.toml] [-backend headless|hal] [-frames 120]
//	          [-producers 4] [-assets dir] [-profile cpu|mem]
//
// With -assets, every image in dir is streamed in through the loader and
// reloaded when the file changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/video"
	"github.com/gogpu/video/backend"
	"github.com/gogpu/video/backend/hal"
	_ "github.com/gogpu/video/backend/headless"
	"github.com/gogpu/video/loader"
	"github.com/pkg/profile"
)

func main() {
	if err := run(); err != nil {
		slog.Error("videodemo failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "TOML or YAML config file")
		backendArg = flag.String("backend", "", "backend name, overrides the config")
		frames     = flag.Int("frames", 120, "frames to run")
		producers  = flag.Int("producers", 4, "producer goroutines")
		assets     = flag.String("assets", "", "directory of textures to stream and watch")
		profMode   = flag.String("profile", "", "write a cpu or mem profile to the working directory")
		fps        = flag.Int("fps", 60, "frames per second")
	)
	flag.Parse()

	cfg := video.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = video.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *backendArg != "" {
		cfg.Backend = *backendArg
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = 800, 600
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	video.SetLogger(logger)

	switch *profMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profMode)
	}

	visitor, closeDevice, err := openBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer closeDevice()

	sys := video.New(visitor, cfg.Options()...)
	defer func() {
		if err := sys.Close(); err != nil {
			slog.Warn("close system", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := newScene(sys.Shared())
	if err != nil {
		return err
	}

	var ldr *loader.Loader
	if *assets != "" {
		ldr = loader.New(sys.Shared(),
			loader.WithWorkers(cfg.LoaderWorkers),
			loader.WithMipmaps(true),
			loader.WithTextureHint(video.BufferHintDynamic))
		defer ldr.Close()

		if err := sc.loadAssets(ldr, *assets); err != nil {
			return err
		}
	}

	return drive(ctx, sys, sc, ldr, *producers, *frames, *fps)
}

// openBackend opens the named backend. The hal backend runs on a noop
// device, since the demo has no window.
func openBackend(name string) (video.Visitor, func(), error) {
	if name != hal.Name {
		v, err := backend.New(name, nil)
		return v, func() {}, err
	}

	p, err := hal.OpenNoop()
	if err != nil {
		return nil, nil, err
	}
	v, err := backend.New(name, p)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	return v, p.Close, nil
}

// drive runs the producers and advances frames on the calling goroutine
// until frames have been presented or ctx is canceled.
func drive(ctx context.Context, sys *video.System, sc *scene, ldr *loader.Loader, producers, frames, fps int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	for i := range max(producers, 1) {
		go func() {
			defer func() { done <- struct{}{} }()
			sc.produce(ctx, i)
		}()
	}
	defer func() {
		cancel()
		for range max(producers, 1) {
			<-done
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()

	var total video.FrameInfo
	for n := 0; n < frames; n++ {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "frame", n)
			return nil
		case <-ticker.C:
		}

		info, err := sys.Advance(sys.Dimensions())
		var berr *video.BackendError
		if errors.As(err, &berr) {
			slog.Warn("frame dropped", "frame", n, "command", berr.Command, "err", berr.Err)
			continue
		}
		if err != nil {
			return err
		}
		total.DrawCalls += info.DrawCalls
		total.Triangles += info.Triangles
		total.Duration += info.Duration

		if ldr != nil {
			for _, err := range ldr.Errors() {
				slog.Warn("asset", "err", err)
			}
		}
		if n%max(fps, 1) == 0 {
			slog.Info("frame", "n", n, "draws", info.DrawCalls, "triangles", info.Triangles,
				"meshes", info.AliveMeshes, "textures", info.AliveTextures, "dispatch", info.Duration)
		}
	}

	slog.Info("done", "frames", frames, "draws", total.DrawCalls, "triangles", total.Triangles,
		"dispatch", total.Duration)
	if ldr != nil {
		st := ldr.Stats()
		slog.Info("loader", "loaded", st.Loaded, "failed", st.Failed, "reloaded", st.Reloaded,
			"hit_rate", st.Textures.HitRate())
	}
	return nil
}
