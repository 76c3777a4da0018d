// Package loader streams textures and meshes from files into a
// video.Shared without blocking the caller.
//
// A load reserves a pending handle, returns it at once, and decodes the
// file on a worker pool. When decoding finishes the content is committed
// and the handle becomes ready; draws of a pending mesh are skipped until
// then. Loads are deduplicated by location, so asking twice for the same
// file returns the same handle.
//
//	l := loader.New(sys.Shared(), loader.WithMipmaps(true))
//	defer l.Close()
//
//	tex, err := l.LoadTexture("assets/crate.png")
//	...
//	l.Wait() // optional: block until everything queued so far is ready
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/video"
	"github.com/gogpu/video/cache"
	"github.com/gogpu/video/internal/parallel"
)

// ErrClosed is returned by loads requested after Close.
var ErrClosed = errors.New("loader: closed")

// LoadError reports a failed load.
type LoadError struct {
	Location string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loader: %s: %v", e.Location, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Stats counts loader activity.
type Stats struct {
	Pending  int
	Loaded   uint64
	Failed   uint64
	Reloaded uint64
	Textures cache.Stats
	Meshes   cache.Stats
}

// Loader loads assets into a video.Shared. It is safe for concurrent use.
type Loader struct {
	shared *video.Shared
	opts   options
	pool   *parallel.WorkerPool

	textures *cache.Sharded[string, video.TextureHandle]
	meshes   *cache.Sharded[string, video.MeshHandle]

	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	errs    []error
	watcher *fsnotify.Watcher
	watchWG sync.WaitGroup

	loaded   atomic.Uint64
	failed   atomic.Uint64
	reloaded atomic.Uint64
	closed   atomic.Bool
}

// New returns a loader that creates resources in shared.
func New(shared *video.Shared, opts ...Option) *Loader {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	l := &Loader{
		shared:   shared,
		opts:     o,
		pool:     parallel.NewWorkerPool(o.workers),
		textures: cache.New[string, video.TextureHandle](o.cacheCapacity, cache.StringHasher),
		meshes:   cache.New[string, video.MeshHandle](o.cacheCapacity, cache.StringHasher),
	}
	l.idle = sync.NewCond(&l.mu)
	video.Logger().Info("loader: started", "workers", l.pool.Workers())
	return l
}

// key normalizes a location so equivalent paths share a cache entry.
func key(location string) string {
	return filepath.Clean(location)
}

func open(location string) (io.ReadCloser, error) {
	return os.Open(location) // #nosec G304 -- locations are chosen by the application
}

// submit runs fn on the pool and tracks it for Wait.
func (l *Loader) submit(fn func()) bool {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	ok := l.pool.Submit(func() {
		defer l.done()
		fn()
	})
	if !ok {
		l.done()
	}
	return ok
}

func (l *Loader) done() {
	l.mu.Lock()
	l.pending--
	if l.pending == 0 {
		l.idle.Broadcast()
	}
	l.mu.Unlock()
}

func (l *Loader) fail(location string, err error) {
	l.failed.Add(1)
	lerr := &LoadError{Location: location, Err: err}
	video.Logger().Warn("loader: load failed", "location", location, "err", err)

	l.mu.Lock()
	l.errs = append(l.errs, lerr)
	l.mu.Unlock()
}

// Wait blocks until every load and reload submitted so far has finished.
func (l *Loader) Wait() {
	l.mu.Lock()
	for l.pending > 0 {
		l.idle.Wait()
	}
	l.mu.Unlock()
}

// Errors returns the load failures since the previous call and forgets
// them. Each is a *LoadError.
func (l *Loader) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	errs := l.errs
	l.errs = nil
	return errs
}

// Stats returns the loader counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	pending := l.pending
	l.mu.Unlock()

	return Stats{
		Pending:  pending,
		Loaded:   l.loaded.Load(),
		Failed:   l.failed.Load(),
		Reloaded: l.reloaded.Load(),
		Textures: l.textures.Stats(),
		Meshes:   l.meshes.Stats(),
	}
}

// Close stops watching, finishes queued loads and stops the workers.
// Resources already created stay alive in the Shared.
func (l *Loader) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	l.mu.Lock()
	w := l.watcher
	l.mu.Unlock()
	if w != nil {
		err = w.Close()
		l.watchWG.Wait()
	}

	l.Wait()
	l.pool.Close()
	return err
}
