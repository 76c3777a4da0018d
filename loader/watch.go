package loader

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/video"
)

// Watch reloads textures whose files under dir change. A reload decodes
// the file again and records texture updates for mip level 0, so the
// texture keeps its handle. The new image must have the same size, and
// textures must have been loaded with a hint other than
// BufferHintImmutable.
//
// Watch may be called for several directories.
func (l *Loader) Watch(dir string) error {
	if l.closed.Load() {
		return ErrClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("loader: watch: %w", err)
		}
		l.watcher = w
		l.watchWG.Add(1)
		go l.watch(w)
	}
	if err := l.watcher.Add(dir); err != nil {
		return fmt.Errorf("loader: watch %s: %w", dir, err)
	}
	video.Logger().Info("loader: watching", "dir", dir)
	return nil
}

func (l *Loader) watch(w *fsnotify.Watcher) {
	defer l.watchWG.Done()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			k := key(ev.Name)
			h, ok := l.textures.Peek(k)
			if !ok {
				continue
			}
			l.submit(func() { l.reloadTexture(k, h) })
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			video.Logger().Warn("loader: watch error", "err", err)
		}
	}
}

func (l *Loader) reloadTexture(location string, h video.TextureHandle) {
	current, ok := l.shared.Texture(h)
	if !ok {
		// Still loading or already gone.
		return
	}
	if current.Hint == video.BufferHintImmutable {
		video.Logger().Warn("loader: immutable texture not reloaded", "location", location)
		return
	}

	img, err := decodeImage(location, l.opts.maxSize)
	if err != nil {
		// Editors often write a file in several steps; the next event
		// retries.
		video.Logger().Debug("loader: reload decode failed", "location", location, "err", err)
		return
	}
	w, ht := uint32(img.Rect.Dx()), uint32(img.Rect.Dy()) // #nosec G115 -- image bounds are positive
	if w != current.Width || ht != current.Height {
		video.Logger().Warn("loader: reloaded texture changed size",
			"location", location, "was", [2]uint32{current.Width, current.Height}, "now", [2]uint32{w, ht})
		return
	}

	if err := l.updateRows(h, img.Pix, w, ht); err != nil {
		l.fail(location, err)
		return
	}
	l.reloaded.Add(1)
	video.Logger().Debug("loader: texture reloaded", "location", location)
}

// updateRows records pix as a series of row bands of at most the update
// chunk size each.
func (l *Loader) updateRows(h video.TextureHandle, pix []byte, width, height uint32) error {
	stride := int(width) * 4
	rows := max(l.opts.updateChunk/stride, 1)

	for y := 0; y < int(height); y += rows {
		n := min(rows, int(height)-y)
		region := video.TextureRegion{
			Y:      uint32(y), // #nosec G115
			Width:  width,
			Height: uint32(n), // #nosec G115
		}
		if err := l.shared.UpdateTexture(h, region, pix[y*stride:(y+n)*stride]); err != nil {
			return err
		}
	}
	return nil
}
