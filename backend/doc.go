// Package backend is the registry of video.Visitor implementations.
//
// Backends register a Factory from init(), following the database/sql
// driver pattern, and are opened by name:
//
//	import _ "github.com/gogpu/video/backend/headless"
//
//	v, err := backend.New("headless", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sys := video.New(v)
//
// # Available Backends
//
//   - "headless": in-memory residency tracking, no GPU (backend/headless)
//   - "hal": wgpu HAL buffers, textures and shader modules (backend/hal)
package backend

import "errors"

// ErrUnknownBackend is returned by New for names nobody registered.
var ErrUnknownBackend = errors.New("backend: unknown backend")
