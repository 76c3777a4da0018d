// Package video provides the rendering command pipeline of the GoGPU engine.
//
// # Overview
//
// video decouples the goroutines that produce rendering work (game logic,
// asset loaders) from the single goroutine that owns the native graphics
// context. Producers talk to a [Shared] facade which records resource
// lifecycle and draw commands into the front half of a double-buffered
// frame queue. Once per tick the owner of the graphics context calls
// [System.Advance], which swaps the buffers and replays the back frame
// against a [Visitor] backend.
//
// # Quick Start
//
//	sys := video.New(headless.New())
//	defer sys.Close()
//
//	shared := sys.Shared()
//
//	// Any goroutine:
//	surface, _ := shared.CreateSurface(video.DefaultSurfaceParams())
//	mesh, _ := shared.CreateMesh(params, data)
//
//	dc := video.NewDrawCall(shader, mesh).
//		SetUniform("u_Color", mgl32.Vec4{1, 0, 0, 1})
//	_ = shared.Draw(surface, dc)
//
//	// Graphics goroutine, once per tick:
//	info, err := sys.Advance(video.Dimensions{Width: 800, Height: 600})
//
// # Handles
//
// Every resource is addressed by a typed handle ([SurfaceHandle],
// [ShaderHandle], [MeshHandle], [TextureHandle], [RenderTextureHandle])
// wrapping an {index, generation} pair. A slot reused after a delete always
// carries a new generation, so stale handles are detected structurally and
// never alias a newer resource.
//
// # Streaming resources
//
// Meshes and textures can be reserved before their payload exists
// ([Shared.ReserveMesh], [Shared.ReserveTexture]). The handle is usable as a
// reference immediately; queries report "unavailable" until the loader calls
// the matching Commit method, which validates the payload, records the
// creation command and publishes the parameters in one step.
//
// # Frame capacity
//
// Both the command list and the payload arena of a frame are bounded.
// Recording past either bound fails with [ErrCapacityExceeded]; the frame is
// left exactly as it was before the failing call.
package video

// Version information
const (
	// Version is the current version of the library
	Version = "0.4.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 4

	// VersionPatch is the patch version
	VersionPatch = 0
)
