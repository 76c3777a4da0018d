package video

import (
	"sync"
)

// doubleFrame holds the two frames and which of them is front.
type doubleFrame struct {
	mu     sync.Mutex // guards front and all appends to frames[front]
	frames [2]*Frame
	front  int
}

// FrontFrame is the producer view of a double-buffered frame queue. It is
// safe for concurrent use.
type FrontFrame struct {
	d *doubleFrame
}

// BackFrame is the consumer view of a double-buffered frame queue. It must
// be used by a single goroutine.
type BackFrame struct {
	d *doubleFrame
}

// NewDoubleFrame creates two frames of the given capacity and returns the
// producer and consumer views.
func NewDoubleFrame(maxCommands, maxBytes int) (*FrontFrame, *BackFrame) {
	d := &doubleFrame{
		frames: [2]*Frame{
			newFrame(maxCommands, maxBytes),
			newFrame(maxCommands, maxBytes),
		},
	}
	return &FrontFrame{d: d}, &BackFrame{d: d}
}

// Record runs fn with exclusive access to the front frame. If fn returns an
// error, every command and arena byte it appended is discarded.
//
// fn may take registry locks. It must not call Record.
func (f *FrontFrame) Record(fn func(*Frame) error) error {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()

	fr := f.d.frames[f.d.front]
	cmds, bytes := fr.Len(), fr.Size()
	if err := fn(fr); err != nil {
		fr.truncate(cmds, bytes)
		return err
	}
	return nil
}

// Usage returns the number of commands and arena bytes recorded into the
// current front frame.
func (f *FrontFrame) Usage() (cmds, bytes int) {
	f.d.mu.Lock()
	defer f.d.mu.Unlock()
	fr := f.d.frames[f.d.front]
	return fr.Len(), fr.Size()
}

// Swap exchanges the front and back frames.
//
// If the back frame still holds commands that were never dispatched, Swap
// keeps the current roles so that the older commands are dispatched
// first, and reports false.
func (b *BackFrame) Swap() bool {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()

	if back := b.d.frames[b.d.front^1]; back.Len() > 0 {
		Logger().Warn("video: swap skipped, back frame not dispatched",
			"commands", back.Len(), "bytes", back.Size())
		return false
	}
	b.d.front ^= 1
	return true
}

func (b *BackFrame) frame() *Frame {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	return b.d.frames[b.d.front^1]
}

// DispatchStats counts the draws a dispatch forwarded to the backend.
type DispatchStats struct {
	DrawCalls int
	Triangles int
}

// Dispatch forwards the back frame to v in append order and clears it.
//
// Draw commands are resolved through r at dispatch time. A draw whose
// shader or mesh is gone or not yet committed is skipped. The first
// Visitor error stops dispatch and is returned as a *BackendError; the
// remaining commands are dropped and the frame is cleared regardless.
func (b *BackFrame) Dispatch(v Visitor, dims Dimensions, r Resolver) (DispatchStats, error) {
	fr := b.frame()
	defer fr.reset()

	var stats DispatchStats
	if err := v.Begin(); err != nil {
		return stats, &BackendError{Command: CmdBegin, Err: err}
	}

	var bound SurfaceHandle
	for i, cmd := range fr.cmds {
		var err error
		switch c := cmd.(type) {
		case CreateSurfaceCommand:
			err = v.CreateSurface(c.Handle, c.Params)
		case DeleteSurfaceCommand:
			err = v.DeleteSurface(c.Handle)
		case CreateShaderCommand:
			err = v.CreateShader(c.Handle, c.Params, c.VS, c.FS)
		case DeleteShaderCommand:
			err = v.DeleteShader(c.Handle)
		case CreateMeshCommand:
			err = v.CreateMesh(c.Handle, c.Params, c.Data)
		case DeleteMeshCommand:
			err = v.DeleteMesh(c.Handle)
		case UpdateVertexBufferCommand:
			err = v.UpdateVertexBuffer(c.Handle, c.Offset, fr.Bytes(c.Data))
		case UpdateIndexBufferCommand:
			err = v.UpdateIndexBuffer(c.Handle, c.Offset, fr.Bytes(c.Data))
		case CreateTextureCommand:
			err = v.CreateTexture(c.Handle, c.Params, c.Data)
		case UpdateTextureCommand:
			err = v.UpdateTexture(c.Handle, c.Region, fr.Bytes(c.Data))
		case DeleteTextureCommand:
			err = v.DeleteTexture(c.Handle)
		case CreateRenderTextureCommand:
			err = v.CreateRenderTexture(c.Handle, c.Params)
		case DeleteRenderTextureCommand:
			err = v.DeleteRenderTexture(c.Handle)
		case BindCommand:
			bound = c.Surface
			err = v.Bind(c.Surface, dims)
		case UpdateScissorCommand:
			err = v.UpdateScissor(c.Scissor)
		case UpdateViewportCommand:
			err = v.UpdateViewport(c.Viewport)
		case DrawCommand:
			var tris int
			tris, err = dispatchDraw(v, r, fr, bound, c)
			if err == nil && tris >= 0 {
				stats.DrawCalls++
				stats.Triangles += tris
			}
		}

		if err != nil {
			Logger().Warn("video: backend failed, dropping rest of frame",
				"command", cmd.Type(), "dropped", len(fr.cmds)-i-1, "err", err)
			return stats, &BackendError{Command: cmd.Type(), Err: err}
		}
	}

	if err := v.End(); err != nil {
		return stats, &BackendError{Command: CmdEnd, Err: err}
	}
	return stats, nil
}

// dispatchDraw resolves and forwards one draw. It returns -1 when the draw
// was skipped.
func dispatchDraw(v Visitor, r Resolver, fr *Frame, bound SurfaceHandle, c DrawCommand) (int, error) {
	sp, ok := r.Shader(c.Shader)
	if !ok {
		Logger().Debug("video: draw skipped, shader not alive", "shader", c.Shader.Handle)
		return -1, nil
	}
	mp, ok := r.Mesh(c.Mesh)
	if !ok {
		Logger().Debug("video: draw skipped, mesh not ready", "mesh", c.Mesh.Handle)
		return -1, nil
	}
	from, count, ok := c.Index.Resolve(&mp)
	if !ok {
		Logger().Debug("video: draw skipped, index range outside mesh", "mesh", c.Mesh.Handle)
		return -1, nil
	}

	inv := DrawInvocation{
		Surface:      bound,
		Shader:       c.Shader,
		ShaderParams: sp,
		Mesh:         c.Mesh,
		MeshParams:   mp,
		From:         from,
		Count:        count,
		Uniforms:     fr.Bytes(c.Uniforms),
	}
	if err := v.Draw(&inv); err != nil {
		return -1, err
	}
	return Triangles(mp.Primitive, count), nil
}
