package video

import (
	"fmt"
)

// Frame is one tick's ordered command list plus the payload arena that
// holds the binary data the commands reference.
//
// Both the command list and the arena have a fixed capacity. The arena
// never reallocates, so slices returned by Bytes stay valid until the frame
// is reset after dispatch.
//
// A Frame is only reachable through FrontFrame.Record and BackFrame, which
// provide the required synchronization.
type Frame struct {
	cmds     []Command
	buf      []byte
	maxCmds  int
	maxBytes int
}

func newFrame(maxCmds, maxBytes int) *Frame {
	return &Frame{
		cmds:     make([]Command, 0, min(maxCmds, 1024)),
		buf:      make([]byte, 0, maxBytes),
		maxCmds:  maxCmds,
		maxBytes: maxBytes,
	}
}

// Push appends a command. It fails with ErrCapacityExceeded when the
// command list is full.
func (f *Frame) Push(cmd Command) error {
	if len(f.cmds) >= f.maxCmds {
		return fmt.Errorf("%w: %d commands recorded, limit is %d",
			ErrCapacityExceeded, len(f.cmds), f.maxCmds)
	}
	f.cmds = append(f.cmds, cmd)
	return nil
}

// Extend copies data into the arena and returns its location. It fails
// with ErrCapacityExceeded, leaving the arena untouched, when data does not
// fit.
func (f *Frame) Extend(data []byte) (BufPtr, error) {
	ptr, dst, err := f.alloc(len(data))
	if err != nil {
		return BufPtr{}, err
	}
	copy(dst, data)
	return ptr, nil
}

// alloc appends n zero bytes to the arena and returns them for the caller
// to fill before the frame is released.
func (f *Frame) alloc(n int) (BufPtr, []byte, error) {
	off := len(f.buf)
	if n > f.maxBytes-off {
		return BufPtr{}, nil, fmt.Errorf("%w: arena holds %d of %d bytes, %d more requested",
			ErrCapacityExceeded, off, f.maxBytes, n)
	}
	f.buf = f.buf[:off+n]
	dst := f.buf[off : off+n : off+n]
	clear(dst)
	return BufPtr{Offset: off, Len: n}, dst, nil
}

// Reserve checks that cmds more commands and bytes more arena bytes fit,
// without appending anything.
func (f *Frame) Reserve(cmds, bytes int) error {
	if cmds > f.maxCmds-len(f.cmds) {
		return fmt.Errorf("%w: %d commands recorded, limit is %d, %d more requested",
			ErrCapacityExceeded, len(f.cmds), f.maxCmds, cmds)
	}
	if bytes > f.maxBytes-len(f.buf) {
		return fmt.Errorf("%w: arena holds %d of %d bytes, %d more requested",
			ErrCapacityExceeded, len(f.buf), f.maxBytes, bytes)
	}
	return nil
}

// Bytes returns the arena bytes at ptr. The result must not be modified.
// A pointer outside the arena yields nil.
func (f *Frame) Bytes(ptr BufPtr) []byte {
	if ptr.Offset < 0 || ptr.Len < 0 || ptr.Offset+ptr.Len > len(f.buf) {
		return nil
	}
	return f.buf[ptr.Offset : ptr.Offset+ptr.Len : ptr.Offset+ptr.Len]
}

// Len returns the number of recorded commands.
func (f *Frame) Len() int { return len(f.cmds) }

// Size returns the number of arena bytes in use.
func (f *Frame) Size() int { return len(f.buf) }

// Commands returns a copy of the recorded commands in append order.
func (f *Frame) Commands() []Command {
	return append([]Command(nil), f.cmds...)
}

// truncate drops every command and arena byte past the given lengths.
func (f *Frame) truncate(cmds, bytes int) {
	clear(f.cmds[cmds:])
	f.cmds = f.cmds[:cmds]
	f.buf = f.buf[:bytes]
}

func (f *Frame) reset() {
	f.truncate(0, 0)
}
