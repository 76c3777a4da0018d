package video

import (
	"bytes"
	"errors"
	"testing"
)

func TestFramePushCapacity(t *testing.T) {
	f := newFrame(2, 16)

	for i := 0; i < 2; i++ {
		if err := f.Push(BindCommand{}); err != nil {
			t.Fatalf("Push %d = %v", i, err)
		}
	}
	err := f.Push(BindCommand{})
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Push past capacity = %v, want ErrCapacityExceeded", err)
	}
	if f.Len() != 2 {
		t.Errorf("Len() = %d, want 2", f.Len())
	}
}

func TestFrameArenaOverflowKeepsEarlierEntries(t *testing.T) {
	f := newFrame(8, 10)

	first, err := f.Extend([]byte("hello"))
	if err != nil {
		t.Fatalf("Extend = %v", err)
	}

	_, err = f.Extend([]byte("world!"))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Extend past capacity = %v, want ErrCapacityExceeded", err)
	}
	if f.Size() != 5 {
		t.Errorf("Size() = %d after failed Extend, want 5", f.Size())
	}
	if got := f.Bytes(first); !bytes.Equal(got, []byte("hello")) {
		t.Errorf("earlier entry corrupted: %q", got)
	}

	// Exactly filling the arena succeeds.
	if _, err := f.Extend([]byte("12345")); err != nil {
		t.Errorf("Extend to exact capacity = %v", err)
	}
}

func TestFrameBytesAreStable(t *testing.T) {
	f := newFrame(8, 64)
	src := []byte{1, 2, 3}

	ptr, _ := f.Extend(src)
	src[0] = 9 // caller reuses its buffer

	got := f.Bytes(ptr)
	if got[0] != 1 {
		t.Error("arena aliases the caller's buffer")
	}
	if cap(got) != len(got) {
		t.Error("Bytes result can be appended into the arena")
	}
	if f.Bytes(BufPtr{Offset: 2, Len: 5}) != nil {
		t.Error("out of range pointer returned bytes")
	}
}

func TestFrameReserve(t *testing.T) {
	f := newFrame(2, 4)
	if err := f.Reserve(2, 4); err != nil {
		t.Errorf("Reserve(2, 4) = %v", err)
	}
	if err := f.Reserve(3, 0); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Reserve(3, 0) = %v", err)
	}
	if err := f.Reserve(0, 5); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("Reserve(0, 5) = %v", err)
	}
	if f.Len() != 0 || f.Size() != 0 {
		t.Error("Reserve modified the frame")
	}
}

func TestRecordRollsBackOnError(t *testing.T) {
	front, _ := NewDoubleFrame(8, 32)

	if err := front.Record(func(f *Frame) error {
		_, err := f.Extend([]byte("keep"))
		if err != nil {
			return err
		}
		return f.Push(BindCommand{})
	}); err != nil {
		t.Fatalf("Record = %v", err)
	}

	boom := errors.New("boom")
	err := front.Record(func(f *Frame) error {
		f.Extend([]byte("drop"))
		f.Push(BindCommand{})
		f.Push(BindCommand{})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Record = %v, want boom", err)
	}

	cmds, size := front.Usage()
	if cmds != 1 || size != 4 {
		t.Errorf("Usage() = %d, %d after rollback, want 1, 4", cmds, size)
	}
}

func TestSwapExchangesFrames(t *testing.T) {
	front, back := NewDoubleFrame(8, 32)

	front.Record(func(f *Frame) error { return f.Push(BindCommand{}) })
	if !back.Swap() {
		t.Fatal("Swap() = false with an empty back frame")
	}
	if cmds, _ := front.Usage(); cmds != 0 {
		t.Errorf("front has %d commands after swap, want 0", cmds)
	}

	// The undispatched back frame blocks the next swap.
	front.Record(func(f *Frame) error { return f.Push(BindCommand{}) })
	if back.Swap() {
		t.Error("Swap() = true while back frame holds undispatched commands")
	}

	v := &recordingVisitor{}
	if _, err := back.Dispatch(v, Dimensions{}, nopResolver{}); err != nil {
		t.Fatalf("Dispatch = %v", err)
	}
	if got := len(v.types()); got != 1 {
		t.Errorf("dispatched %d commands, want 1", got)
	}
	if !back.Swap() {
		t.Error("Swap() = false after dispatch")
	}
}

func TestDispatchBackendErrorClearsFrame(t *testing.T) {
	front, back := NewDoubleFrame(8, 32)
	front.Record(func(f *Frame) error {
		f.Push(CreateSurfaceCommand{})
		f.Push(DeleteSurfaceCommand{})
		return f.Push(CreateShaderCommand{})
	})
	back.Swap()

	v := &recordingVisitor{failOn: CmdDeleteSurface}
	_, err := back.Dispatch(v, Dimensions{}, nopResolver{})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("Dispatch = %v, want *BackendError", err)
	}
	if be.Command != CmdDeleteSurface {
		t.Errorf("BackendError.Command = %s, want DeleteSurface", be.Command)
	}
	if !errors.Is(err, ErrBackend) || !errors.Is(err, errInjected) {
		t.Error("BackendError does not match ErrBackend and the cause")
	}
	if got := v.types(); len(got) != 2 {
		t.Errorf("visitor saw %v, want the two commands up to the failure", got)
	}
	if back.frame().Len() != 0 {
		t.Error("back frame not cleared after failed dispatch")
	}
}

type nopResolver struct{}

func (nopResolver) Shader(ShaderHandle) (ShaderParams, bool) { return ShaderParams{}, false }
func (nopResolver) Mesh(MeshHandle) (MeshParams, bool)       { return MeshParams{}, false }

func TestCommandTypeString(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CreateSurfaceCommand{}, "CreateSurface"},
		{UpdateVertexBufferCommand{}, "UpdateVertexBuffer"},
		{DeleteRenderTextureCommand{}, "DeleteRenderTexture"},
		{DrawCommand{}, "Draw"},
		{UpdateViewportCommand{}, "UpdateViewport"},
	}
	for _, tt := range tests {
		if got := tt.cmd.Type().String(); got != tt.want {
			t.Errorf("%T.Type() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
	if got := CommandType(200).String(); got != "Unknown" {
		t.Errorf("CommandType(200) = %q", got)
	}
}
