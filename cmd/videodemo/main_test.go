package main

import (
	"context"
	"testing"

	"github.com/gogpu/video"
	"github.com/gogpu/video/backend/headless"
)

func TestDriveHeadless(t *testing.T) {
	v := headless.New()
	sys := video.New(v)
	defer sys.Close()

	sc, err := newScene(sys.Shared())
	if err != nil {
		t.Fatalf("newScene = %v", err)
	}
	if err := drive(context.Background(), sys, sc, nil, 2, 5, 200); err != nil {
		t.Fatalf("drive = %v", err)
	}

	// Producers delete their meshes on exit; one more frame drains them.
	if _, err := sys.Advance(sys.Dimensions()); err != nil {
		t.Fatalf("Advance = %v", err)
	}
	if got := v.Resident().Meshes; got != 1 {
		t.Errorf("resident meshes = %d, want only the shared quad", got)
	}
	if got := v.Resident().Shaders; got != 2 {
		t.Errorf("resident shaders = %d, want 2", got)
	}
}

func TestOpenBackend(t *testing.T) {
	for _, name := range []string{"headless", "hal"} {
		vis, closeDevice, err := openBackend(name)
		if err != nil {
			t.Fatalf("openBackend(%q) = %v", name, err)
		}
		if c, ok := vis.(interface{ Close() error }); ok {
			_ = c.Close()
		}
		closeDevice()
	}
	if _, _, err := openBackend("vulkan"); err == nil {
		t.Error("openBackend(vulkan) succeeded")
	}
}

func TestTriangleGeometry(t *testing.T) {
	if got := len(triangle(0, 1)); got != 36 {
		t.Errorf("len(triangle) = %d, want 36", got)
	}
	p, d := quad()
	if len(d.VPtr) != p.VertexBufferLen() || len(d.IPtr) != p.IndexBufferLen() {
		t.Errorf("quad data %d/%d bytes, want %d/%d",
			len(d.VPtr), len(d.IPtr), p.VertexBufferLen(), p.IndexBufferLen())
	}
}
