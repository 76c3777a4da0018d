package hal

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/video"
	"github.com/gogpu/wgpu/hal"
)

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V output is %d bytes, not a whole number of words", len(spirv))
	}

	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

func (v *Visitor) createModule(label, source string) (hal.ShaderModule, error) {
	spirv, err := compileWGSL(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderCompile, label, err)
	}
	module, err := v.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("hal: create %s: %w", label, err)
	}
	return module, nil
}

// CreateShader implements video.Visitor. vs and fs are WGSL sources.
func (v *Visitor) CreateShader(h video.ShaderHandle, p video.ShaderParams, vs, fs string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.shaders[h]; ok {
		return fmt.Errorf("hal: shader %s already resident", h.Handle)
	}

	vsm, err := v.createModule("video_vs_"+h.String(), vs)
	if err != nil {
		return err
	}
	fsm, err := v.createModule("video_fs_"+h.String(), fs)
	if err != nil {
		v.device.DestroyShaderModule(vsm)
		return err
	}
	v.shaders[h] = &shaderModules{params: p, vs: vsm, fs: fsm}
	return nil
}

// DeleteShader implements video.Visitor.
func (v *Visitor) DeleteShader(h video.ShaderHandle) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.shaders[h]
	if !ok {
		return notResident("shader", h.Handle)
	}
	v.destroyShader(s)
	delete(v.shaders, h)
	return nil
}

func (v *Visitor) destroyShader(s *shaderModules) {
	v.device.DestroyShaderModule(s.vs)
	v.device.DestroyShaderModule(s.fs)
}

// ShaderModules returns the vertex and fragment modules of a resident
// shader.
func (v *Visitor) ShaderModules(h video.ShaderHandle) (vs, fs hal.ShaderModule, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.shaders[h]
	if !ok {
		return nil, nil, false
	}
	return s.vs, s.fs, true
}
