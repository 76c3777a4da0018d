package video

import (
	"strings"
	"unicode"

	"github.com/gogpu/gputypes"
)

// AttributeLayoutElement is one vertex input a shader consumes.
type AttributeLayoutElement struct {
	Name Attribute
	Size uint8 // components, 1..4
}

// AttributeLayout lists the vertex attributes a shader consumes.
type AttributeLayout struct {
	elements []AttributeLayoutElement
}

// NewAttributeLayout starts an empty attribute layout.
func NewAttributeLayout() *AttributeLayoutBuilder {
	return &AttributeLayoutBuilder{}
}

// Len returns the number of attributes.
func (l AttributeLayout) Len() int { return len(l.elements) }

// Elements returns a copy of the attributes.
func (l AttributeLayout) Elements() []AttributeLayoutElement {
	return append([]AttributeLayoutElement(nil), l.elements...)
}

// Contains reports whether the layout declares a.
func (l AttributeLayout) Contains(a Attribute) bool {
	for _, e := range l.elements {
		if e.Name == a {
			return true
		}
	}
	return false
}

// AttributeLayoutBuilder accumulates shader attributes.
type AttributeLayoutBuilder struct {
	elements []AttributeLayoutElement
}

// With declares attribute a with size components, replacing an earlier
// declaration of a.
func (b *AttributeLayoutBuilder) With(a Attribute, size uint8) *AttributeLayoutBuilder {
	for i := range b.elements {
		if b.elements[i].Name == a {
			b.elements[i].Size = size
			return b
		}
	}
	b.elements = append(b.elements, AttributeLayoutElement{Name: a, Size: size})
	return b
}

// Finish returns the layout.
func (b *AttributeLayoutBuilder) Finish() AttributeLayout {
	return AttributeLayout{elements: append([]AttributeLayoutElement(nil), b.elements...)}
}

// RenderState is the fixed-function pipeline state of a shader.
type RenderState struct {
	CullMode     gputypes.CullMode
	FrontFace    gputypes.FrontFace
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool

	// Blend is nil for opaque rendering.
	Blend      *gputypes.BlendState
	ColorWrite gputypes.ColorWriteMask
}

// DefaultRenderState returns an opaque state without culling or depth test.
func DefaultRenderState() RenderState {
	return RenderState{
		CullMode:     gputypes.CullModeNone,
		FrontFace:    gputypes.FrontFaceCCW,
		DepthCompare: gputypes.CompareFunctionAlways,
		ColorWrite:   gputypes.ColorWriteMaskAll,
	}
}

// ShaderParams describes the inputs and pipeline state of a shader.
type ShaderParams struct {
	Attributes AttributeLayout
	Uniforms   UniformVariableLayout
	State      RenderState
}

// DefaultShaderParams returns params with the default render state and no
// attributes or uniforms.
func DefaultShaderParams() ShaderParams {
	return ShaderParams{State: DefaultRenderState()}
}

func (p ShaderParams) clone() ShaderParams {
	if p.State.Blend != nil {
		b := *p.State.Blend
		p.State.Blend = &b
	}
	return p
}

// validate checks the declared layouts against the identifiers referenced
// by the sources. Sources are not compiled.
func (p *ShaderParams) validate(vs, fs string) error {
	if strings.TrimSpace(vs) == "" || strings.TrimSpace(fs) == "" {
		return validationErrorf("shader source is empty")
	}
	if p.Attributes.Len() == 0 {
		return validationErrorf("shader declares no vertex attributes")
	}

	vsIdents := identifiers(vs)
	fsIdents := identifiers(fs)

	for _, e := range p.Attributes.elements {
		if e.Size == 0 || e.Size > 4 {
			return validationErrorf("attribute %s has %d components", e.Name, e.Size)
		}
		if _, ok := vsIdents[e.Name.String()]; !ok {
			return validationErrorf("attribute %s is not referenced by the vertex shader", e.Name)
		}
	}

	names := make(map[string]struct{}, len(p.Uniforms.vars))
	for _, v := range p.Uniforms.vars {
		if _, dup := names[v.Name]; dup {
			return validationErrorf("uniform %q declared twice", v.Name)
		}
		names[v.Name] = struct{}{}

		base := uniformBaseName(v.Name)
		_, inVS := vsIdents[base]
		_, inFS := fsIdents[base]
		if !inVS && !inFS {
			return validationErrorf("uniform %q is not referenced by either shader", v.Name)
		}
	}
	return nil
}

// uniformBaseName strips array subscripts and member selectors, so
// "u_Lights[0].color" becomes "u_Lights".
func uniformBaseName(name string) string {
	if i := strings.IndexAny(name, "[."); i >= 0 {
		return name[:i]
	}
	return name
}

// identifiers returns the set of identifier tokens in src.
func identifiers(src string) map[string]struct{} {
	fields := strings.FieldsFunc(src, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if r := rune(f[0]); unicode.IsDigit(r) {
			continue
		}
		set[f] = struct{}{}
	}
	return set
}
