package video

// Visitor executes dispatched commands against a graphics backend.
//
// Dispatch calls Begin, then one method per command in append order, then
// End, all from the goroutine that drives the System. Slices passed to a
// Visitor point into the frame arena and are only valid until the method
// returns.
//
// Any returned error aborts the frame and is reported as a BackendError.
type Visitor interface {
	// Resize is called before dispatch when the default framebuffer
	// dimensions changed since the previous tick.
	Resize(dims Dimensions) error

	Begin() error
	End() error

	CreateSurface(h SurfaceHandle, p SurfaceParams) error
	DeleteSurface(h SurfaceHandle) error

	CreateShader(h ShaderHandle, p ShaderParams, vs, fs string) error
	DeleteShader(h ShaderHandle) error

	CreateMesh(h MeshHandle, p MeshParams, data *MeshData) error
	UpdateVertexBuffer(h MeshHandle, offset int, data []byte) error
	UpdateIndexBuffer(h MeshHandle, offset int, data []byte) error
	DeleteMesh(h MeshHandle) error

	CreateTexture(h TextureHandle, p TextureParams, data *TextureData) error
	UpdateTexture(h TextureHandle, region TextureRegion, data []byte) error
	DeleteTexture(h TextureHandle) error

	CreateRenderTexture(h RenderTextureHandle, p RenderTextureParams) error
	DeleteRenderTexture(h RenderTextureHandle) error

	// Bind makes h the target of subsequent draw and state commands.
	Bind(h SurfaceHandle, dims Dimensions) error
	UpdateScissor(s SurfaceScissor) error
	UpdateViewport(v SurfaceViewport) error

	Draw(inv *DrawInvocation) error
}

// DrawInvocation is a draw command with its handles resolved at dispatch
// time.
type DrawInvocation struct {
	Surface      SurfaceHandle
	Shader       ShaderHandle
	ShaderParams ShaderParams
	Mesh         MeshHandle
	MeshParams   MeshParams

	// From and Count select the index range to draw.
	From, Count int

	// Uniforms is the encoded uniform block laid out by
	// ShaderParams.Uniforms. Decode values with DecodeUniform.
	Uniforms []byte
}

// Resolver looks up the committed params of the resources a draw
// references. *Shared implements Resolver.
type Resolver interface {
	Shader(h ShaderHandle) (ShaderParams, bool)
	Mesh(h MeshHandle) (MeshParams, bool)
}

// NopVisitor implements Visitor by accepting every command. Embed it to
// implement only the methods a backend cares about.
type NopVisitor struct{}

var _ Visitor = NopVisitor{}

func (NopVisitor) Resize(Dimensions) error                          { return nil }
func (NopVisitor) Begin() error                                     { return nil }
func (NopVisitor) End() error                                       { return nil }
func (NopVisitor) CreateSurface(SurfaceHandle, SurfaceParams) error { return nil }
func (NopVisitor) DeleteSurface(SurfaceHandle) error                { return nil }
func (NopVisitor) CreateShader(ShaderHandle, ShaderParams, string, string) error {
	return nil
}
func (NopVisitor) DeleteShader(ShaderHandle) error                                { return nil }
func (NopVisitor) CreateMesh(MeshHandle, MeshParams, *MeshData) error             { return nil }
func (NopVisitor) UpdateVertexBuffer(MeshHandle, int, []byte) error               { return nil }
func (NopVisitor) UpdateIndexBuffer(MeshHandle, int, []byte) error                { return nil }
func (NopVisitor) DeleteMesh(MeshHandle) error                                    { return nil }
func (NopVisitor) CreateTexture(TextureHandle, TextureParams, *TextureData) error { return nil }
func (NopVisitor) UpdateTexture(TextureHandle, TextureRegion, []byte) error       { return nil }
func (NopVisitor) DeleteTexture(TextureHandle) error                              { return nil }
func (NopVisitor) CreateRenderTexture(RenderTextureHandle, RenderTextureParams) error {
	return nil
}
func (NopVisitor) DeleteRenderTexture(RenderTextureHandle) error { return nil }
func (NopVisitor) Bind(SurfaceHandle, Dimensions) error          { return nil }
func (NopVisitor) UpdateScissor(SurfaceScissor) error            { return nil }
func (NopVisitor) UpdateViewport(SurfaceViewport) error          { return nil }
func (NopVisitor) Draw(*DrawInvocation) error                    { return nil }
