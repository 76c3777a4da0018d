package video

// CommandType identifies the kind of a Command.
type CommandType uint8

const (
	// CmdBegin, CmdEnd and CmdResize are not recorded. They tag backend
	// failures in the frame prologue, the epilogue and the resize that
	// precedes a frame.
	CmdBegin CommandType = iota
	CmdEnd
	CmdResize

	// Surface commands
	CmdCreateSurface
	CmdDeleteSurface

	// Shader commands
	CmdCreateShader
	CmdDeleteShader

	// Mesh commands
	CmdCreateMesh
	CmdDeleteMesh
	CmdUpdateVertexBuffer
	CmdUpdateIndexBuffer

	// Texture commands
	CmdCreateTexture
	CmdUpdateTexture
	CmdDeleteTexture
	CmdCreateRenderTexture
	CmdDeleteRenderTexture

	// Drawing commands
	CmdBind
	CmdDraw
	CmdUpdateScissor
	CmdUpdateViewport
)

var commandTypeNames = [...]string{
	CmdBegin:               "Begin",
	CmdEnd:                 "End",
	CmdResize:              "Resize",
	CmdCreateSurface:       "CreateSurface",
	CmdDeleteSurface:       "DeleteSurface",
	CmdCreateShader:        "CreateShader",
	CmdDeleteShader:        "DeleteShader",
	CmdCreateMesh:          "CreateMesh",
	CmdDeleteMesh:          "DeleteMesh",
	CmdUpdateVertexBuffer:  "UpdateVertexBuffer",
	CmdUpdateIndexBuffer:   "UpdateIndexBuffer",
	CmdCreateTexture:       "CreateTexture",
	CmdUpdateTexture:       "UpdateTexture",
	CmdDeleteTexture:       "DeleteTexture",
	CmdCreateRenderTexture: "CreateRenderTexture",
	CmdDeleteRenderTexture: "DeleteRenderTexture",
	CmdBind:                "Bind",
	CmdDraw:                "Draw",
	CmdUpdateScissor:       "UpdateScissor",
	CmdUpdateViewport:      "UpdateViewport",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded operation of a frame.
//
// The set of commands is closed: only the types in this package implement
// Command, and dispatch handles each of them explicitly.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	command()
}

// BufPtr addresses a byte range of a frame's payload arena.
type BufPtr struct {
	Offset int
	Len    int
}

// --------------------------------------------------------------------------
// Surface Commands
// --------------------------------------------------------------------------

// CreateSurfaceCommand creates a surface.
type CreateSurfaceCommand struct {
	Handle SurfaceHandle
	Params SurfaceParams
}

// DeleteSurfaceCommand deletes a surface.
type DeleteSurfaceCommand struct {
	Handle SurfaceHandle
}

// --------------------------------------------------------------------------
// Shader Commands
// --------------------------------------------------------------------------

// CreateShaderCommand creates a shader from vertex and fragment sources.
type CreateShaderCommand struct {
	Handle ShaderHandle
	Params ShaderParams
	VS, FS string
}

// DeleteShaderCommand deletes a shader.
type DeleteShaderCommand struct {
	Handle ShaderHandle
}

// --------------------------------------------------------------------------
// Mesh Commands
// --------------------------------------------------------------------------

// CreateMeshCommand creates a mesh. Data is nil for meshes created empty.
type CreateMeshCommand struct {
	Handle MeshHandle
	Params MeshParams
	Data   *MeshData
}

// DeleteMeshCommand deletes a mesh.
type DeleteMeshCommand struct {
	Handle MeshHandle
}

// UpdateVertexBufferCommand replaces bytes of a mesh's vertex buffer
// starting at Offset.
type UpdateVertexBufferCommand struct {
	Handle MeshHandle
	Offset int
	Data   BufPtr
}

// UpdateIndexBufferCommand replaces bytes of a mesh's index buffer
// starting at Offset.
type UpdateIndexBufferCommand struct {
	Handle MeshHandle
	Offset int
	Data   BufPtr
}

// --------------------------------------------------------------------------
// Texture Commands
// --------------------------------------------------------------------------

// CreateTextureCommand creates a texture. Data is nil for textures created
// empty.
type CreateTextureCommand struct {
	Handle TextureHandle
	Params TextureParams
	Data   *TextureData
}

// UpdateTextureCommand replaces a region of mip level 0.
type UpdateTextureCommand struct {
	Handle TextureHandle
	Region TextureRegion
	Data   BufPtr
}

// DeleteTextureCommand deletes a texture.
type DeleteTextureCommand struct {
	Handle TextureHandle
}

// CreateRenderTextureCommand creates a render texture.
type CreateRenderTextureCommand struct {
	Handle RenderTextureHandle
	Params RenderTextureParams
}

// DeleteRenderTextureCommand deletes a render texture.
type DeleteRenderTextureCommand struct {
	Handle RenderTextureHandle
}

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// BindCommand makes a surface the target of the commands that follow.
type BindCommand struct {
	Surface SurfaceHandle
}

// DrawCommand draws a mesh range with a shader on the bound surface.
type DrawCommand struct {
	Shader   ShaderHandle
	Mesh     MeshHandle
	Index    MeshIndex
	Uniforms BufPtr
}

// UpdateScissorCommand sets the scissor test of the bound surface.
type UpdateScissorCommand struct {
	Scissor SurfaceScissor
}

// UpdateViewportCommand sets the viewport of the bound surface.
type UpdateViewportCommand struct {
	Viewport SurfaceViewport
}

// Type implements Command.
func (CreateSurfaceCommand) Type() CommandType       { return CmdCreateSurface }
func (DeleteSurfaceCommand) Type() CommandType       { return CmdDeleteSurface }
func (CreateShaderCommand) Type() CommandType        { return CmdCreateShader }
func (DeleteShaderCommand) Type() CommandType        { return CmdDeleteShader }
func (CreateMeshCommand) Type() CommandType          { return CmdCreateMesh }
func (DeleteMeshCommand) Type() CommandType          { return CmdDeleteMesh }
func (UpdateVertexBufferCommand) Type() CommandType  { return CmdUpdateVertexBuffer }
func (UpdateIndexBufferCommand) Type() CommandType   { return CmdUpdateIndexBuffer }
func (CreateTextureCommand) Type() CommandType       { return CmdCreateTexture }
func (UpdateTextureCommand) Type() CommandType       { return CmdUpdateTexture }
func (DeleteTextureCommand) Type() CommandType       { return CmdDeleteTexture }
func (CreateRenderTextureCommand) Type() CommandType { return CmdCreateRenderTexture }
func (DeleteRenderTextureCommand) Type() CommandType { return CmdDeleteRenderTexture }
func (BindCommand) Type() CommandType                { return CmdBind }
func (DrawCommand) Type() CommandType                { return CmdDraw }
func (UpdateScissorCommand) Type() CommandType       { return CmdUpdateScissor }
func (UpdateViewportCommand) Type() CommandType      { return CmdUpdateViewport }

func (CreateSurfaceCommand) command()       {}
func (DeleteSurfaceCommand) command()       {}
func (CreateShaderCommand) command()        {}
func (DeleteShaderCommand) command()        {}
func (CreateMeshCommand) command()          {}
func (DeleteMeshCommand) command()          {}
func (UpdateVertexBufferCommand) command()  {}
func (UpdateIndexBufferCommand) command()   {}
func (CreateTextureCommand) command()       {}
func (UpdateTextureCommand) command()       {}
func (DeleteTextureCommand) command()       {}
func (CreateRenderTextureCommand) command() {}
func (DeleteRenderTextureCommand) command() {}
func (BindCommand) command()                {}
func (DrawCommand) command()                {}
func (UpdateScissorCommand) command()       {}
func (UpdateViewportCommand) command()      {}
