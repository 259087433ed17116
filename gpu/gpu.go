// Package gpu defines the graphics backend contract consumed by glshade.
//
// The interface mirrors the subset of OpenGL 3.3 core / GLES 3.0 that shader
// program management and vertex attribute binding need. Handles are opaque
// integers owned by whoever created them; glshade never hands them out.
//
// The only production implementation lives in backend/opengl. Tests use the
// in-memory device from gpu/gputest.
package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Shader is a backend shader stage handle.
type Shader uint32

// Program is a backend program handle.
type Program uint32

// Buffer is a backend buffer object handle.
type Buffer uint32

// StageKind identifies a shader stage.
type StageKind uint8

const (
	// VertexStage runs once per vertex.
	VertexStage StageKind = iota
	// FragmentStage runs once per fragment.
	FragmentStage
)

// Suffix returns the filename extension used for stage sources.
func (k StageKind) Suffix() string {
	switch k {
	case VertexStage:
		return "vert"
	case FragmentStage:
		return "frag"
	default:
		return fmt.Sprintf("stage%d", uint8(k))
	}
}

// String returns the stage name.
func (k StageKind) String() string {
	switch k {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("StageKind(%d)", uint8(k))
	}
}

// Filename returns the logical source filename for name in this stage,
// for example "shape.vert".
func (k StageKind) Filename(name string) string {
	return name + "." + k.Suffix()
}

// ScalarType is the component type of a vertex attribute.
type ScalarType uint8

const (
	// Float components are read as 32-bit floats.
	Float ScalarType = iota
	// Int components are read as signed 32-bit integers.
	Int
)

// String returns the GLSL scalar name.
func (s ScalarType) String() string {
	switch s {
	case Float:
		return "float"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("ScalarType(%d)", uint8(s))
	}
}

// Size returns the component size in bytes.
func (s ScalarType) Size() int { return 4 }

// VertexPointer describes how a bound buffer feeds one attribute slot.
type VertexPointer struct {
	Components int
	Scalar     ScalarType
	Normalized bool
	Stride     int
	Offset     int
}

// Device is the GPU backend used by glshade and the buffer package.
//
// Query methods return -1 for names the linked program does not expose
// (optimized away or never declared).
type Device interface {
	CreateShader(kind StageKind) (Shader, error)
	ShaderSource(s Shader, source string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() (Program, error)
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)

	AttribLocation(p Program, name string) int32
	UniformBlockIndex(p Program, name string) int32
	UniformBlockBinding(p Program, block, binding uint32)

	EnableVertexAttrib(index uint32)
	DisableVertexAttrib(index uint32)
	VertexAttribDivisor(index, divisor uint32)
	VertexAttribPointer(index uint32, ptr VertexPointer)

	CreateBuffer() (Buffer, error)
	BindBuffer(usage gputypes.BufferUsage, b Buffer)
	BufferData(usage gputypes.BufferUsage, data []byte, dynamic bool)
	BufferAlloc(usage gputypes.BufferUsage, size int, dynamic bool)
	BufferSubData(usage gputypes.BufferUsage, offset int, data []byte)
	BindBufferBase(usage gputypes.BufferUsage, index uint32, b Buffer)
	DeleteBuffer(b Buffer)
}
