// Package opengl implements gpu.Device on OpenGL 3.3 core.
//
// Every method issues GL calls on the context current on the calling
// thread. Callers lock the render goroutine to its OS thread
// (runtime.LockOSThread) before creating the window.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/gpu"
)

// Device issues gpu.Device commands to the current GL context.
type Device struct {
	vao uint32
}

// New loads the GL entry points and binds a vertex array object, which the
// core profile requires before any attribute state is set.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	d := &Device{}
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	return d, nil
}

// Version returns the GL_VERSION string of the current context.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Close deletes the vertex array object.
func (d *Device) Close() {
	if d.vao != 0 {
		gl.BindVertexArray(0)
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func stageType(kind gpu.StageKind) uint32 {
	if kind == gpu.FragmentStage {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func scalarType(s gpu.ScalarType) uint32 {
	if s == gpu.Int {
		return gl.INT
	}
	return gl.FLOAT
}

func target(usage gputypes.BufferUsage) uint32 {
	switch usage {
	case gputypes.BufferUsageIndex:
		return gl.ELEMENT_ARRAY_BUFFER
	case gputypes.BufferUsageUniform:
		return gl.UNIFORM_BUFFER
	case gputypes.BufferUsageVertex:
		return gl.ARRAY_BUFFER
	}
	panic(fmt.Sprintf("%v: %v", ErrUsage, usage))
}

func drawHint(dynamic bool) uint32 {
	if dynamic {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

// CreateShader implements gpu.Device.
func (d *Device) CreateShader(kind gpu.StageKind) (gpu.Shader, error) {
	s := gl.CreateShader(stageType(kind))
	if s == 0 {
		return 0, fmt.Errorf("%w: %s shader (GL error 0x%x)", ErrCreate, kind, gl.GetError())
	}
	return gpu.Shader(s), nil
}

// ShaderSource implements gpu.Device.
func (d *Device) ShaderSource(s gpu.Shader, source string) {
	csrc, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(uint32(s), 1, csrc, nil)
}

// CompileShader implements gpu.Device.
func (d *Device) CompileShader(s gpu.Shader) {
	gl.CompileShader(uint32(s))
}

// ShaderCompiled implements gpu.Device.
func (d *Device) ShaderCompiled(s gpu.Shader) bool {
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

// ShaderInfoLog implements gpu.Device.
func (d *Device) ShaderInfoLog(s gpu.Shader) string {
	var length int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetShaderInfoLog(uint32(s), length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// DeleteShader implements gpu.Device.
func (d *Device) DeleteShader(s gpu.Shader) {
	gl.DeleteShader(uint32(s))
}

// CreateProgram implements gpu.Device.
func (d *Device) CreateProgram() (gpu.Program, error) {
	p := gl.CreateProgram()
	if p == 0 {
		return 0, fmt.Errorf("%w: program (GL error 0x%x)", ErrCreate, gl.GetError())
	}
	return gpu.Program(p), nil
}

// AttachShader implements gpu.Device.
func (d *Device) AttachShader(p gpu.Program, s gpu.Shader) {
	gl.AttachShader(uint32(p), uint32(s))
}

// LinkProgram implements gpu.Device.
func (d *Device) LinkProgram(p gpu.Program) {
	gl.LinkProgram(uint32(p))
}

// ProgramLinked implements gpu.Device.
func (d *Device) ProgramLinked(p gpu.Program) bool {
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

// ProgramInfoLog implements gpu.Device.
func (d *Device) ProgramInfoLog(p gpu.Program) string {
	var length int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(length+1))
	gl.GetProgramInfoLog(uint32(p), length, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(p gpu.Program) {
	gl.DeleteProgram(uint32(p))
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(p gpu.Program) {
	gl.UseProgram(uint32(p))
}

// AttribLocation implements gpu.Device.
func (d *Device) AttribLocation(p gpu.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00"))
}

// UniformBlockIndex implements gpu.Device.
func (d *Device) UniformBlockIndex(p gpu.Program, name string) int32 {
	idx := gl.GetUniformBlockIndex(uint32(p), gl.Str(name+"\x00"))
	if idx == gl.INVALID_INDEX {
		return -1
	}
	return int32(idx)
}

// UniformBlockBinding implements gpu.Device.
func (d *Device) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	gl.UniformBlockBinding(uint32(p), block, binding)
}

// EnableVertexAttrib implements gpu.Device.
func (d *Device) EnableVertexAttrib(index uint32) {
	gl.EnableVertexAttribArray(index)
}

// DisableVertexAttrib implements gpu.Device.
func (d *Device) DisableVertexAttrib(index uint32) {
	gl.DisableVertexAttribArray(index)
}

// VertexAttribDivisor implements gpu.Device.
func (d *Device) VertexAttribDivisor(index, divisor uint32) {
	gl.VertexAttribDivisor(index, divisor)
}

// VertexAttribPointer implements gpu.Device. Integer attributes use the
// I variant so values reach the shader unconverted.
func (d *Device) VertexAttribPointer(index uint32, ptr gpu.VertexPointer) {
	size := int32(ptr.Components)
	stride := int32(ptr.Stride)
	offset := uintptr(ptr.Offset)
	if ptr.Scalar == gpu.Int && !ptr.Normalized {
		gl.VertexAttribIPointerWithOffset(index, size, gl.INT, stride, offset)
		return
	}
	gl.VertexAttribPointerWithOffset(index, size, scalarType(ptr.Scalar), ptr.Normalized, stride, offset)
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer() (gpu.Buffer, error) {
	var b uint32
	gl.GenBuffers(1, &b)
	if b == 0 {
		return 0, fmt.Errorf("%w: buffer (GL error 0x%x)", ErrCreate, gl.GetError())
	}
	return gpu.Buffer(b), nil
}

// BindBuffer implements gpu.Device.
func (d *Device) BindBuffer(usage gputypes.BufferUsage, b gpu.Buffer) {
	gl.BindBuffer(target(usage), uint32(b))
}

// BufferData implements gpu.Device.
func (d *Device) BufferData(usage gputypes.BufferUsage, data []byte, dynamic bool) {
	if len(data) == 0 {
		gl.BufferData(target(usage), 0, nil, drawHint(dynamic))
		return
	}
	gl.BufferData(target(usage), len(data), gl.Ptr(data), drawHint(dynamic))
}

// BufferAlloc implements gpu.Device.
func (d *Device) BufferAlloc(usage gputypes.BufferUsage, size int, dynamic bool) {
	gl.BufferData(target(usage), size, nil, drawHint(dynamic))
}

// BufferSubData implements gpu.Device.
func (d *Device) BufferSubData(usage gputypes.BufferUsage, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target(usage), offset, len(data), gl.Ptr(data))
}

// BindBufferBase implements gpu.Device.
func (d *Device) BindBufferBase(usage gputypes.BufferUsage, index uint32, b gpu.Buffer) {
	gl.BindBufferBase(target(usage), index, uint32(b))
}

// DeleteBuffer implements gpu.Device.
func (d *Device) DeleteBuffer(b gpu.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

var _ gpu.Device = (*Device)(nil)
