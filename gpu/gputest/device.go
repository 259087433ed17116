// Package gputest provides an in-memory gpu.Device for tests.
//
// The device never touches a real GPU. It tracks every handle it hands out,
// records calls in order and emulates the compile/link/query behaviour that
// glshade depends on:
//
//   - a stage fails to compile when its source contains "#error" or when
//     FailCompile returns true;
//   - a program fails to link when an attached stage did not compile or when
//     FailLink returns true;
//   - attribute locations are assigned to the vertex stage inputs in sorted
//     name order, skipping names listed in OptimizedOut;
//   - uniform block indices are assigned to the blocks of both stages in
//     sorted order, skipping names listed in OptimizedOut.
package gputest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/glsl"
	"github.com/gogpu/glshade/gpu"
)

// ErrOutOfHandles is returned by Create* once Limit handles exist.
var ErrOutOfHandles = errors.New("gputest: out of handles")

type shaderObj struct {
	kind     gpu.StageKind
	source   string
	compiled bool
	log      string
}

type programObj struct {
	shaders []gpu.Shader
	linked  bool
	log     string
	attribs map[string]int32
	blocks  map[string]int32
}

// BufferState is the content of a fake buffer.
type BufferState struct {
	Data    []byte
	Dynamic bool
	Allocs  int
	Uploads int
}

// Device is a fake gpu.Device.
type Device struct {
	// FailCompile forces a compile failure for matching sources.
	FailCompile func(kind gpu.StageKind, source string) bool
	// FailLink forces a link failure for matching stage sources.
	FailLink func(vertex, fragment string) bool
	// OptimizedOut lists attribute and block names the "linker" drops.
	OptimizedOut map[string]bool
	// Limit caps the number of live objects of each kind; 0 means no limit.
	Limit int

	next     uint32
	shaders  map[gpu.Shader]*shaderObj
	programs map[gpu.Program]*programObj
	buffers  map[gpu.Buffer]*BufferState
	bound    map[gputypes.BufferUsage]gpu.Buffer

	// Calls holds a one-line description of every state-changing call.
	Calls []string
	// Compiles counts compile calls per stage source.
	Compiles map[string]int
	// Links counts link calls.
	Links int
	// Current is the program passed to the last UseProgram call.
	Current gpu.Program
	// Enabled holds the currently enabled attribute slots.
	Enabled map[uint32]bool
	// Divisors holds the last divisor set per slot.
	Divisors map[uint32]uint32
	// Pointers holds the last pointer configuration per slot.
	Pointers map[uint32]gpu.VertexPointer
	// PointerBuffers holds the buffer bound when each pointer was set.
	PointerBuffers map[uint32]gpu.Buffer
	// BlockBindings maps program/block pairs to binding slots.
	BlockBindings map[[2]uint32]uint32
	// BaseBindings maps indexed binding points to buffers.
	BaseBindings map[uint32]gpu.Buffer
	// Errors collects misuse such as double deletes.
	Errors []string
}

// NewDevice returns an empty fake device.
func NewDevice() *Device {
	return &Device{
		shaders:        make(map[gpu.Shader]*shaderObj),
		programs:       make(map[gpu.Program]*programObj),
		buffers:        make(map[gpu.Buffer]*BufferState),
		bound:          make(map[gputypes.BufferUsage]gpu.Buffer),
		Compiles:       make(map[string]int),
		Enabled:        make(map[uint32]bool),
		Divisors:       make(map[uint32]uint32),
		Pointers:       make(map[uint32]gpu.VertexPointer),
		PointerBuffers: make(map[uint32]gpu.Buffer),
		BlockBindings:  make(map[[2]uint32]uint32),
		BaseBindings:   make(map[uint32]gpu.Buffer),
		OptimizedOut:   make(map[string]bool),
	}
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) misuse(format string, args ...any) {
	d.Errors = append(d.Errors, fmt.Sprintf(format, args...))
}

// CreateShader implements gpu.Device.
func (d *Device) CreateShader(kind gpu.StageKind) (gpu.Shader, error) {
	if d.Limit > 0 && len(d.shaders) >= d.Limit {
		return 0, ErrOutOfHandles
	}
	d.next++
	s := gpu.Shader(d.next)
	d.shaders[s] = &shaderObj{kind: kind}
	d.record("CreateShader(%s) = %d", kind, s)
	return s, nil
}

// ShaderSource implements gpu.Device.
func (d *Device) ShaderSource(s gpu.Shader, source string) {
	obj, ok := d.shaders[s]
	if !ok {
		d.misuse("ShaderSource on unknown shader %d", s)
		return
	}
	obj.source = source
}

// CompileShader implements gpu.Device.
func (d *Device) CompileShader(s gpu.Shader) {
	obj, ok := d.shaders[s]
	if !ok {
		d.misuse("CompileShader on unknown shader %d", s)
		return
	}
	d.Compiles[obj.source]++
	d.record("CompileShader(%d)", s)
	fail := strings.Contains(obj.source, "#error")
	if d.FailCompile != nil && d.FailCompile(obj.kind, obj.source) {
		fail = true
	}
	obj.compiled = !fail
	obj.log = ""
	if fail {
		obj.log = "ERROR: 0:1: '#error' : compilation terminated"
	}
}

// ShaderCompiled implements gpu.Device.
func (d *Device) ShaderCompiled(s gpu.Shader) bool {
	obj, ok := d.shaders[s]
	return ok && obj.compiled
}

// ShaderInfoLog implements gpu.Device.
func (d *Device) ShaderInfoLog(s gpu.Shader) string {
	if obj, ok := d.shaders[s]; ok {
		return obj.log
	}
	return ""
}

// DeleteShader implements gpu.Device.
func (d *Device) DeleteShader(s gpu.Shader) {
	if _, ok := d.shaders[s]; !ok {
		d.misuse("DeleteShader on unknown shader %d", s)
		return
	}
	delete(d.shaders, s)
	d.record("DeleteShader(%d)", s)
}

// CreateProgram implements gpu.Device.
func (d *Device) CreateProgram() (gpu.Program, error) {
	if d.Limit > 0 && len(d.programs) >= d.Limit {
		return 0, ErrOutOfHandles
	}
	d.next++
	p := gpu.Program(d.next)
	d.programs[p] = &programObj{}
	d.record("CreateProgram() = %d", p)
	return p, nil
}

// AttachShader implements gpu.Device.
func (d *Device) AttachShader(p gpu.Program, s gpu.Shader) {
	prog, ok := d.programs[p]
	if !ok {
		d.misuse("AttachShader on unknown program %d", p)
		return
	}
	if _, ok := d.shaders[s]; !ok {
		d.misuse("AttachShader of unknown shader %d", s)
		return
	}
	prog.shaders = append(prog.shaders, s)
}

// LinkProgram implements gpu.Device.
func (d *Device) LinkProgram(p gpu.Program) {
	prog, ok := d.programs[p]
	if !ok {
		d.misuse("LinkProgram on unknown program %d", p)
		return
	}
	d.Links++
	d.record("LinkProgram(%d)", p)

	var vert, frag *shaderObj
	for _, s := range prog.shaders {
		obj, ok := d.shaders[s]
		if !ok {
			continue
		}
		switch obj.kind {
		case gpu.VertexStage:
			vert = obj
		case gpu.FragmentStage:
			frag = obj
		}
	}
	switch {
	case vert == nil || frag == nil:
		prog.log = "error: program needs a vertex and a fragment stage"
	case !vert.compiled || !frag.compiled:
		prog.log = "error: attached shader is not compiled"
	case d.FailLink != nil && d.FailLink(vert.source, frag.source):
		prog.log = "error: varying mismatch"
	default:
		prog.linked = true
		prog.log = ""
		prog.attribs = assign(glsl.Reflect(vert.source).InputNames(), d.OptimizedOut)
		blocks := append(glsl.Reflect(vert.source).UniformBlocks, glsl.Reflect(frag.source).UniformBlocks...)
		sort.Strings(blocks)
		prog.blocks = assign(blocks, d.OptimizedOut)
		return
	}
	prog.linked = false
}

func assign(names []string, skip map[string]bool) map[string]int32 {
	out := make(map[string]int32)
	var next int32
	for _, n := range names {
		if skip[n] {
			continue
		}
		if _, dup := out[n]; dup {
			continue
		}
		out[n] = next
		next++
	}
	return out
}

// ProgramLinked implements gpu.Device.
func (d *Device) ProgramLinked(p gpu.Program) bool {
	prog, ok := d.programs[p]
	return ok && prog.linked
}

// ProgramInfoLog implements gpu.Device.
func (d *Device) ProgramInfoLog(p gpu.Program) string {
	if prog, ok := d.programs[p]; ok {
		return prog.log
	}
	return ""
}

// DeleteProgram implements gpu.Device.
func (d *Device) DeleteProgram(p gpu.Program) {
	if _, ok := d.programs[p]; !ok {
		d.misuse("DeleteProgram on unknown program %d", p)
		return
	}
	delete(d.programs, p)
	d.record("DeleteProgram(%d)", p)
}

// UseProgram implements gpu.Device.
func (d *Device) UseProgram(p gpu.Program) {
	if p != 0 && !d.ProgramLinked(p) {
		d.misuse("UseProgram of unlinked program %d", p)
	}
	d.Current = p
	d.record("UseProgram(%d)", p)
}

// AttribLocation implements gpu.Device.
func (d *Device) AttribLocation(p gpu.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok || !prog.linked {
		d.misuse("AttribLocation on unlinked program %d", p)
		return -1
	}
	if loc, ok := prog.attribs[name]; ok {
		return loc
	}
	return -1
}

// UniformBlockIndex implements gpu.Device.
func (d *Device) UniformBlockIndex(p gpu.Program, name string) int32 {
	prog, ok := d.programs[p]
	if !ok || !prog.linked {
		d.misuse("UniformBlockIndex on unlinked program %d", p)
		return -1
	}
	if idx, ok := prog.blocks[name]; ok {
		return idx
	}
	return -1
}

// UniformBlockBinding implements gpu.Device.
func (d *Device) UniformBlockBinding(p gpu.Program, block, binding uint32) {
	d.BlockBindings[[2]uint32{uint32(p), block}] = binding
	d.record("UniformBlockBinding(%d, %d, %d)", p, block, binding)
}

// EnableVertexAttrib implements gpu.Device.
func (d *Device) EnableVertexAttrib(index uint32) {
	d.Enabled[index] = true
	d.record("EnableVertexAttrib(%d)", index)
}

// DisableVertexAttrib implements gpu.Device.
func (d *Device) DisableVertexAttrib(index uint32) {
	delete(d.Enabled, index)
	d.record("DisableVertexAttrib(%d)", index)
}

// VertexAttribDivisor implements gpu.Device.
func (d *Device) VertexAttribDivisor(index, divisor uint32) {
	d.Divisors[index] = divisor
	d.record("VertexAttribDivisor(%d, %d)", index, divisor)
}

// VertexAttribPointer implements gpu.Device.
func (d *Device) VertexAttribPointer(index uint32, ptr gpu.VertexPointer) {
	d.Pointers[index] = ptr
	d.PointerBuffers[index] = d.bound[gputypes.BufferUsageVertex]
	d.record("VertexAttribPointer(%d, %d, %s)", index, ptr.Components, ptr.Scalar)
}

// CreateBuffer implements gpu.Device.
func (d *Device) CreateBuffer() (gpu.Buffer, error) {
	if d.Limit > 0 && len(d.buffers) >= d.Limit {
		return 0, ErrOutOfHandles
	}
	d.next++
	b := gpu.Buffer(d.next)
	d.buffers[b] = &BufferState{}
	d.record("CreateBuffer() = %d", b)
	return b, nil
}

// BindBuffer implements gpu.Device.
func (d *Device) BindBuffer(usage gputypes.BufferUsage, b gpu.Buffer) {
	if _, ok := d.buffers[b]; b != 0 && !ok {
		d.misuse("BindBuffer of unknown buffer %d", b)
	}
	d.bound[usage] = b
	d.record("BindBuffer(%d)", b)
}

func (d *Device) boundState(usage gputypes.BufferUsage) *BufferState {
	st, ok := d.buffers[d.bound[usage]]
	if !ok {
		d.misuse("buffer upload with nothing bound")
		return &BufferState{}
	}
	return st
}

// BufferData implements gpu.Device.
func (d *Device) BufferData(usage gputypes.BufferUsage, data []byte, dynamic bool) {
	st := d.boundState(usage)
	st.Data = append([]byte(nil), data...)
	st.Dynamic = dynamic
	st.Allocs++
	st.Uploads++
}

// BufferAlloc implements gpu.Device.
func (d *Device) BufferAlloc(usage gputypes.BufferUsage, size int, dynamic bool) {
	st := d.boundState(usage)
	st.Data = make([]byte, size)
	st.Dynamic = dynamic
	st.Allocs++
}

// BufferSubData implements gpu.Device.
func (d *Device) BufferSubData(usage gputypes.BufferUsage, offset int, data []byte) {
	st := d.boundState(usage)
	if offset+len(data) > len(st.Data) {
		d.misuse("BufferSubData out of range: %d+%d > %d", offset, len(data), len(st.Data))
		return
	}
	copy(st.Data[offset:], data)
	st.Uploads++
}

// BindBufferBase implements gpu.Device.
func (d *Device) BindBufferBase(usage gputypes.BufferUsage, index uint32, b gpu.Buffer) {
	d.BaseBindings[index] = b
	d.bound[usage] = b
	d.record("BindBufferBase(%d, %d)", index, b)
}

// DeleteBuffer implements gpu.Device.
func (d *Device) DeleteBuffer(b gpu.Buffer) {
	if _, ok := d.buffers[b]; !ok {
		d.misuse("DeleteBuffer on unknown buffer %d", b)
		return
	}
	delete(d.buffers, b)
	d.record("DeleteBuffer(%d)", b)
}

// LiveShaders returns the number of shader handles not yet deleted.
func (d *Device) LiveShaders() int { return len(d.shaders) }

// LivePrograms returns the number of program handles not yet deleted.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveBuffers returns the number of buffer handles not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// Buffer returns the state of b, or nil if b is not live.
func (d *Device) Buffer(b gpu.Buffer) *BufferState { return d.buffers[b] }

// ProgramExists reports whether p is live.
func (d *Device) ProgramExists(p gpu.Program) bool {
	_, ok := d.programs[p]
	return ok
}

// ShaderExists reports whether s is live.
func (d *Device) ShaderExists(s gpu.Shader) bool {
	_, ok := d.shaders[s]
	return ok
}

// ResetCalls clears the call log.
func (d *Device) ResetCalls() { d.Calls = d.Calls[:0] }

var _ gpu.Device = (*Device)(nil)
