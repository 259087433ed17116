package glshade

import (
	"errors"
	"fmt"

	"github.com/gogpu/glshade/glsl"
	"github.com/gogpu/glshade/gpu"
)

var (
	// ErrUnknownUniformBlock is returned by BindUniformBlock for block
	// names the linked program does not expose.
	ErrUnknownUniformBlock = errors.New("glshade: unknown uniform block")

	// ErrStaleProgram is returned when a Program is used after it was
	// evicted or its Manager was released.
	ErrStaleProgram = errors.New("glshade: program was evicted")
)

// AttributeInfo is a vertex stage input resolved against a linked program.
type AttributeInfo struct {
	Location uint32
	Type     string
	Kind     glsl.AttributeKind
	// Err is set when Type is not a supported attribute type; binding the
	// attribute returns it.
	Err error
}

// Program is a linked vertex/fragment pair with resolved attribute
// locations and uniform block indices.
type Program struct {
	dev    gpu.Device
	handle gpu.Program

	vertName, fragName string
	// vertFile and fragFile are the requested filenames. fragFile differs
	// from fragment.Filename() when the fallback stage was substituted.
	vertFile, fragFile string

	vertex, fragment *Stage
	attributes       map[string]AttributeInfo
	uniformBlocks    map[string]uint32
}

// programKey is NUL-separated so that no pair of names can collide.
func programKey(vert, frag string) string {
	return vert + "\x00" + frag
}

func (p *Program) key() string { return programKey(p.vertName, p.fragName) }

// Name returns "vert+frag" for logs and errors.
func (p *Program) Name() string { return p.vertName + "+" + p.fragName }

// Vertex returns the vertex stage.
func (p *Program) Vertex() *Stage { return p.vertex }

// Fragment returns the fragment stage, which is the fallback stage when
// the requested one failed to compile.
func (p *Program) Fragment() *Stage { return p.fragment }

// UsesFallback reports whether the fragment stage was substituted.
func (p *Program) UsesFallback() bool { return p.fragment.fallback }

// Attribute returns the resolved input name. Inputs the linker optimized
// away are absent.
func (p *Program) Attribute(name string) (AttributeInfo, bool) {
	a, ok := p.attributes[name]
	return a, ok
}

// Attributes returns all resolved inputs. The map must not be modified.
func (p *Program) Attributes() map[string]AttributeInfo { return p.attributes }

// UniformBlock returns the block index of a uniform block.
func (p *Program) UniformBlock(name string) (uint32, bool) {
	idx, ok := p.uniformBlocks[name]
	return idx, ok
}

// UniformBlocks returns all resolved uniform blocks. The map must not be
// modified.
func (p *Program) UniformBlocks() map[string]uint32 { return p.uniformBlocks }

// BindUniformBlock assigns the named uniform block to a binding slot.
func (p *Program) BindUniformBlock(name string, binding uint32) error {
	if p.handle == 0 {
		return ErrStaleProgram
	}
	idx, ok := p.uniformBlocks[name]
	if !ok {
		return fmt.Errorf("%w %q in program %s", ErrUnknownUniformBlock, name, p.Name())
	}
	p.dev.UniformBlockBinding(p.handle, idx, binding)
	return nil
}

// linkProgram links two compiled stages and resolves the program
// interface. A link failure deletes the program handle.
func linkProgram(dev gpu.Device, vert, frag string, vs, fs *Stage) (*Program, error) {
	handle, err := dev.CreateProgram()
	if err != nil {
		return nil, fmt.Errorf("glshade: create program for %q and %q: %w", vert, frag, err)
	}
	dev.AttachShader(handle, vs.handle)
	dev.AttachShader(handle, fs.handle)
	dev.LinkProgram(handle)
	if !dev.ProgramLinked(handle) {
		info := dev.ProgramInfoLog(handle)
		dev.DeleteProgram(handle)
		return nil, &LinkError{Vertex: vert, Fragment: frag, Log: info}
	}

	p := &Program{
		dev:           dev,
		handle:        handle,
		vertName:      vert,
		fragName:      frag,
		vertFile:      gpu.VertexStage.Filename(vert),
		fragFile:      gpu.FragmentStage.Filename(frag),
		vertex:        vs,
		fragment:      fs,
		attributes:    make(map[string]AttributeInfo),
		uniformBlocks: make(map[string]uint32),
	}

	for _, name := range vs.info.InputNames() {
		loc := dev.AttribLocation(handle, name)
		if loc < 0 {
			continue
		}
		d := vs.info.Inputs[name]
		p.attributes[name] = AttributeInfo{
			Location: uint32(loc),
			Type:     d.Type,
			Kind:     d.Kind,
			Err:      d.Err,
		}
	}

	for _, st := range []*Stage{vs, fs} {
		for _, name := range st.info.UniformBlocks {
			if _, ok := p.uniformBlocks[name]; ok {
				continue
			}
			idx := dev.UniformBlockIndex(handle, name)
			if idx < 0 {
				continue
			}
			p.uniformBlocks[name] = uint32(idx)
		}
	}
	return p, nil
}

// release deletes the program handle. Safe to call more than once.
func (p *Program) release() {
	if p.handle == 0 {
		return
	}
	p.dev.DeleteProgram(p.handle)
	p.handle = 0
}
