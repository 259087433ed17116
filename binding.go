package glshade

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/gpu"
)

// ErrNilBuffer is returned when an attribute is bound to a nil buffer.
var ErrNilBuffer = errors.New("glshade: nil buffer")

// Buffer is a vertex buffer that can make itself current. The buffer
// package provides the implementations.
type Buffer interface {
	Bind()
}

// Rate selects whether an attribute advances per vertex or per instance.
type Rate = gputypes.VertexStepMode

const (
	// PerVertex advances the attribute once per vertex (divisor 0).
	PerVertex = gputypes.VertexStepModeVertex
	// PerInstance advances the attribute once per instance (divisor 1).
	PerInstance = gputypes.VertexStepModeInstance
)

// AttributeSpec is how one attribute is fed. It is either Bare or Layout.
type AttributeSpec interface {
	resolve() (binding, error)
}

// Bare feeds an attribute from a tightly packed buffer, per vertex,
// without normalization.
type Bare struct {
	Buffer Buffer
}

// Layout feeds an attribute with explicit rate, normalization, stride and
// byte offset. Any Rate other than PerInstance is treated as PerVertex.
// Component count and scalar type always come from the shader.
type Layout struct {
	Buffer     Buffer
	Rate       Rate
	Normalized bool
	Stride     int
	Offset     int
}

// Attribute names an input of the vertex stage and how to feed it.
type Attribute struct {
	Name string
	Spec AttributeSpec
}

// Attributes is an ordered attribute request. Slots are set up in order.
type Attributes []Attribute

// Bind feeds name from buf per vertex.
func Bind(name string, buf Buffer) Attribute {
	return Attribute{Name: name, Spec: Bare{Buffer: buf}}
}

// BindInstanced feeds name from buf per instance.
func BindInstanced(name string, buf Buffer) Attribute {
	return Attribute{Name: name, Spec: Layout{Buffer: buf, Rate: PerInstance}}
}

// BindLayout feeds name as described by l.
func BindLayout(name string, l Layout) Attribute {
	return Attribute{Name: name, Spec: l}
}

// binding is the normalized form of an AttributeSpec.
type binding struct {
	index      uint32
	buffer     Buffer
	instanced  bool
	normalized bool
	stride     int
	offset     int
	pointer    gpu.VertexPointer
}

func (b Bare) resolve() (binding, error) {
	if b.Buffer == nil {
		return binding{}, ErrNilBuffer
	}
	return binding{buffer: b.Buffer}, nil
}

func (l Layout) resolve() (binding, error) {
	if l.Buffer == nil {
		return binding{}, ErrNilBuffer
	}
	if l.Stride < 0 || l.Offset < 0 {
		return binding{}, fmt.Errorf("glshade: negative stride %d or offset %d", l.Stride, l.Offset)
	}
	return binding{
		buffer:     l.Buffer,
		instanced:  l.Rate == PerInstance,
		normalized: l.Normalized,
		stride:     l.Stride,
		offset:     l.Offset,
	}, nil
}

func (b binding) divisor() uint32 {
	if b.instanced {
		return 1
	}
	return 0
}

// bindings validates every attribute against the program before any GPU
// state is touched.
func (p *Program) bindings(attrs Attributes) ([]binding, error) {
	out := make([]binding, 0, len(attrs))
	for _, a := range attrs {
		info, ok := p.attributes[a.Name]
		if !ok {
			return nil, &UnknownAttributeError{Name: a.Name, Program: p.Name()}
		}
		if info.Err != nil {
			return nil, fmt.Errorf("glshade: program %s: %w", p.Name(), info.Err)
		}
		if a.Spec == nil {
			return nil, fmt.Errorf("glshade: attribute %q: %w", a.Name, ErrNilBuffer)
		}
		b, err := a.Spec.resolve()
		if err != nil {
			return nil, fmt.Errorf("glshade: attribute %q: %w", a.Name, err)
		}
		b.index = info.Location
		b.pointer = gpu.VertexPointer{
			Components: info.Kind.Components,
			Scalar:     info.Kind.Scalar,
			Normalized: b.normalized,
			Stride:     b.stride,
			Offset:     b.offset,
		}
		out = append(out, b)
	}
	return out, nil
}

// WithBindings enables and configures the requested attribute slots, runs
// draw, then disables every slot it enabled. Slots are disabled on every
// exit path: a draw error, a panic in draw, or a panic while binding.
//
// Nothing is enabled when a request fails validation
// (UnknownAttributeError, glsl.UnsupportedTypeError, ErrNilBuffer).
func (p *Program) WithBindings(attrs Attributes, draw func() error) error {
	if p.handle == 0 {
		return ErrStaleProgram
	}
	bindings, err := p.bindings(attrs)
	if err != nil {
		return err
	}

	enabled := make([]uint32, 0, len(bindings))
	defer func() {
		for _, index := range enabled {
			p.dev.DisableVertexAttrib(index)
		}
	}()

	for _, b := range bindings {
		p.dev.EnableVertexAttrib(b.index)
		enabled = append(enabled, b.index)
		p.dev.VertexAttribDivisor(b.index, b.divisor())
		b.buffer.Bind()
		p.dev.VertexAttribPointer(b.index, b.pointer)
	}

	return draw()
}
