package glshade

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/glsl"
	"github.com/gogpu/glshade/gpu"
	"github.com/gogpu/glshade/gpu/gputest"
	"github.com/gogpu/glshade/source"
)

// testBuffer binds a fake vertex buffer.
type testBuffer struct {
	dev    *gputest.Device
	handle gpu.Buffer
}

func (b *testBuffer) Bind() { b.dev.BindBuffer(gputypes.BufferUsageVertex, b.handle) }

func newTestBuffer(t *testing.T, dev *gputest.Device) *testBuffer {
	t.Helper()
	h, err := dev.CreateBuffer()
	if err != nil {
		t.Fatal(err)
	}
	return &testBuffer{dev: dev, handle: h}
}

// Inputs get locations in sorted order: cell=0, color=1, model=2, position=3.
const vertMixed = `in vec2 position;
in vec4 color;
in ivec2 cell;
in mat4 model;`

func newBindingManager(t *testing.T) (*Manager, *gputest.Device) {
	t.Helper()
	return newTestManager(t, source.Map{
		"mixed.vert": vertMixed,
		"mixed.frag": fragColor,
	})
}

func location(t *testing.T, p *Program, name string) uint32 {
	t.Helper()
	a, ok := p.Attribute(name)
	if !ok {
		t.Fatalf("attribute %s missing", name)
	}
	return a.Location
}

func countCalls(dev *gputest.Device, prefix string) int {
	n := 0
	for _, c := range dev.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestUseBindsAttributes(t *testing.T) {
	m, dev := newBindingManager(t)
	positions := newTestBuffer(t, dev)
	colors := newTestBuffer(t, dev)
	cells := newTestBuffer(t, dev)

	attrs := Attributes{
		Bind("position", positions),
		BindInstanced("color", colors),
		Bind("cell", cells),
	}
	ran := false
	err := m.Use("mixed", "mixed", attrs, func(p *Program) error {
		ran = true
		if dev.Current != p.handle {
			t.Errorf("current program = %d, want %d", dev.Current, p.handle)
		}
		pos, col, cell := location(t, p, "position"), location(t, p, "color"), location(t, p, "cell")
		if len(dev.Enabled) != 3 || !dev.Enabled[pos] || !dev.Enabled[col] || !dev.Enabled[cell] {
			t.Errorf("enabled slots = %v", dev.Enabled)
		}
		if dev.Divisors[pos] != 0 || dev.Divisors[cell] != 0 || dev.Divisors[col] != 1 {
			t.Errorf("divisors = %v, want instanced color only", dev.Divisors)
		}
		if got := dev.Pointers[pos]; got.Components != 2 || got.Scalar != gpu.Float || got.Normalized {
			t.Errorf("position pointer = %+v", got)
		}
		if got := dev.Pointers[col]; got.Components != 4 || got.Scalar != gpu.Float {
			t.Errorf("color pointer = %+v", got)
		}
		if got := dev.Pointers[cell]; got.Components != 2 || got.Scalar != gpu.Int {
			t.Errorf("cell pointer = %+v", got)
		}
		if dev.PointerBuffers[col] != colors.handle || dev.PointerBuffers[pos] != positions.handle {
			t.Errorf("pointer buffers = %v", dev.PointerBuffers)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Use error: %v", err)
	}
	if !ran {
		t.Fatal("draw callback did not run")
	}
	if len(dev.Enabled) != 0 {
		t.Errorf("slots still enabled after Use: %v", dev.Enabled)
	}
}

func TestBindingCallOrder(t *testing.T) {
	m, dev := newBindingManager(t)
	positions := newTestBuffer(t, dev)
	p, err := m.Program("mixed", "mixed")
	if err != nil {
		t.Fatal(err)
	}
	loc := location(t, p, "position")
	dev.ResetCalls()

	if err := p.WithBindings(Attributes{Bind("position", positions)}, func() error { return nil }); err != nil {
		t.Fatal(err)
	}

	want := []string{
		fmt.Sprintf("EnableVertexAttrib(%d)", loc),
		fmt.Sprintf("VertexAttribDivisor(%d, 0)", loc),
		fmt.Sprintf("BindBuffer(%d)", positions.handle),
		fmt.Sprintf("VertexAttribPointer(%d, 2, %s)", loc, gpu.Float),
		fmt.Sprintf("DisableVertexAttrib(%d)", loc),
	}
	if len(dev.Calls) != len(want) {
		t.Fatalf("calls = %v, want %v", dev.Calls, want)
	}
	for i := range want {
		if dev.Calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, dev.Calls[i], want[i])
		}
	}
}

func TestBindingsDisabledOnError(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)
	drawErr := errors.New("draw failed")

	err := m.Use("mixed", "mixed", Attributes{Bind("position", buf), Bind("color", buf)},
		func(*Program) error { return drawErr })
	if !errors.Is(err, drawErr) {
		t.Errorf("Use error = %v, want %v", err, drawErr)
	}
	if len(dev.Enabled) != 0 {
		t.Errorf("slots still enabled after error: %v", dev.Enabled)
	}
}

func TestBindingsDisabledOnPanic(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v, want boom", r)
			}
		}()
		_ = m.Use("mixed", "mixed", Attributes{Bind("position", buf)}, func(*Program) error {
			panic("boom")
		})
	}()

	if len(dev.Enabled) != 0 {
		t.Errorf("slots still enabled after panic: %v", dev.Enabled)
	}
}

func TestUnknownAttributeEnablesNothing(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)
	dev.ResetCalls()

	ran := false
	err := m.Use("mixed", "mixed", Attributes{Bind("position", buf), Bind("normal", buf)},
		func(*Program) error { ran = true; return nil })

	var ue *UnknownAttributeError
	if !errors.As(err, &ue) || ue.Name != "normal" {
		t.Fatalf("error = %v, want UnknownAttributeError for normal", err)
	}
	if !errors.Is(err, ErrUnknownAttribute) {
		t.Error("errors.Is(err, ErrUnknownAttribute) = false")
	}
	if ran {
		t.Error("draw ran despite invalid bindings")
	}
	if n := countCalls(dev, "EnableVertexAttrib"); n != 0 {
		t.Errorf("%d slots enabled before validation failed", n)
	}
}

func TestUnsupportedAttributeType(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)

	p, err := m.Program("mixed", "mixed")
	if err != nil {
		t.Fatalf("unbound mat4 input should not fail the program: %v", err)
	}
	if a, _ := p.Attribute("model"); a.Err == nil {
		t.Error("model attribute has no deferred error")
	}

	dev.ResetCalls()
	err = p.WithBindings(Attributes{Bind("position", buf), Bind("model", buf)}, func() error { return nil })
	if !errors.Is(err, glsl.ErrUnsupportedType) {
		t.Fatalf("error = %v, want glsl.ErrUnsupportedType", err)
	}
	var ue *glsl.UnsupportedTypeError
	if !errors.As(err, &ue) || ue.Typename != "mat4" {
		t.Errorf("UnsupportedTypeError = %+v", ue)
	}
	if n := countCalls(dev, "EnableVertexAttrib"); n != 0 {
		t.Errorf("%d slots enabled before validation failed", n)
	}
}

func TestNilBuffer(t *testing.T) {
	m, _ := newBindingManager(t)
	p, err := m.Program("mixed", "mixed")
	if err != nil {
		t.Fatal(err)
	}
	for _, attrs := range []Attributes{
		{Bind("position", nil)},
		{BindLayout("position", Layout{})},
		{{Name: "position"}},
	} {
		if err := p.WithBindings(attrs, func() error { return nil }); !errors.Is(err, ErrNilBuffer) {
			t.Errorf("WithBindings(%v) = %v, want ErrNilBuffer", attrs, err)
		}
	}
}

func TestLayoutBinding(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)
	p, err := m.Program("mixed", "mixed")
	if err != nil {
		t.Fatal(err)
	}
	col := location(t, p, "color")

	attrs := Attributes{BindLayout("color", Layout{
		Buffer:     buf,
		Rate:       PerInstance,
		Normalized: true,
		Stride:     32,
		Offset:     16,
	})}
	err = p.WithBindings(attrs, func() error {
		want := gpu.VertexPointer{Components: 4, Scalar: gpu.Float, Normalized: true, Stride: 32, Offset: 16}
		if got := dev.Pointers[col]; got != want {
			t.Errorf("pointer = %+v, want %+v", got, want)
		}
		if dev.Divisors[col] != 1 {
			t.Errorf("divisor = %d, want 1", dev.Divisors[col])
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	bad := Attributes{BindLayout("color", Layout{Buffer: buf, Stride: -4})}
	if err := p.WithBindings(bad, func() error { return nil }); err == nil {
		t.Error("negative stride accepted")
	}
}

func TestLayoutDefaultRateIsPerVertex(t *testing.T) {
	m, dev := newBindingManager(t)
	buf := newTestBuffer(t, dev)
	p, err := m.Program("mixed", "mixed")
	if err != nil {
		t.Fatal(err)
	}
	pos := location(t, p, "position")
	dev.Divisors[pos] = 7

	err = p.WithBindings(Attributes{BindLayout("position", Layout{Buffer: buf})}, func() error {
		if dev.Divisors[pos] != 0 {
			t.Errorf("divisor = %d, want 0", dev.Divisors[pos])
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
