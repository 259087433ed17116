package main

import (
	"testing"

	"github.com/gogpu/glshade"
	"github.com/gogpu/glshade/gpu/gputest"
	"github.com/gogpu/glshade/source"
)

func TestEmbeddedShaders(t *testing.T) {
	src, err := source.FromFS(shaderFS, "shaders")
	if err != nil {
		t.Fatal(err)
	}
	dev := gputest.NewDevice()
	m := glshade.NewManager(dev, src)
	defer m.Release()

	tests := []struct {
		vert, frag string
		attributes []string
		blocks     []string
	}{
		{"posColor", "flatColor", []string{"position", "color"}, []string{"ViewData"}},
		{"shape", "shape", []string{"position", "offset", "fillColor"}, []string{"ViewData"}},
		{"shape", "shapeQuadratic", []string{"position", "offset", "fillColor"}, []string{"ViewData"}},
		{"fullscreenTriangle", "glyphPost", nil, nil},
		{"fullscreenTriangle", "linearToSrgb", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.vert+"+"+tt.frag, func(t *testing.T) {
			p, err := m.Program(tt.vert, tt.frag)
			if err != nil {
				t.Fatalf("Program error: %v", err)
			}
			if p.UsesFallback() {
				t.Error("fragment stage fell back")
			}
			for _, name := range tt.attributes {
				a, ok := p.Attribute(name)
				if !ok {
					t.Errorf("attribute %s missing", name)
					continue
				}
				if a.Err != nil {
					t.Errorf("attribute %s: %v", name, a.Err)
				}
			}
			for _, name := range tt.blocks {
				if _, ok := p.UniformBlock(name); !ok {
					t.Errorf("uniform block %s missing", name)
				}
			}
		})
	}
	if len(dev.Errors) != 0 {
		t.Errorf("device misuse: %v", dev.Errors)
	}
}

func TestSampleOffsets(t *testing.T) {
	offsets := sampleOffsets(1, 4, 8)
	if len(offsets) != 6*3 {
		t.Fatalf("len = %d, want 18", len(offsets))
	}
	// First sample sits 2.5 samples right and up.
	if offsets[0] != 0.625 || offsets[1] != -0.3125 {
		t.Errorf("first offset = (%v, %v), want (0.625, -0.3125)", offsets[0], offsets[1])
	}
	for i := 2; i < len(offsets); i += 3 {
		if offsets[i] != 0 {
			t.Errorf("z of sample %d = %v, want 0", i/3, offsets[i])
		}
	}
}
