package opengl

import (
	"testing"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/backend"
	"github.com/gogpu/glshade/gpu"
)

// These tests cover the pure mappings; GL calls need a live context.

func TestStageType(t *testing.T) {
	if stageType(gpu.VertexStage) != gl.VERTEX_SHADER {
		t.Error("vertex stage not mapped to GL_VERTEX_SHADER")
	}
	if stageType(gpu.FragmentStage) != gl.FRAGMENT_SHADER {
		t.Error("fragment stage not mapped to GL_FRAGMENT_SHADER")
	}
}

func TestTarget(t *testing.T) {
	tests := []struct {
		usage gputypes.BufferUsage
		want  uint32
	}{
		{gputypes.BufferUsageVertex, gl.ARRAY_BUFFER},
		{gputypes.BufferUsageIndex, gl.ELEMENT_ARRAY_BUFFER},
		{gputypes.BufferUsageUniform, gl.UNIFORM_BUFFER},
	}
	for _, tt := range tests {
		if got := target(tt.usage); got != tt.want {
			t.Errorf("target(%v) = 0x%x, want 0x%x", tt.usage, got, tt.want)
		}
	}
}

func TestTargetPanicsOnUnknownUsage(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("target(storage) did not panic")
		}
	}()
	target(gputypes.BufferUsageStorage)
}

func TestScalarAndHint(t *testing.T) {
	if scalarType(gpu.Float) != gl.FLOAT || scalarType(gpu.Int) != gl.INT {
		t.Error("scalar type mapping")
	}
	if drawHint(true) != gl.DYNAMIC_DRAW || drawHint(false) != gl.STATIC_DRAW {
		t.Error("usage hint mapping")
	}
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendOpenGL) {
		t.Error("opengl backend not registered on import")
	}
}
