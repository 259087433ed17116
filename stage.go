package glshade

import (
	"fmt"

	"github.com/gogpu/glshade/glsl"
	"github.com/gogpu/glshade/gpu"
)

// Stage is a compiled shader stage and its reflected interface.
//
// Stages are owned by the Manager that compiled them. A Stage stays valid
// until it is invalidated or the Manager is released.
type Stage struct {
	filename string
	kind     gpu.StageKind
	handle   gpu.Shader
	info     glsl.StageInfo

	// fallback marks the shared fallback stage. Cache entries that alias it
	// under a broken fragment filename do not own its handle.
	fallback bool
}

// Filename returns the logical filename the stage was compiled from.
func (s *Stage) Filename() string { return s.filename }

// Kind returns the stage kind.
func (s *Stage) Kind() gpu.StageKind { return s.kind }

// Info returns the reflected inputs, outputs and uniform blocks.
func (s *Stage) Info() glsl.StageInfo { return s.info }

// IsFallback reports whether this is the fallback fragment stage.
func (s *Stage) IsFallback() bool { return s.fallback }

// compileStage creates and compiles one stage. On failure the handle is
// deleted before returning.
func compileStage(dev gpu.Device, filename string, kind gpu.StageKind, src string) (*Stage, error) {
	handle, err := dev.CreateShader(kind)
	if err != nil {
		return nil, fmt.Errorf("glshade: create %s shader for %q: %w", kind, filename, err)
	}
	dev.ShaderSource(handle, src)
	dev.CompileShader(handle)
	if !dev.ShaderCompiled(handle) {
		info := dev.ShaderInfoLog(handle)
		dev.DeleteShader(handle)
		return nil, &CompileError{Filename: filename, Kind: kind, Log: info}
	}

	return &Stage{
		filename: filename,
		kind:     kind,
		handle:   handle,
		info:     glsl.Reflect(src),
	}, nil
}
