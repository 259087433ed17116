// Package glshade compiles, links and caches GLSL shader programs and binds
// vertex attributes to them by name.
//
// # Overview
//
// A Manager owns every shader stage and program created on one GPU context.
// Stages are read from a source.Provider as "name.vert" and "name.frag",
// compiled once and reflected: the declared inputs, outputs and uniform
// blocks are extracted from the source text, so callers bind attributes by
// name and never spell out component counts or scalar types.
//
// # Quick Start
//
//	dev := opengl.New()
//	src, _ := source.LoadDir("shaders")
//	m := glshade.NewManager(dev, src)
//	defer m.Release()
//
//	positions, _ := buffer.NewStatic(dev, gputypes.BufferUsageVertex, verts)
//	err := m.Use("shape", "shape", glshade.Attributes{
//	    glshade.Bind("position", positions),
//	}, func(p *glshade.Program) error {
//	    gl.DrawArrays(gl.TRIANGLES, 0, int32(positions.Len()/2))
//	    return nil
//	})
//
// # Failure handling
//
// A fragment stage that fails to compile is replaced by a fallback stage
// (a checkerboard, see DefaultFallbackSource) so that the rest of the frame
// keeps rendering while the shader is being edited. The fallback is cached
// under the broken filename until the file changes. Vertex compile errors,
// missing sources and link errors are returned to the caller.
//
// # Hot reload
//
// Manager.Reload diffs a fresh source snapshot against the current one and
// invalidates exactly the stages whose text changed, together with every
// program linked from them. source.Watcher produces such snapshots from a
// directory; Group applies one snapshot to several managers.
//
// # Architecture
//
//   - glshade: Manager, Program, attribute binding, reload, FrameGuard
//   - glsl: declaration reflection and attribute kinds
//   - source: source providers and the directory watcher
//   - gpu: the Device interface the Manager drives
//   - backend/opengl: Device over OpenGL 3.3 core
//   - buffer: static and dynamic GPU buffers
package glshade
