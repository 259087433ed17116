package main

import (
	"fmt"
	"math"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade"
	"github.com/gogpu/glshade/buffer"
	"github.com/gogpu/glshade/gpu"
	"github.com/gogpu/glshade/internal/glyph"
)

// viewBinding is the uniform buffer binding point of the ViewData block.
const viewBinding = 0

var (
	triangleCoords = []float32{
		-0.5, -0.5, 0,
		0.5, -0.5, 0,
		0, 0.5, 0,
	}
	triangleColors = []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	// sampleColors routes each of the six coverage samples to its own
	// counter: two per channel, in the low and high nibble.
	sampleColors = []float32{
		1.0 / 255, 0, 0, 0,
		16.0 / 255, 0, 0, 0,
		0, 1.0 / 255, 0, 0,
		0, 16.0 / 255, 0, 0,
		0, 0, 1.0 / 255, 0,
		0, 0, 16.0 / 255, 0,
	}
	clearColor = [4]float32{0.05, 0.1, 0.1, 1}
	clearGlyph = [4]float32{0, 0, 0, 0}
	clearDepth = float32(1)
)

// glyphMesh holds the GPU buffers of one tessellated glyph.
type glyphMesh struct {
	vertices  *buffer.Static
	quadratic *buffer.Static
	indices   *buffer.Static
	indexType uint32
}

func newGlyphMesh(dev gpu.Device, r rune) (*glyphMesh, error) {
	f, err := glyph.GoRegular()
	if err != nil {
		return nil, err
	}
	outline, err := glyph.Outline(f, r)
	if err != nil {
		return nil, err
	}
	mesh, err := glyph.Tessellate(outline)
	if err != nil {
		return nil, fmt.Errorf("tessellate %q: %w", r, err)
	}

	g := &glyphMesh{}
	if g.vertices, err = buffer.NewStatic(dev, gputypes.BufferUsageVertex, mesh.Vertices); err != nil {
		return nil, err
	}
	if g.quadratic, err = buffer.NewStatic(dev, gputypes.BufferUsageVertex, mesh.Quadratic); err != nil {
		g.delete()
		return nil, err
	}
	if narrow, ok := mesh.NarrowIndices(); ok {
		g.indices, err = buffer.NewStatic(dev, gputypes.BufferUsageIndex, narrow)
		g.indexType = gl.UNSIGNED_BYTE
	} else {
		g.indices, err = buffer.NewStatic(dev, gputypes.BufferUsageIndex, mesh.Indices)
		g.indexType = gl.UNSIGNED_SHORT
	}
	if err != nil {
		g.delete()
		return nil, err
	}
	return g, nil
}

func (g *glyphMesh) delete() {
	for _, b := range []*buffer.Static{g.vertices, g.quadratic, g.indices} {
		if b != nil {
			_ = b.Delete()
		}
	}
}

// scene owns everything created on one GL context.
type scene struct {
	cfg     config
	shaders *glshade.Manager

	triangleCoords *buffer.Static
	triangleColors *buffer.Static
	sampleColors   *buffer.Static
	sampleOffsets  *buffer.Static
	mvp            *buffer.Dynamic
	glyphA, glyphE *glyphMesh

	targets    *targets
	projection mgl32.Mat4
	worldClip  mgl32.Mat4
}

func newScene(cfg config, shaders *glshade.Manager, width, height int) (*scene, error) {
	dev := shaders.Device()
	s := &scene{cfg: cfg, shaders: shaders}

	var err error
	if s.triangleCoords, err = buffer.NewStatic(dev, gputypes.BufferUsageVertex, triangleCoords); err != nil {
		return nil, err
	}
	if s.triangleColors, err = buffer.NewStatic(dev, gputypes.BufferUsageVertex, triangleColors); err != nil {
		s.close()
		return nil, err
	}
	if s.sampleColors, err = buffer.NewStatic(dev, gputypes.BufferUsageVertex, sampleColors); err != nil {
		s.close()
		return nil, err
	}
	if s.mvp, err = buffer.NewDynamic(dev, gputypes.BufferUsageUniform); err != nil {
		s.close()
		return nil, err
	}
	if s.glyphA, err = newGlyphMesh(dev, 'A'); err != nil {
		s.close()
		return nil, err
	}
	if s.glyphE, err = newGlyphMesh(dev, 'E'); err != nil {
		s.close()
		return nil, err
	}
	if err := s.resize(width, height); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// sampleOffsets returns six jittered offsets in clip units, one per
// coverage sample:
//
//	-----x
//	-x----
//	---x--
//	----x-
//	x-----
//	--x---
func sampleOffsets(smoothing float64, width, height int) []float32 {
	x := float32(smoothing / float64(width))
	y := float32(smoothing / float64(height))
	return []float32{
		x * 2.5, y * -2.5, 0,
		x * -1.5, y * -1.5, 0,
		x * 0.5, y * -0.5, 0,
		x * 1.5, y * 0.5, 0,
		x * -2.5, y * 1.5, 0,
		x * -0.5, y * 2.5, 0,
	}
}

// resize recreates the size dependent resources.
func (s *scene) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if s.targets != nil {
		s.targets.delete()
		s.targets = nil
	}
	if s.sampleOffsets != nil {
		_ = s.sampleOffsets.Delete()
		s.sampleOffsets = nil
	}

	t, err := newTargets(width, height)
	if err != nil {
		return err
	}
	s.targets = t
	offsets, err := buffer.NewStatic(s.shaders.Device(), gputypes.BufferUsageVertex,
		sampleOffsets(s.cfg.Render.Smoothing, width, height))
	if err != nil {
		return err
	}
	s.sampleOffsets = offsets
	s.projection = mgl32.Perspective(math.Pi/2, float32(width)/float32(height), 0.1, 1000)
	gl.Viewport(0, 0, int32(width), int32(height))
	return nil
}

func (s *scene) close() {
	if s.targets != nil {
		s.targets.delete()
		s.targets = nil
	}
	for _, b := range []*buffer.Static{s.triangleCoords, s.triangleColors, s.sampleColors, s.sampleOffsets} {
		if b != nil {
			_ = b.Delete()
		}
	}
	if s.mvp != nil {
		_ = s.mvp.Delete()
	}
	for _, g := range []*glyphMesh{s.glyphA, s.glyphE} {
		if g != nil {
			g.delete()
		}
	}
}

// updateCamera orbits the camera around the origin. t is in seconds.
func (s *scene) updateCamera(t float64) {
	const radius = 3.0
	angle := t / 2.5
	eye := mgl32.Vec3{float32(math.Cos(angle) * radius), 1, float32(math.Sin(angle) * radius)}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	s.worldClip = s.projection.Mul4(view)
}

func (s *scene) setModel(model mgl32.Mat4) error {
	mvp := s.worldClip.Mul4(model)
	return buffer.Update(s.mvp, mvp[:])
}

func (s *scene) bindView(p *glshade.Program) error {
	if err := p.BindUniformBlock("ViewData", viewBinding); err != nil {
		return err
	}
	return s.mvp.BindBase(viewBinding)
}

func (s *scene) draw(t float64) error {
	if s.targets == nil {
		return nil
	}
	s.updateCamera(t)

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.targets.linearFB)
	gl.DepthMask(true)
	gl.ClearBufferfv(gl.COLOR, 0, &clearColor[0])
	gl.ClearBufferfv(gl.DEPTH, 0, &clearDepth)

	if err := s.drawTriangles(); err != nil {
		return err
	}

	tf := float32(t)
	separation := 0.3 + float32(math.Cos(t/7.77))*0.2
	txA := mgl32.Translate3D(separation, 0, 0.4).
		Mul4(mgl32.HomogRotate3DX(tf / 2.1)).
		Mul4(mgl32.HomogRotate3DZ(math.Pi * tf / 8)).
		Mul4(mgl32.Translate3D(-0.25, 0.25, 0))
	txE := mgl32.Translate3D(-separation, 0, 0.4).
		Mul4(mgl32.HomogRotate3DX(tf/2.3 + 1.5)).
		Mul4(mgl32.HomogRotate3DZ(math.Pi*tf/7 + 1.2)).
		Mul4(mgl32.Translate3D(-0.25, 0.25, 0))

	gl.BindFramebuffer(gl.FRAMEBUFFER, s.targets.glyphFB)
	gl.ClearBufferfv(gl.COLOR, 0, &clearGlyph[0])
	if err := s.drawShape(s.glyphA, txA); err != nil {
		return err
	}
	if err := s.drawShape(s.glyphE, txE); err != nil {
		return err
	}
	if err := s.flushGlyphs(); err != nil {
		return err
	}

	gl.Disable(gl.BLEND)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Disable(gl.DEPTH_TEST)
	gl.DepthMask(true)
	return s.shaders.Use("fullscreenTriangle", "linearToSrgb", nil, func(*glshade.Program) error {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, s.targets.linearColor)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return nil
	})
}

// drawTriangles draws three nested triangles into the linear target.
func (s *scene) drawTriangles() error {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	count := int32(s.triangleCoords.Len() / 3)
	models := []mgl32.Mat4{
		mgl32.Ident4(),
		mgl32.Translate3D(0, 0, -0.1).Mul4(mgl32.Scale3D(1.2, 1.2, 1.2)),
		mgl32.Translate3D(0, 0, -0.2).Mul4(mgl32.Scale3D(1.5, 1.5, 1.5)),
	}
	attrs := glshade.Attributes{
		glshade.Bind("position", s.triangleCoords),
		glshade.Bind("color", s.triangleColors),
	}
	return s.shaders.Use("posColor", "flatColor", attrs, func(p *glshade.Program) error {
		if err := s.bindView(p); err != nil {
			return err
		}
		for _, model := range models {
			if err := s.setModel(model); err != nil {
				return err
			}
			gl.DrawArrays(gl.TRIANGLES, 0, count)
		}
		return nil
	})
}

// drawShape accumulates glyph coverage: every sample instance adds its
// color where the fan and curve triangles cover a pixel, so the count
// parity tells inside from outside.
func (s *scene) drawShape(g *glyphMesh, model mgl32.Mat4) error {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	gl.BlendEquation(gl.FUNC_ADD)

	if err := s.setModel(model); err != nil {
		return err
	}
	instances := int32(s.sampleOffsets.Len() / 3)

	fan := glshade.Attributes{
		glshade.Bind("position", g.vertices),
		glshade.BindInstanced("offset", s.sampleOffsets),
		glshade.BindInstanced("fillColor", s.sampleColors),
	}
	err := s.shaders.Use("shape", "shape", fan, func(p *glshade.Program) error {
		if err := s.bindView(p); err != nil {
			return err
		}
		g.indices.Bind()
		gl.DrawElementsInstanced(gl.TRIANGLES, int32(g.indices.Len()), g.indexType, nil, instances)
		return nil
	})
	if err != nil {
		return err
	}

	curves := glshade.Attributes{
		glshade.Bind("position", g.quadratic),
		glshade.BindInstanced("offset", s.sampleOffsets),
		glshade.BindInstanced("fillColor", s.sampleColors),
	}
	return s.shaders.Use("shape", "shapeQuadratic", curves, func(p *glshade.Program) error {
		if err := s.bindView(p); err != nil {
			return err
		}
		gl.DrawArraysInstanced(gl.TRIANGLES, 0, int32(g.quadratic.Len()/3), instances)
		return nil
	})
}

// flushGlyphs resolves coverage counts and blends white glyphs over the
// linear target.
func (s *scene) flushGlyphs() error {
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.targets.linearFB)
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.BlendEquation(gl.FUNC_ADD)

	return s.shaders.Use("fullscreenTriangle", "glyphPost", nil, func(*glshade.Program) error {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, s.targets.glyphColor)
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return nil
	})
}
