package main

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// targets are the offscreen render targets: linear holds the scene in
// linear color, glyph accumulates coverage counts. Both share one depth
// buffer so glyphs are occluded by the scene.
type targets struct {
	width, height int32

	linearFB, linearColor uint32
	glyphFB, glyphColor   uint32
	depth                 uint32
}

func newTargets(width, height int) (*targets, error) {
	t := &targets{width: int32(width), height: int32(height)}

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.width, t.height)

	t.linearColor = newColorTexture(gl.RGBA16F, t.width, t.height)
	t.glyphColor = newColorTexture(gl.RGBA8, t.width, t.height)

	var err error
	if t.linearFB, err = newFramebuffer(t.linearColor, t.depth); err != nil {
		t.delete()
		return nil, fmt.Errorf("linear target: %w", err)
	}
	if t.glyphFB, err = newFramebuffer(t.glyphColor, t.depth); err != nil {
		t.delete()
		return nil, fmt.Errorf("glyph target: %w", err)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return t, nil
}

func newColorTexture(format int32, width, height int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, format, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func newFramebuffer(color, depth uint32) (uint32, error) {
	var fb uint32
	gl.GenFramebuffers(1, &fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, color, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, depth)
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fb)
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return fb, nil
}

func (t *targets) delete() {
	for _, fb := range []*uint32{&t.linearFB, &t.glyphFB} {
		if *fb != 0 {
			gl.DeleteFramebuffers(1, fb)
			*fb = 0
		}
	}
	for _, tex := range []*uint32{&t.linearColor, &t.glyphColor} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
		t.depth = 0
	}
}
