// Package glyph turns font outlines into triangle meshes for stencil-free
// GPU glyph rendering: a fan of triangles around the origin covers the
// polygon part of the outline, and one extra triangle per quadratic
// segment carries the curve.
package glyph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoGlyph is returned for runes the font does not map.
var ErrNoGlyph = errors.New("glyph: rune not in font")

// Op is the type of outline segment.
type Op uint8

const (
	// OpMove starts a contour at Points[0].
	OpMove Op = iota
	// OpLine draws a line to Points[0].
	OpLine
	// OpQuad draws a quadratic curve with control Points[0] to Points[1].
	OpQuad
	// OpClose closes the contour back to its start.
	OpClose
)

// String returns a string representation of the operation.
func (op Op) String() string {
	switch op {
	case OpMove:
		return "Move"
	case OpLine:
		return "Line"
	case OpQuad:
		return "Quad"
	case OpClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Segment is one outline step. Coordinates are in ems with Y growing down.
type Segment struct {
	Op     Op
	Points [2]mgl32.Vec2
}

// Move, Line, Quad and Close build segments.
func Move(x, y float32) Segment { return Segment{Op: OpMove, Points: [2]mgl32.Vec2{{x, y}}} }

func Line(x, y float32) Segment { return Segment{Op: OpLine, Points: [2]mgl32.Vec2{{x, y}}} }

func Quad(cx, cy, x, y float32) Segment {
	return Segment{Op: OpQuad, Points: [2]mgl32.Vec2{{cx, cy}, {x, y}}}
}

func Close() Segment { return Segment{Op: OpClose} }

var (
	goRegularOnce sync.Once
	goRegular     *sfnt.Font
	goRegularErr  error
)

// GoRegular returns the parsed Go Regular font.
func GoRegular() (*sfnt.Font, error) {
	goRegularOnce.Do(func() {
		goRegular, goRegularErr = sfnt.Parse(goregular.TTF)
	})
	return goRegular, goRegularErr
}

// Outline extracts the outline of r from f, scaled to ems. Every contour
// ends with OpClose. Cubic segments are approximated by one quadratic.
func Outline(f *sfnt.Font, r rune) ([]Segment, error) {
	var buf sfnt.Buffer
	gid, err := f.GlyphIndex(&buf, r)
	if err != nil {
		return nil, fmt.Errorf("glyph: index %q: %w", r, err)
	}
	if gid == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoGlyph, r)
	}

	upem := f.UnitsPerEm()
	ppem := fixed.Int26_6(upem) << 6
	raw, err := f.LoadGlyph(&buf, gid, ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("glyph: load %q: %w", r, err)
	}

	scale := 1 / float32(upem)
	pt := func(p fixed.Point26_6) mgl32.Vec2 {
		return mgl32.Vec2{float32(p.X) / 64 * scale, float32(p.Y) / 64 * scale}
	}

	out := make([]Segment, 0, len(raw)+4)
	var last mgl32.Vec2
	open := false
	for _, seg := range raw {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				out = append(out, Close())
			}
			last = pt(seg.Args[0])
			out = append(out, Segment{Op: OpMove, Points: [2]mgl32.Vec2{last}})
			open = true
		case sfnt.SegmentOpLineTo:
			last = pt(seg.Args[0])
			out = append(out, Segment{Op: OpLine, Points: [2]mgl32.Vec2{last}})
		case sfnt.SegmentOpQuadTo:
			ctrl, end := pt(seg.Args[0]), pt(seg.Args[1])
			out = append(out, Segment{Op: OpQuad, Points: [2]mgl32.Vec2{ctrl, end}})
			last = end
		case sfnt.SegmentOpCubeTo:
			c1, c2, end := pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])
			ctrl := c1.Add(c2).Mul(3).Sub(last).Sub(end).Mul(0.25)
			out = append(out, Segment{Op: OpQuad, Points: [2]mgl32.Vec2{ctrl, end}})
			last = end
		}
	}
	if open {
		out = append(out, Close())
	}
	return out, nil
}

// Advance returns the horizontal advance of r in ems.
func Advance(f *sfnt.Font, r rune) (float32, error) {
	var buf sfnt.Buffer
	gid, err := f.GlyphIndex(&buf, r)
	if err != nil {
		return 0, err
	}
	upem := f.UnitsPerEm()
	adv, err := f.GlyphAdvance(&buf, gid, fixed.Int26_6(upem)<<6, font.HintingNone)
	if err != nil {
		return 0, err
	}
	return float32(adv) / 64 / float32(upem), nil
}
