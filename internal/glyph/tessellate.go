package glyph

import (
	"errors"
	"math"
)

// ErrTooManyVertices is returned when a mesh needs more vertices than
// 16-bit indices can address.
var ErrTooManyVertices = errors.New("glyph: too many vertices for 16-bit indices")

// Mesh is a tessellated outline.
//
// Vertices and Quadratic hold xyz triples. Vertex 0 is the origin, the
// shared corner of every fan triangle. Quadratic holds three vertices per
// curve (start, control, end) for non-indexed drawing.
type Mesh struct {
	Vertices  []float32
	Indices   []uint16
	Quadratic []float32
}

// VertexCount returns the number of indexed vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// QuadraticCount returns the number of vertices in Quadratic.
func (m *Mesh) QuadraticCount() int { return len(m.Quadratic) / 3 }

// NarrowIndices returns the indices as bytes when every vertex is
// addressable with 8 bits.
func (m *Mesh) NarrowIndices() ([]uint8, bool) {
	if m.VertexCount() > math.MaxUint8+1 {
		return nil, false
	}
	out := make([]uint8, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = uint8(idx)
	}
	return out, true
}

// Tessellate builds the mesh for path. Each line or curve end contributes
// a fan triangle (origin, previous point, new point) and each curve
// contributes a triangle to Quadratic. Overlapping fan triangles are
// resolved at draw time by counting coverage.
func Tessellate(path []Segment) (*Mesh, error) {
	m := &Mesh{}
	add := func(x, y float32) (uint16, error) {
		n := m.VertexCount()
		if n > math.MaxUint16 {
			return 0, ErrTooManyVertices
		}
		m.Vertices = append(m.Vertices, x, y, 0)
		return uint16(n), nil
	}

	origin, _ := add(0, 0)
	var current, start uint16
	hasCurrent, hasStart := false, false

	for _, seg := range path {
		switch seg.Op {
		case OpMove:
			p := seg.Points[0]
			idx, err := add(p[0], p[1])
			if err != nil {
				return nil, err
			}
			current, hasCurrent = idx, true
			if !hasStart {
				start, hasStart = idx, true
			}

		case OpLine:
			p := seg.Points[0]
			idx, err := add(p[0], p[1])
			if err != nil {
				return nil, err
			}
			if hasCurrent {
				m.Indices = append(m.Indices, origin, current, idx)
			}
			if !hasStart {
				start, hasStart = idx, true
			}
			current, hasCurrent = idx, true

		case OpQuad:
			c, e := seg.Points[0], seg.Points[1]
			ci, err := add(c[0], c[1])
			if err != nil {
				return nil, err
			}
			ei, err := add(e[0], e[1])
			if err != nil {
				return nil, err
			}
			if hasCurrent {
				m.Indices = append(m.Indices, origin, current, ei)
				s := m.Vertices[int(current)*3 : int(current)*3+3]
				m.Quadratic = append(m.Quadratic,
					s[0], s[1], s[2],
					c[0], c[1], 0,
					e[0], e[1], 0,
				)
			} else {
				m.Indices = append(m.Indices, origin, ci, ei)
			}
			if !hasStart {
				start, hasStart = ci, true
			}
			current, hasCurrent = ei, true

		case OpClose:
			if hasCurrent && hasStart {
				m.Indices = append(m.Indices, origin, current, start)
				hasCurrent, hasStart = false, false
			}
		}
	}
	return m, nil
}
