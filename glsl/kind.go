package glsl

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/glshade/gpu"
)

// ErrUnsupportedType is wrapped by UnsupportedTypeError.
var ErrUnsupportedType = errors.New("glsl: unsupported attribute type")

// UnsupportedTypeError reports a declaration whose type has no
// AttributeKind. It is recorded at reflection time and returned when the
// declaration is bound as a vertex attribute.
type UnsupportedTypeError struct {
	Name     string
	Typename string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("glsl: unsupported attribute type %q for %q", e.Typename, e.Name)
}

func (e *UnsupportedTypeError) Unwrap() error { return ErrUnsupportedType }

// AttributeKind is the shape of a vertex attribute: 1 to 4 components of
// one scalar type.
type AttributeKind struct {
	Components int
	Scalar     gpu.ScalarType
}

var kinds = map[string]AttributeKind{
	"float": {1, gpu.Float},
	"vec2":  {2, gpu.Float},
	"vec3":  {3, gpu.Float},
	"vec4":  {4, gpu.Float},
	"int":   {1, gpu.Int},
	"ivec2": {2, gpu.Int},
	"ivec3": {3, gpu.Int},
	"ivec4": {4, gpu.Int},
}

// KindOf maps a GLSL type name to its AttributeKind.
// ok is false for anything outside float, vecN, int and ivecN.
func KindOf(typename string) (kind AttributeKind, ok bool) {
	kind, ok = kinds[typename]
	return kind, ok
}

// Format returns the matching vertex format.
func (k AttributeKind) Format() gputypes.VertexFormat {
	if k.Scalar == gpu.Int {
		switch k.Components {
		case 1:
			return gputypes.VertexFormatSint32
		case 2:
			return gputypes.VertexFormatSint32x2
		case 3:
			return gputypes.VertexFormatSint32x3
		default:
			return gputypes.VertexFormatSint32x4
		}
	}
	switch k.Components {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// Size returns the packed size of one element in bytes.
func (k AttributeKind) Size() int {
	return k.Components * k.Scalar.Size()
}

func (k AttributeKind) String() string {
	if k.Components == 1 {
		return k.Scalar.String()
	}
	if k.Scalar == gpu.Int {
		return fmt.Sprintf("ivec%d", k.Components)
	}
	return fmt.Sprintf("vec%d", k.Components)
}
