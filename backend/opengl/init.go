package opengl

import (
	"github.com/gogpu/glshade/backend"
	"github.com/gogpu/glshade/gpu"
)

// init registers the OpenGL backend on package import.
//
//	import _ "github.com/gogpu/glshade/backend/opengl"
func init() {
	backend.Register(backend.BackendOpenGL, func() (gpu.Device, error) {
		return New()
	})
}
