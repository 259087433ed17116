package backend

import (
	"errors"

	"github.com/gogpu/glshade/gpu"
)

// Backend names.
const (
	// BackendOpenGL is the OpenGL 3.3 core device.
	BackendOpenGL = "opengl"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Factory opens a device on the current context.
type Factory func() (gpu.Device, error)
