// Package backend selects the gpu.Device implementation a program runs on.
//
// Device implementations register themselves from init functions. The
// OpenGL device is registered on import:
//
//	import _ "github.com/gogpu/glshade/backend/opengl"
//
// # Backend Selection
//
// Use Default to open the best available device, or Open to request one
// by name:
//
//	dev, err := backend.Open("opengl")
//
// Devices issue commands to the context current on the calling thread, so
// a window must be created and made current first.
package backend
