package opengl

import "errors"

// Package errors for the OpenGL backend.
var (
	// ErrInit is returned when the GL function pointers cannot be loaded,
	// usually because no context is current.
	ErrInit = errors.New("opengl: initialization failed")

	// ErrCreate is returned when the driver refuses to create an object.
	ErrCreate = errors.New("opengl: object creation failed")

	// ErrUsage is returned for buffer usages without a GL target.
	ErrUsage = errors.New("opengl: unsupported buffer usage")
)
