package glshade

import (
	"errors"
	"fmt"

	"github.com/gogpu/glshade/gpu"
)

// Package errors. The typed errors below wrap these so callers can test
// with errors.Is and extract details with errors.As.
var (
	// ErrCompile is wrapped by CompileError.
	ErrCompile = errors.New("glshade: shader compile failed")

	// ErrLink is wrapped by LinkError.
	ErrLink = errors.New("glshade: program link failed")

	// ErrUnknownAttribute is wrapped by UnknownAttributeError.
	ErrUnknownAttribute = errors.New("glshade: unknown attribute")

	// ErrReleased is returned by a Manager after Release.
	ErrReleased = errors.New("glshade: manager released")
)

// CompileError reports a stage whose source failed to compile.
type CompileError struct {
	Filename string
	Kind     gpu.StageKind
	Log      string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("glshade: failed to compile %s shader %q: %s", e.Kind, e.Filename, e.Log)
}

func (e *CompileError) Unwrap() error { return ErrCompile }

// LinkError reports a vertex/fragment pair that failed to link.
type LinkError struct {
	Vertex   string
	Fragment string
	Log      string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("glshade: failed to link program for %q and %q: %s", e.Vertex, e.Fragment, e.Log)
}

func (e *LinkError) Unwrap() error { return ErrLink }

// UnknownAttributeError reports a binding for an attribute the program
// does not expose. It is a programming error in the caller.
type UnknownAttributeError struct {
	Name    string
	Program string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("glshade: unknown attribute %q for program %s", e.Name, e.Program)
}

func (e *UnknownAttributeError) Unwrap() error { return ErrUnknownAttribute }
