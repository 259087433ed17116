package glshade

import (
	"fmt"
	"log/slog"
)

// FrameGuard runs per-frame work and keeps the render loop alive when a
// frame fails. Panics are converted to errors. An error is logged only
// when its text differs from the previous one, so a broken frame that
// repeats every vsync is reported once.
//
// The zero value logs through the package logger.
type FrameGuard struct {
	Logger *slog.Logger

	last   string
	failed bool
	count  int
}

// Run calls frame and returns its error, or a *PanicError if it panicked.
// A successful frame resets deduplication.
func (g *FrameGuard) Run(frame func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
		g.report(err)
	}()
	return frame()
}

func (g *FrameGuard) report(err error) {
	if err == nil {
		g.failed = false
		g.last = ""
		return
	}
	g.count++
	msg := err.Error()
	if g.failed && msg == g.last {
		return
	}
	g.failed = true
	g.last = msg
	g.logger().Error("glshade: frame failed", "err", err)
}

// Failures returns the number of failed frames so far.
func (g *FrameGuard) Failures() int { return g.count }

func (g *FrameGuard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return Logger()
}

// PanicError wraps a value recovered from a panicking frame.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("glshade: frame panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
