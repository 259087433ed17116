package glshade

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newGuard() (*FrameGuard, *bytes.Buffer) {
	var buf bytes.Buffer
	return &FrameGuard{Logger: slog.New(slog.NewTextHandler(&buf, nil))}, &buf
}

func TestFrameGuardDeduplicates(t *testing.T) {
	g, buf := newGuard()
	fail := errors.New("draw failed")

	for range 5 {
		if err := g.Run(func() error { return fail }); !errors.Is(err, fail) {
			t.Fatalf("Run error = %v", err)
		}
	}
	if n := strings.Count(buf.String(), "draw failed"); n != 1 {
		t.Errorf("logged %d times, want 1", n)
	}
	if g.Failures() != 5 {
		t.Errorf("Failures() = %d, want 5", g.Failures())
	}

	other := errors.New("other failure")
	_ = g.Run(func() error { return other })
	_ = g.Run(func() error { return fail })
	if n := strings.Count(buf.String(), "draw failed"); n != 2 {
		t.Errorf("changed error text should log again, logged %d times", n)
	}
}

func TestFrameGuardSuccessResets(t *testing.T) {
	g, buf := newGuard()
	fail := errors.New("flaky")

	_ = g.Run(func() error { return fail })
	if err := g.Run(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	_ = g.Run(func() error { return fail })
	if n := strings.Count(buf.String(), "flaky"); n != 2 {
		t.Errorf("logged %d times, want 2", n)
	}
}

func TestFrameGuardRecoversPanic(t *testing.T) {
	g, buf := newGuard()
	cause := io.ErrUnexpectedEOF

	err := g.Run(func() error { panic(cause) })
	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PanicError", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("PanicError does not unwrap the panic value")
	}
	if !strings.Contains(buf.String(), "panicked") {
		t.Errorf("panic not logged: %s", buf.String())
	}

	err = g.Run(func() error { panic("text") })
	if !errors.As(err, &pe) || pe.Value != "text" || pe.Unwrap() != nil {
		t.Errorf("PanicError = %+v", pe)
	}
}

func TestFrameGuardZeroValue(t *testing.T) {
	var g FrameGuard
	if err := g.Run(func() error { return nil }); err != nil {
		t.Errorf("Run = %v", err)
	}
	if err := g.Run(func() error { return errors.New("x") }); err == nil {
		t.Error("Run swallowed the error")
	}
}
