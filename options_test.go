package glshade

import (
	"log/slog"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.logger != nil {
		t.Error("default logger should be nil (package logger)")
	}
	if o.fallbackSource != DefaultFallbackSource {
		t.Error("default fallback source is not DefaultFallbackSource")
	}
	if o.programLimit != 0 {
		t.Errorf("default program limit = %d, want 0", o.programLimit)
	}
}

func TestOptions(t *testing.T) {
	logger := slog.Default()
	tests := []struct {
		name  string
		opt   Option
		check func(t *testing.T, o options)
	}{
		{"WithLogger", WithLogger(logger), func(t *testing.T, o options) {
			if o.logger != logger {
				t.Error("logger not set")
			}
		}},
		{"WithFallbackSource", WithFallbackSource("out vec4 c;"), func(t *testing.T, o options) {
			if o.fallbackSource != "out vec4 c;" {
				t.Errorf("fallbackSource = %q", o.fallbackSource)
			}
		}},
		{"WithFallbackSource empty", WithFallbackSource(""), func(t *testing.T, o options) {
			if o.fallbackSource != DefaultFallbackSource {
				t.Error("empty fallback source replaced the default")
			}
		}},
		{"WithProgramLimit", WithProgramLimit(16), func(t *testing.T, o options) {
			if o.programLimit != 16 {
				t.Errorf("programLimit = %d, want 16", o.programLimit)
			}
		}},
		{"WithProgramLimit negative", WithProgramLimit(-3), func(t *testing.T, o options) {
			if o.programLimit != 0 {
				t.Errorf("programLimit = %d, want 0", o.programLimit)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultOptions()
			tt.opt(&o)
			tt.check(t, o)
		})
	}
}
