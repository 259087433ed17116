package glshade

import "log/slog"

// Option configures a Manager during creation.
//
// Example:
//
//	m := glshade.NewManager(dev, src,
//	    glshade.WithLogger(logger),
//	    glshade.WithProgramLimit(64),
//	)
type Option func(*options)

// options holds optional configuration for Manager creation.
type options struct {
	logger         *slog.Logger
	fallbackSource string
	programLimit   int
}

// defaultOptions returns the default manager options.
func defaultOptions() options {
	return options{
		logger:         nil, // package logger, resolved at log time
		fallbackSource: DefaultFallbackSource,
		programLimit:   0, // unlimited
	}
}

// WithLogger sets the logger for one Manager, overriding SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFallbackSource replaces the built-in fragment stage used when a
// requested fragment stage fails to compile. The source must declare no
// inputs the vertex stages do not produce; the built-in one declares none.
func WithFallbackSource(src string) Option {
	return func(o *options) {
		if src != "" {
			o.fallbackSource = src
		}
	}
}

// WithProgramLimit bounds the number of cached programs. When the limit is
// exceeded the least recently used quarter is deleted from the GPU and
// rebuilt on next use. Zero or negative means unlimited.
func WithProgramLimit(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.programLimit = n
	}
}
