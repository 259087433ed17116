package glshade

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/glshade/gpu"
	"github.com/gogpu/glshade/internal/cache"
	"github.com/gogpu/glshade/source"
)

// Manager compiles, links and caches shader programs for one GPU context.
//
// A Manager is not safe for concurrent use. All calls must come from the
// goroutine that owns the context, usually the render loop.
type Manager struct {
	dev  gpu.Device
	src  source.Provider
	opts options

	stages   *cache.Cache[string, *Stage]
	programs *cache.Cache[string, *Program]

	// dependents maps a requested stage filename to the keys of the
	// programs linked from it.
	dependents map[string]map[string]struct{}

	// fallback is compiled on first use and owned by the Manager, not by
	// the stage cache.
	fallback *Stage

	released bool
}

// NewManager creates a Manager bound to dev that reads sources from src.
func NewManager(dev gpu.Device, src source.Provider, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	m := &Manager{
		dev:        dev,
		src:        src,
		opts:       o,
		stages:     cache.New[string, *Stage](0, nil),
		dependents: make(map[string]map[string]struct{}),
	}
	m.programs = cache.New[string, *Program](o.programLimit, m.onProgramEvict)
	return m
}

func (m *Manager) logger() *slog.Logger {
	if m.opts.logger != nil {
		return m.opts.logger
	}
	return Logger()
}

// Device returns the device the Manager issues commands to.
func (m *Manager) Device() gpu.Device { return m.dev }

// Source returns the current source provider.
func (m *Manager) Source() source.Provider { return m.src }

// Stage returns the compiled stage for name and kind, compiling it on
// first request. The source is read from "name.vert" or "name.frag".
//
// A failed compile returns *CompileError and caches nothing.
func (m *Manager) Stage(name string, kind gpu.StageKind) (*Stage, error) {
	if m.released {
		return nil, ErrReleased
	}
	return m.stage(kind.Filename(name), kind)
}

func (m *Manager) stage(filename string, kind gpu.StageKind) (*Stage, error) {
	if s, ok := m.stages.Get(filename); ok {
		return s, nil
	}

	text, err := m.src.Source(filename)
	if err != nil {
		return nil, fmt.Errorf("glshade: load %s shader: %w", kind, err)
	}

	s, err := compileStage(m.dev, filename, kind, text)
	if err != nil {
		m.logger().Error("glshade: compile failed", "filename", filename, "err", err)
		return nil, err
	}
	m.stages.Set(filename, s)
	m.logger().Debug("glshade: compiled stage",
		"filename", filename,
		"inputs", len(s.info.Inputs),
		"outputs", len(s.info.Outputs),
		"uniformBlocks", len(s.info.UniformBlocks))
	return s, nil
}

// fallbackStage returns the shared fallback fragment stage, compiling it
// on first use.
func (m *Manager) fallbackStage() (*Stage, error) {
	if m.fallback != nil {
		return m.fallback, nil
	}
	s, err := compileStage(m.dev, fallbackFilename, gpu.FragmentStage, m.opts.fallbackSource)
	if err != nil {
		return nil, err
	}
	s.fallback = true
	m.fallback = s
	return s, nil
}

// Program returns the linked program for the vertex stage vert and the
// fragment stage frag, building and caching it on first request.
//
// If the fragment stage fails to compile, the fallback stage is linked in
// its place and cached under the fragment filename, so the broken source
// is not recompiled until it is invalidated. Vertex failures, missing
// sources and link failures are returned and nothing is cached for them.
func (m *Manager) Program(vert, frag string) (*Program, error) {
	if m.released {
		return nil, ErrReleased
	}
	key := programKey(vert, frag)
	if p, ok := m.programs.Get(key); ok {
		return p, nil
	}

	vs, err := m.stage(gpu.VertexStage.Filename(vert), gpu.VertexStage)
	if err != nil {
		return nil, err
	}

	fragFile := gpu.FragmentStage.Filename(frag)
	fs, err := m.stage(fragFile, gpu.FragmentStage)
	if err != nil {
		var ce *CompileError
		if !errors.As(err, &ce) {
			return nil, err
		}
		fb, ferr := m.fallbackStage()
		if ferr != nil {
			return nil, errors.Join(err, ferr)
		}
		m.logger().Warn("glshade: using fallback fragment stage",
			"filename", fragFile,
			"vertex", vert)
		m.stages.Set(fragFile, fb)
		fs = fb
	}

	p, err := linkProgram(m.dev, vert, frag, vs, fs)
	if err != nil {
		m.logger().Error("glshade: link failed", "vertex", vert, "fragment", frag, "err", err)
		return nil, err
	}

	m.index(p)
	m.programs.Set(key, p)
	m.logger().Debug("glshade: linked program",
		"vertex", vs.filename,
		"fragment", fragFile,
		"attributes", len(p.attributes),
		"uniformBlocks", len(p.uniformBlocks),
		"fallback", fs.fallback)
	return p, nil
}

// Use builds or fetches the program for vert and frag, makes it current,
// binds attrs and runs draw. Attribute slots are disabled when draw
// returns or panics.
func (m *Manager) Use(vert, frag string, attrs Attributes, draw func(*Program) error) error {
	p, err := m.Program(vert, frag)
	if err != nil {
		return err
	}
	m.dev.UseProgram(p.handle)
	return p.WithBindings(attrs, func() error { return draw(p) })
}

// Invalidate evicts the stage for name and kind together with every
// program linked from it. The stage handle is deleted unless it is the
// shared fallback stage. Reports whether a stage was cached.
func (m *Manager) Invalidate(name string, kind gpu.StageKind) bool {
	if m.released {
		return false
	}
	return m.invalidate(kind.Filename(name))
}

func (m *Manager) invalidate(filename string) bool {
	evicted := m.evictDependents(filename)

	s, ok := m.stages.Delete(filename)
	if ok && !s.fallback {
		m.dev.DeleteShader(s.handle)
	}
	if ok || evicted > 0 {
		m.logger().Debug("glshade: invalidated stage",
			"filename", filename,
			"programs", evicted,
			"alias", ok && s.fallback)
	}
	return ok
}

// evictDependents removes and deletes every program linked from filename.
func (m *Manager) evictDependents(filename string) int {
	keys := m.dependents[filename]
	n := 0
	for key := range keys {
		p, ok := m.programs.Delete(key)
		if !ok {
			continue
		}
		m.dropProgram(p)
		n++
	}
	delete(m.dependents, filename)
	return n
}

// onProgramEvict is the program cache's soft limit callback.
func (m *Manager) onProgramEvict(key string, p *Program) {
	m.dropProgram(p)
	m.logger().Debug("glshade: evicted program", "program", p.Name())
}

// dropProgram removes p from the dependency index and deletes its handle.
// p must already be out of the program cache.
func (m *Manager) dropProgram(p *Program) {
	m.unindex(p)
	p.release()
}

func (m *Manager) index(p *Program) {
	key := p.key()
	for _, f := range []string{p.vertFile, p.fragFile} {
		set := m.dependents[f]
		if set == nil {
			set = make(map[string]struct{})
			m.dependents[f] = set
		}
		set[key] = struct{}{}
	}
}

func (m *Manager) unindex(p *Program) {
	key := p.key()
	for _, f := range []string{p.vertFile, p.fragFile} {
		set := m.dependents[f]
		delete(set, key)
		if len(set) == 0 {
			delete(m.dependents, f)
		}
	}
}

// Release deletes every program and stage the Manager owns, including the
// fallback stage. The Manager returns ErrReleased afterwards. Calling
// Release more than once is a no-op.
func (m *Manager) Release() {
	if m.released {
		return
	}
	for _, p := range m.programs.Clear() {
		p.release()
	}
	for _, s := range m.stages.Clear() {
		if !s.fallback {
			m.dev.DeleteShader(s.handle)
		}
	}
	if m.fallback != nil {
		m.dev.DeleteShader(m.fallback.handle)
		m.fallback = nil
	}
	clear(m.dependents)
	m.released = true
	m.logger().Debug("glshade: manager released")
}

// Released reports whether Release was called.
func (m *Manager) Released() bool { return m.released }

// Stats describes the Manager's caches.
type Stats struct {
	// Stages is the number of cached stage entries, aliases included.
	Stages int
	// Aliases is the number of fragment filenames served by the fallback.
	Aliases int
	// Programs is the number of cached programs.
	Programs int
	// ProgramLimit is the program soft limit, 0 when unlimited.
	ProgramLimit int
	// Hits and Misses count program lookups.
	Hits, Misses uint64
	// Evictions counts programs dropped by the soft limit.
	Evictions uint64
}

// Stats returns a snapshot of cache statistics.
func (m *Manager) Stats() Stats {
	ps := m.programs.Stats()
	s := Stats{
		Stages:       m.stages.Len(),
		Programs:     ps.Len,
		ProgramLimit: ps.Capacity,
		Hits:         ps.Hits,
		Misses:       ps.Misses,
		Evictions:    ps.Evictions,
	}
	for _, f := range m.stages.Keys() {
		if st, _ := m.stages.Peek(f); st.fallback {
			s.Aliases++
		}
	}
	return s
}
