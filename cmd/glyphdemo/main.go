// Command glyphdemo renders two glyphs over a set of triangles using
// coverage-counted glyph rendering, with shaders hot reloaded from disk.
//
// Usage:
//
//	glyphdemo [-config demo.toml] [-shaders ./cmd/glyphdemo/shaders] [-log debug]
//
// Keys: R recreates the window and its GL context, Escape quits.
package main

import (
	"embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/glshade"
	"github.com/gogpu/glshade/backend"
	_ "github.com/gogpu/glshade/backend/opengl"
	"github.com/gogpu/glshade/gpu"
	"github.com/gogpu/glshade/source"
)

//go:embed shaders
var shaderFS embed.FS

func init() {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "glyphdemo:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseFlags(flag.CommandLine, args)
	if err != nil {
		return err
	}
	level, _ := cfg.logLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	glshade.SetLogger(logger)

	a := &app{cfg: cfg, log: logger}
	a.guard.Logger = logger
	if err := a.loadShaders(); err != nil {
		return err
	}
	if a.watcher != nil {
		defer a.watcher.Close()
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer glfw.Terminate()

	if err := a.open(); err != nil {
		return err
	}
	defer a.close()
	return a.loop()
}

// app owns the window and everything created on its context.
type app struct {
	cfg config
	log *slog.Logger

	src     source.Provider
	watcher *source.Watcher
	group   glshade.Group
	guard   glshade.FrameGuard

	win      *glfw.Window
	dev      gpu.Device
	scene    *scene
	resized  bool
	recreate bool
}

func (a *app) loadShaders() error {
	if a.cfg.Shaders.Dir == "" {
		m, err := source.FromFS(shaderFS, "shaders")
		if err != nil {
			return err
		}
		a.src = m
		return nil
	}

	m, err := source.LoadDir(a.cfg.Shaders.Dir)
	if err != nil {
		return err
	}
	w, err := source.Watch(a.cfg.Shaders.Dir)
	if err != nil {
		return err
	}
	a.src, a.watcher = m, w
	a.log.Info("watching shaders", "dir", a.cfg.Shaders.Dir, "files", len(m))
	return nil
}

// open creates the window, its context, a device and a shader manager.
func (a *app) open() error {
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(a.cfg.Window.Width, a.cfg.Window.Height, a.cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if a.cfg.Window.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetFramebufferSizeCallback(func(*glfw.Window, int, int) { a.resized = true })
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyR:
			a.recreate = true
		}
	})

	dev, err := backend.Open(backend.BackendOpenGL)
	if err != nil {
		win.Destroy()
		return err
	}
	shaders := glshade.NewManager(dev, a.src, glshade.WithProgramLimit(a.cfg.Render.ProgramLimit))
	a.group.Add(shaders)

	width, height := win.GetFramebufferSize()
	sc, err := newScene(a.cfg, shaders, width, height)
	if err != nil {
		shaders.Release()
		closeDevice(dev)
		win.Destroy()
		return err
	}
	a.win, a.dev, a.scene = win, dev, sc
	a.log.Debug("context opened", "width", width, "height", height)
	return nil
}

// close tears down the context. Shader handles die with it, so the
// manager is released and dropped from the reload group.
func (a *app) close() {
	if a.win == nil {
		return
	}
	a.scene.close()
	a.scene.shaders.Release()
	closeDevice(a.dev)
	a.win.Destroy()
	a.win, a.dev, a.scene = nil, nil, nil
}

func closeDevice(dev gpu.Device) {
	if c, ok := dev.(interface{ Close() }); ok {
		c.Close()
	}
}

func (a *app) loop() error {
	var updates <-chan source.Map
	var watchErrs <-chan error
	if a.watcher != nil {
		updates, watchErrs = a.watcher.Updates(), a.watcher.Errors()
	}

	for !a.win.ShouldClose() {
		select {
		case next := <-updates:
			a.src = next
			n := a.group.Reload(next)
			a.log.Info("shaders reloaded", "invalidated", n)
		case err := <-watchErrs:
			a.log.Warn("shader watch failed", "err", err)
		default:
		}

		if a.recreate {
			a.recreate = false
			a.close()
			if err := a.open(); err != nil {
				return err
			}
			a.log.Info("context recreated", "managers", a.group.Len())
		}
		if a.resized {
			a.resized = false
			width, height := a.win.GetFramebufferSize()
			if err := a.scene.resize(width, height); err != nil {
				return err
			}
		}

		// Errors are logged by the guard; the loop keeps presenting so a
		// fixed shader shows up on the next reload.
		_ = a.guard.Run(func() error { return a.scene.draw(glfw.GetTime()) })
		a.win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
