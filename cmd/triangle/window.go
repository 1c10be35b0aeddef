package main

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/veandco/go-sdl2/sdl"

	dekoi "github.com/christophercrouzet/dekoi-sub000"
	"github.com/christophercrouzet/dekoi-sub000/glfwwsi"
	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/sdlwsi"
	"github.com/christophercrouzet/dekoi-sub000/vkgo"
)

// window is what the main loop needs from a windowing library.
type window interface {
	driver() *vkgo.Driver
	system() dekoi.WindowSystem
	extent() gpu.Extent2D
	// poll processes pending events. It reports whether the window is
	// still open and whether its size changed since the last call.
	poll() (open, resized bool)
	// wait blocks until the next event.
	wait()
	close()
}

func openWindow(cfg dekoi.WindowConfig) (window, error) {
	switch cfg.Backend {
	case dekoi.BackendGLFW:
		return openGLFWWindow(cfg)
	case dekoi.BackendSDL:
		return openSDLWindow(cfg)
	}
	return nil, errors.Newf("unknown window backend %q", cfg.Backend)
}

type glfwWindow struct {
	drv     *vkgo.Driver
	window  *glfw.Window
	ws      *glfwwsi.WindowSystem
	resized bool
}

func openGLFWWindow(cfg dekoi.WindowConfig) (*glfwWindow, error) {
	drv, err := glfwwsi.Init()
	if err != nil {
		return nil, err
	}
	handle, err := glfw.CreateWindow(int(cfg.Width), int(cfg.Height), cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "failed to create the GLFW window")
	}
	w := &glfwWindow{drv: drv, window: handle, ws: glfwwsi.New(handle, drv)}
	w.ws.OnResize(func(gpu.Extent2D) { w.resized = true })
	return w, nil
}

func (w *glfwWindow) driver() *vkgo.Driver        { return w.drv }
func (w *glfwWindow) system() dekoi.WindowSystem { return w.ws }
func (w *glfwWindow) extent() gpu.Extent2D       { return w.ws.FramebufferExtent() }
func (w *glfwWindow) wait()                      { glfw.WaitEvents() }

func (w *glfwWindow) poll() (bool, bool) {
	glfw.PollEvents()
	resized := w.resized
	w.resized = false
	return !w.window.ShouldClose(), resized
}

func (w *glfwWindow) close() {
	w.window.Destroy()
	glfw.Terminate()
}

type sdlWindow struct {
	drv    *vkgo.Driver
	window *sdl.Window
	ws     *sdlwsi.WindowSystem
}

func openSDLWindow(cfg dekoi.WindowConfig) (*sdlWindow, error) {
	drv, err := sdlwsi.Init()
	if err != nil {
		return nil, err
	}
	handle, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width), int32(cfg.Height),
		sdlwsi.Flags)
	if err != nil {
		sdlwsi.Terminate()
		return nil, errors.Wrap(err, "failed to create the SDL window")
	}
	return &sdlWindow{drv: drv, window: handle, ws: sdlwsi.New(handle, drv)}, nil
}

func (w *sdlWindow) driver() *vkgo.Driver        { return w.drv }
func (w *sdlWindow) system() dekoi.WindowSystem { return w.ws }
func (w *sdlWindow) extent() gpu.Extent2D       { return w.ws.DrawableExtent() }
func (w *sdlWindow) wait()                      { sdl.WaitEvent() }

func (w *sdlWindow) poll() (open, resized bool) {
	open = true
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			open = false
		case *sdl.WindowEvent:
			if ev.Event == sdl.WINDOWEVENT_RESIZED || ev.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				resized = true
			}
		}
	}
	return open, resized
}

func (w *sdlWindow) close() {
	w.window.Destroy()
	sdlwsi.Terminate()
}
