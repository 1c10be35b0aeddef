// Package glfwwsi creates presentation surfaces for GLFW windows.
package glfwwsi

import (
	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/vkgo"
)

// Init initializes GLFW for a window without a client API and loads the
// Vulkan entry points through it. It must run on the main thread.
func Init() (*vkgo.Driver, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize GLFW")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, errors.New("GLFW found no Vulkan loader")
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	driver, err := vkgo.New(glfw.GetVulkanGetInstanceProcAddress)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	return driver, nil
}

// WindowSystem adapts a GLFW window. It holds no GPU object itself.
type WindowSystem struct {
	window *glfw.Window
	driver *vkgo.Driver
}

func New(window *glfw.Window, driver *vkgo.Driver) *WindowSystem {
	return &WindowSystem{window: window, driver: driver}
}

func (w *WindowSystem) CreateInstanceExtensionNames() ([]string, error) {
	names := w.window.GetRequiredInstanceExtensions()
	if len(names) == 0 {
		return nil, errors.New("GLFW reports no instance extension for presentation")
	}
	return names, nil
}

// DestroyInstanceExtensionNames is a no-op: GLFW owns the list.
func (w *WindowSystem) DestroyInstanceExtensionNames(names []string) {}

func (w *WindowSystem) CreateSurface(instance gpu.Instance, alloc gpu.AllocationCallbacks) (gpu.Surface, error) {
	native := w.driver.NativeInstance(instance)
	if native == nil {
		return 0, errors.Newf("unknown instance %d", instance)
	}
	ptr, err := w.window.CreateWindowSurface(native, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create the GLFW window surface")
	}
	return w.driver.RegisterSurface(vk.SurfaceFromPointer(ptr)), nil
}

// FramebufferExtent is the window size in pixels.
func (w *WindowSystem) FramebufferExtent() gpu.Extent2D {
	width, height := w.window.GetFramebufferSize()
	return gpu.Extent2D{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}

// OnResize calls fn with the new framebuffer extent whenever it changes.
func (w *WindowSystem) OnResize(fn func(gpu.Extent2D)) {
	w.window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(gpu.Extent2D{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))})
	})
}
