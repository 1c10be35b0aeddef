// Package sdlwsi creates presentation surfaces for SDL windows.
package sdlwsi

import (
	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/vkgo"
)

// Flags are the window flags a renderer window needs.
const Flags = sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE | sdl.WINDOW_VULKAN

// Init initializes the SDL video subsystem and loads the Vulkan entry
// points through it.
func Init() (*vkgo.Driver, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "failed to initialize SDL")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "SDL found no Vulkan loader")
	}
	driver, err := vkgo.New(sdl.VulkanGetVkGetInstanceProcAddr)
	if err != nil {
		sdl.VulkanUnloadLibrary()
		sdl.Quit()
		return nil, err
	}
	return driver, nil
}

// Terminate undoes Init.
func Terminate() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}

type WindowSystem struct {
	window *sdl.Window
	driver *vkgo.Driver
}

// New adapts window, which must have been created with Flags.
func New(window *sdl.Window, driver *vkgo.Driver) *WindowSystem {
	return &WindowSystem{window: window, driver: driver}
}

func (w *WindowSystem) CreateInstanceExtensionNames() ([]string, error) {
	names := w.window.VulkanGetInstanceExtensions()
	if len(names) == 0 {
		return nil, errors.Newf("SDL reports no instance extension for presentation: %s", sdl.GetError())
	}
	return names, nil
}

func (w *WindowSystem) DestroyInstanceExtensionNames(names []string) {}

func (w *WindowSystem) CreateSurface(instance gpu.Instance, alloc gpu.AllocationCallbacks) (gpu.Surface, error) {
	native := w.driver.NativeInstance(instance)
	if native == nil {
		return 0, errors.Newf("unknown instance %d", instance)
	}
	ptr, err := w.window.VulkanCreateSurface(native)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create the SDL window surface")
	}
	return w.driver.RegisterSurface(vk.SurfaceFromPointer(uintptr(ptr))), nil
}

// DrawableExtent is the window size in pixels.
func (w *WindowSystem) DrawableExtent() gpu.Extent2D {
	width, height := w.window.VulkanGetDrawableSize()
	return gpu.Extent2D{Width: uint32(max(width, 0)), Height: uint32(max(height, 0))}
}
