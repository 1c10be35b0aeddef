// Package vkgo implements gpu.API on top of the vulkan-go bindings.
//
// Native objects never leave the package: every vk handle is registered in
// a table and handed out as an opaque gpu handle. Window system packages
// reach the native instance through NativeInstance and register the
// surfaces they create through RegisterSurface.
//
// Host allocation callbacks are not forwarded to the driver. vulkan-go
// exposes VkAllocationCallbacks as an opaque C structure that cannot be
// populated from Go, so every create and destroy call passes nil and the
// driver uses its own allocator.
package vkgo

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// table maps opaque handles to native objects.
type table[T any] struct {
	items map[uint64]T
}

func (t *table[T]) put(next *uint64, v T) uint64 {
	if t.items == nil {
		t.items = make(map[uint64]T)
	}
	*next++
	t.items[*next] = v
	return *next
}

func (t *table[T]) get(h uint64) (T, bool) {
	v, ok := t.items[h]
	return v, ok
}

func (t *table[T]) take(h uint64) (T, bool) {
	v, ok := t.items[h]
	if ok {
		delete(t.items, h)
	}
	return v, ok
}

func (t *table[T]) len() int {
	return len(t.items)
}

// Driver drives the Vulkan loader. The zero value is not usable; call New.
type Driver struct {
	mu   sync.Mutex
	next uint64

	instances       table[vk.Instance]
	debugCallbacks  table[vk.DebugReportCallback]
	surfaces        table[vk.Surface]
	physicalDevices table[vk.PhysicalDevice]
	devices         table[vk.Device]
	queues          table[vk.Queue]
	swapchains      table[vk.Swapchain]
	images          table[vk.Image]
	imageViews      table[vk.ImageView]
	shaderModules   table[vk.ShaderModule]
	renderPasses    table[vk.RenderPass]
	pipelineLayouts table[vk.PipelineLayout]
	pipelines       table[vk.Pipeline]
	framebuffers    table[vk.Framebuffer]
	commandPools    table[vk.CommandPool]
	commandBuffers  table[vk.CommandBuffer]
	semaphores      table[vk.Semaphore]
	buffers         table[vk.Buffer]
	memories        table[vk.DeviceMemory]

	// Handles already issued for objects the driver owns, so that repeated
	// queries return the same gpu handle.
	physicalHandles map[vk.PhysicalDevice]gpu.PhysicalDevice
	queueHandles    map[vk.Queue]gpu.Queue
	swapchainImages map[gpu.Swapchain][]gpu.Image
	poolBuffers     map[gpu.CommandPool][]gpu.CommandBuffer
	mapped          map[gpu.DeviceMemory]bool
}

// ProcAddrFunc returns the loader entry point, such as
// glfw.GetVulkanGetInstanceProcAddress or sdl.VulkanGetVkGetInstanceProcAddr.
type ProcAddrFunc func() unsafe.Pointer

// New loads the Vulkan entry points through procAddr. A nil procAddr uses
// the system loader.
func New(procAddr ProcAddrFunc) (*Driver, error) {
	if procAddr != nil {
		vk.SetGetInstanceProcAddr(procAddr())
	} else if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, errors.Wrap(err, "failed to locate the Vulkan loader")
	}
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize Vulkan")
	}
	return &Driver{
		physicalHandles: make(map[vk.PhysicalDevice]gpu.PhysicalDevice),
		queueHandles:    make(map[vk.Queue]gpu.Queue),
		swapchainImages: make(map[gpu.Swapchain][]gpu.Image),
		poolBuffers:     make(map[gpu.CommandPool][]gpu.CommandBuffer),
		mapped:          make(map[gpu.DeviceMemory]bool),
	}, nil
}

var _ gpu.API = (*Driver)(nil)

// NativeInstance returns the vk.Instance behind instance, or nil.
func (d *Driver) NativeInstance(instance gpu.Instance) vk.Instance {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, _ := d.instances.get(uint64(instance))
	return v
}

// RegisterSurface takes ownership of a surface created by a window system.
// The surface is released through DestroySurface.
func (d *Driver) RegisterSurface(surface vk.Surface) gpu.Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gpu.Surface(d.surfaces.put(&d.next, surface))
}

// Live counts the objects created through d and not destroyed yet.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.instances.len() + d.debugCallbacks.len() + d.surfaces.len() +
		d.devices.len() + d.swapchains.len() + d.imageViews.len() +
		d.shaderModules.len() + d.renderPasses.len() + d.pipelineLayouts.len() +
		d.pipelines.len() + d.framebuffers.len() + d.commandPools.len() +
		d.semaphores.len() + d.buffers.len() + d.memories.len()
}

func result(res vk.Result) gpu.Result {
	return gpu.Result(res)
}
