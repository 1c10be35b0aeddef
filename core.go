// Package dekoi is a renderer back-end over an explicit GPU API. It turns a
// RendererCreateInfo into a negotiated device, swap chain and fixed
// triangle-list pipeline, draws the configured vertices every frame and
// recovers from surface resizes and presentation hazards.
//
// A Renderer is not safe for concurrent use. All calls, including Draw and
// Resize, must come from the same goroutine.
package dekoi

import (
	"github.com/cockroachdb/errors"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// RendererCreateInfo gathers the creation parameters of a Renderer.
type RendererCreateInfo struct {
	// API is the GPU API implementation to drive. Required.
	API gpu.API

	ApplicationName    string
	ApplicationVersion Version

	// SurfaceExtent is the extent used when the surface lets the swap chain
	// decide its size.
	SurfaceExtent gpu.Extent2D

	Shaders          []ShaderCreateInfo
	VertexBuffers    []VertexBufferCreateInfo
	VertexBindings   []gpu.VertexInputBindingDescription
	VertexAttributes []gpu.VertexInputAttributeDescription
	VertexCount      uint32
	InstanceCount    uint32
	ClearColor       [4]float32

	// Debug enables the validation layers and routes their messages to the
	// logger.
	Debug bool

	// Optional collaborators. They are borrowed and must outlive the
	// Renderer. A nil WindowSystem creates a headless renderer.
	Logger       Logger
	Allocator    Allocator
	WindowSystem WindowSystem
}

func (info *RendererCreateInfo) validate() error {
	if info == nil {
		return newError(StatusInvalidValue, "missing renderer create info")
	}
	if info.API == nil {
		return newError(StatusInvalidValue, "missing GPU API implementation")
	}
	if err := validateShaders(info.Shaders); err != nil {
		return err
	}
	if err := validateVertexBuffers(info.VertexBuffers); err != nil {
		return err
	}
	if info.WindowSystem != nil && (info.SurfaceExtent.Width == 0 || info.SurfaceExtent.Height == 0) {
		return newError(StatusInvalidValue, "invalid surface extent %dx%d",
			info.SurfaceExtent.Width, info.SurfaceExtent.Height)
	}
	return nil
}

// Renderer owns every GPU object it creates.
type Renderer struct {
	api          gpu.API
	logger       Logger
	allocator    Allocator
	callbacks    gpu.AllocationCallbacks
	windowSystem WindowSystem

	instance      gpu.Instance
	debugCallback gpu.DebugReportCallback
	layers        []string
	surface       gpu.Surface
	physical      physicalDevice
	device        gpu.Device
	queues        [queueRoleCount]gpu.Queue

	commandPools          commandPools
	semaphores            [semaphoreCount]gpu.Semaphore
	shaders               []shader
	shadersReserved       reservation
	vertexBuffers         []vertexBuffer
	vertexBuffersReserved reservation

	desiredExtent          gpu.Extent2D
	swapchainState         swapchainState
	generation             uint64
	swapchain              swapchain
	renderPass             gpu.RenderPass
	pipelineLayout         gpu.PipelineLayout
	pipeline               gpu.Pipeline
	framebuffers           []gpu.Framebuffer
	framebuffersReserved   reservation
	commandBuffers         []gpu.CommandBuffer
	commandBuffersReserved reservation

	vertexBindings   []gpu.VertexInputBindingDescription
	vertexAttributes []gpu.VertexInputAttributeDescription
	vertexCount      uint32
	instanceCount    uint32
	clearColor       gpu.ClearColorValue

	frameState frameState
	frame      uint64
}

// CreateRenderer builds a renderer. Either a fully built renderer is
// returned or an error, in which case everything created along the way has
// been destroyed in reverse order.
func CreateRenderer(info *RendererCreateInfo) (_ *Renderer, err error) {
	if err := info.validate(); err != nil {
		return nil, err
	}

	r := &Renderer{
		api:              info.API,
		logger:           info.Logger,
		allocator:        info.Allocator,
		windowSystem:     info.WindowSystem,
		desiredExtent:    info.SurfaceExtent,
		vertexBindings:   info.VertexBindings,
		vertexAttributes: info.VertexAttributes,
		vertexCount:      info.VertexCount,
		instanceCount:    info.InstanceCount,
		clearColor:       gpu.ClearColorValue(info.ClearColor),
	}
	if r.logger == nil {
		r.logger = defaultLogger()
	}
	if r.allocator == nil {
		r.allocator = NewHostAllocator()
	}
	r.callbacks = newAllocationCallbacks(r.allocator)

	var undo undoStack
	defer func() {
		if err != nil {
			undo.unwind()
			logf(r.logger, LogLevelError, "renderer creation failed: %v", err)
		}
	}()

	if err := r.createInstance(info.ApplicationName, info.ApplicationVersion, info.Debug); err != nil {
		return nil, errors.Wrap(err, "instance")
	}
	undo.push(r.destroyInstance)

	surface, err := createSurface(r.windowSystem, r.instance, r.callbacks)
	if err != nil {
		return nil, err
	}
	r.surface = surface
	undo.push(func() {
		destroySurface(r.api, r.instance, r.surface, r.callbacks)
		r.surface = 0
	})

	if err := r.createDevice(); err != nil {
		return nil, errors.Wrap(err, "device")
	}
	undo.push(r.destroyDevice)

	if err := r.createCommandPools(); err != nil {
		return nil, errors.Wrap(err, "command pools")
	}
	undo.push(r.destroyCommandPools)

	if err := r.createSemaphores(); err != nil {
		return nil, errors.Wrap(err, "semaphores")
	}
	undo.push(r.destroySemaphores)

	if err := r.createShaders(info.Shaders); err != nil {
		return nil, errors.Wrap(err, "shaders")
	}
	undo.push(r.destroyShaders)

	if err := r.createVertexBuffers(info.VertexBuffers); err != nil {
		return nil, errors.Wrap(err, "vertex buffers")
	}
	undo.push(r.destroyVertexBuffers)

	if r.surface != 0 {
		if err := r.buildGeneration(0); err != nil {
			return nil, errors.Wrap(err, "swap chain")
		}
	}

	undo.release()
	logf(r.logger, LogLevelInfo, "renderer created for %q (headless: %t)", info.ApplicationName, r.Headless())
	return r, nil
}

// Destroy waits for the device to be idle and destroys everything in
// reverse creation order. Calling it more than once is a no-op.
func (r *Renderer) Destroy() {
	if r == nil || r.swapchainState == swapchainDestroyed {
		return
	}
	if err := r.waitIdle(); err != nil {
		logf(r.logger, LogLevelWarning, "destroying without an idle device: %v", err)
	}
	r.teardownGeneration(false)
	r.swapchainState = swapchainDestroyed
	r.destroyVertexBuffers()
	r.destroyShaders()
	r.destroySemaphores()
	r.destroyCommandPools()
	r.destroyDevice()
	destroySurface(r.api, r.instance, r.surface, r.callbacks)
	r.surface = 0
	r.destroyInstance()
	logf(r.logger, LogLevelInfo, "renderer destroyed")
}

// Resize rebuilds the swap chain generation for a new desired extent.
func (r *Renderer) Resize(extent gpu.Extent2D) error {
	if r.swapchainState == swapchainDestroyed {
		return newError(StatusError, "the renderer has been destroyed")
	}
	if r.surface == 0 {
		return newError(StatusNotAvailable, "a headless renderer has no swap chain")
	}
	if extent.Width == 0 || extent.Height == 0 {
		return newError(StatusInvalidValue, "invalid extent %dx%d", extent.Width, extent.Height)
	}
	r.desiredExtent = extent
	return r.rebuildGeneration("resize")
}

// Extent is the image extent of the current swap chain.
func (r *Renderer) Extent() gpu.Extent2D {
	return r.swapchain.properties.Extent
}

// Swapchain is the current swap chain handle.
func (r *Renderer) Swapchain() gpu.Swapchain {
	return r.swapchain.handle
}

// Device is the logical device the renderer created.
func (r *Renderer) Device() gpu.Device {
	return r.device
}

// QueueFamilies reports the family picked for every queue role.
func (r *Renderer) QueueFamilies() QueueFamilies {
	return r.physical.families
}

// Headless reports whether the renderer runs without a surface.
func (r *Renderer) Headless() bool {
	return r.surface == 0
}
