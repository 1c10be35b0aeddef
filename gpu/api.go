package gpu

// AllocationCallbacks is the host allocator an implementation charges for
// the memory backing the objects it creates. A nil block from Allocation or
// Reallocation reports exhaustion. A nil AllocationCallbacks selects the
// implementation's own allocator.
type AllocationCallbacks interface {
	Allocation(size, alignment uintptr, scope SystemAllocationScope) []byte
	Reallocation(original []byte, size, alignment uintptr, scope SystemAllocationScope) []byte
	Free(memory []byte)
}

// InstanceFuncs covers the global and instance level entry points.
type InstanceFuncs interface {
	EnumerateInstanceLayerProperties() ([]string, Result)
	EnumerateInstanceExtensionProperties() ([]string, Result)
	CreateInstance(info *InstanceCreateInfo, alloc AllocationCallbacks) (Instance, Result)
	DestroyInstance(instance Instance, alloc AllocationCallbacks)

	CreateDebugReportCallback(instance Instance, info *DebugReportCallbackCreateInfo, alloc AllocationCallbacks) (DebugReportCallback, Result)
	DestroyDebugReportCallback(instance Instance, callback DebugReportCallback, alloc AllocationCallbacks)

	DestroySurface(instance Instance, surface Surface, alloc AllocationCallbacks)

	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, Result)
	GetPhysicalDeviceProperties(physical PhysicalDevice) PhysicalDeviceProperties
	GetPhysicalDeviceQueueFamilyProperties(physical PhysicalDevice) []QueueFamilyProperties
	GetPhysicalDeviceMemoryProperties(physical PhysicalDevice) MemoryProperties
	EnumerateDeviceExtensionProperties(physical PhysicalDevice) ([]string, Result)
	GetPhysicalDeviceSurfaceSupport(physical PhysicalDevice, queueFamily uint32, surface Surface) (bool, Result)
	GetPhysicalDeviceSurfaceCapabilities(physical PhysicalDevice, surface Surface) (SurfaceCapabilities, Result)
	GetPhysicalDeviceSurfaceFormats(physical PhysicalDevice, surface Surface) ([]SurfaceFormat, Result)
	GetPhysicalDeviceSurfacePresentModes(physical PhysicalDevice, surface Surface) ([]PresentMode, Result)
}

// DeviceFuncs covers object creation on a logical device.
type DeviceFuncs interface {
	CreateDevice(physical PhysicalDevice, info *DeviceCreateInfo, alloc AllocationCallbacks) (Device, Result)
	DestroyDevice(device Device, alloc AllocationCallbacks)
	DeviceWaitIdle(device Device) Result
	GetDeviceQueue(device Device, queueFamily, index uint32) Queue

	CreateSwapchain(device Device, info *SwapchainCreateInfo, alloc AllocationCallbacks) (Swapchain, Result)
	DestroySwapchain(device Device, swapchain Swapchain, alloc AllocationCallbacks)
	GetSwapchainImages(device Device, swapchain Swapchain) ([]Image, Result)
	AcquireNextImage(device Device, swapchain Swapchain, timeout uint64, semaphore Semaphore) (uint32, Result)

	CreateImageView(device Device, info *ImageViewCreateInfo, alloc AllocationCallbacks) (ImageView, Result)
	DestroyImageView(device Device, view ImageView, alloc AllocationCallbacks)

	CreateShaderModule(device Device, info *ShaderModuleCreateInfo, alloc AllocationCallbacks) (ShaderModule, Result)
	DestroyShaderModule(device Device, module ShaderModule, alloc AllocationCallbacks)

	CreateRenderPass(device Device, info *RenderPassCreateInfo, alloc AllocationCallbacks) (RenderPass, Result)
	DestroyRenderPass(device Device, renderPass RenderPass, alloc AllocationCallbacks)
	CreatePipelineLayout(device Device, info *PipelineLayoutCreateInfo, alloc AllocationCallbacks) (PipelineLayout, Result)
	DestroyPipelineLayout(device Device, layout PipelineLayout, alloc AllocationCallbacks)
	CreateGraphicsPipeline(device Device, info *GraphicsPipelineCreateInfo, alloc AllocationCallbacks) (Pipeline, Result)
	DestroyPipeline(device Device, pipeline Pipeline, alloc AllocationCallbacks)
	CreateFramebuffer(device Device, info *FramebufferCreateInfo, alloc AllocationCallbacks) (Framebuffer, Result)
	DestroyFramebuffer(device Device, framebuffer Framebuffer, alloc AllocationCallbacks)

	CreateCommandPool(device Device, info *CommandPoolCreateInfo, alloc AllocationCallbacks) (CommandPool, Result)
	DestroyCommandPool(device Device, pool CommandPool, alloc AllocationCallbacks)
	AllocateCommandBuffers(device Device, info *CommandBufferAllocateInfo) ([]CommandBuffer, Result)
	FreeCommandBuffers(device Device, pool CommandPool, buffers []CommandBuffer)

	CreateSemaphore(device Device, alloc AllocationCallbacks) (Semaphore, Result)
	DestroySemaphore(device Device, semaphore Semaphore, alloc AllocationCallbacks)

	CreateBuffer(device Device, info *BufferCreateInfo, alloc AllocationCallbacks) (Buffer, Result)
	DestroyBuffer(device Device, buffer Buffer, alloc AllocationCallbacks)
	GetBufferMemoryRequirements(device Device, buffer Buffer) MemoryRequirements
	AllocateMemory(device Device, info *MemoryAllocateInfo, alloc AllocationCallbacks) (DeviceMemory, Result)
	FreeMemory(device Device, memory DeviceMemory, alloc AllocationCallbacks)
	BindBufferMemory(device Device, buffer Buffer, memory DeviceMemory, offset DeviceSize) Result
	MapMemory(device Device, memory DeviceMemory, offset, size DeviceSize) ([]byte, Result)
	UnmapMemory(device Device, memory DeviceMemory)
}

// CommandFuncs covers recording and queue operations.
type CommandFuncs interface {
	BeginCommandBuffer(buffer CommandBuffer, flags CommandBufferUsageFlags) Result
	EndCommandBuffer(buffer CommandBuffer) Result
	CmdBeginRenderPass(buffer CommandBuffer, info *RenderPassBeginInfo)
	CmdEndRenderPass(buffer CommandBuffer)
	CmdBindPipeline(buffer CommandBuffer, bindPoint PipelineBindPoint, pipeline Pipeline)
	CmdBindVertexBuffers(buffer CommandBuffer, firstBinding uint32, buffers []Buffer, offsets []DeviceSize)
	CmdDraw(buffer CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32)
	CmdCopyBuffer(buffer CommandBuffer, src, dst Buffer, regions []BufferCopy)

	QueueSubmit(queue Queue, submits []SubmitInfo) Result
	QueueWaitIdle(queue Queue) Result
	QueuePresent(queue Queue, info *PresentInfo) Result
}

// API is the full set of entry points the renderer drives.
type API interface {
	InstanceFuncs
	DeviceFuncs
	CommandFuncs
}
