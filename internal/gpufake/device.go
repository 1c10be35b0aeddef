package gpufake

import (
	"slices"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) CreateDevice(physical gpu.PhysicalDevice, info *gpu.DeviceCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Device, gpu.Result) {
	i, ok := d.physical[physical]
	if !ok {
		d.misuse("CreateDevice on unknown physical device %d", physical)
		return 0, gpu.ErrorInitializationFailed
	}
	dev := d.cfg.Devices[i]
	for _, name := range info.EnabledExtensionNames {
		if !slices.Contains(dev.Extensions, name) {
			d.calls["CreateDevice"]++
			return 0, gpu.ErrorExtensionNotPresent
		}
	}
	for _, q := range info.QueueCreateInfos {
		if int(q.QueueFamilyIndex) >= len(dev.QueueFamilies) {
			d.misuse("CreateDevice with family %d out of range", q.QueueFamilyIndex)
		}
	}
	h, res := d.create("CreateDevice", KindDevice, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.deviceFor[gpu.Device(h)] = i
	queues := make([]gpu.DeviceQueueCreateInfo, len(info.QueueCreateInfos))
	for j, q := range info.QueueCreateInfos {
		queues[j] = gpu.DeviceQueueCreateInfo{
			QueueFamilyIndex: q.QueueFamilyIndex,
			QueuePriorities:  slices.Clone(q.QueuePriorities),
		}
	}
	d.DeviceInfos = append(d.DeviceInfos, gpu.DeviceCreateInfo{
		QueueCreateInfos:      queues,
		EnabledLayerNames:     slices.Clone(info.EnabledLayerNames),
		EnabledExtensionNames: slices.Clone(info.EnabledExtensionNames),
	})
	return gpu.Device(h), gpu.Success
}

func (d *Driver) DestroyDevice(device gpu.Device, alloc gpu.AllocationCallbacks) {
	delete(d.deviceFor, device)
	d.destroy("DestroyDevice", KindDevice, uint64(device))
}

func (d *Driver) DeviceWaitIdle(device gpu.Device) gpu.Result {
	if res := d.call("DeviceWaitIdle"); res != gpu.Success {
		return res
	}
	d.DeviceWaits++
	return gpu.Success
}

// GetDeviceQueue hands out one stable handle per family and index. Queues
// are owned by the device and are not counted.
func (d *Driver) GetDeviceQueue(device gpu.Device, queueFamily, index uint32) gpu.Queue {
	d.requireLive("GetDeviceQueue", KindDevice, uint64(device))
	key := [2]uint32{queueFamily, index}
	if q, ok := d.queues[key]; ok {
		return q
	}
	q := gpu.Queue(d.handle())
	d.queues[key] = q
	return q
}

// Queue returns the handle GetDeviceQueue gave out for family and index, or
// zero.
func (d *Driver) Queue(queueFamily, index uint32) gpu.Queue {
	return d.queues[[2]uint32{queueFamily, index}]
}

func (d *Driver) CreateSwapchain(device gpu.Device, info *gpu.SwapchainCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Swapchain, gpu.Result) {
	d.requireLive("CreateSwapchain", KindDevice, uint64(device))
	d.requireLive("CreateSwapchain", KindSurface, uint64(info.Surface))
	if info.OldSwapchain != 0 {
		d.requireLive("CreateSwapchain", KindSwapchain, uint64(info.OldSwapchain))
	}
	h, res := d.create("CreateSwapchain", KindSwapchain, alloc)
	if res != gpu.Success {
		return 0, res
	}
	recorded := *info
	recorded.QueueFamilyIndices = slices.Clone(info.QueueFamilyIndices)
	d.SwapchainInfos = append(d.SwapchainInfos, recorded)

	images := make([]gpu.Image, info.MinImageCount)
	for i := range images {
		images[i] = gpu.Image(d.handle())
	}
	d.swapchains[gpu.Swapchain(h)] = &swapchainState{info: recorded, images: images}
	return gpu.Swapchain(h), gpu.Success
}

func (d *Driver) DestroySwapchain(device gpu.Device, swapchain gpu.Swapchain, alloc gpu.AllocationCallbacks) {
	delete(d.swapchains, swapchain)
	d.destroy("DestroySwapchain", KindSwapchain, uint64(swapchain))
}

func (d *Driver) GetSwapchainImages(device gpu.Device, swapchain gpu.Swapchain) ([]gpu.Image, gpu.Result) {
	if res := d.call("GetSwapchainImages"); res != gpu.Success {
		return nil, res
	}
	sc, ok := d.swapchains[swapchain]
	if !ok {
		d.misuse("GetSwapchainImages on dead swapchain %d", swapchain)
		return nil, gpu.ErrorInitializationFailed
	}
	return slices.Clone(sc.images), gpu.Success
}

// AcquireNextImage hands out images round-robin. A queued AcquireResults
// entry takes precedence over injected failures.
func (d *Driver) AcquireNextImage(device gpu.Device, swapchain gpu.Swapchain, timeout uint64, semaphore gpu.Semaphore) (uint32, gpu.Result) {
	res := d.call("AcquireNextImage")
	if len(d.AcquireResults) > 0 {
		res = d.AcquireResults[0]
		d.AcquireResults = d.AcquireResults[1:]
	}
	d.requireLive("AcquireNextImage", KindSemaphore, uint64(semaphore))
	sc, ok := d.swapchains[swapchain]
	if !ok {
		d.misuse("AcquireNextImage on dead swapchain %d", swapchain)
		return 0, gpu.ErrorOutOfDate
	}
	if res != gpu.Success && res != gpu.Suboptimal {
		return 0, res
	}
	d.signal("AcquireNextImage", semaphore)
	index := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	return index, res
}

func (d *Driver) CreateImageView(device gpu.Device, info *gpu.ImageViewCreateInfo, alloc gpu.AllocationCallbacks) (gpu.ImageView, gpu.Result) {
	h, res := d.create("CreateImageView", KindImageView, alloc)
	return gpu.ImageView(h), res
}

func (d *Driver) DestroyImageView(device gpu.Device, view gpu.ImageView, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyImageView", KindImageView, uint64(view))
}

func (d *Driver) CreateShaderModule(device gpu.Device, info *gpu.ShaderModuleCreateInfo, alloc gpu.AllocationCallbacks) (gpu.ShaderModule, gpu.Result) {
	if len(info.Code) == 0 || len(info.Code)%4 != 0 {
		d.misuse("CreateShaderModule with %d bytes of code", len(info.Code))
	}
	h, res := d.create("CreateShaderModule", KindShaderModule, alloc)
	return gpu.ShaderModule(h), res
}

func (d *Driver) DestroyShaderModule(device gpu.Device, module gpu.ShaderModule, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyShaderModule", KindShaderModule, uint64(module))
}

func (d *Driver) CreateRenderPass(device gpu.Device, info *gpu.RenderPassCreateInfo, alloc gpu.AllocationCallbacks) (gpu.RenderPass, gpu.Result) {
	h, res := d.create("CreateRenderPass", KindRenderPass, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.RenderPassInfos = append(d.RenderPassInfos, gpu.RenderPassCreateInfo{
		Attachments:  slices.Clone(info.Attachments),
		Subpasses:    slices.Clone(info.Subpasses),
		Dependencies: slices.Clone(info.Dependencies),
	})
	return gpu.RenderPass(h), gpu.Success
}

func (d *Driver) DestroyRenderPass(device gpu.Device, renderPass gpu.RenderPass, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyRenderPass", KindRenderPass, uint64(renderPass))
}

func (d *Driver) CreatePipelineLayout(device gpu.Device, info *gpu.PipelineLayoutCreateInfo, alloc gpu.AllocationCallbacks) (gpu.PipelineLayout, gpu.Result) {
	h, res := d.create("CreatePipelineLayout", KindPipelineLayout, alloc)
	return gpu.PipelineLayout(h), res
}

func (d *Driver) DestroyPipelineLayout(device gpu.Device, layout gpu.PipelineLayout, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyPipelineLayout", KindPipelineLayout, uint64(layout))
}

func (d *Driver) CreateGraphicsPipeline(device gpu.Device, info *gpu.GraphicsPipelineCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Pipeline, gpu.Result) {
	for _, stage := range info.Stages {
		d.requireLive("CreateGraphicsPipeline", KindShaderModule, uint64(stage.Module))
	}
	d.requireLive("CreateGraphicsPipeline", KindPipelineLayout, uint64(info.Layout))
	d.requireLive("CreateGraphicsPipeline", KindRenderPass, uint64(info.RenderPass))
	h, res := d.create("CreateGraphicsPipeline", KindPipeline, alloc)
	if res != gpu.Success {
		return 0, res
	}
	recorded := *info
	recorded.Stages = slices.Clone(info.Stages)
	recorded.VertexInputState.VertexBindingDescriptions = slices.Clone(info.VertexInputState.VertexBindingDescriptions)
	recorded.VertexInputState.VertexAttributeDescriptions = slices.Clone(info.VertexInputState.VertexAttributeDescriptions)
	recorded.ViewportState.Viewports = slices.Clone(info.ViewportState.Viewports)
	recorded.ViewportState.Scissors = slices.Clone(info.ViewportState.Scissors)
	recorded.ColorBlendState.Attachments = slices.Clone(info.ColorBlendState.Attachments)
	d.PipelineInfos = append(d.PipelineInfos, recorded)
	return gpu.Pipeline(h), gpu.Success
}

func (d *Driver) DestroyPipeline(device gpu.Device, pipeline gpu.Pipeline, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyPipeline", KindPipeline, uint64(pipeline))
}

func (d *Driver) CreateFramebuffer(device gpu.Device, info *gpu.FramebufferCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Framebuffer, gpu.Result) {
	d.requireLive("CreateFramebuffer", KindRenderPass, uint64(info.RenderPass))
	for _, view := range info.Attachments {
		d.requireLive("CreateFramebuffer", KindImageView, uint64(view))
	}
	h, res := d.create("CreateFramebuffer", KindFramebuffer, alloc)
	return gpu.Framebuffer(h), res
}

func (d *Driver) DestroyFramebuffer(device gpu.Device, framebuffer gpu.Framebuffer, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyFramebuffer", KindFramebuffer, uint64(framebuffer))
}

func (d *Driver) CreateCommandPool(device gpu.Device, info *gpu.CommandPoolCreateInfo, alloc gpu.AllocationCallbacks) (gpu.CommandPool, gpu.Result) {
	h, res := d.create("CreateCommandPool", KindCommandPool, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.CommandPools = append(d.CommandPools, *info)
	return gpu.CommandPool(h), gpu.Success
}

// DestroyCommandPool also frees the command buffers still allocated from
// the pool.
func (d *Driver) DestroyCommandPool(device gpu.Device, pool gpu.CommandPool, alloc gpu.AllocationCallbacks) {
	for h, cb := range d.commandBuffers {
		if cb.pool == pool {
			delete(d.commandBuffers, h)
			delete(d.objects, uint64(h))
		}
	}
	d.destroy("DestroyCommandPool", KindCommandPool, uint64(pool))
}

// AllocateCommandBuffers charges no host memory: command buffers live in
// their pool's allocation.
func (d *Driver) AllocateCommandBuffers(device gpu.Device, info *gpu.CommandBufferAllocateInfo) ([]gpu.CommandBuffer, gpu.Result) {
	d.requireLive("AllocateCommandBuffers", KindCommandPool, uint64(info.CommandPool))
	if res := d.call("AllocateCommandBuffers"); res != gpu.Success {
		return nil, res
	}
	buffers := make([]gpu.CommandBuffer, info.CommandBufferCount)
	for i := range buffers {
		h := d.handle()
		d.objects[h] = object{kind: KindCommandBuffer}
		d.created[KindCommandBuffer]++
		buffers[i] = gpu.CommandBuffer(h)
		d.commandBuffers[buffers[i]] = &commandBuffer{pool: info.CommandPool}
	}
	return buffers, gpu.Success
}

func (d *Driver) FreeCommandBuffers(device gpu.Device, pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	for _, b := range buffers {
		if cb, ok := d.commandBuffers[b]; ok && cb.pool != pool {
			d.misuse("FreeCommandBuffers of buffer %d through a foreign pool", b)
		}
		delete(d.commandBuffers, b)
		d.destroy("FreeCommandBuffers", KindCommandBuffer, uint64(b))
	}
}

func (d *Driver) CreateSemaphore(device gpu.Device, alloc gpu.AllocationCallbacks) (gpu.Semaphore, gpu.Result) {
	h, res := d.create("CreateSemaphore", KindSemaphore, alloc)
	return gpu.Semaphore(h), res
}

func (d *Driver) DestroySemaphore(device gpu.Device, semaphore gpu.Semaphore, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroySemaphore", KindSemaphore, uint64(semaphore))
	delete(d.pending, semaphore)
}

func (d *Driver) CreateBuffer(device gpu.Device, info *gpu.BufferCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Buffer, gpu.Result) {
	h, res := d.create("CreateBuffer", KindBuffer, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.bufferSizes[gpu.Buffer(h)] = info.Size
	return gpu.Buffer(h), gpu.Success
}

func (d *Driver) DestroyBuffer(device gpu.Device, buffer gpu.Buffer, alloc gpu.AllocationCallbacks) {
	delete(d.bufferSizes, buffer)
	delete(d.bufferMemory, buffer)
	d.destroy("DestroyBuffer", KindBuffer, uint64(buffer))
}

func (d *Driver) GetBufferMemoryRequirements(device gpu.Device, buffer gpu.Buffer) gpu.MemoryRequirements {
	bits := uint32(0)
	if i, ok := d.deviceFor[device]; ok {
		bits = d.cfg.Devices[i].MemoryTypeBits
	}
	return gpu.MemoryRequirements{
		Size:           d.bufferSizes[buffer],
		Alignment:      16,
		MemoryTypeBits: bits,
	}
}

func (d *Driver) AllocateMemory(device gpu.Device, info *gpu.MemoryAllocateInfo, alloc gpu.AllocationCallbacks) (gpu.DeviceMemory, gpu.Result) {
	if i, ok := d.deviceFor[device]; ok && int(info.MemoryTypeIndex) >= len(d.cfg.Devices[i].Memory.MemoryTypes) {
		d.misuse("AllocateMemory with memory type %d out of range", info.MemoryTypeIndex)
	}
	h, res := d.create("AllocateMemory", KindDeviceMemory, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.memory[gpu.DeviceMemory(h)] = make([]byte, info.AllocationSize)
	return gpu.DeviceMemory(h), gpu.Success
}

func (d *Driver) FreeMemory(device gpu.Device, memory gpu.DeviceMemory, alloc gpu.AllocationCallbacks) {
	delete(d.memory, memory)
	delete(d.mapped, memory)
	d.destroy("FreeMemory", KindDeviceMemory, uint64(memory))
}

func (d *Driver) BindBufferMemory(device gpu.Device, buffer gpu.Buffer, memory gpu.DeviceMemory, offset gpu.DeviceSize) gpu.Result {
	if res := d.call("BindBufferMemory"); res != gpu.Success {
		return res
	}
	if !d.requireLive("BindBufferMemory", KindBuffer, uint64(buffer)) ||
		!d.requireLive("BindBufferMemory", KindDeviceMemory, uint64(memory)) {
		return gpu.ErrorInitializationFailed
	}
	d.bufferMemory[buffer] = memory
	return gpu.Success
}

func (d *Driver) MapMemory(device gpu.Device, memory gpu.DeviceMemory, offset, size gpu.DeviceSize) ([]byte, gpu.Result) {
	if res := d.call("MapMemory"); res != gpu.Success {
		return nil, res
	}
	data, ok := d.memory[memory]
	if !ok {
		d.misuse("MapMemory on dead memory %d", memory)
		return nil, gpu.ErrorMemoryMapFailed
	}
	if d.mapped[memory] {
		d.misuse("MapMemory on memory %d already mapped", memory)
		return nil, gpu.ErrorMemoryMapFailed
	}
	end := gpu.DeviceSize(len(data))
	if size != gpu.WholeSize {
		end = offset + size
	}
	if offset > end || end > gpu.DeviceSize(len(data)) {
		return nil, gpu.ErrorMemoryMapFailed
	}
	d.mapped[memory] = true
	return data[offset:end], gpu.Success
}

func (d *Driver) UnmapMemory(device gpu.Device, memory gpu.DeviceMemory) {
	if !d.mapped[memory] {
		d.misuse("UnmapMemory on memory %d not mapped", memory)
	}
	delete(d.mapped, memory)
}
