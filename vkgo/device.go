package vkgo

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) device(h gpu.Device) vk.Device {
	return lookup(d, &d.devices, uint64(h))
}

func (d *Driver) CreateDevice(physical gpu.PhysicalDevice, info *gpu.DeviceCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Device, gpu.Result) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, len(info.QueueCreateInfos))
	for i, q := range info.QueueCreateInfos {
		queueInfos[i] = vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.QueueFamilyIndex,
			QueueCount:       uint32(len(q.QueuePriorities)),
			PQueuePriorities: q.QueuePriorities,
		}
	}
	layers := safeStrings(info.EnabledLayerNames)
	extensions := safeStrings(info.EnabledExtensionNames)
	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var device vk.Device
	if res := vk.CreateDevice(d.physical(physical), &createInfo, nil, &device); res != vk.Success {
		return 0, result(res)
	}
	return gpu.Device(register(d, &d.devices, device)), gpu.Success
}

func (d *Driver) DestroyDevice(device gpu.Device, alloc gpu.AllocationCallbacks) {
	v, ok := release(d, &d.devices, uint64(device))
	if !ok {
		return
	}
	d.mu.Lock()
	for native, h := range d.queueHandles {
		d.queues.take(uint64(h))
		delete(d.queueHandles, native)
	}
	d.mu.Unlock()
	vk.DestroyDevice(v, nil)
}

func (d *Driver) DeviceWaitIdle(device gpu.Device) gpu.Result {
	return result(vk.DeviceWaitIdle(d.device(device)))
}

func (d *Driver) GetDeviceQueue(device gpu.Device, queueFamily, index uint32) gpu.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(d.device(device), queueFamily, index, &queue)

	d.mu.Lock()
	defer d.mu.Unlock()
	if h, ok := d.queueHandles[queue]; ok {
		return h
	}
	h := gpu.Queue(d.queues.put(&d.next, queue))
	d.queueHandles[queue] = h
	return h
}

func (d *Driver) CreateSwapchain(device gpu.Device, info *gpu.SwapchainCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Swapchain, gpu.Result) {
	createInfo := vkSwapchainCreateInfo(info,
		lookup(d, &d.surfaces, uint64(info.Surface)),
		lookup(d, &d.swapchains, uint64(info.OldSwapchain)))

	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(d.device(device), &createInfo, nil, &swapchain); res != vk.Success {
		return 0, result(res)
	}
	return gpu.Swapchain(register(d, &d.swapchains, swapchain)), gpu.Success
}

func (d *Driver) DestroySwapchain(device gpu.Device, swapchain gpu.Swapchain, alloc gpu.AllocationCallbacks) {
	v, ok := release(d, &d.swapchains, uint64(swapchain))
	if !ok {
		return
	}
	d.mu.Lock()
	for _, image := range d.swapchainImages[swapchain] {
		d.images.take(uint64(image))
	}
	delete(d.swapchainImages, swapchain)
	d.mu.Unlock()
	vk.DestroySwapchain(d.device(device), v, nil)
}

func (d *Driver) GetSwapchainImages(device gpu.Device, swapchain gpu.Swapchain) ([]gpu.Image, gpu.Result) {
	d.mu.Lock()
	cached, ok := d.swapchainImages[swapchain]
	d.mu.Unlock()
	if ok {
		return cached, gpu.Success
	}

	nativeDevice := d.device(device)
	native := lookup(d, &d.swapchains, uint64(swapchain))
	var count uint32
	if res := vk.GetSwapchainImages(nativeDevice, native, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(nativeDevice, native, &count, images); res != vk.Success {
		return nil, result(res)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]gpu.Image, count)
	for i, image := range images[:count] {
		handles[i] = gpu.Image(d.images.put(&d.next, image))
	}
	d.swapchainImages[swapchain] = handles
	return handles, gpu.Success
}

func (d *Driver) AcquireNextImage(device gpu.Device, swapchain gpu.Swapchain, timeout uint64, semaphore gpu.Semaphore) (uint32, gpu.Result) {
	var index uint32
	res := vk.AcquireNextImage(d.device(device),
		lookup(d, &d.swapchains, uint64(swapchain)),
		timeout,
		lookup(d, &d.semaphores, uint64(semaphore)),
		nil,
		&index)
	return index, result(res)
}

func (d *Driver) CreateImageView(device gpu.Device, info *gpu.ImageViewCreateInfo, alloc gpu.AllocationCallbacks) (gpu.ImageView, gpu.Result) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    lookup(d, &d.images, uint64(info.Image)),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(d.device(device), &createInfo, nil, &view); res != vk.Success {
		return 0, result(res)
	}
	return gpu.ImageView(register(d, &d.imageViews, view)), gpu.Success
}

func (d *Driver) DestroyImageView(device gpu.Device, view gpu.ImageView, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.imageViews, uint64(view)); ok {
		vk.DestroyImageView(d.device(device), v, nil)
	}
}

func (d *Driver) CreateShaderModule(device gpu.Device, info *gpu.ShaderModuleCreateInfo, alloc gpu.AllocationCallbacks) (gpu.ShaderModule, gpu.Result) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(info.Code)),
		PCode:    spirvWords(info.Code),
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(d.device(device), &createInfo, nil, &module); res != vk.Success {
		return 0, result(res)
	}
	return gpu.ShaderModule(register(d, &d.shaderModules, module)), gpu.Success
}

func (d *Driver) DestroyShaderModule(device gpu.Device, module gpu.ShaderModule, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.shaderModules, uint64(module)); ok {
		vk.DestroyShaderModule(d.device(device), v, nil)
	}
}

func (d *Driver) CreateRenderPass(device gpu.Device, info *gpu.RenderPassCreateInfo, alloc gpu.AllocationCallbacks) (gpu.RenderPass, gpu.Result) {
	createInfo := vkRenderPassCreateInfo(info)
	var renderPass vk.RenderPass
	if res := vk.CreateRenderPass(d.device(device), &createInfo, nil, &renderPass); res != vk.Success {
		return 0, result(res)
	}
	return gpu.RenderPass(register(d, &d.renderPasses, renderPass)), gpu.Success
}

func (d *Driver) DestroyRenderPass(device gpu.Device, renderPass gpu.RenderPass, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.renderPasses, uint64(renderPass)); ok {
		vk.DestroyRenderPass(d.device(device), v, nil)
	}
}

// CreatePipelineLayout ignores the set layout and push constant counts:
// the renderer never binds descriptors.
func (d *Driver) CreatePipelineLayout(device gpu.Device, info *gpu.PipelineLayoutCreateInfo, alloc gpu.AllocationCallbacks) (gpu.PipelineLayout, gpu.Result) {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(d.device(device), &createInfo, nil, &layout); res != vk.Success {
		return 0, result(res)
	}
	return gpu.PipelineLayout(register(d, &d.pipelineLayouts, layout)), gpu.Success
}

func (d *Driver) DestroyPipelineLayout(device gpu.Device, layout gpu.PipelineLayout, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.pipelineLayouts, uint64(layout)); ok {
		vk.DestroyPipelineLayout(d.device(device), v, nil)
	}
}

func (d *Driver) CreateGraphicsPipeline(device gpu.Device, info *gpu.GraphicsPipelineCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Pipeline, gpu.Result) {
	modules := make([]gpu.ShaderModule, len(info.Stages))
	for i, s := range info.Stages {
		modules[i] = s.Module
	}
	createInfo := vkGraphicsPipelineCreateInfo(info,
		lookupAll(d, &d.shaderModules, modules),
		lookup(d, &d.pipelineLayouts, uint64(info.Layout)),
		lookup(d, &d.renderPasses, uint64(info.RenderPass)))

	pipelines := []vk.Pipeline{vk.NullPipeline}
	res := vk.CreateGraphicsPipelines(d.device(device), nil, 1,
		[]vk.GraphicsPipelineCreateInfo{createInfo}, nil, pipelines)
	if res != vk.Success {
		return 0, result(res)
	}
	return gpu.Pipeline(register(d, &d.pipelines, pipelines[0])), gpu.Success
}

func (d *Driver) DestroyPipeline(device gpu.Device, pipeline gpu.Pipeline, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.pipelines, uint64(pipeline)); ok {
		vk.DestroyPipeline(d.device(device), v, nil)
	}
}

func (d *Driver) CreateFramebuffer(device gpu.Device, info *gpu.FramebufferCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Framebuffer, gpu.Result) {
	attachments := lookupAll(d, &d.imageViews, info.Attachments)
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      lookup(d, &d.renderPasses, uint64(info.RenderPass)),
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Width,
		Height:          info.Height,
		Layers:          info.Layers,
	}
	var framebuffer vk.Framebuffer
	if res := vk.CreateFramebuffer(d.device(device), &createInfo, nil, &framebuffer); res != vk.Success {
		return 0, result(res)
	}
	return gpu.Framebuffer(register(d, &d.framebuffers, framebuffer)), gpu.Success
}

func (d *Driver) DestroyFramebuffer(device gpu.Device, framebuffer gpu.Framebuffer, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.framebuffers, uint64(framebuffer)); ok {
		vk.DestroyFramebuffer(d.device(device), v, nil)
	}
}

func (d *Driver) CreateCommandPool(device gpu.Device, info *gpu.CommandPoolCreateInfo, alloc gpu.AllocationCallbacks) (gpu.CommandPool, gpu.Result) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(info.Flags),
		QueueFamilyIndex: info.QueueFamilyIndex,
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(d.device(device), &createInfo, nil, &pool); res != vk.Success {
		return 0, result(res)
	}
	return gpu.CommandPool(register(d, &d.commandPools, pool)), gpu.Success
}

// DestroyCommandPool also forgets the command buffers allocated from pool,
// which the driver frees implicitly.
func (d *Driver) DestroyCommandPool(device gpu.Device, pool gpu.CommandPool, alloc gpu.AllocationCallbacks) {
	v, ok := release(d, &d.commandPools, uint64(pool))
	if !ok {
		return
	}
	d.mu.Lock()
	for _, buffer := range d.poolBuffers[pool] {
		d.commandBuffers.take(uint64(buffer))
	}
	delete(d.poolBuffers, pool)
	d.mu.Unlock()
	vk.DestroyCommandPool(d.device(device), v, nil)
}

func (d *Driver) AllocateCommandBuffers(device gpu.Device, info *gpu.CommandBufferAllocateInfo) ([]gpu.CommandBuffer, gpu.Result) {
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        lookup(d, &d.commandPools, uint64(info.CommandPool)),
		Level:              vk.CommandBufferLevel(info.Level),
		CommandBufferCount: info.CommandBufferCount,
	}
	buffers := make([]vk.CommandBuffer, info.CommandBufferCount)
	if res := vk.AllocateCommandBuffers(d.device(device), &allocInfo, buffers); res != vk.Success {
		return nil, result(res)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]gpu.CommandBuffer, len(buffers))
	for i, buffer := range buffers {
		handles[i] = gpu.CommandBuffer(d.commandBuffers.put(&d.next, buffer))
	}
	d.poolBuffers[info.CommandPool] = append(d.poolBuffers[info.CommandPool], handles...)
	return handles, gpu.Success
}

func (d *Driver) FreeCommandBuffers(device gpu.Device, pool gpu.CommandPool, buffers []gpu.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	d.mu.Lock()
	native := make([]vk.CommandBuffer, 0, len(buffers))
	for _, h := range buffers {
		if v, ok := d.commandBuffers.take(uint64(h)); ok {
			native = append(native, v)
		}
	}
	kept := d.poolBuffers[pool][:0]
	for _, h := range d.poolBuffers[pool] {
		if _, ok := d.commandBuffers.get(uint64(h)); ok {
			kept = append(kept, h)
		}
	}
	d.poolBuffers[pool] = kept
	nativePool, _ := d.commandPools.get(uint64(pool))
	d.mu.Unlock()

	if len(native) > 0 {
		vk.FreeCommandBuffers(d.device(device), nativePool, uint32(len(native)), native)
	}
}

func (d *Driver) CreateSemaphore(device gpu.Device, alloc gpu.AllocationCallbacks) (gpu.Semaphore, gpu.Result) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(d.device(device), &createInfo, nil, &semaphore); res != vk.Success {
		return 0, result(res)
	}
	return gpu.Semaphore(register(d, &d.semaphores, semaphore)), gpu.Success
}

func (d *Driver) DestroySemaphore(device gpu.Device, semaphore gpu.Semaphore, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.semaphores, uint64(semaphore)); ok {
		vk.DestroySemaphore(d.device(device), v, nil)
	}
}

func (d *Driver) CreateBuffer(device gpu.Device, info *gpu.BufferCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Buffer, gpu.Result) {
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(info.Size),
		Usage:       vk.BufferUsageFlags(info.Usage),
		SharingMode: vk.SharingMode(info.SharingMode),
	}
	var buffer vk.Buffer
	if res := vk.CreateBuffer(d.device(device), &createInfo, nil, &buffer); res != vk.Success {
		return 0, result(res)
	}
	return gpu.Buffer(register(d, &d.buffers, buffer)), gpu.Success
}

func (d *Driver) DestroyBuffer(device gpu.Device, buffer gpu.Buffer, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.buffers, uint64(buffer)); ok {
		vk.DestroyBuffer(d.device(device), v, nil)
	}
}

func (d *Driver) GetBufferMemoryRequirements(device gpu.Device, buffer gpu.Buffer) gpu.MemoryRequirements {
	var reqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device(device), lookup(d, &d.buffers, uint64(buffer)), &reqs)
	reqs.Deref()
	return gpu.MemoryRequirements{
		Size:           gpu.DeviceSize(reqs.Size),
		Alignment:      gpu.DeviceSize(reqs.Alignment),
		MemoryTypeBits: reqs.MemoryTypeBits,
	}
}

func (d *Driver) AllocateMemory(device gpu.Device, info *gpu.MemoryAllocateInfo, alloc gpu.AllocationCallbacks) (gpu.DeviceMemory, gpu.Result) {
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  vk.DeviceSize(info.AllocationSize),
		MemoryTypeIndex: info.MemoryTypeIndex,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(d.device(device), &allocInfo, nil, &memory); res != vk.Success {
		return 0, result(res)
	}
	return gpu.DeviceMemory(register(d, &d.memories, memory)), gpu.Success
}

func (d *Driver) FreeMemory(device gpu.Device, memory gpu.DeviceMemory, alloc gpu.AllocationCallbacks) {
	v, ok := release(d, &d.memories, uint64(memory))
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.mapped, memory)
	d.mu.Unlock()
	vk.FreeMemory(d.device(device), v, nil)
}

func (d *Driver) BindBufferMemory(device gpu.Device, buffer gpu.Buffer, memory gpu.DeviceMemory, offset gpu.DeviceSize) gpu.Result {
	return result(vk.BindBufferMemory(d.device(device),
		lookup(d, &d.buffers, uint64(buffer)),
		lookup(d, &d.memories, uint64(memory)),
		vk.DeviceSize(offset)))
}

// MapMemory requires an explicit size: the returned slice cannot describe
// an unbounded mapping.
func (d *Driver) MapMemory(device gpu.Device, memory gpu.DeviceMemory, offset, size gpu.DeviceSize) ([]byte, gpu.Result) {
	if size == gpu.WholeSize {
		return nil, gpu.ErrorMemoryMapFailed
	}
	var ptr unsafe.Pointer
	res := vk.MapMemory(d.device(device), lookup(d, &d.memories, uint64(memory)),
		vk.DeviceSize(offset), vk.DeviceSize(size), 0, &ptr)
	if res != vk.Success {
		return nil, result(res)
	}
	d.mu.Lock()
	d.mapped[memory] = true
	d.mu.Unlock()
	return unsafe.Slice((*byte)(ptr), int(size)), gpu.Success
}

func (d *Driver) UnmapMemory(device gpu.Device, memory gpu.DeviceMemory) {
	d.mu.Lock()
	mapped := d.mapped[memory]
	delete(d.mapped, memory)
	d.mu.Unlock()
	if mapped {
		vk.UnmapMemory(d.device(device), lookup(d, &d.memories, uint64(memory)))
	}
}
