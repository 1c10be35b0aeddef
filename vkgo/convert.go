package vkgo

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func register[T any](d *Driver, t *table[T], v T) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return t.put(&d.next, v)
}

func lookup[T any](d *Driver, t *table[T], h uint64) T {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, _ := t.get(h)
	return v
}

func release[T any](d *Driver, t *table[T], h uint64) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return t.take(h)
}

func lookupAll[T any, H ~uint64](d *Driver, t *table[T], handles []H) []T {
	if len(handles) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]T, len(handles))
	for i, h := range handles {
		out[i], _ = t.get(uint64(h))
	}
	return out
}

// safeString NUL-terminates s for the C side.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != 0 {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

func boolean(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// spirvWords copies code into 32-bit words. Code whose length is not a
// multiple of four is truncated.
func spirvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	if len(words) > 0 {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4), code)
	}
	return words
}

func extent2D(e vk.Extent2D) gpu.Extent2D {
	e.Deref()
	return gpu.Extent2D{Width: e.Width, Height: e.Height}
}

func vkExtent2D(e gpu.Extent2D) vk.Extent2D {
	return vk.Extent2D{Width: e.Width, Height: e.Height}
}

func vkRect2D(r gpu.Rect2D) vk.Rect2D {
	return vk.Rect2D{
		Offset: vk.Offset2D{X: r.Offset.X, Y: r.Offset.Y},
		Extent: vkExtent2D(r.Extent),
	}
}

func surfaceCapabilities(caps vk.SurfaceCapabilities) gpu.SurfaceCapabilities {
	caps.Deref()
	return gpu.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           extent2D(caps.CurrentExtent),
		MinImageExtent:          extent2D(caps.MinImageExtent),
		MaxImageExtent:          extent2D(caps.MaxImageExtent),
		MaxImageArrayLayers:     caps.MaxImageArrayLayers,
		SupportedTransforms:     gpu.SurfaceTransformFlags(caps.SupportedTransforms),
		CurrentTransform:        gpu.SurfaceTransformFlags(caps.CurrentTransform),
		SupportedCompositeAlpha: gpu.CompositeAlphaFlags(caps.SupportedCompositeAlpha),
		SupportedUsageFlags:     gpu.ImageUsageFlags(caps.SupportedUsageFlags),
	}
}

func memoryProperties(props vk.PhysicalDeviceMemoryProperties) gpu.MemoryProperties {
	props.Deref()
	out := gpu.MemoryProperties{
		MemoryTypes: make([]gpu.MemoryType, props.MemoryTypeCount),
		MemoryHeaps: make([]gpu.MemoryHeap, props.MemoryHeapCount),
	}
	for i := range out.MemoryTypes {
		t := props.MemoryTypes[i]
		t.Deref()
		out.MemoryTypes[i] = gpu.MemoryType{
			PropertyFlags: gpu.MemoryPropertyFlags(t.PropertyFlags),
			HeapIndex:     t.HeapIndex,
		}
	}
	for i := range out.MemoryHeaps {
		h := props.MemoryHeaps[i]
		h.Deref()
		out.MemoryHeaps[i] = gpu.MemoryHeap{Size: gpu.DeviceSize(h.Size), Flags: uint32(h.Flags)}
	}
	return out
}

func vkSwapchainCreateInfo(info *gpu.SwapchainCreateInfo, surface vk.Surface, old vk.Swapchain) vk.SwapchainCreateInfo {
	return vk.SwapchainCreateInfo{
		SType:                 vk.StructureTypeSwapchainCreateInfo,
		Surface:               surface,
		MinImageCount:         info.MinImageCount,
		ImageFormat:           vk.Format(info.ImageFormat),
		ImageColorSpace:       vk.ColorSpace(info.ImageColorSpace),
		ImageExtent:           vkExtent2D(info.ImageExtent),
		ImageArrayLayers:      info.ImageArrayLayers,
		ImageUsage:            vk.ImageUsageFlags(info.ImageUsage),
		ImageSharingMode:      vk.SharingMode(info.ImageSharingMode),
		QueueFamilyIndexCount: uint32(len(info.QueueFamilyIndices)),
		PQueueFamilyIndices:   info.QueueFamilyIndices,
		PreTransform:          vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:        vk.CompositeAlphaFlagBits(info.CompositeAlpha),
		PresentMode:           vk.PresentMode(info.PresentMode),
		Clipped:               boolean(info.Clipped),
		OldSwapchain:          old,
	}
}

func vkRenderPassCreateInfo(info *gpu.RenderPassCreateInfo) vk.RenderPassCreateInfo {
	attachments := make([]vk.AttachmentDescription, len(info.Attachments))
	for i, a := range info.Attachments {
		attachments[i] = vk.AttachmentDescription{
			Format:         vk.Format(a.Format),
			Samples:        vk.SampleCountFlagBits(a.Samples),
			LoadOp:         vk.AttachmentLoadOp(a.LoadOp),
			StoreOp:        vk.AttachmentStoreOp(a.StoreOp),
			StencilLoadOp:  vk.AttachmentLoadOp(a.StencilLoadOp),
			StencilStoreOp: vk.AttachmentStoreOp(a.StencilStoreOp),
			InitialLayout:  vk.ImageLayout(a.InitialLayout),
			FinalLayout:    vk.ImageLayout(a.FinalLayout),
		}
	}
	subpasses := make([]vk.SubpassDescription, len(info.Subpasses))
	for i, s := range info.Subpasses {
		refs := make([]vk.AttachmentReference, len(s.ColorAttachments))
		for j, r := range s.ColorAttachments {
			refs[j] = vk.AttachmentReference{Attachment: r.Attachment, Layout: vk.ImageLayout(r.Layout)}
		}
		subpasses[i] = vk.SubpassDescription{
			PipelineBindPoint:    vk.PipelineBindPoint(s.PipelineBindPoint),
			ColorAttachmentCount: uint32(len(refs)),
			PColorAttachments:    refs,
		}
	}
	dependencies := make([]vk.SubpassDependency, len(info.Dependencies))
	for i, dep := range info.Dependencies {
		dependencies[i] = vk.SubpassDependency{
			SrcSubpass:    dep.SrcSubpass,
			DstSubpass:    dep.DstSubpass,
			SrcStageMask:  vk.PipelineStageFlags(dep.SrcStageMask),
			DstStageMask:  vk.PipelineStageFlags(dep.DstStageMask),
			SrcAccessMask: vk.AccessFlags(dep.SrcAccessMask),
			DstAccessMask: vk.AccessFlags(dep.DstAccessMask),
		}
	}
	return vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
}

// vkGraphicsPipelineCreateInfo converts info. Stage modules are resolved by
// the caller and passed in stage order.
func vkGraphicsPipelineCreateInfo(info *gpu.GraphicsPipelineCreateInfo, modules []vk.ShaderModule, layout vk.PipelineLayout, renderPass vk.RenderPass) vk.GraphicsPipelineCreateInfo {
	stages := make([]vk.PipelineShaderStageCreateInfo, len(info.Stages))
	for i, s := range info.Stages {
		stages[i] = vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFlagBits(s.Stage),
			Module: modules[i],
			PName:  safeString(s.Name),
		}
	}

	bindings := make([]vk.VertexInputBindingDescription, len(info.VertexInputState.VertexBindingDescriptions))
	for i, b := range info.VertexInputState.VertexBindingDescriptions {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRate(b.InputRate),
		}
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(info.VertexInputState.VertexAttributeDescriptions))
	for i, a := range info.VertexInputState.VertexAttributeDescriptions {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Format:   vk.Format(a.Format),
			Offset:   a.Offset,
		}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(info.InputAssemblyState.Topology),
		PrimitiveRestartEnable: boolean(info.InputAssemblyState.PrimitiveRestartEnable),
	}

	viewports := make([]vk.Viewport, len(info.ViewportState.Viewports))
	for i, v := range info.ViewportState.Viewports {
		viewports[i] = vk.Viewport{
			X:        v.X,
			Y:        v.Y,
			Width:    v.Width,
			Height:   v.Height,
			MinDepth: v.MinDepth,
			MaxDepth: v.MaxDepth,
		}
	}
	scissors := make([]vk.Rect2D, len(info.ViewportState.Scissors))
	for i, r := range info.ViewportState.Scissors {
		scissors[i] = vkRect2D(r)
	}
	viewport := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: uint32(len(viewports)),
		PViewports:    viewports,
		ScissorCount:  uint32(len(scissors)),
		PScissors:     scissors,
	}

	raster := info.RasterizationState
	rasterization := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        boolean(raster.DepthClampEnable),
		RasterizerDiscardEnable: boolean(raster.RasterizerDiscardEnable),
		PolygonMode:             vk.PolygonMode(raster.PolygonMode),
		CullMode:                vk.CullModeFlags(raster.CullMode),
		FrontFace:               vk.FrontFace(raster.FrontFace),
		DepthBiasEnable:         boolean(raster.DepthBiasEnable),
		LineWidth:               raster.LineWidth,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCountFlagBits(info.MultisampleState.RasterizationSamples),
		SampleShadingEnable:  boolean(info.MultisampleState.SampleShadingEnable),
		MinSampleShading:     info.MultisampleState.MinSampleShading,
	}

	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, len(info.ColorBlendState.Attachments))
	for i, a := range info.ColorBlendState.Attachments {
		blendAttachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:    boolean(a.BlendEnable),
			ColorWriteMask: vk.ColorComponentFlags(a.ColorWriteMask),
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   boolean(info.ColorBlendState.LogicOpEnable),
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
		BlendConstants:  info.ColorBlendState.BlendConstants,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewport,
		PRasterizationState: &rasterization,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		Layout:              layout,
		RenderPass:          renderPass,
		Subpass:             info.Subpass,
		BasePipelineIndex:   -1,
	}
}
