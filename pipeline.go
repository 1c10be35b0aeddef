package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// pipelineBuilder assembles the fixed-function graphics pipeline. Viewport
// and scissor are baked in, so the pipeline is rebuilt with the swap chain.
type pipelineBuilder struct {
	stages     []gpu.PipelineShaderStageCreateInfo
	bindings   []gpu.VertexInputBindingDescription
	attributes []gpu.VertexInputAttributeDescription
	extent     gpu.Extent2D
	layout     gpu.PipelineLayout
	renderPass gpu.RenderPass
}

func (b *pipelineBuilder) createInfo() *gpu.GraphicsPipelineCreateInfo {
	return &gpu.GraphicsPipelineCreateInfo{
		Stages: b.stages,
		VertexInputState: gpu.PipelineVertexInputStateCreateInfo{
			VertexBindingDescriptions:   b.bindings,
			VertexAttributeDescriptions: b.attributes,
		},
		InputAssemblyState: gpu.PipelineInputAssemblyStateCreateInfo{
			Topology: gpu.PrimitiveTopologyTriangleList,
		},
		ViewportState: gpu.PipelineViewportStateCreateInfo{
			Viewports: []gpu.Viewport{fullViewport(b.extent)},
			Scissors:  []gpu.Rect2D{fullRect(b.extent)},
		},
		RasterizationState: gpu.PipelineRasterizationStateCreateInfo{
			PolygonMode:     gpu.PolygonModeFill,
			CullMode:        gpu.CullModeBack,
			FrontFace:       gpu.FrontFaceClockwise,
			DepthBiasEnable: false,
			LineWidth:       1.0,
		},
		MultisampleState: gpu.PipelineMultisampleStateCreateInfo{
			RasterizationSamples: gpu.SampleCount1,
			MinSampleShading:     1.0,
		},
		ColorBlendState: gpu.PipelineColorBlendStateCreateInfo{
			Attachments: []gpu.PipelineColorBlendAttachmentState{{
				BlendEnable:    false,
				ColorWriteMask: gpu.ColorComponentAll,
			}},
		},
		Layout:     b.layout,
		RenderPass: b.renderPass,
		Subpass:    0,
	}
}

// createPipelineLayout creates an empty layout: the pipeline reads no
// descriptor sets and no push constants.
func (r *Renderer) createPipelineLayout() error {
	handle, res := r.api.CreatePipelineLayout(r.device, &gpu.PipelineLayoutCreateInfo{}, r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the pipeline layout")
	}
	r.pipelineLayout = handle
	return nil
}

func (r *Renderer) destroyPipelineLayout() {
	if r.pipelineLayout == 0 {
		return
	}
	r.api.DestroyPipelineLayout(r.device, r.pipelineLayout, r.callbacks)
	r.pipelineLayout = 0
}

func (r *Renderer) createPipeline() error {
	builder := pipelineBuilder{
		stages:     r.shaderStages(),
		bindings:   r.vertexBindings,
		attributes: r.vertexAttributes,
		extent:     r.swapchain.properties.Extent,
		layout:     r.pipelineLayout,
		renderPass: r.renderPass,
	}
	handle, res := r.api.CreateGraphicsPipeline(r.device, builder.createInfo(), r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the graphics pipeline")
	}
	r.pipeline = handle
	return nil
}

func (r *Renderer) destroyPipeline() {
	if r.pipeline == 0 {
		return
	}
	r.api.DestroyPipeline(r.device, r.pipeline, r.callbacks)
	r.pipeline = 0
}
