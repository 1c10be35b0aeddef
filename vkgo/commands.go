package vkgo

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) commandBuffer(h gpu.CommandBuffer) vk.CommandBuffer {
	return lookup(d, &d.commandBuffers, uint64(h))
}

func (d *Driver) BeginCommandBuffer(buffer gpu.CommandBuffer, flags gpu.CommandBufferUsageFlags) gpu.Result {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(flags),
	}
	return result(vk.BeginCommandBuffer(d.commandBuffer(buffer), &beginInfo))
}

func (d *Driver) EndCommandBuffer(buffer gpu.CommandBuffer) gpu.Result {
	return result(vk.EndCommandBuffer(d.commandBuffer(buffer)))
}

func (d *Driver) CmdBeginRenderPass(buffer gpu.CommandBuffer, info *gpu.RenderPassBeginInfo) {
	clearValues := make([]vk.ClearValue, len(info.ClearValues))
	for i, c := range info.ClearValues {
		clearValues[i] = vk.NewClearValue(c[:])
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      lookup(d, &d.renderPasses, uint64(info.RenderPass)),
		Framebuffer:     lookup(d, &d.framebuffers, uint64(info.Framebuffer)),
		RenderArea:      vkRect2D(info.RenderArea),
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(d.commandBuffer(buffer), &beginInfo, vk.SubpassContentsInline)
}

func (d *Driver) CmdEndRenderPass(buffer gpu.CommandBuffer) {
	vk.CmdEndRenderPass(d.commandBuffer(buffer))
}

func (d *Driver) CmdBindPipeline(buffer gpu.CommandBuffer, bindPoint gpu.PipelineBindPoint, pipeline gpu.Pipeline) {
	vk.CmdBindPipeline(d.commandBuffer(buffer), vk.PipelineBindPoint(bindPoint),
		lookup(d, &d.pipelines, uint64(pipeline)))
}

func (d *Driver) CmdBindVertexBuffers(buffer gpu.CommandBuffer, firstBinding uint32, buffers []gpu.Buffer, offsets []gpu.DeviceSize) {
	native := lookupAll(d, &d.buffers, buffers)
	nativeOffsets := make([]vk.DeviceSize, len(offsets))
	for i, o := range offsets {
		nativeOffsets[i] = vk.DeviceSize(o)
	}
	vk.CmdBindVertexBuffers(d.commandBuffer(buffer), firstBinding, uint32(len(native)), native, nativeOffsets)
}

func (d *Driver) CmdDraw(buffer gpu.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(d.commandBuffer(buffer), vertexCount, instanceCount, firstVertex, firstInstance)
}

func (d *Driver) CmdCopyBuffer(buffer gpu.CommandBuffer, src, dst gpu.Buffer, regions []gpu.BufferCopy) {
	native := make([]vk.BufferCopy, len(regions))
	for i, r := range regions {
		native[i] = vk.BufferCopy{
			SrcOffset: vk.DeviceSize(r.SrcOffset),
			DstOffset: vk.DeviceSize(r.DstOffset),
			Size:      vk.DeviceSize(r.Size),
		}
	}
	vk.CmdCopyBuffer(d.commandBuffer(buffer),
		lookup(d, &d.buffers, uint64(src)),
		lookup(d, &d.buffers, uint64(dst)),
		uint32(len(native)), native)
}

func (d *Driver) queue(h gpu.Queue) vk.Queue {
	return lookup(d, &d.queues, uint64(h))
}

func (d *Driver) QueueSubmit(queue gpu.Queue, submits []gpu.SubmitInfo) gpu.Result {
	infos := make([]vk.SubmitInfo, len(submits))
	for i, s := range submits {
		stages := make([]vk.PipelineStageFlags, len(s.WaitDstStageMask))
		for j, stage := range s.WaitDstStageMask {
			stages[j] = vk.PipelineStageFlags(stage)
		}
		wait := lookupAll(d, &d.semaphores, s.WaitSemaphores)
		signal := lookupAll(d, &d.semaphores, s.SignalSemaphores)
		buffers := lookupAll(d, &d.commandBuffers, s.CommandBuffers)
		infos[i] = vk.SubmitInfo{
			SType:                vk.StructureTypeSubmitInfo,
			WaitSemaphoreCount:   uint32(len(wait)),
			PWaitSemaphores:      wait,
			PWaitDstStageMask:    stages,
			CommandBufferCount:   uint32(len(buffers)),
			PCommandBuffers:      buffers,
			SignalSemaphoreCount: uint32(len(signal)),
			PSignalSemaphores:    signal,
		}
	}
	return result(vk.QueueSubmit(d.queue(queue), uint32(len(infos)), infos, nil))
}

func (d *Driver) QueueWaitIdle(queue gpu.Queue) gpu.Result {
	return result(vk.QueueWaitIdle(d.queue(queue)))
}

func (d *Driver) QueuePresent(queue gpu.Queue, info *gpu.PresentInfo) gpu.Result {
	wait := lookupAll(d, &d.semaphores, info.WaitSemaphores)
	swapchains := lookupAll(d, &d.swapchains, info.Swapchains)
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: uint32(len(wait)),
		PWaitSemaphores:    wait,
		SwapchainCount:     uint32(len(swapchains)),
		PSwapchains:        swapchains,
		PImageIndices:      info.ImageIndices,
	}
	return result(vk.QueuePresent(d.queue(queue), &presentInfo))
}
