package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

type semaphoreRole int

const (
	semaphoreImageAcquired semaphoreRole = iota
	semaphorePresentCompleted

	semaphoreCount
)

func (r *Renderer) createSemaphores() error {
	for i := range r.semaphores {
		semaphore, res := r.api.CreateSemaphore(r.device, r.callbacks)
		if res != gpu.Success {
			r.destroySemaphores()
			return resultError(res, "failed to create semaphore %d", i)
		}
		r.semaphores[i] = semaphore
	}
	return nil
}

func (r *Renderer) destroySemaphores() {
	for i, semaphore := range r.semaphores {
		if semaphore != 0 {
			r.api.DestroySemaphore(r.device, semaphore, r.callbacks)
			r.semaphores[i] = 0
		}
	}
}

// createCommandBuffers allocates and records one graphics command buffer
// per swap chain image.
func (r *Renderer) createCommandBuffers() error {
	pool := r.commandPools.forRole(QueueRoleGraphics)
	count := len(r.framebuffers)
	buffers, reserved, err := makeHostSlice[gpu.CommandBuffer](r.allocator, count)
	if err != nil {
		return err
	}
	allocated, res := r.api.AllocateCommandBuffers(r.device, &gpu.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              gpu.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	})
	if res != gpu.Success {
		reserved.release(r.allocator)
		return resultError(res, "failed to allocate %d graphics command buffers", count)
	}
	copy(buffers, allocated)

	for i, cmd := range buffers {
		if err := r.recordCommandBuffer(cmd, r.framebuffers[i]); err != nil {
			r.api.FreeCommandBuffers(r.device, pool, buffers)
			reserved.release(r.allocator)
			return err
		}
	}
	r.commandBuffers = buffers
	r.commandBuffersReserved = reserved
	return nil
}

func (r *Renderer) recordCommandBuffer(cmd gpu.CommandBuffer, framebuffer gpu.Framebuffer) error {
	if res := r.api.BeginCommandBuffer(cmd, gpu.CommandBufferUsageSimultaneousUse); res != gpu.Success {
		return resultError(res, "failed to begin recording a graphics command buffer")
	}

	r.api.CmdBeginRenderPass(cmd, &gpu.RenderPassBeginInfo{
		RenderPass:  r.renderPass,
		Framebuffer: framebuffer,
		RenderArea:  fullRect(r.swapchain.properties.Extent),
		ClearValues: []gpu.ClearColorValue{r.clearColor},
	})
	r.api.CmdBindPipeline(cmd, gpu.PipelineBindPointGraphics, r.pipeline)
	if len(r.vertexBuffers) > 0 {
		buffers := make([]gpu.Buffer, len(r.vertexBuffers))
		offsets := make([]gpu.DeviceSize, len(r.vertexBuffers))
		for i, vb := range r.vertexBuffers {
			buffers[i] = vb.buffer
		}
		r.api.CmdBindVertexBuffers(cmd, 0, buffers, offsets)
	}
	r.api.CmdDraw(cmd, r.vertexCount, r.instanceCount, 0, 0)
	r.api.CmdEndRenderPass(cmd)

	if res := r.api.EndCommandBuffer(cmd); res != gpu.Success {
		return resultError(res, "failed to end recording a graphics command buffer")
	}
	return nil
}

func (r *Renderer) destroyCommandBuffers() {
	if len(r.commandBuffers) > 0 {
		r.api.FreeCommandBuffers(r.device, r.commandPools.forRole(QueueRoleGraphics), r.commandBuffers)
	}
	r.commandBuffers = nil
	r.commandBuffersReserved.release(r.allocator)
}
