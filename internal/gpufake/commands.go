package gpufake

import (
	"slices"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) record(op string, buffer gpu.CommandBuffer, cmd Command) {
	d.calls[op]++
	cb, ok := d.commandBuffers[buffer]
	if !ok {
		d.misuse("%s on dead command buffer %d", op, buffer)
		return
	}
	cmd.Op = op
	cb.commands = append(cb.commands, cmd)
}

// BeginCommandBuffer resets what was previously recorded into buffer.
func (d *Driver) BeginCommandBuffer(buffer gpu.CommandBuffer, flags gpu.CommandBufferUsageFlags) gpu.Result {
	if res := d.call("BeginCommandBuffer"); res != gpu.Success {
		return res
	}
	cb, ok := d.commandBuffers[buffer]
	if !ok {
		d.misuse("BeginCommandBuffer on dead command buffer %d", buffer)
		return gpu.ErrorInitializationFailed
	}
	cb.flags = flags
	cb.commands = nil
	return gpu.Success
}

func (d *Driver) EndCommandBuffer(buffer gpu.CommandBuffer) gpu.Result {
	if res := d.call("EndCommandBuffer"); res != gpu.Success {
		return res
	}
	if _, ok := d.commandBuffers[buffer]; !ok {
		d.misuse("EndCommandBuffer on dead command buffer %d", buffer)
		return gpu.ErrorInitializationFailed
	}
	return gpu.Success
}

func (d *Driver) CmdBeginRenderPass(buffer gpu.CommandBuffer, info *gpu.RenderPassBeginInfo) {
	begin := *info
	begin.ClearValues = slices.Clone(info.ClearValues)
	d.record("CmdBeginRenderPass", buffer, Command{RenderPass: begin})
}

func (d *Driver) CmdEndRenderPass(buffer gpu.CommandBuffer) {
	d.record("CmdEndRenderPass", buffer, Command{})
}

func (d *Driver) CmdBindPipeline(buffer gpu.CommandBuffer, bindPoint gpu.PipelineBindPoint, pipeline gpu.Pipeline) {
	d.record("CmdBindPipeline", buffer, Command{Pipeline: pipeline})
}

func (d *Driver) CmdBindVertexBuffers(buffer gpu.CommandBuffer, firstBinding uint32, buffers []gpu.Buffer, offsets []gpu.DeviceSize) {
	if len(buffers) != len(offsets) {
		d.misuse("CmdBindVertexBuffers with %d buffers and %d offsets", len(buffers), len(offsets))
	}
	d.record("CmdBindVertexBuffers", buffer, Command{
		Buffers: slices.Clone(buffers),
		Offsets: slices.Clone(offsets),
	})
}

func (d *Driver) CmdDraw(buffer gpu.CommandBuffer, vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	d.record("CmdDraw", buffer, Command{
		Draw: [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance},
	})
}

func (d *Driver) CmdCopyBuffer(buffer gpu.CommandBuffer, src, dst gpu.Buffer, regions []gpu.BufferCopy) {
	d.record("CmdCopyBuffer", buffer, Command{
		CopySrc:     src,
		CopyDst:     dst,
		CopyRegions: slices.Clone(regions),
	})
}

// QueueSubmit runs the copies recorded into the submitted command buffers
// immediately; everything else is only recorded.
func (d *Driver) QueueSubmit(queue gpu.Queue, submits []gpu.SubmitInfo) gpu.Result {
	if res := d.call("QueueSubmit"); res != gpu.Success {
		return res
	}
	for _, submit := range submits {
		if len(submit.WaitSemaphores) != len(submit.WaitDstStageMask) {
			d.misuse("QueueSubmit with %d wait semaphores and %d stage masks",
				len(submit.WaitSemaphores), len(submit.WaitDstStageMask))
		}
		for _, s := range slices.Concat(submit.WaitSemaphores, submit.SignalSemaphores) {
			d.requireLive("QueueSubmit", KindSemaphore, uint64(s))
		}
		for _, s := range submit.WaitSemaphores {
			d.wait("QueueSubmit", s)
		}
		for _, s := range submit.SignalSemaphores {
			d.signal("QueueSubmit", s)
		}
		for _, b := range submit.CommandBuffers {
			cb, ok := d.commandBuffers[b]
			if !ok {
				d.misuse("QueueSubmit of dead command buffer %d", b)
				continue
			}
			for _, cmd := range cb.commands {
				if cmd.Op == "CmdCopyBuffer" {
					d.execCopy(cmd)
				}
			}
		}
		d.Submits = append(d.Submits, SubmitRecord{
			Queue: queue,
			Info: gpu.SubmitInfo{
				WaitSemaphores:   slices.Clone(submit.WaitSemaphores),
				WaitDstStageMask: slices.Clone(submit.WaitDstStageMask),
				CommandBuffers:   slices.Clone(submit.CommandBuffers),
				SignalSemaphores: slices.Clone(submit.SignalSemaphores),
			},
		})
	}
	return gpu.Success
}

func (d *Driver) execCopy(cmd Command) {
	src := d.BufferContents(cmd.CopySrc)
	dst := d.BufferContents(cmd.CopyDst)
	for _, region := range cmd.CopyRegions {
		if region.SrcOffset+region.Size > gpu.DeviceSize(len(src)) ||
			region.DstOffset+region.Size > gpu.DeviceSize(len(dst)) {
			d.misuse("CmdCopyBuffer region %+v out of bounds", region)
			continue
		}
		copy(dst[region.DstOffset:region.DstOffset+region.Size],
			src[region.SrcOffset:region.SrcOffset+region.Size])
	}
}

func (d *Driver) QueueWaitIdle(queue gpu.Queue) gpu.Result {
	if res := d.call("QueueWaitIdle"); res != gpu.Success {
		return res
	}
	d.QueueWaits[queue]++
	return gpu.Success
}

func (d *Driver) QueuePresent(queue gpu.Queue, info *gpu.PresentInfo) gpu.Result {
	res := d.call("QueuePresent")
	for _, sc := range info.Swapchains {
		d.requireLive("QueuePresent", KindSwapchain, uint64(sc))
	}
	for _, s := range info.WaitSemaphores {
		d.wait("QueuePresent", s)
	}
	d.Presents = append(d.Presents, PresentRecord{
		Queue: queue,
		Info: gpu.PresentInfo{
			WaitSemaphores: slices.Clone(info.WaitSemaphores),
			Swapchains:     slices.Clone(info.Swapchains),
			ImageIndices:   slices.Clone(info.ImageIndices),
		},
	})
	return res
}
