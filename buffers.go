package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// VertexBufferCreateInfo holds vertex data to upload to device memory.
// Offset is recorded with the buffer.
type VertexBufferCreateInfo struct {
	Data   []byte
	Offset uint64
}

type vertexBuffer struct {
	buffer gpu.Buffer
	memory gpu.DeviceMemory
	offset gpu.DeviceSize
}

func validateVertexBuffers(infos []VertexBufferCreateInfo) error {
	for i, info := range infos {
		if len(info.Data) == 0 {
			return newError(StatusInvalidValue, "vertex buffer %d has no data", i)
		}
	}
	return nil
}

// FindMemoryType returns the first memory type allowed by typeFilter whose
// properties include all of flags.
func FindMemoryType(props gpu.MemoryProperties, typeFilter uint32, flags gpu.MemoryPropertyFlags) (uint32, error) {
	for i, memoryType := range props.MemoryTypes {
		if i >= 32 {
			break
		}
		if typeFilter&(1<<uint(i)) != 0 && memoryType.PropertyFlags&flags == flags {
			return uint32(i), nil
		}
	}
	return 0, newError(StatusNotAvailable, "no memory type in filter %#x has properties %#x", typeFilter, uint32(flags))
}

// createBuffer creates a buffer bound to a fresh allocation of a memory
// type with the given properties.
func (r *Renderer) createBuffer(size gpu.DeviceSize, usage gpu.BufferUsageFlags, flags gpu.MemoryPropertyFlags) (gpu.Buffer, gpu.DeviceMemory, error) {
	buffer, res := r.api.CreateBuffer(r.device, &gpu.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: gpu.SharingModeExclusive,
	}, r.callbacks)
	if res != gpu.Success {
		return 0, 0, resultError(res, "failed to create a buffer of %d bytes", size)
	}

	reqs := r.api.GetBufferMemoryRequirements(r.device, buffer)
	typeIndex, err := FindMemoryType(r.physical.memory, reqs.MemoryTypeBits, flags)
	if err != nil {
		r.api.DestroyBuffer(r.device, buffer, r.callbacks)
		return 0, 0, err
	}

	memory, res := r.api.AllocateMemory(r.device, &gpu.MemoryAllocateInfo{
		AllocationSize:  reqs.Size,
		MemoryTypeIndex: typeIndex,
	}, r.callbacks)
	if res != gpu.Success {
		r.api.DestroyBuffer(r.device, buffer, r.callbacks)
		return 0, 0, resultError(res, "failed to allocate %d bytes of buffer memory", reqs.Size)
	}

	if res := r.api.BindBufferMemory(r.device, buffer, memory, 0); res != gpu.Success {
		r.api.FreeMemory(r.device, memory, r.callbacks)
		r.api.DestroyBuffer(r.device, buffer, r.callbacks)
		return 0, 0, resultError(res, "failed to bind the buffer memory")
	}
	return buffer, memory, nil
}

func (r *Renderer) destroyBuffer(buffer gpu.Buffer, memory gpu.DeviceMemory) {
	r.api.DestroyBuffer(r.device, buffer, r.callbacks)
	r.api.FreeMemory(r.device, memory, r.callbacks)
}

// uploadVertexBuffer copies the data into a device-local buffer through a
// host-visible staging buffer and waits for the transfer to complete.
func (r *Renderer) uploadVertexBuffer(info VertexBufferCreateInfo) (vertexBuffer, error) {
	size := gpu.DeviceSize(len(info.Data))

	staging, stagingMemory, err := r.createBuffer(size,
		gpu.BufferUsageTransferSrc,
		gpu.MemoryPropertyHostVisible|gpu.MemoryPropertyHostCoherent)
	if err != nil {
		return vertexBuffer{}, err
	}
	defer r.destroyBuffer(staging, stagingMemory)

	mapped, res := r.api.MapMemory(r.device, stagingMemory, 0, size)
	if res != gpu.Success {
		return vertexBuffer{}, resultError(res, "failed to map the staging buffer")
	}
	copy(mapped, info.Data)
	r.api.UnmapMemory(r.device, stagingMemory)

	buffer, memory, err := r.createBuffer(size,
		gpu.BufferUsageTransferDst|gpu.BufferUsageVertexBuffer,
		gpu.MemoryPropertyDeviceLocal)
	if err != nil {
		return vertexBuffer{}, err
	}
	if err := r.copyBuffer(staging, buffer, size); err != nil {
		r.destroyBuffer(buffer, memory)
		return vertexBuffer{}, err
	}
	return vertexBuffer{buffer: buffer, memory: memory, offset: gpu.DeviceSize(info.Offset)}, nil
}

// copyBuffer records, submits and waits on a one-shot transfer.
func (r *Renderer) copyBuffer(src, dst gpu.Buffer, size gpu.DeviceSize) error {
	pool := r.commandPools.forRole(QueueRoleTransfer)
	queue := r.queues[QueueRoleTransfer]

	buffers, res := r.api.AllocateCommandBuffers(r.device, &gpu.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              gpu.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if res != gpu.Success {
		return resultError(res, "failed to allocate the transfer command buffer")
	}
	defer r.api.FreeCommandBuffers(r.device, pool, buffers)
	cmd := buffers[0]

	if res := r.api.BeginCommandBuffer(cmd, gpu.CommandBufferUsageOneTimeSubmit); res != gpu.Success {
		return resultError(res, "failed to begin the transfer command buffer")
	}
	r.api.CmdCopyBuffer(cmd, src, dst, []gpu.BufferCopy{{Size: size}})
	if res := r.api.EndCommandBuffer(cmd); res != gpu.Success {
		return resultError(res, "failed to end the transfer command buffer")
	}

	if res := r.api.QueueSubmit(queue, []gpu.SubmitInfo{{CommandBuffers: buffers}}); res != gpu.Success {
		return resultError(res, "failed to submit the transfer")
	}
	if res := r.api.QueueWaitIdle(queue); res != gpu.Success {
		return resultError(res, "failed to wait for the transfer to complete")
	}
	return nil
}

// createVertexBuffers uploads every buffer in turn. A failure destroys the
// buffers uploaded so far.
func (r *Renderer) createVertexBuffers(infos []VertexBufferCreateInfo) error {
	buffers, reserved, err := makeHostSlice[vertexBuffer](r.allocator, len(infos))
	if err != nil {
		return err
	}
	for i, info := range infos {
		vb, err := r.uploadVertexBuffer(info)
		if err != nil {
			for _, created := range buffers[:i] {
				r.destroyBuffer(created.buffer, created.memory)
			}
			reserved.release(r.allocator)
			return err
		}
		buffers[i] = vb
	}
	r.vertexBuffers = buffers
	r.vertexBuffersReserved = reserved
	return nil
}

func (r *Renderer) destroyVertexBuffers() {
	for _, vb := range r.vertexBuffers {
		r.destroyBuffer(vb.buffer, vb.memory)
	}
	r.vertexBuffers = nil
	r.vertexBuffersReserved.release(r.allocator)
}
