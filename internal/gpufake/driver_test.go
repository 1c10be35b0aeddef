package gpufake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

type countingCallbacks struct {
	live int
}

func (c *countingCallbacks) Allocation(size, alignment uintptr, scope gpu.SystemAllocationScope) []byte {
	c.live++
	return make([]byte, size)
}

func (c *countingCallbacks) Reallocation(original []byte, size, alignment uintptr, scope gpu.SystemAllocationScope) []byte {
	return make([]byte, size)
}

func (c *countingCallbacks) Free(memory []byte) {
	c.live--
}

func TestDriverCountsObjects(t *testing.T) {
	d := New(DefaultConfig())
	alloc := &countingCallbacks{}

	instance, res := d.CreateInstance(&gpu.InstanceCreateInfo{}, alloc)
	require.Equal(t, gpu.Success, res)
	physical, res := d.EnumeratePhysicalDevices(instance)
	require.Equal(t, gpu.Success, res)
	require.Len(t, physical, 1)

	device, res := d.CreateDevice(physical[0], &gpu.DeviceCreateInfo{}, alloc)
	require.Equal(t, gpu.Success, res)
	assert.Equal(t, 1, d.Live(KindDevice))
	assert.Equal(t, 2, alloc.live)

	d.DestroyDevice(device, alloc)
	d.DestroyDevice(device, alloc)
	d.DestroyInstance(instance, alloc)
	assert.Empty(t, d.LiveObjects())
	assert.Zero(t, alloc.live)
	assert.Len(t, d.Misuse, 1)
}

func TestDriverFailAt(t *testing.T) {
	d := New(DefaultConfig())
	d.FailAt("CreateInstance", 2, gpu.ErrorInitializationFailed)

	_, res := d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	assert.Equal(t, gpu.Success, res)
	_, res = d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	assert.Equal(t, gpu.ErrorInitializationFailed, res)
	_, res = d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	assert.Equal(t, gpu.Success, res)
	assert.Equal(t, 3, d.Calls("CreateInstance"))
	assert.Equal(t, 2, d.Created(KindInstance))
}

func TestDriverRejectsUnknownNames(t *testing.T) {
	d := New(DefaultConfig())
	_, res := d.CreateInstance(&gpu.InstanceCreateInfo{EnabledLayerNames: []string{"VK_LAYER_missing"}}, nil)
	assert.Equal(t, gpu.ErrorLayerNotPresent, res)
	_, res = d.CreateInstance(&gpu.InstanceCreateInfo{EnabledExtensionNames: []string{"VK_missing"}}, nil)
	assert.Equal(t, gpu.ErrorExtensionNotPresent, res)
	assert.Zero(t, d.Live(KindInstance))
}

func TestDriverCopiesBuffers(t *testing.T) {
	d := New(DefaultConfig())
	instance, _ := d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	physical, _ := d.EnumeratePhysicalDevices(instance)
	device, _ := d.CreateDevice(physical[0], &gpu.DeviceCreateInfo{}, nil)
	queue := d.GetDeviceQueue(device, 0, 0)
	assert.Equal(t, queue, d.GetDeviceQueue(device, 0, 0))

	newBuffer := func() gpu.Buffer {
		buffer, res := d.CreateBuffer(device, &gpu.BufferCreateInfo{Size: 4}, nil)
		require.Equal(t, gpu.Success, res)
		memory, res := d.AllocateMemory(device, &gpu.MemoryAllocateInfo{AllocationSize: 4}, nil)
		require.Equal(t, gpu.Success, res)
		require.Equal(t, gpu.Success, d.BindBufferMemory(device, buffer, memory, 0))
		return buffer
	}
	src, dst := newBuffer(), newBuffer()
	copy(d.BufferContents(src), []byte{9, 8, 7, 6})

	pool, _ := d.CreateCommandPool(device, &gpu.CommandPoolCreateInfo{}, nil)
	cmds, res := d.AllocateCommandBuffers(device, &gpu.CommandBufferAllocateInfo{CommandPool: pool, CommandBufferCount: 1})
	require.Equal(t, gpu.Success, res)
	require.Equal(t, gpu.Success, d.BeginCommandBuffer(cmds[0], gpu.CommandBufferUsageOneTimeSubmit))
	d.CmdCopyBuffer(cmds[0], src, dst, []gpu.BufferCopy{{Size: 4}})
	require.Equal(t, gpu.Success, d.EndCommandBuffer(cmds[0]))
	require.Equal(t, gpu.Success, d.QueueSubmit(queue, []gpu.SubmitInfo{{CommandBuffers: cmds}}))

	assert.Equal(t, []byte{9, 8, 7, 6}, d.BufferContents(dst))

	// Destroying the pool reclaims its command buffers.
	d.DestroyCommandPool(device, pool, nil)
	assert.Zero(t, d.Live(KindCommandBuffer))
	assert.Empty(t, d.Misuse)
}

func TestDriverAcquireRoundRobin(t *testing.T) {
	d := New(DefaultConfig())
	instance, _ := d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	ws := NewWindowSystem(d)
	surface, err := ws.CreateSurface(instance, nil)
	require.NoError(t, err)
	physical, _ := d.EnumeratePhysicalDevices(instance)
	device, _ := d.CreateDevice(physical[0], &gpu.DeviceCreateInfo{}, nil)
	semaphore, _ := d.CreateSemaphore(device, nil)
	swapchain, res := d.CreateSwapchain(device, &gpu.SwapchainCreateInfo{Surface: surface, MinImageCount: 2}, nil)
	require.Equal(t, gpu.Success, res)

	queue := d.GetDeviceQueue(device, 0, 0)
	consume := func() {
		require.Equal(t, gpu.Success, d.QueueSubmit(queue, []gpu.SubmitInfo{{
			WaitSemaphores:   []gpu.Semaphore{semaphore},
			WaitDstStageMask: []gpu.PipelineStageFlags{gpu.PipelineStageTransfer},
		}}))
	}

	d.AcquireResults = []gpu.Result{gpu.Success, gpu.NotReady}
	index, res := d.AcquireNextImage(device, swapchain, gpu.NoTimeout, semaphore)
	assert.Equal(t, gpu.Success, res)
	assert.Equal(t, uint32(0), index)
	consume()
	_, res = d.AcquireNextImage(device, swapchain, gpu.NoTimeout, semaphore)
	assert.Equal(t, gpu.NotReady, res)
	assert.False(t, d.Pending(semaphore))
	index, _ = d.AcquireNextImage(device, swapchain, gpu.NoTimeout, semaphore)
	assert.Equal(t, uint32(1), index)
	consume()
	index, _ = d.AcquireNextImage(device, swapchain, gpu.NoTimeout, semaphore)
	assert.Equal(t, uint32(0), index)
	assert.True(t, d.Pending(semaphore))
	assert.Empty(t, d.Misuse)
}

func TestDriverTracksSemaphoreSignals(t *testing.T) {
	d := New(DefaultConfig())
	instance, _ := d.CreateInstance(&gpu.InstanceCreateInfo{}, nil)
	surface, err := NewWindowSystem(d).CreateSurface(instance, nil)
	require.NoError(t, err)
	physical, _ := d.EnumeratePhysicalDevices(instance)
	device, _ := d.CreateDevice(physical[0], &gpu.DeviceCreateInfo{}, nil)
	queue := d.GetDeviceQueue(device, 0, 0)
	acquired, _ := d.CreateSemaphore(device, nil)
	completed, _ := d.CreateSemaphore(device, nil)
	swapchain, _ := d.CreateSwapchain(device, &gpu.SwapchainCreateInfo{Surface: surface, MinImageCount: 2}, nil)

	// Acquiring twice without waiting in between.
	d.AcquireResults = []gpu.Result{gpu.Suboptimal}
	d.AcquireNextImage(device, swapchain, gpu.NoTimeout, acquired)
	d.AcquireNextImage(device, swapchain, gpu.NoTimeout, acquired)
	require.Len(t, d.Misuse, 1)
	assert.Contains(t, d.Misuse[0], "signaling pending semaphore")

	// Presenting before anything signaled the semaphore.
	d.QueuePresent(queue, &gpu.PresentInfo{
		WaitSemaphores: []gpu.Semaphore{completed},
		Swapchains:     []gpu.Swapchain{swapchain},
		ImageIndices:   []uint32{0},
	})
	require.Len(t, d.Misuse, 2)
	assert.Contains(t, d.Misuse[1], "waiting on unsignaled semaphore")

	d.DestroySemaphore(device, acquired, nil)
	assert.False(t, d.Pending(acquired))
}
