package dekoi

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/internal/gpufake"
)

func TestCreateRenderer(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	assert.False(t, r.Headless())
	assert.NotZero(t, r.Device())
	assert.True(t, f.driver.IsLive(gpufake.KindSwapchain, uint64(r.Swapchain())))
	assert.Equal(t, gpu.Extent2D{Width: 640, Height: 480}, r.Extent())
	assert.Equal(t, swapchainBuilt, r.swapchainState)
	assert.Equal(t, uint64(1), r.generation)

	// One view, framebuffer and command buffer per image.
	images := f.driver.SwapchainImages(r.Swapchain())
	require.Len(t, images, 3)
	assert.Equal(t, 3, f.driver.Live(gpufake.KindImageView))
	assert.Equal(t, 3, f.driver.Live(gpufake.KindFramebuffer))
	assert.Len(t, r.commandBuffers, 3)
	assert.Equal(t, 2, f.driver.Live(gpufake.KindSemaphore))
	assert.Equal(t, 2, f.driver.Live(gpufake.KindCommandPool))
	assert.Empty(t, f.driver.Misuse)
}

func TestCreateRendererRecordsCommandBuffers(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	for i, cmd := range r.commandBuffers {
		assert.Equal(t, gpu.CommandBufferUsageSimultaneousUse, f.driver.CommandBufferFlags(cmd))
		commands := f.driver.Commands(cmd)
		ops := make([]string, len(commands))
		for j, c := range commands {
			ops[j] = c.Op
		}
		require.Equal(t, []string{
			"CmdBeginRenderPass",
			"CmdBindPipeline",
			"CmdBindVertexBuffers",
			"CmdDraw",
			"CmdEndRenderPass",
		}, ops)

		begin := commands[0].RenderPass
		assert.Equal(t, r.renderPass, begin.RenderPass)
		assert.Equal(t, r.framebuffers[i], begin.Framebuffer)
		assert.Equal(t, gpu.Extent2D{Width: 640, Height: 480}, begin.RenderArea.Extent)
		assert.Equal(t, []gpu.ClearColorValue{{0.1, 0.2, 0.3, 1}}, begin.ClearValues)
		assert.Equal(t, r.pipeline, commands[1].Pipeline)
		assert.Equal(t, []gpu.Buffer{r.vertexBuffers[0].buffer}, commands[2].Buffers)
		assert.Equal(t, []gpu.DeviceSize{0}, commands[2].Offsets)
		assert.Equal(t, [4]uint32{3, 1, 0, 0}, commands[3].Draw)
	}
}

func TestCreateRendererWithoutVertexBuffers(t *testing.T) {
	f := newFixture(t)
	f.info.VertexBuffers = nil
	r := f.create(t)

	for _, c := range f.driver.Commands(r.commandBuffers[0]) {
		assert.NotEqual(t, "CmdBindVertexBuffers", c.Op)
	}
}

func TestCreateRendererPipelineState(t *testing.T) {
	f := newFixture(t)
	f.create(t)

	require.Len(t, f.driver.PipelineInfos, 1)
	info := f.driver.PipelineInfos[0]
	assert.Equal(t, gpu.PrimitiveTopologyTriangleList, info.InputAssemblyState.Topology)
	assert.Equal(t, []gpu.Viewport{{Width: 640, Height: 480, MaxDepth: 1}}, info.ViewportState.Viewports)
	assert.Equal(t, []gpu.Rect2D{{Extent: gpu.Extent2D{Width: 640, Height: 480}}}, info.ViewportState.Scissors)
	assert.Equal(t, gpu.PolygonModeFill, info.RasterizationState.PolygonMode)
	assert.Equal(t, gpu.CullModeBack, info.RasterizationState.CullMode)
	assert.Equal(t, gpu.FrontFaceClockwise, info.RasterizationState.FrontFace)
	assert.Equal(t, float32(1), info.RasterizationState.LineWidth)
	assert.Equal(t, gpu.SampleCount1, info.MultisampleState.RasterizationSamples)
	require.Len(t, info.ColorBlendState.Attachments, 1)
	assert.False(t, info.ColorBlendState.Attachments[0].BlendEnable)
	assert.Len(t, info.VertexInputState.VertexBindingDescriptions, 1)
	assert.Len(t, info.VertexInputState.VertexAttributeDescriptions, 1)

	require.Len(t, f.driver.RenderPassInfos, 1)
	pass := f.driver.RenderPassInfos[0]
	require.Len(t, pass.Attachments, 1)
	assert.Equal(t, gpu.AttachmentLoadOpClear, pass.Attachments[0].LoadOp)
	assert.Equal(t, gpu.AttachmentStoreOpStore, pass.Attachments[0].StoreOp)
	assert.Equal(t, gpu.ImageLayoutPresentSrc, pass.Attachments[0].FinalLayout)
	require.Len(t, pass.Dependencies, 1)
	assert.Equal(t, gpu.SubpassExternal, pass.Dependencies[0].SrcSubpass)
	assert.Equal(t, gpu.PipelineStageColorAttachmentOutput, pass.Dependencies[0].DstStageMask)
}

func TestCreateRendererInvalidInfo(t *testing.T) {
	t.Run("no shaders", func(t *testing.T) {
		f := newFixture(t)
		f.info.Shaders = nil
		r, err := CreateRenderer(&f.info)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Equal(t, StatusInvalidValue, StatusOf(err))
		assert.Zero(t, f.driver.Calls("CreateInstance"))
		f.assertNoLeaks(t)
	})

	t.Run("nil info", func(t *testing.T) {
		r, err := CreateRenderer(nil)
		assert.Nil(t, r)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("no api", func(t *testing.T) {
		f := newFixture(t)
		f.info.API = nil
		_, err := CreateRenderer(&f.info)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("zero extent", func(t *testing.T) {
		f := newFixture(t)
		f.info.SurfaceExtent = gpu.Extent2D{Width: 640}
		_, err := CreateRenderer(&f.info)
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestCreateRendererUnwindsOnFailure(t *testing.T) {
	ops := []struct {
		op    string
		calls int
	}{
		{"EnumerateInstanceLayerProperties", 1},
		{"EnumerateInstanceExtensionProperties", 1},
		{"CreateInstance", 1},
		{"CreateDebugReportCallback", 1},
		{"CreateSurface", 1},
		{"EnumeratePhysicalDevices", 1},
		{"EnumerateDeviceExtensionProperties", 1},
		{"GetPhysicalDeviceSurfaceSupport", 1},
		{"GetPhysicalDeviceSurfaceFormats", 1},
		{"GetPhysicalDeviceSurfacePresentModes", 1},
		{"CreateDevice", 1},
		{"CreateCommandPool", 1},
		{"CreateCommandPool", 2},
		{"CreateSemaphore", 1},
		{"CreateSemaphore", 2},
		{"CreateShaderModule", 1},
		{"CreateShaderModule", 2},
		{"CreateBuffer", 1},
		{"CreateBuffer", 2},
		{"AllocateMemory", 1},
		{"AllocateMemory", 2},
		{"BindBufferMemory", 1},
		{"BindBufferMemory", 2},
		{"MapMemory", 1},
		{"AllocateCommandBuffers", 1},
		{"BeginCommandBuffer", 1},
		{"EndCommandBuffer", 1},
		{"QueueSubmit", 1},
		{"QueueWaitIdle", 1},
		{"GetPhysicalDeviceSurfaceCapabilities", 1},
		{"GetPhysicalDeviceSurfaceFormats", 2},
		{"GetPhysicalDeviceSurfacePresentModes", 2},
		{"CreateSwapchain", 1},
		{"GetSwapchainImages", 1},
		{"CreateImageView", 1},
		{"CreateImageView", 3},
		{"CreateRenderPass", 1},
		{"CreatePipelineLayout", 1},
		{"CreateGraphicsPipeline", 1},
		{"CreateFramebuffer", 1},
		{"CreateFramebuffer", 3},
		{"AllocateCommandBuffers", 2},
		{"BeginCommandBuffer", 2},
		{"BeginCommandBuffer", 4},
		{"EndCommandBuffer", 3},
	}
	for _, test := range ops {
		t.Run(fmt.Sprintf("%s#%d", test.op, test.calls), func(t *testing.T) {
			f := newFixture(t)
			f.info.Debug = true
			f.driver.FailAt(test.op, test.calls, gpu.ErrorOutOfHostMemory)

			r, err := CreateRenderer(&f.info)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.Equal(t, StatusAllocation, StatusOf(err))
			assert.Equal(t, test.calls, f.driver.Calls(test.op), "the failure was not reached")
			f.assertNoLeaks(t)
		})
	}
}

func TestCreateRendererHostExhaustion(t *testing.T) {
	succeeded := false
	for n := 1; n < 200 && !succeeded; n++ {
		f := newFixture(t)
		allocator := &limitedAllocator{HostAllocator: NewHostAllocator(), n: n}
		f.allocator = allocator.HostAllocator
		f.info.Allocator = allocator
		f.info.Debug = true

		r, err := CreateRenderer(&f.info)
		if err == nil {
			succeeded = true
			r.Destroy()
			f.assertNoLeaks(t)
			break
		}
		assert.Nil(t, r)
		assert.Equal(t, StatusAllocation, StatusOf(err), "allocation %d: %v", n, err)
		f.assertNoLeaks(t)
	}
	assert.True(t, succeeded, "creation never succeeded")
}

func TestCreateRendererNoSuitableDevice(t *testing.T) {
	integrated := gpufake.DefaultDevice()
	integrated.Properties.DeviceType = gpu.PhysicalDeviceTypeIntegratedGPU
	noSwapchain := gpufake.DefaultDevice()
	noSwapchain.Extensions = nil
	noPresent := gpufake.DefaultDevice()
	noPresent.PresentSupport = []bool{false, false}
	noFormats := gpufake.DefaultDevice()
	noFormats.Formats = nil
	noModes := gpufake.DefaultDevice()
	noModes.PresentModes = nil

	cfg := gpufake.DefaultConfig()
	cfg.Devices = []gpufake.PhysicalDeviceConfig{integrated, noSwapchain, noPresent, noFormats, noModes}

	f := newFixture(t)
	f.driver = gpufake.New(cfg)
	f.window = gpufake.NewWindowSystem(f.driver)
	f.info.API = f.driver
	f.info.WindowSystem = f.window

	r, err := CreateRenderer(&f.info)
	require.Error(t, err)
	assert.Nil(t, r)
	assert.Equal(t, StatusError, StatusOf(err))
	assert.Zero(t, f.driver.Calls("CreateDevice"))
	f.assertNoLeaks(t)
}

func TestCreateRendererPicksFirstSuitableDevice(t *testing.T) {
	integrated := gpufake.DefaultDevice()
	integrated.Properties.DeviceType = gpu.PhysicalDeviceTypeIntegratedGPU
	first := gpufake.DefaultDevice()
	first.Properties.DeviceName = "first"
	second := gpufake.DefaultDevice()
	second.Properties.DeviceName = "second"

	cfg := gpufake.DefaultConfig()
	cfg.Devices = []gpufake.PhysicalDeviceConfig{integrated, first, second}

	f := newFixture(t)
	f.driver = gpufake.New(cfg)
	f.window = gpufake.NewWindowSystem(f.driver)
	f.info.API = f.driver
	f.info.WindowSystem = f.window
	r := f.create(t)

	assert.Equal(t, "first", r.physical.properties.DeviceName)
	require.Len(t, f.driver.DeviceInfos, 1)
	assert.Equal(t, []string{gpu.SwapchainExtensionName}, f.driver.DeviceInfos[0].EnabledExtensionNames)
	queues := f.driver.DeviceInfos[0].QueueCreateInfos
	require.Len(t, queues, 2)
	for _, q := range queues {
		assert.Equal(t, []float32{1}, q.QueuePriorities)
	}
}

func TestCreateRendererWindowSystemErrors(t *testing.T) {
	t.Run("extensions", func(t *testing.T) {
		f := newFixture(t)
		f.window.ExtensionsErr = errors.New("no display")
		_, err := CreateRenderer(&f.info)
		assert.ErrorIs(t, err, ErrError)
		f.assertNoLeaks(t)
	})

	t.Run("surface", func(t *testing.T) {
		f := newFixture(t)
		f.window.SurfaceErr = errors.New("no window")
		_, err := CreateRenderer(&f.info)
		assert.ErrorIs(t, err, ErrError)
		f.assertNoLeaks(t)
	})

	t.Run("missing extension", func(t *testing.T) {
		f := newFixture(t)
		f.window.Extensions = append(f.window.Extensions, "VK_KHR_missing_surface")
		_, err := CreateRenderer(&f.info)
		assert.ErrorIs(t, err, ErrError)
		assert.Contains(t, err.Error(), "VK_KHR_missing_surface")
		assert.Zero(t, f.driver.Calls("CreateInstance"))
		f.assertNoLeaks(t)
	})
}

func TestCreateRendererMissingValidationLayer(t *testing.T) {
	cfg := gpufake.DefaultConfig()
	cfg.Layers = nil
	f := newFixture(t)
	f.driver = gpufake.New(cfg)
	f.window = gpufake.NewWindowSystem(f.driver)
	f.info.API = f.driver
	f.info.WindowSystem = f.window
	f.info.Debug = true

	_, err := CreateRenderer(&f.info)
	assert.ErrorIs(t, err, ErrError)
	assert.Contains(t, err.Error(), gpu.KhronosValidationLayerName)
	f.assertNoLeaks(t)
}

func TestCreateRendererDebug(t *testing.T) {
	f := newFixture(t)
	logger := &recordingLogger{}
	f.info.Logger = logger
	f.info.Debug = true
	r := f.create(t)

	require.Len(t, f.driver.InstanceInfos, 1)
	info := f.driver.InstanceInfos[0]
	assert.Equal(t, []string{gpu.KhronosValidationLayerName}, info.EnabledLayerNames)
	assert.Equal(t, []string{gpu.SurfaceExtensionName, "VK_KHR_xcb_surface", gpu.DebugReportExtensionName},
		info.EnabledExtensionNames)
	assert.Equal(t, "test", info.ApplicationInfo.ApplicationName)
	assert.Equal(t, gpu.MakeVersion(1, 0, 0), info.ApplicationInfo.ApplicationVersion)
	assert.Equal(t, engineName, info.ApplicationInfo.EngineName)
	assert.Equal(t, []string{gpu.KhronosValidationLayerName}, f.driver.DeviceInfos[0].EnabledLayerNames)
	assert.Equal(t, 1, f.driver.Live(gpufake.KindDebugReportCallback))

	f.driver.Report(gpu.DebugReportError, "Validation", 7, "bad usage")
	f.driver.Report(gpu.DebugReportPerformanceWarning, "Validation", 8, "slow path")
	assert.True(t, logger.find(LogLevelError, "bad usage"))
	assert.True(t, logger.find(LogLevelWarning, "slow path"))

	r.Destroy()
	assert.Zero(t, f.driver.Live(gpufake.KindDebugReportCallback))
}

func TestCreateRendererHeadless(t *testing.T) {
	f := newFixture(t).headless()
	r := f.create(t)

	assert.True(t, r.Headless())
	assert.Zero(t, r.Swapchain())
	assert.Zero(t, f.driver.Created(gpufake.KindSurface))
	assert.Zero(t, f.driver.Created(gpufake.KindSwapchain))
	assert.Zero(t, f.driver.Calls("GetPhysicalDeviceSurfaceSupport"))
	assert.Equal(t, Unassigned, r.QueueFamilies().Index(QueueRolePresent))
	assert.Empty(t, f.driver.DeviceInfos[0].EnabledExtensionNames)
	assert.Empty(t, f.driver.InstanceInfos[0].EnabledExtensionNames)

	assert.ErrorIs(t, r.Draw(), ErrNotAvailable)
	assert.ErrorIs(t, r.Resize(gpu.Extent2D{Width: 10, Height: 10}), ErrNotAvailable)

	r.Destroy()
	f.assertNoLeaks(t)
}

func TestDestroy(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Draw())
	}

	r.Destroy()
	f.assertNoLeaks(t)
	assert.Positive(t, f.driver.DeviceWaits)

	// A second call has nothing left to do.
	calls := f.driver.Calls("DestroyInstance")
	r.Destroy()
	assert.Equal(t, calls, f.driver.Calls("DestroyInstance"))
	assert.Empty(t, f.driver.Misuse)

	assert.ErrorIs(t, r.Draw(), ErrError)
	assert.ErrorIs(t, r.Resize(gpu.Extent2D{Width: 1, Height: 1}), ErrError)

	var nilRenderer *Renderer
	nilRenderer.Destroy()
}
