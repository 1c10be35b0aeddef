package dekoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/internal/gpufake"
)

func TestPickPresentMode(t *testing.T) {
	tests := []struct {
		modes []gpu.PresentMode
		want  gpu.PresentMode
	}{
		{[]gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeImmediate}, gpu.PresentModeFifo},
		{[]gpu.PresentMode{gpu.PresentModeImmediate, gpu.PresentModeFifo}, gpu.PresentModeFifo},
		{[]gpu.PresentMode{gpu.PresentModeImmediate, gpu.PresentModeFifo, gpu.PresentModeMailbox}, gpu.PresentModeMailbox},
		{[]gpu.PresentMode{gpu.PresentModeFifoRelaxed, gpu.PresentModeImmediate}, gpu.PresentModeImmediate},
	}
	for _, test := range tests {
		mode, err := PickPresentMode(test.modes)
		require.NoError(t, err)
		assert.Equal(t, test.want, mode, "modes %v", test.modes)
	}

	_, err := PickPresentMode([]gpu.PresentMode{gpu.PresentModeFifoRelaxed})
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestPickSurfaceFormat(t *testing.T) {
	srgb := gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSrgbNonlinear}
	rgba := gpu.SurfaceFormat{Format: gpu.FormatR8G8B8A8Unorm, ColorSpace: gpu.ColorSpaceSrgbNonlinear}
	bgra := gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8Unorm, ColorSpace: gpu.ColorSpaceSrgbNonlinear}

	t.Run("undefined", func(t *testing.T) {
		got, err := PickSurfaceFormat([]gpu.SurfaceFormat{{Format: gpu.FormatUndefined, ColorSpace: 42}})
		require.NoError(t, err)
		assert.Equal(t, gpu.SurfaceFormat{Format: gpu.FormatB8G8R8A8Unorm, ColorSpace: 42}, got)
	})

	t.Run("preferred anywhere", func(t *testing.T) {
		lists := [][]gpu.SurfaceFormat{
			{bgra, srgb, rgba},
			{srgb, bgra, rgba},
			{srgb, rgba, bgra},
		}
		for _, formats := range lists {
			got, err := PickSurfaceFormat(formats)
			require.NoError(t, err)
			assert.Equal(t, bgra, got)
		}
	})

	t.Run("first otherwise", func(t *testing.T) {
		got, err := PickSurfaceFormat([]gpu.SurfaceFormat{rgba, srgb})
		require.NoError(t, err)
		assert.Equal(t, rgba, got)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := PickSurfaceFormat(nil)
		assert.ErrorIs(t, err, ErrNotAvailable)
	})
}

func TestPickImageCount(t *testing.T) {
	caps := gpu.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 3}
	assert.Equal(t, uint32(2), PickImageCount(caps, gpu.PresentModeFifo))
	assert.Equal(t, uint32(3), PickImageCount(caps, gpu.PresentModeMailbox))

	caps.MaxImageCount = 2
	assert.Equal(t, uint32(2), PickImageCount(caps, gpu.PresentModeMailbox))

	caps.MaxImageCount = 0
	assert.Equal(t, uint32(3), PickImageCount(caps, gpu.PresentModeMailbox))
}

func TestPickImageExtent(t *testing.T) {
	caps := gpu.SurfaceCapabilities{
		CurrentExtent:  gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent},
		MinImageExtent: gpu.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: gpu.Extent2D{Width: 1000, Height: 800},
	}
	assert.Equal(t, gpu.Extent2D{Width: 640, Height: 480}, PickImageExtent(caps, gpu.Extent2D{Width: 640, Height: 480}))
	assert.Equal(t, gpu.Extent2D{Width: 1000, Height: 100}, PickImageExtent(caps, gpu.Extent2D{Width: 5000, Height: 10}))

	caps.CurrentExtent = gpu.Extent2D{Width: 300, Height: 200}
	assert.Equal(t, caps.CurrentExtent, PickImageExtent(caps, gpu.Extent2D{Width: 640, Height: 480}))
}

func TestCheckImageUsage(t *testing.T) {
	caps := gpu.SurfaceCapabilities{SupportedUsageFlags: gpu.ImageUsageColorAttachment}
	assert.ErrorIs(t, CheckImageUsage(caps), ErrNotAvailable)

	caps.SupportedUsageFlags |= gpu.ImageUsageTransferDst
	assert.NoError(t, CheckImageUsage(caps))
}

func TestNegotiateSwapchain(t *testing.T) {
	dev := gpufake.DefaultDevice()
	dev.Capabilities.CurrentTransform = gpu.SurfaceTransformIdentity
	dev.Capabilities.SupportedCompositeAlpha = gpu.CompositeAlphaInherit | gpu.CompositeAlphaPreMultiplied

	props, err := NegotiateSwapchain(dev.Capabilities, dev.Formats, dev.PresentModes, gpu.Extent2D{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Equal(t, gpu.PresentModeMailbox, props.PresentMode)
	assert.Equal(t, gpu.FormatB8G8R8A8Unorm, props.Format.Format)
	assert.Equal(t, uint32(3), props.ImageCount)
	assert.Equal(t, gpu.Extent2D{Width: 640, Height: 480}, props.Extent)
	assert.Equal(t, gpu.ImageUsageColorAttachment|gpu.ImageUsageTransferDst, props.ImageUsage)
	assert.Equal(t, gpu.SurfaceTransformIdentity, props.PreTransform)
	assert.Equal(t, gpu.CompositeAlphaPreMultiplied, props.CompositeAlpha)

	// Same capabilities and extent, same outcome.
	again, err := NegotiateSwapchain(dev.Capabilities, dev.Formats, dev.PresentModes, gpu.Extent2D{Width: 640, Height: 480})
	require.NoError(t, err)
	assert.Equal(t, props, again)
}

func TestSwapchainSharingMode(t *testing.T) {
	t.Run("shared family", func(t *testing.T) {
		f := newFixture(t)
		f.create(t)
		require.Len(t, f.driver.SwapchainInfos, 1)
		info := f.driver.SwapchainInfos[0]
		assert.Equal(t, gpu.SharingModeExclusive, info.ImageSharingMode)
		assert.Empty(t, info.QueueFamilyIndices)
		assert.True(t, info.Clipped)
		assert.Equal(t, uint32(1), info.ImageArrayLayers)
	})

	t.Run("separate present family", func(t *testing.T) {
		f := newFixture(t)
		cfg := gpufake.DefaultConfig()
		cfg.Devices[0].PresentSupport = []bool{false, true}
		f.driver = gpufake.New(cfg)
		f.window = gpufake.NewWindowSystem(f.driver)
		f.info.API = f.driver
		f.info.WindowSystem = f.window
		r := f.create(t)

		assert.Equal(t, FamilyIndex(0), r.QueueFamilies().Index(QueueRoleGraphics))
		assert.Equal(t, FamilyIndex(1), r.QueueFamilies().Index(QueueRolePresent))
		info := f.driver.SwapchainInfos[0]
		assert.Equal(t, gpu.SharingModeConcurrent, info.ImageSharingMode)
		assert.Equal(t, []uint32{0, 1}, info.QueueFamilyIndices)
	})
}
