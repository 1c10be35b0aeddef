package dekoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/internal/gpufake"
)

func TestResizeSameExtentTwice(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	extent := gpu.Extent2D{Width: 1024, Height: 768}

	require.NoError(t, r.Resize(extent))
	first := r.Extent()
	firstHandle := r.Swapchain()
	require.NoError(t, r.Resize(extent))

	assert.Equal(t, extent, first)
	assert.Equal(t, first, r.Extent())
	assert.NotEqual(t, firstHandle, r.Swapchain())
	assert.Equal(t, uint64(3), r.generation)
	assert.Equal(t, 1, f.driver.Live(gpufake.KindSwapchain))

	infos := f.driver.SwapchainInfos
	require.Len(t, infos, 3)
	assert.Equal(t, infos[1].ImageExtent, infos[2].ImageExtent)
	assert.Equal(t, firstHandle, infos[2].OldSwapchain)

	// The pipeline's baked viewport follows the extent.
	pipeline := f.driver.PipelineInfos[len(f.driver.PipelineInfos)-1]
	assert.Equal(t, float32(1024), pipeline.ViewportState.Viewports[0].Width)
	assert.Empty(t, f.driver.Misuse)
}

func TestResizeClampsToSurfaceBounds(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	require.NoError(t, r.Resize(gpu.Extent2D{Width: 10000, Height: 20}))
	assert.Equal(t, gpu.Extent2D{Width: 4096, Height: 20}, r.Extent())
}

func TestResizeFollowsCurrentExtent(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)

	caps := gpufake.DefaultDevice().Capabilities
	caps.CurrentExtent = gpu.Extent2D{Width: 320, Height: 240}
	f.driver.SetCapabilities(0, caps)

	require.NoError(t, r.Resize(gpu.Extent2D{Width: 1024, Height: 768}))
	assert.Equal(t, gpu.Extent2D{Width: 320, Height: 240}, r.Extent())
}

func TestResizeZeroExtent(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	handle := r.Swapchain()

	assert.ErrorIs(t, r.Resize(gpu.Extent2D{Width: 0, Height: 600}), ErrInvalidValue)
	assert.Equal(t, handle, r.Swapchain())
	assert.Equal(t, swapchainBuilt, r.swapchainState)
}

func TestFailedRebuildIsRetriedByDraw(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	old := r.Swapchain()
	f.driver.FailAt("CreateGraphicsPipeline", 2, gpu.ErrorOutOfDeviceMemory)

	err := r.Resize(gpu.Extent2D{Width: 800, Height: 600})
	require.Error(t, err)
	assert.Equal(t, StatusError, StatusOf(err))
	assert.Equal(t, swapchainAbsent, r.swapchainState)
	assert.Zero(t, r.Swapchain())
	assert.False(t, f.driver.IsLive(gpufake.KindSwapchain, uint64(old)))
	for _, kind := range []string{
		gpufake.KindSwapchain,
		gpufake.KindImageView,
		gpufake.KindRenderPass,
		gpufake.KindPipelineLayout,
		gpufake.KindPipeline,
		gpufake.KindFramebuffer,
		gpufake.KindCommandBuffer,
	} {
		assert.Zero(t, f.driver.Live(kind), kind)
	}

	require.NoError(t, r.Draw())
	assert.Equal(t, swapchainBuilt, r.swapchainState)
	assert.Equal(t, gpu.Extent2D{Width: 800, Height: 600}, r.Extent())
	assert.Zero(t, f.driver.SwapchainInfos[len(f.driver.SwapchainInfos)-1].OldSwapchain)
	assert.Empty(t, f.driver.Misuse)

	r.Destroy()
	f.assertNoLeaks(t)
}

func TestDestroyAfterFailedRebuild(t *testing.T) {
	f := newFixture(t)
	r := f.create(t)
	f.driver.FailAt("CreateSwapchain", 2, gpu.ErrorOutOfHostMemory)

	err := r.Resize(gpu.Extent2D{Width: 800, Height: 600})
	assert.ErrorIs(t, err, ErrAllocation)

	r.Destroy()
	f.assertNoLeaks(t)
}

func TestSwapchainStateString(t *testing.T) {
	assert.Equal(t, "rebuilding", swapchainRebuilding.String())
	assert.Equal(t, "unknown", swapchainState(42).String())
	assert.Equal(t, "submitted", frameSubmitted.String())
}
