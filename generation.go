package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// swapchainState tracks the swap-chain-dependent generation: the swap
// chain, render pass, pipeline layout, pipeline, framebuffers and graphics
// command buffers, which are always built and torn down together.
type swapchainState int

const (
	swapchainAbsent swapchainState = iota
	swapchainBuilt
	swapchainInvalidated
	swapchainRebuilding
	swapchainDestroyed
)

func (s swapchainState) String() string {
	switch s {
	case swapchainAbsent:
		return "absent"
	case swapchainBuilt:
		return "built"
	case swapchainInvalidated:
		return "invalidated"
	case swapchainRebuilding:
		return "rebuilding"
	case swapchainDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// buildGeneration creates the whole generation in dependency order. old is
// consumed by createSwapchain in every case. On failure the generation is
// left absent.
func (r *Renderer) buildGeneration(old gpu.Swapchain) (err error) {
	var undo undoStack
	defer func() {
		if err != nil {
			undo.unwind()
			r.swapchainState = swapchainAbsent
		}
	}()

	if err := r.createSwapchain(old); err != nil {
		return err
	}
	undo.push(func() { r.destroySwapchain(false) })

	if err := r.createRenderPass(); err != nil {
		return err
	}
	undo.push(r.destroyRenderPass)

	if err := r.createPipelineLayout(); err != nil {
		return err
	}
	undo.push(r.destroyPipelineLayout)

	if err := r.createPipeline(); err != nil {
		return err
	}
	undo.push(r.destroyPipeline)

	if err := r.createFramebuffers(); err != nil {
		return err
	}
	undo.push(r.destroyFramebuffers)

	if err := r.createCommandBuffers(); err != nil {
		return err
	}

	undo.release()
	r.swapchainState = swapchainBuilt
	r.generation++
	return nil
}

// teardownGeneration destroys the generation in reverse order. With retain
// set the swap chain handle is kept and returned so the next build can hand
// it over to the API.
func (r *Renderer) teardownGeneration(retain bool) gpu.Swapchain {
	r.destroyCommandBuffers()
	r.destroyFramebuffers()
	r.destroyPipeline()
	r.destroyPipelineLayout()
	r.destroyRenderPass()
	return r.destroySwapchain(retain)
}

// rebuildGeneration replaces the generation after a resize or a
// presentation hazard.
func (r *Renderer) rebuildGeneration(reason string) error {
	r.swapchainState = swapchainInvalidated
	if err := r.waitIdle(); err != nil {
		return err
	}
	old := r.teardownGeneration(true)
	r.swapchainState = swapchainRebuilding
	if err := r.buildGeneration(old); err != nil {
		logf(r.logger, LogLevelError, "failed to rebuild the swap chain (%s): %v", reason, err)
		return err
	}
	extent := r.swapchain.properties.Extent
	logf(r.logger, LogLevelInfo, "swap chain rebuilt (%s) at %dx%d", reason, extent.Width, extent.Height)
	return nil
}
