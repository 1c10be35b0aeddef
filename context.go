package dekoi

import (
	"github.com/cockroachdb/errors"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

type frameState int

const (
	frameIdle frameState = iota
	frameAcquiring
	frameSubmitted
	framePresented
)

func (s frameState) String() string {
	switch s {
	case frameIdle:
		return "idle"
	case frameAcquiring:
		return "acquiring"
	case frameSubmitted:
		return "submitted"
	case framePresented:
		return "presented"
	}
	return "unknown"
}

// submitWaitStage is where the graphics submission waits for the acquired
// image. The render pass dependency synchronizes at the color attachment
// output stage.
const submitWaitStage = gpu.PipelineStageTransfer

// Draw renders and presents one frame. Only one frame is ever in flight:
// the call first waits for the present queue to drain.
//
// An out-of-date or suboptimal swap chain is rebuilt transparently. A
// suboptimal image is still rendered with the index it came with; an
// out-of-date acquisition is retried once after the rebuild. When no image
// can be acquired yet the error is marked ErrNotAvailable; a lost device or
// surface is reported as ErrError and is not retried.
func (r *Renderer) Draw() (err error) {
	if r.swapchainState == swapchainDestroyed {
		return newError(StatusError, "the renderer has been destroyed")
	}
	if r.surface == 0 {
		return newError(StatusNotAvailable, "a headless renderer cannot draw")
	}
	if r.swapchainState != swapchainBuilt {
		if err := r.rebuildGeneration("recovering from an earlier failure"); err != nil {
			return err
		}
	}

	defer func() {
		if err != nil {
			logf(r.logger, LogLevelDebug, "frame %d failed while %s: %v", r.frame, r.frameState, err)
		}
		r.frameState = frameIdle
	}()

	if res := r.api.QueueWaitIdle(r.queues[QueueRolePresent]); res != gpu.Success {
		return resultError(res, "failed to wait for the present queue")
	}

	r.frameState = frameAcquiring
	index, res := r.acquire()
	switch res {
	case gpu.Suboptimal:
		if err := r.rebuildGeneration(res.String()); err != nil {
			r.releaseAcquired()
			return err
		}
	case gpu.ErrorOutOfDate:
		// Nothing was acquired. Try once more on the rebuilt swap chain.
		if err := r.rebuildGeneration(res.String()); err != nil {
			return err
		}
		index, res = r.acquire()
		if err := acquireError(res); err != nil {
			return err
		}
	default:
		if err := acquireError(res); err != nil {
			return err
		}
	}

	// The index may come from the swap chain replaced just above.
	if int(index) >= len(r.commandBuffers) {
		r.releaseAcquired()
		return newError(StatusNotAvailable, "image index %d is out of range for %d command buffers",
			index, len(r.commandBuffers))
	}

	res = r.api.QueueSubmit(r.queues[QueueRoleGraphics], []gpu.SubmitInfo{{
		WaitSemaphores:   []gpu.Semaphore{r.semaphores[semaphoreImageAcquired]},
		WaitDstStageMask: []gpu.PipelineStageFlags{submitWaitStage},
		CommandBuffers:   []gpu.CommandBuffer{r.commandBuffers[index]},
		SignalSemaphores: []gpu.Semaphore{r.semaphores[semaphorePresentCompleted]},
	}})
	if res != gpu.Success {
		return errors.Wrapf(resultError(res, "failed to submit the graphics commands"), "image %d", index)
	}
	r.frameState = frameSubmitted

	// A failed present surfaces on the next acquisition.
	res = r.api.QueuePresent(r.queues[QueueRolePresent], &gpu.PresentInfo{
		WaitSemaphores: []gpu.Semaphore{r.semaphores[semaphorePresentCompleted]},
		Swapchains:     []gpu.Swapchain{r.swapchain.handle},
		ImageIndices:   []uint32{index},
	})
	if res != gpu.Success {
		logf(r.logger, LogLevelDebug, "present of image %d returned %s", index, res)
	}
	r.frameState = framePresented
	r.frame++
	return nil
}

func (r *Renderer) acquire() (uint32, gpu.Result) {
	return r.api.AcquireNextImage(r.device, r.swapchain.handle, gpu.NoTimeout,
		r.semaphores[semaphoreImageAcquired])
}

// acquireError classifies the result of an image acquisition that is not
// followed by a rebuild.
func acquireError(res gpu.Result) error {
	switch res {
	case gpu.Success, gpu.Suboptimal:
		return nil
	case gpu.NotReady, gpu.Timeout, gpu.ErrorOutOfDate:
		return resultErrorAs(StatusNotAvailable, res, "no swap chain image is available")
	case gpu.ErrorDeviceLost, gpu.ErrorSurfaceLost:
		return resultErrorAs(StatusError, res, "failed to acquire a swap chain image")
	}
	return resultError(res, "failed to acquire a swap chain image")
}

// releaseAcquired waits on the ImageAcquired semaphore without rendering so
// that the next acquisition finds it unsignaled. Only a successful or
// suboptimal acquisition signals it.
func (r *Renderer) releaseAcquired() {
	res := r.api.QueueSubmit(r.queues[QueueRoleGraphics], []gpu.SubmitInfo{{
		WaitSemaphores:   []gpu.Semaphore{r.semaphores[semaphoreImageAcquired]},
		WaitDstStageMask: []gpu.PipelineStageFlags{submitWaitStage},
	}})
	if res != gpu.Success {
		logf(r.logger, LogLevelWarning, "failed to release the acquired image semaphore: %s", res)
	}
}
