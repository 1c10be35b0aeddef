package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// renderPassCreateInfo describes a single subpass writing one color
// attachment that ends up ready for presentation. The external dependency
// makes the image-acquired semaphore's signal visible to the subpass.
func renderPassCreateInfo(format gpu.Format) *gpu.RenderPassCreateInfo {
	return &gpu.RenderPassCreateInfo{
		Attachments: []gpu.AttachmentDescription{{
			Format:         format,
			Samples:        gpu.SampleCount1,
			LoadOp:         gpu.AttachmentLoadOpClear,
			StoreOp:        gpu.AttachmentStoreOpStore,
			StencilLoadOp:  gpu.AttachmentLoadOpDontCare,
			StencilStoreOp: gpu.AttachmentStoreOpDontCare,
			InitialLayout:  gpu.ImageLayoutUndefined,
			FinalLayout:    gpu.ImageLayoutPresentSrc,
		}},
		Subpasses: []gpu.SubpassDescription{{
			PipelineBindPoint: gpu.PipelineBindPointGraphics,
			ColorAttachments: []gpu.AttachmentReference{{
				Attachment: 0,
				Layout:     gpu.ImageLayoutColorAttachmentOptimal,
			}},
		}},
		Dependencies: []gpu.SubpassDependency{{
			SrcSubpass:    gpu.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  gpu.PipelineStageColorAttachmentOutput,
			DstStageMask:  gpu.PipelineStageColorAttachmentOutput,
			SrcAccessMask: 0,
			DstAccessMask: gpu.AccessColorAttachmentRead | gpu.AccessColorAttachmentWrite,
		}},
	}
}

func (r *Renderer) createRenderPass() error {
	handle, res := r.api.CreateRenderPass(r.device, renderPassCreateInfo(r.swapchain.properties.Format.Format), r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the render pass")
	}
	r.renderPass = handle
	return nil
}

func (r *Renderer) destroyRenderPass() {
	if r.renderPass == 0 {
		return
	}
	r.api.DestroyRenderPass(r.device, r.renderPass, r.callbacks)
	r.renderPass = 0
}

// createFramebuffers binds the render pass to every swap chain image view.
func (r *Renderer) createFramebuffers() error {
	views := r.swapchain.views
	extent := r.swapchain.properties.Extent
	framebuffers, reserved, err := makeHostSlice[gpu.Framebuffer](r.allocator, len(views))
	if err != nil {
		return err
	}
	for i, view := range views {
		framebuffer, res := r.api.CreateFramebuffer(r.device, &gpu.FramebufferCreateInfo{
			RenderPass:  r.renderPass,
			Attachments: []gpu.ImageView{view},
			Width:       extent.Width,
			Height:      extent.Height,
			Layers:      1,
		}, r.callbacks)
		if res != gpu.Success {
			for _, created := range framebuffers[:i] {
				r.api.DestroyFramebuffer(r.device, created, r.callbacks)
			}
			reserved.release(r.allocator)
			return resultError(res, "failed to create framebuffer %d", i)
		}
		framebuffers[i] = framebuffer
	}
	r.framebuffers = framebuffers
	r.framebuffersReserved = reserved
	return nil
}

func (r *Renderer) destroyFramebuffers() {
	for _, framebuffer := range r.framebuffers {
		r.api.DestroyFramebuffer(r.device, framebuffer, r.callbacks)
	}
	r.framebuffers = nil
	r.framebuffersReserved.release(r.allocator)
}
