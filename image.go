package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// createImageViews creates one color view per swap chain image. Nothing is
// left behind on failure.
func (r *Renderer) createImageViews(images []gpu.Image, format gpu.Format) ([]gpu.ImageView, reservation, error) {
	views, reserved, err := makeHostSlice[gpu.ImageView](r.allocator, len(images))
	if err != nil {
		return nil, reservation{}, err
	}
	for i, image := range images {
		view, res := r.api.CreateImageView(r.device, &gpu.ImageViewCreateInfo{
			Image:  image,
			Format: format,
		}, r.callbacks)
		if res != gpu.Success {
			r.destroyImageViews(views[:i], &reserved)
			return nil, reservation{}, resultError(res, "failed to create the view of swap chain image %d", i)
		}
		views[i] = view
	}
	return views, reserved, nil
}

func (r *Renderer) destroyImageViews(views []gpu.ImageView, reserved *reservation) {
	for _, view := range views {
		if view != 0 {
			r.api.DestroyImageView(r.device, view, r.callbacks)
		}
	}
	reserved.release(r.allocator)
}
