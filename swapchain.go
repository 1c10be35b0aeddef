package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

const (
	preferredSurfaceFormat = gpu.FormatB8G8R8A8Unorm
	requiredImageUsage     = gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferDst
)

var presentModePreference = [...]gpu.PresentMode{
	gpu.PresentModeMailbox,
	gpu.PresentModeFifo,
	gpu.PresentModeImmediate,
}

var compositeAlphaPreference = [...]gpu.CompositeAlphaFlags{
	gpu.CompositeAlphaOpaque,
	gpu.CompositeAlphaPreMultiplied,
	gpu.CompositeAlphaPostMultiplied,
	gpu.CompositeAlphaInherit,
}

// SwapchainProperties is the outcome of negotiating a swap chain against a
// surface.
type SwapchainProperties struct {
	Format         gpu.SurfaceFormat
	PresentMode    gpu.PresentMode
	ImageCount     uint32
	Extent         gpu.Extent2D
	ImageUsage     gpu.ImageUsageFlags
	PreTransform   gpu.SurfaceTransformFlags
	CompositeAlpha gpu.CompositeAlphaFlags
}

// NegotiateSwapchain derives the swap chain properties from what the
// surface supports and the extent the caller would like.
func NegotiateSwapchain(caps gpu.SurfaceCapabilities, formats []gpu.SurfaceFormat, modes []gpu.PresentMode, desired gpu.Extent2D) (SwapchainProperties, error) {
	mode, err := PickPresentMode(modes)
	if err != nil {
		return SwapchainProperties{}, err
	}
	if err := CheckImageUsage(caps); err != nil {
		return SwapchainProperties{}, err
	}
	format, err := PickSurfaceFormat(formats)
	if err != nil {
		return SwapchainProperties{}, err
	}
	return SwapchainProperties{
		Format:         format,
		PresentMode:    mode,
		ImageCount:     PickImageCount(caps, mode),
		Extent:         PickImageExtent(caps, desired),
		ImageUsage:     requiredImageUsage,
		PreTransform:   caps.CurrentTransform,
		CompositeAlpha: pickCompositeAlpha(caps),
	}, nil
}

// PickPresentMode prefers mailbox, then FIFO, then immediate.
func PickPresentMode(modes []gpu.PresentMode) (gpu.PresentMode, error) {
	for _, preferred := range presentModePreference {
		for _, mode := range modes {
			if mode == preferred {
				return mode, nil
			}
		}
	}
	return 0, newError(StatusNotAvailable, "no supported present mode among %v", modes)
}

// CheckImageUsage verifies the swap chain images can be rendered to and
// cleared by transfers.
func CheckImageUsage(caps gpu.SurfaceCapabilities) error {
	if caps.SupportedUsageFlags&requiredImageUsage != requiredImageUsage {
		return newError(StatusNotAvailable,
			"the surface does not support color attachment and transfer destination usage (supported: %#x)",
			uint32(caps.SupportedUsageFlags))
	}
	return nil
}

// PickSurfaceFormat prefers 32-bit BGRA. A lone undefined format means the
// surface has no preference.
func PickSurfaceFormat(formats []gpu.SurfaceFormat) (gpu.SurfaceFormat, error) {
	if len(formats) == 0 {
		return gpu.SurfaceFormat{}, newError(StatusNotAvailable, "the surface reports no format")
	}
	if len(formats) == 1 && formats[0].Format == gpu.FormatUndefined {
		return gpu.SurfaceFormat{
			Format:     preferredSurfaceFormat,
			ColorSpace: formats[0].ColorSpace,
		}, nil
	}
	for _, format := range formats {
		if format.Format == preferredSurfaceFormat {
			return format, nil
		}
	}
	return formats[0], nil
}

// PickImageCount asks for one image more than the minimum with mailbox so
// that a free image is always at hand. A zero maximum means no limit.
func PickImageCount(caps gpu.SurfaceCapabilities, mode gpu.PresentMode) uint32 {
	count := caps.MinImageCount
	if mode == gpu.PresentModeMailbox {
		count++
	}
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// PickImageExtent uses the surface's current extent unless the surface
// leaves it to the swap chain.
func PickImageExtent(caps gpu.SurfaceCapabilities, desired gpu.Extent2D) gpu.Extent2D {
	if caps.CurrentExtent.Width != gpu.UndefinedExtent {
		return caps.CurrentExtent
	}
	return clampExtent(desired, caps.MinImageExtent, caps.MaxImageExtent)
}

func pickCompositeAlpha(caps gpu.SurfaceCapabilities) gpu.CompositeAlphaFlags {
	for _, alpha := range compositeAlphaPreference {
		if caps.SupportedCompositeAlpha&alpha != 0 {
			return alpha
		}
	}
	return gpu.CompositeAlphaOpaque
}

// swapchain owns the images and views of one swap chain. images and views
// always have the same length.
type swapchain struct {
	handle     gpu.Swapchain
	properties SwapchainProperties
	images     []gpu.Image
	views      []gpu.ImageView

	imagesReserved reservation
	viewsReserved  reservation
}

func (r *Renderer) negotiateSwapchain() (SwapchainProperties, error) {
	physical := r.physical.handle
	caps, res := r.api.GetPhysicalDeviceSurfaceCapabilities(physical, r.surface)
	if res != gpu.Success {
		return SwapchainProperties{}, resultError(res, "failed to query the surface capabilities")
	}
	formats, res := r.api.GetPhysicalDeviceSurfaceFormats(physical, r.surface)
	if res != gpu.Success && res != gpu.Incomplete {
		return SwapchainProperties{}, resultError(res, "failed to query the surface formats")
	}
	modes, res := r.api.GetPhysicalDeviceSurfacePresentModes(physical, r.surface)
	if res != gpu.Success && res != gpu.Incomplete {
		return SwapchainProperties{}, resultError(res, "failed to query the present modes")
	}
	return NegotiateSwapchain(caps, formats, modes, r.desiredExtent)
}

// createSwapchain builds a swap chain with its images and views. old, when
// not null, is handed to the API for the transition and destroyed as the
// very last step whether or not the build succeeds.
func (r *Renderer) createSwapchain(old gpu.Swapchain) (err error) {
	defer func() {
		if old != 0 {
			r.api.DestroySwapchain(r.device, old, r.callbacks)
		}
	}()

	props, err := r.negotiateSwapchain()
	if err != nil {
		return err
	}

	graphics := uint32(r.physical.families.Index(QueueRoleGraphics))
	present := uint32(r.physical.families.Index(QueueRolePresent))
	sharing := gpu.SharingModeExclusive
	var sharedFamilies []uint32
	if graphics != present {
		sharing = gpu.SharingModeConcurrent
		sharedFamilies = []uint32{graphics, present}
	}

	handle, res := r.api.CreateSwapchain(r.device, &gpu.SwapchainCreateInfo{
		Surface:            r.surface,
		MinImageCount:      props.ImageCount,
		ImageFormat:        props.Format.Format,
		ImageColorSpace:    props.Format.ColorSpace,
		ImageExtent:        props.Extent,
		ImageArrayLayers:   1,
		ImageUsage:         props.ImageUsage,
		ImageSharingMode:   sharing,
		QueueFamilyIndices: sharedFamilies,
		PreTransform:       props.PreTransform,
		CompositeAlpha:     props.CompositeAlpha,
		PresentMode:        props.PresentMode,
		Clipped:            true,
		OldSwapchain:       old,
	}, r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the swap chain")
	}

	var undo undoStack
	defer func() {
		if err != nil {
			undo.unwind()
		}
	}()
	undo.push(func() { r.api.DestroySwapchain(r.device, handle, r.callbacks) })

	sc := swapchain{handle: handle, properties: props}

	native, res := r.api.GetSwapchainImages(r.device, handle)
	if res != gpu.Success && res != gpu.Incomplete {
		return resultError(res, "failed to retrieve the swap chain images")
	}
	sc.images, sc.imagesReserved, err = makeHostSlice[gpu.Image](r.allocator, len(native))
	if err != nil {
		return err
	}
	undo.push(func() { sc.imagesReserved.release(r.allocator) })
	copy(sc.images, native)

	sc.views, sc.viewsReserved, err = r.createImageViews(sc.images, props.Format.Format)
	if err != nil {
		return err
	}

	r.swapchain = sc
	undo.release()
	logf(r.logger, LogLevelDebug, "swap chain created: %d images of %dx%d, format %d, %s",
		len(sc.images), props.Extent.Width, props.Extent.Height, props.Format.Format, props.PresentMode)
	return nil
}

// destroySwapchain releases the images and views. With retain set the swap
// chain handle itself survives and is returned for the next build.
func (r *Renderer) destroySwapchain(retain bool) gpu.Swapchain {
	sc := &r.swapchain
	r.destroyImageViews(sc.views, &sc.viewsReserved)
	sc.imagesReserved.release(r.allocator)
	handle := sc.handle
	*sc = swapchain{}
	if handle != 0 && !retain {
		r.api.DestroySwapchain(r.device, handle, r.callbacks)
		return 0
	}
	return handle
}
