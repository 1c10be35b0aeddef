package gpufake

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// WindowSystem creates surfaces on a Driver the way a windowing library
// would.
type WindowSystem struct {
	Driver     *Driver
	Extensions []string

	// ExtensionsErr and SurfaceErr are returned by the matching calls when
	// set.
	ExtensionsErr error
	SurfaceErr    error

	outstanding int
}

func NewWindowSystem(d *Driver) *WindowSystem {
	return &WindowSystem{
		Driver:     d,
		Extensions: []string{gpu.SurfaceExtensionName, "VK_KHR_xcb_surface"},
	}
}

func (w *WindowSystem) CreateInstanceExtensionNames() ([]string, error) {
	if w.ExtensionsErr != nil {
		return nil, w.ExtensionsErr
	}
	w.outstanding++
	return slices.Clone(w.Extensions), nil
}

func (w *WindowSystem) DestroyInstanceExtensionNames(names []string) {
	w.outstanding--
}

// Outstanding is the number of extension lists not handed back yet.
func (w *WindowSystem) Outstanding() int {
	return w.outstanding
}

func (w *WindowSystem) CreateSurface(instance gpu.Instance, alloc gpu.AllocationCallbacks) (gpu.Surface, error) {
	if w.SurfaceErr != nil {
		return 0, w.SurfaceErr
	}
	if !w.Driver.IsLive(KindInstance, uint64(instance)) {
		return 0, errors.New("gpufake: surface requested for a dead instance")
	}
	surface, res := w.Driver.CreateSurfaceHandle(alloc)
	if res != gpu.Success {
		return 0, res
	}
	return surface, nil
}
