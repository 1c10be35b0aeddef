package dekoi

import (
	"github.com/cockroachdb/errors"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// WindowSystem connects the renderer to a window. A renderer created
// without one runs headless.
type WindowSystem interface {
	// CreateInstanceExtensionNames lists the instance extensions the window
	// system needs to create surfaces.
	CreateInstanceExtensionNames() ([]string, error)
	// DestroyInstanceExtensionNames hands back a list obtained from
	// CreateInstanceExtensionNames.
	DestroyInstanceExtensionNames(names []string)
	// CreateSurface creates a presentable surface for instance.
	CreateSurface(instance gpu.Instance, alloc gpu.AllocationCallbacks) (gpu.Surface, error)
}

func windowExtensions(ws WindowSystem) ([]string, error) {
	if ws == nil {
		return nil, nil
	}
	names, err := ws.CreateInstanceExtensionNames()
	if err != nil {
		return nil, errors.Wrap(markUnclassified(err), "failed to retrieve the window system's instance extensions")
	}
	return names, nil
}

// createSurface returns the null surface when there is no window system.
func createSurface(ws WindowSystem, instance gpu.Instance, alloc gpu.AllocationCallbacks) (gpu.Surface, error) {
	if ws == nil {
		return 0, nil
	}
	surface, err := ws.CreateSurface(instance, alloc)
	if err != nil {
		return 0, errors.Wrap(markUnclassified(err), "failed to create the surface")
	}
	if surface == 0 {
		return 0, newError(StatusError, "the window system returned a null surface")
	}
	return surface, nil
}

func destroySurface(api gpu.API, instance gpu.Instance, surface gpu.Surface, alloc gpu.AllocationCallbacks) {
	if surface == 0 {
		return
	}
	api.DestroySurface(instance, surface, alloc)
}
