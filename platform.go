package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

type physicalDevice struct {
	handle     gpu.PhysicalDevice
	properties gpu.PhysicalDeviceProperties
	memory     gpu.MemoryProperties
	families   QueueFamilies
	extensions []string
}

// pickPhysicalDevice returns the first enumerated device that is suitable.
// No ranking happens between several suitable devices.
func (r *Renderer) pickPhysicalDevice() (physicalDevice, error) {
	handles, res := r.api.EnumeratePhysicalDevices(r.instance)
	if res != gpu.Success && res != gpu.Incomplete {
		return physicalDevice{}, resultError(res, "failed to enumerate the physical devices")
	}
	if len(handles) == 0 {
		return physicalDevice{}, newError(StatusError, "no physical device found")
	}

	for _, handle := range handles {
		device, suitable, err := r.inspectPhysicalDevice(handle)
		if err != nil {
			return physicalDevice{}, err
		}
		if suitable {
			logf(r.logger, LogLevelInfo, "selected physical device %q", device.properties.DeviceName)
			return device, nil
		}
	}
	return physicalDevice{}, newError(StatusError, "none of the %d physical devices is suitable", len(handles))
}

// inspectPhysicalDevice evaluates the suitability predicates in order and
// stops at the first one failing.
func (r *Renderer) inspectPhysicalDevice(handle gpu.PhysicalDevice) (physicalDevice, bool, error) {
	device := physicalDevice{
		handle:     handle,
		properties: r.api.GetPhysicalDeviceProperties(handle),
	}
	name := device.properties.DeviceName
	presenting := r.surface != 0

	if device.properties.DeviceType != gpu.PhysicalDeviceTypeDiscreteGPU {
		logf(r.logger, LogLevelDebug, "skipping %q: not a discrete GPU", name)
		return device, false, nil
	}

	device.extensions = requiredDeviceExtensions(presenting)
	if len(device.extensions) > 0 {
		available, err := deviceExtensions(r.api, handle)
		if err != nil {
			return device, false, err
		}
		set := nameSet{kind: "device extensions", required: device.extensions, actual: available}
		if missing := set.missing(); len(missing) > 0 {
			logf(r.logger, LogLevelDebug, "skipping %q: missing device extensions %v", name, missing)
			return device, false, nil
		}
	}

	var support PresentSupport
	if presenting {
		support = func(family uint32) (bool, error) {
			supported, res := r.api.GetPhysicalDeviceSurfaceSupport(handle, family, r.surface)
			if res != gpu.Success {
				return false, resultError(res, "failed to query the present support of queue family %d", family)
			}
			return supported, nil
		}
	}
	families, err := PickQueueFamilies(r.api.GetPhysicalDeviceQueueFamilyProperties(handle), support)
	if err != nil {
		if StatusOf(err) == StatusNotAvailable {
			logf(r.logger, LogLevelDebug, "skipping %q: %v", name, err)
			return device, false, nil
		}
		return device, false, err
	}
	device.families = families

	if presenting {
		formats, res := r.api.GetPhysicalDeviceSurfaceFormats(handle, r.surface)
		if res != gpu.Success && res != gpu.Incomplete {
			return device, false, resultError(res, "failed to query the surface formats of %q", name)
		}
		if len(formats) == 0 {
			logf(r.logger, LogLevelDebug, "skipping %q: no surface format", name)
			return device, false, nil
		}
		modes, res := r.api.GetPhysicalDeviceSurfacePresentModes(handle, r.surface)
		if res != gpu.Success && res != gpu.Incomplete {
			return device, false, resultError(res, "failed to query the present modes of %q", name)
		}
		if len(modes) == 0 {
			logf(r.logger, LogLevelDebug, "skipping %q: no present mode", name)
			return device, false, nil
		}
	}

	device.memory = r.api.GetPhysicalDeviceMemoryProperties(handle)
	return device, true, nil
}
