package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

const queuePriority = float32(1.0)

// createDevice selects the physical device, opens one queue per distinct
// family and fetches the queue of every assigned role.
func (r *Renderer) createDevice() error {
	physical, err := r.pickPhysicalDevice()
	if err != nil {
		return err
	}

	families := physical.families.Filtered
	infos, reserved, err := makeHostSlice[gpu.DeviceQueueCreateInfo](r.allocator, len(families))
	if err != nil {
		return err
	}
	defer reserved.release(r.allocator)
	for i, family := range families {
		infos[i] = gpu.DeviceQueueCreateInfo{
			QueueFamilyIndex: family,
			QueuePriorities:  []float32{queuePriority},
		}
	}

	handle, res := r.api.CreateDevice(physical.handle, &gpu.DeviceCreateInfo{
		QueueCreateInfos:      infos,
		EnabledLayerNames:     r.layers,
		EnabledExtensionNames: physical.extensions,
	}, r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the logical device on %q", physical.properties.DeviceName)
	}

	r.physical = physical
	r.device = handle
	for role, index := range physical.families.Indices {
		if index.Assigned() {
			r.queues[role] = r.api.GetDeviceQueue(handle, uint32(index), 0)
		}
	}
	logf(r.logger, LogLevelDebug, "logical device created with queue families %v", physical.families.Indices)
	return nil
}

func (r *Renderer) destroyDevice() {
	if r.device == 0 {
		return
	}
	r.api.DestroyDevice(r.device, r.callbacks)
	r.device = 0
	r.queues = [queueRoleCount]gpu.Queue{}
	r.physical = physicalDevice{}
}

func (r *Renderer) waitIdle() error {
	if res := r.api.DeviceWaitIdle(r.device); res != gpu.Success {
		return resultError(res, "failed to wait for the device to become idle")
	}
	return nil
}
