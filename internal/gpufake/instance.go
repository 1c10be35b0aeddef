package gpufake

import (
	"slices"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) EnumerateInstanceLayerProperties() ([]string, gpu.Result) {
	if res := d.call("EnumerateInstanceLayerProperties"); res != gpu.Success {
		return nil, res
	}
	return slices.Clone(d.cfg.Layers), gpu.Success
}

func (d *Driver) EnumerateInstanceExtensionProperties() ([]string, gpu.Result) {
	if res := d.call("EnumerateInstanceExtensionProperties"); res != gpu.Success {
		return nil, res
	}
	return slices.Clone(d.cfg.InstanceExtensions), gpu.Success
}

func (d *Driver) CreateInstance(info *gpu.InstanceCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Instance, gpu.Result) {
	for _, name := range info.EnabledLayerNames {
		if !slices.Contains(d.cfg.Layers, name) {
			d.calls["CreateInstance"]++
			return 0, gpu.ErrorLayerNotPresent
		}
	}
	for _, name := range info.EnabledExtensionNames {
		if !slices.Contains(d.cfg.InstanceExtensions, name) {
			d.calls["CreateInstance"]++
			return 0, gpu.ErrorExtensionNotPresent
		}
	}
	h, res := d.create("CreateInstance", KindInstance, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.InstanceInfos = append(d.InstanceInfos, gpu.InstanceCreateInfo{
		ApplicationInfo:       info.ApplicationInfo,
		EnabledLayerNames:     slices.Clone(info.EnabledLayerNames),
		EnabledExtensionNames: slices.Clone(info.EnabledExtensionNames),
	})
	return gpu.Instance(h), gpu.Success
}

func (d *Driver) DestroyInstance(instance gpu.Instance, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroyInstance", KindInstance, uint64(instance))
}

func (d *Driver) CreateDebugReportCallback(instance gpu.Instance, info *gpu.DebugReportCallbackCreateInfo, alloc gpu.AllocationCallbacks) (gpu.DebugReportCallback, gpu.Result) {
	d.requireLive("CreateDebugReportCallback", KindInstance, uint64(instance))
	h, res := d.create("CreateDebugReportCallback", KindDebugReportCallback, alloc)
	if res != gpu.Success {
		return 0, res
	}
	d.debugCallbacks[gpu.DebugReportCallback(h)] = info.Callback
	return gpu.DebugReportCallback(h), gpu.Success
}

func (d *Driver) DestroyDebugReportCallback(instance gpu.Instance, callback gpu.DebugReportCallback, alloc gpu.AllocationCallbacks) {
	delete(d.debugCallbacks, callback)
	d.destroy("DestroyDebugReportCallback", KindDebugReportCallback, uint64(callback))
}

func (d *Driver) DestroySurface(instance gpu.Instance, surface gpu.Surface, alloc gpu.AllocationCallbacks) {
	d.destroy("DestroySurface", KindSurface, uint64(surface))
}

func (d *Driver) EnumeratePhysicalDevices(instance gpu.Instance) ([]gpu.PhysicalDevice, gpu.Result) {
	if res := d.call("EnumeratePhysicalDevices"); res != gpu.Success {
		return nil, res
	}
	d.requireLive("EnumeratePhysicalDevices", KindInstance, uint64(instance))
	return slices.Clone(d.physicalOrder), gpu.Success
}

func (d *Driver) GetPhysicalDeviceProperties(physical gpu.PhysicalDevice) gpu.PhysicalDeviceProperties {
	dev, _ := d.device(physical)
	return dev.Properties
}

func (d *Driver) GetPhysicalDeviceQueueFamilyProperties(physical gpu.PhysicalDevice) []gpu.QueueFamilyProperties {
	dev, _ := d.device(physical)
	return slices.Clone(dev.QueueFamilies)
}

func (d *Driver) GetPhysicalDeviceMemoryProperties(physical gpu.PhysicalDevice) gpu.MemoryProperties {
	dev, _ := d.device(physical)
	return gpu.MemoryProperties{
		MemoryTypes: slices.Clone(dev.Memory.MemoryTypes),
		MemoryHeaps: slices.Clone(dev.Memory.MemoryHeaps),
	}
}

func (d *Driver) EnumerateDeviceExtensionProperties(physical gpu.PhysicalDevice) ([]string, gpu.Result) {
	if res := d.call("EnumerateDeviceExtensionProperties"); res != gpu.Success {
		return nil, res
	}
	dev, _ := d.device(physical)
	return slices.Clone(dev.Extensions), gpu.Success
}

func (d *Driver) GetPhysicalDeviceSurfaceSupport(physical gpu.PhysicalDevice, queueFamily uint32, surface gpu.Surface) (bool, gpu.Result) {
	if res := d.call("GetPhysicalDeviceSurfaceSupport"); res != gpu.Success {
		return false, res
	}
	dev, _ := d.device(physical)
	if int(queueFamily) >= len(dev.QueueFamilies) {
		d.misuse("GetPhysicalDeviceSurfaceSupport with family %d out of range", queueFamily)
		return false, gpu.Success
	}
	if dev.PresentSupport == nil {
		return true, gpu.Success
	}
	return int(queueFamily) < len(dev.PresentSupport) && dev.PresentSupport[queueFamily], gpu.Success
}

func (d *Driver) GetPhysicalDeviceSurfaceCapabilities(physical gpu.PhysicalDevice, surface gpu.Surface) (gpu.SurfaceCapabilities, gpu.Result) {
	if res := d.call("GetPhysicalDeviceSurfaceCapabilities"); res != gpu.Success {
		return gpu.SurfaceCapabilities{}, res
	}
	d.requireLive("GetPhysicalDeviceSurfaceCapabilities", KindSurface, uint64(surface))
	dev, _ := d.device(physical)
	return dev.Capabilities, gpu.Success
}

func (d *Driver) GetPhysicalDeviceSurfaceFormats(physical gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.SurfaceFormat, gpu.Result) {
	if res := d.call("GetPhysicalDeviceSurfaceFormats"); res != gpu.Success {
		return nil, res
	}
	dev, _ := d.device(physical)
	return slices.Clone(dev.Formats), gpu.Success
}

func (d *Driver) GetPhysicalDeviceSurfacePresentModes(physical gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.PresentMode, gpu.Result) {
	if res := d.call("GetPhysicalDeviceSurfacePresentModes"); res != gpu.Success {
		return nil, res
	}
	dev, _ := d.device(physical)
	return slices.Clone(dev.PresentModes), gpu.Success
}
