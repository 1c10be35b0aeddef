package vkgo

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func (d *Driver) EnumerateInstanceLayerProperties() ([]string, gpu.Result) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, result(res)
	}
	props := make([]vk.LayerProperties, count)
	res := vk.EnumerateInstanceLayerProperties(&count, props)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}
	names := make([]string, 0, count)
	for _, p := range props[:count] {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, result(res)
}

func (d *Driver) EnumerateInstanceExtensionProperties() ([]string, gpu.Result) {
	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties("", &count, nil); res != vk.Success {
		return nil, result(res)
	}
	props := make([]vk.ExtensionProperties, count)
	res := vk.EnumerateInstanceExtensionProperties("", &count, props)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}
	return extensionNames(props[:count]), result(res)
}

func extensionNames(props []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(props))
	for _, p := range props {
		p.Deref()
		names = append(names, vk.ToString(p.ExtensionName[:]))
	}
	return names
}

func (d *Driver) CreateInstance(info *gpu.InstanceCreateInfo, alloc gpu.AllocationCallbacks) (gpu.Instance, gpu.Result) {
	app := info.ApplicationInfo
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(app.ApplicationName),
		ApplicationVersion: app.ApplicationVersion,
		PEngineName:        safeString(app.EngineName),
		EngineVersion:      app.EngineVersion,
		ApiVersion:         app.APIVersion,
	}
	layers := safeStrings(info.EnabledLayerNames)
	extensions := safeStrings(info.EnabledExtensionNames)
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return 0, result(res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return 0, gpu.ErrorInitializationFailed
	}
	return gpu.Instance(register(d, &d.instances, instance)), gpu.Success
}

func (d *Driver) DestroyInstance(instance gpu.Instance, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.instances, uint64(instance)); ok {
		vk.DestroyInstance(v, nil)
	}
}

func (d *Driver) CreateDebugReportCallback(instance gpu.Instance, info *gpu.DebugReportCallbackCreateInfo, alloc gpu.AllocationCallbacks) (gpu.DebugReportCallback, gpu.Result) {
	fn := info.Callback
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(info.Flags),
		PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
			object uint64, location uint, messageCode int32, pLayerPrefix string,
			pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
			if fn == nil {
				return vk.False
			}
			return boolean(fn(gpu.DebugReportFlags(flags), pLayerPrefix, messageCode, pMessage))
		},
	}

	var callback vk.DebugReportCallback
	res := vk.CreateDebugReportCallback(lookup(d, &d.instances, uint64(instance)), &createInfo, nil, &callback)
	if res != vk.Success {
		return 0, result(res)
	}
	return gpu.DebugReportCallback(register(d, &d.debugCallbacks, callback)), gpu.Success
}

func (d *Driver) DestroyDebugReportCallback(instance gpu.Instance, callback gpu.DebugReportCallback, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.debugCallbacks, uint64(callback)); ok {
		vk.DestroyDebugReportCallback(lookup(d, &d.instances, uint64(instance)), v, nil)
	}
}

func (d *Driver) DestroySurface(instance gpu.Instance, surface gpu.Surface, alloc gpu.AllocationCallbacks) {
	if v, ok := release(d, &d.surfaces, uint64(surface)); ok {
		vk.DestroySurface(lookup(d, &d.instances, uint64(instance)), v, nil)
	}
}

func (d *Driver) EnumeratePhysicalDevices(instance gpu.Instance) ([]gpu.PhysicalDevice, gpu.Result) {
	native := lookup(d, &d.instances, uint64(instance))
	var count uint32
	if res := vk.EnumeratePhysicalDevices(native, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	devices := make([]vk.PhysicalDevice, count)
	res := vk.EnumeratePhysicalDevices(native, &count, devices)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	handles := make([]gpu.PhysicalDevice, 0, count)
	for _, device := range devices[:count] {
		h, ok := d.physicalHandles[device]
		if !ok {
			h = gpu.PhysicalDevice(d.physicalDevices.put(&d.next, device))
			d.physicalHandles[device] = h
		}
		handles = append(handles, h)
	}
	return handles, result(res)
}

func (d *Driver) physical(h gpu.PhysicalDevice) vk.PhysicalDevice {
	return lookup(d, &d.physicalDevices, uint64(h))
}

func (d *Driver) GetPhysicalDeviceProperties(physical gpu.PhysicalDevice) gpu.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(d.physical(physical), &props)
	props.Deref()
	return gpu.PhysicalDeviceProperties{
		APIVersion:    props.ApiVersion,
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		DeviceType:    gpu.PhysicalDeviceType(props.DeviceType),
		DeviceName:    vk.ToString(props.DeviceName[:]),
	}
}

func (d *Driver) GetPhysicalDeviceQueueFamilyProperties(physical gpu.PhysicalDevice) []gpu.QueueFamilyProperties {
	native := d.physical(physical)
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(native, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(native, &count, props)

	families := make([]gpu.QueueFamilyProperties, count)
	for i := range families {
		p := props[i]
		p.Deref()
		families[i] = gpu.QueueFamilyProperties{
			QueueFlags: gpu.QueueFlags(p.QueueFlags),
			QueueCount: p.QueueCount,
		}
	}
	return families
}

func (d *Driver) GetPhysicalDeviceMemoryProperties(physical gpu.PhysicalDevice) gpu.MemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.physical(physical), &props)
	return memoryProperties(props)
}

func (d *Driver) EnumerateDeviceExtensionProperties(physical gpu.PhysicalDevice) ([]string, gpu.Result) {
	native := d.physical(physical)
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(native, "", &count, nil); res != vk.Success {
		return nil, result(res)
	}
	props := make([]vk.ExtensionProperties, count)
	res := vk.EnumerateDeviceExtensionProperties(native, "", &count, props)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}
	return extensionNames(props[:count]), result(res)
}

func (d *Driver) GetPhysicalDeviceSurfaceSupport(physical gpu.PhysicalDevice, queueFamily uint32, surface gpu.Surface) (bool, gpu.Result) {
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(d.physical(physical), queueFamily, lookup(d, &d.surfaces, uint64(surface)), &supported)
	return supported == vk.True, result(res)
}

func (d *Driver) GetPhysicalDeviceSurfaceCapabilities(physical gpu.PhysicalDevice, surface gpu.Surface) (gpu.SurfaceCapabilities, gpu.Result) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(d.physical(physical), lookup(d, &d.surfaces, uint64(surface)), &caps)
	if res != vk.Success {
		return gpu.SurfaceCapabilities{}, result(res)
	}
	return surfaceCapabilities(caps), gpu.Success
}

func (d *Driver) GetPhysicalDeviceSurfaceFormats(physical gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.SurfaceFormat, gpu.Result) {
	native := d.physical(physical)
	nativeSurface := lookup(d, &d.surfaces, uint64(surface))
	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(native, nativeSurface, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	formats := make([]vk.SurfaceFormat, count)
	res := vk.GetPhysicalDeviceSurfaceFormats(native, nativeSurface, &count, formats)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}
	out := make([]gpu.SurfaceFormat, count)
	for i := range out {
		f := formats[i]
		f.Deref()
		out[i] = gpu.SurfaceFormat{Format: gpu.Format(f.Format), ColorSpace: gpu.ColorSpace(f.ColorSpace)}
	}
	return out, result(res)
}

func (d *Driver) GetPhysicalDeviceSurfacePresentModes(physical gpu.PhysicalDevice, surface gpu.Surface) ([]gpu.PresentMode, gpu.Result) {
	native := d.physical(physical)
	nativeSurface := lookup(d, &d.surfaces, uint64(surface))
	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(native, nativeSurface, &count, nil); res != vk.Success {
		return nil, result(res)
	}
	modes := make([]vk.PresentMode, count)
	res := vk.GetPhysicalDeviceSurfacePresentModes(native, nativeSurface, &count, modes)
	if res != vk.Success && res != vk.Incomplete {
		return nil, result(res)
	}
	out := make([]gpu.PresentMode, count)
	for i, m := range modes[:count] {
		out[i] = gpu.PresentMode(m)
	}
	return out, result(res)
}
