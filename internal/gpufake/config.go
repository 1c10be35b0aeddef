// Package gpufake is an in-memory gpu.API for tests. It hands out handles,
// counts live objects per kind, charges the supplied allocation callbacks
// for every object it creates, records what it is asked to build and lets
// tests inject failures into any entry point.
package gpufake

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// PhysicalDeviceConfig describes one simulated GPU.
type PhysicalDeviceConfig struct {
	Properties    gpu.PhysicalDeviceProperties
	QueueFamilies []gpu.QueueFamilyProperties
	// PresentSupport is indexed by queue family. A nil slice means every
	// family can present.
	PresentSupport []bool
	Extensions     []string
	Capabilities   gpu.SurfaceCapabilities
	Formats        []gpu.SurfaceFormat
	PresentModes   []gpu.PresentMode
	Memory         gpu.MemoryProperties
	// MemoryTypeBits is reported in every buffer's memory requirements.
	MemoryTypeBits uint32
}

type Config struct {
	Layers             []string
	InstanceExtensions []string
	Devices            []PhysicalDeviceConfig
}

// DefaultDevice is a discrete GPU with a graphics+present family and a
// dedicated transfer family.
func DefaultDevice() PhysicalDeviceConfig {
	return PhysicalDeviceConfig{
		Properties: gpu.PhysicalDeviceProperties{
			APIVersion: gpu.MakeVersion(1, 3, 0),
			DeviceType: gpu.PhysicalDeviceTypeDiscreteGPU,
			DeviceName: "fake discrete gpu",
		},
		QueueFamilies: []gpu.QueueFamilyProperties{
			{QueueFlags: gpu.QueueGraphics | gpu.QueueCompute | gpu.QueueTransfer, QueueCount: 16},
			{QueueFlags: gpu.QueueTransfer, QueueCount: 2},
		},
		Extensions: []string{gpu.SwapchainExtensionName},
		Capabilities: gpu.SurfaceCapabilities{
			MinImageCount:           2,
			MaxImageCount:           8,
			CurrentExtent:           gpu.Extent2D{Width: gpu.UndefinedExtent, Height: gpu.UndefinedExtent},
			MinImageExtent:          gpu.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:          gpu.Extent2D{Width: 4096, Height: 4096},
			MaxImageArrayLayers:     1,
			SupportedTransforms:     gpu.SurfaceTransformIdentity,
			CurrentTransform:        gpu.SurfaceTransformIdentity,
			SupportedCompositeAlpha: gpu.CompositeAlphaOpaque,
			SupportedUsageFlags: gpu.ImageUsageColorAttachment | gpu.ImageUsageTransferDst |
				gpu.ImageUsageTransferSrc | gpu.ImageUsageSampled,
		},
		Formats: []gpu.SurfaceFormat{
			{Format: gpu.FormatB8G8R8A8Srgb, ColorSpace: gpu.ColorSpaceSrgbNonlinear},
			{Format: gpu.FormatB8G8R8A8Unorm, ColorSpace: gpu.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []gpu.PresentMode{gpu.PresentModeFifo, gpu.PresentModeMailbox},
		Memory: gpu.MemoryProperties{
			MemoryTypes: []gpu.MemoryType{
				{PropertyFlags: gpu.MemoryPropertyDeviceLocal, HeapIndex: 0},
				{PropertyFlags: gpu.MemoryPropertyHostVisible | gpu.MemoryPropertyHostCoherent, HeapIndex: 1},
			},
			MemoryHeaps: []gpu.MemoryHeap{
				{Size: 1 << 30},
				{Size: 1 << 28},
			},
		},
		MemoryTypeBits: 0x3,
	}
}

// DefaultConfig exposes the validation layer, the debug report extension
// and a generic surface extension, with a single default device.
func DefaultConfig() Config {
	return Config{
		Layers: []string{gpu.KhronosValidationLayerName},
		InstanceExtensions: []string{
			gpu.SurfaceExtensionName,
			"VK_KHR_xcb_surface",
			gpu.DebugReportExtensionName,
		},
		Devices: []PhysicalDeviceConfig{DefaultDevice()},
	}
}
