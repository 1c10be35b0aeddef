// Package gpu describes the explicit GPU API the renderer drives: opaque
// object handles, the enumerations and create-info structures it consumes,
// and the API interface a driver binding implements.
//
// Enumeration values are identical to their Vulkan counterparts so that a
// binding can convert them with a plain cast.
package gpu

// Handles are opaque identifiers issued by an API implementation. The zero
// value of every handle type is the null handle.
type (
	Instance            uint64
	PhysicalDevice      uint64
	Device              uint64
	Queue               uint64
	Surface             uint64
	Swapchain           uint64
	Image               uint64
	ImageView           uint64
	ShaderModule        uint64
	RenderPass          uint64
	PipelineLayout      uint64
	Pipeline            uint64
	Framebuffer         uint64
	CommandPool         uint64
	CommandBuffer       uint64
	Semaphore           uint64
	Buffer              uint64
	DeviceMemory        uint64
	DebugReportCallback uint64
)

type DeviceSize uint64

// WholeSize maps the remainder of a memory object.
const WholeSize DeviceSize = ^DeviceSize(0)

// NoTimeout makes a wait block until the operation completes.
const NoTimeout uint64 = ^uint64(0)

// SubpassExternal refers to operations outside a render pass.
const SubpassExternal uint32 = ^uint32(0)

// UndefinedExtent is the surface extent value meaning "decided by the
// swap chain".
const UndefinedExtent uint32 = ^uint32(0)

type Format int32

const (
	FormatUndefined          Format = 0
	FormatR8G8B8A8Unorm      Format = 37
	FormatB8G8R8A8Unorm      Format = 44
	FormatB8G8R8A8Srgb       Format = 50
	FormatR32G32Sfloat       Format = 103
	FormatR32G32B32Sfloat    Format = 106
	FormatR32G32B32A32Sfloat Format = 109
)

type ColorSpace int32

const (
	ColorSpaceSrgbNonlinear ColorSpace = 0
)

type PresentMode int32

const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo-relaxed"
	}
	return "unknown"
}

type PhysicalDeviceType int32

const (
	PhysicalDeviceTypeOther         PhysicalDeviceType = 0
	PhysicalDeviceTypeIntegratedGPU PhysicalDeviceType = 1
	PhysicalDeviceTypeDiscreteGPU   PhysicalDeviceType = 2
	PhysicalDeviceTypeVirtualGPU    PhysicalDeviceType = 3
	PhysicalDeviceTypeCPU           PhysicalDeviceType = 4
)

type QueueFlags uint32

const (
	QueueGraphics      QueueFlags = 0x1
	QueueCompute       QueueFlags = 0x2
	QueueTransfer      QueueFlags = 0x4
	QueueSparseBinding QueueFlags = 0x8
)

type ImageUsageFlags uint32

const (
	ImageUsageTransferSrc     ImageUsageFlags = 0x1
	ImageUsageTransferDst     ImageUsageFlags = 0x2
	ImageUsageSampled         ImageUsageFlags = 0x4
	ImageUsageStorage         ImageUsageFlags = 0x8
	ImageUsageColorAttachment ImageUsageFlags = 0x10
)

type BufferUsageFlags uint32

const (
	BufferUsageTransferSrc  BufferUsageFlags = 0x1
	BufferUsageTransferDst  BufferUsageFlags = 0x2
	BufferUsageVertexBuffer BufferUsageFlags = 0x80
)

type MemoryPropertyFlags uint32

const (
	MemoryPropertyDeviceLocal  MemoryPropertyFlags = 0x1
	MemoryPropertyHostVisible  MemoryPropertyFlags = 0x2
	MemoryPropertyHostCoherent MemoryPropertyFlags = 0x4
	MemoryPropertyHostCached   MemoryPropertyFlags = 0x8
)

type ShaderStageFlags uint32

const (
	ShaderStageVertex                 ShaderStageFlags = 0x1
	ShaderStageTessellationControl    ShaderStageFlags = 0x2
	ShaderStageTessellationEvaluation ShaderStageFlags = 0x4
	ShaderStageGeometry               ShaderStageFlags = 0x8
	ShaderStageFragment               ShaderStageFlags = 0x10
	ShaderStageCompute                ShaderStageFlags = 0x20
)

type PipelineStageFlags uint32

const (
	PipelineStageTopOfPipe             PipelineStageFlags = 0x1
	PipelineStageColorAttachmentOutput PipelineStageFlags = 0x400
	PipelineStageTransfer              PipelineStageFlags = 0x1000
	PipelineStageBottomOfPipe          PipelineStageFlags = 0x2000
)

type AccessFlags uint32

const (
	AccessColorAttachmentRead  AccessFlags = 0x80
	AccessColorAttachmentWrite AccessFlags = 0x100
)

type SurfaceTransformFlags uint32

const (
	SurfaceTransformIdentity SurfaceTransformFlags = 0x1
)

type CompositeAlphaFlags uint32

const (
	CompositeAlphaOpaque         CompositeAlphaFlags = 0x1
	CompositeAlphaPreMultiplied  CompositeAlphaFlags = 0x2
	CompositeAlphaPostMultiplied CompositeAlphaFlags = 0x4
	CompositeAlphaInherit        CompositeAlphaFlags = 0x8
)

type SharingMode int32

const (
	SharingModeExclusive  SharingMode = 0
	SharingModeConcurrent SharingMode = 1
)

type ImageLayout int32

const (
	ImageLayoutUndefined              ImageLayout = 0
	ImageLayoutColorAttachmentOptimal ImageLayout = 2
	ImageLayoutPresentSrc             ImageLayout = 1000001002
)

type AttachmentLoadOp int32

const (
	AttachmentLoadOpLoad     AttachmentLoadOp = 0
	AttachmentLoadOpClear    AttachmentLoadOp = 1
	AttachmentLoadOpDontCare AttachmentLoadOp = 2
)

type AttachmentStoreOp int32

const (
	AttachmentStoreOpStore    AttachmentStoreOp = 0
	AttachmentStoreOpDontCare AttachmentStoreOp = 1
)

type SampleCountFlags uint32

const SampleCount1 SampleCountFlags = 0x1

type PipelineBindPoint int32

const PipelineBindPointGraphics PipelineBindPoint = 0

type PrimitiveTopology int32

const (
	PrimitiveTopologyPointList    PrimitiveTopology = 0
	PrimitiveTopologyLineList     PrimitiveTopology = 1
	PrimitiveTopologyTriangleList PrimitiveTopology = 3
)

type PolygonMode int32

const (
	PolygonModeFill  PolygonMode = 0
	PolygonModeLine  PolygonMode = 1
	PolygonModePoint PolygonMode = 2
)

type CullModeFlags uint32

const (
	CullModeNone  CullModeFlags = 0
	CullModeFront CullModeFlags = 0x1
	CullModeBack  CullModeFlags = 0x2
)

type FrontFace int32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

type ColorComponentFlags uint32

const (
	ColorComponentR ColorComponentFlags = 0x1
	ColorComponentG ColorComponentFlags = 0x2
	ColorComponentB ColorComponentFlags = 0x4
	ColorComponentA ColorComponentFlags = 0x8

	ColorComponentAll = ColorComponentR | ColorComponentG | ColorComponentB | ColorComponentA
)

type VertexInputRate int32

const (
	VertexInputRateVertex   VertexInputRate = 0
	VertexInputRateInstance VertexInputRate = 1
)

type CommandPoolCreateFlags uint32

const (
	CommandPoolCreateTransient          CommandPoolCreateFlags = 0x1
	CommandPoolCreateResetCommandBuffer CommandPoolCreateFlags = 0x2
)

type CommandBufferUsageFlags uint32

const (
	CommandBufferUsageOneTimeSubmit   CommandBufferUsageFlags = 0x1
	CommandBufferUsageSimultaneousUse CommandBufferUsageFlags = 0x4
)

type CommandBufferLevel int32

const CommandBufferLevelPrimary CommandBufferLevel = 0

type DebugReportFlags uint32

const (
	DebugReportInformation        DebugReportFlags = 0x1
	DebugReportWarning            DebugReportFlags = 0x2
	DebugReportPerformanceWarning DebugReportFlags = 0x4
	DebugReportError              DebugReportFlags = 0x8
	DebugReportDebug              DebugReportFlags = 0x10
)

// SystemAllocationScope tells an allocator how long a host allocation lives.
type SystemAllocationScope int32

const (
	SystemAllocationScopeCommand  SystemAllocationScope = 0
	SystemAllocationScopeObject   SystemAllocationScope = 1
	SystemAllocationScopeCache    SystemAllocationScope = 2
	SystemAllocationScopeDevice   SystemAllocationScope = 3
	SystemAllocationScopeInstance SystemAllocationScope = 4
)

// Well-known layer and extension names.
const (
	KhronosValidationLayerName = "VK_LAYER_KHRONOS_validation"
	DebugReportExtensionName   = "VK_EXT_debug_report"
	SwapchainExtensionName     = "VK_KHR_swapchain"
	SurfaceExtensionName       = "VK_KHR_surface"
)

// MakeVersion packs a version the way the native API expects it.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}
