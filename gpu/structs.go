package gpu

type Extent2D struct {
	Width  uint32
	Height uint32
}

type Offset2D struct {
	X int32
	Y int32
}

type Rect2D struct {
	Offset Offset2D
	Extent Extent2D
}

type Viewport struct {
	X, Y, Width, Height, MinDepth, MaxDepth float32
}

type PhysicalDeviceProperties struct {
	APIVersion    uint32
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	DeviceType    PhysicalDeviceType
	DeviceName    string
}

type QueueFamilyProperties struct {
	QueueFlags QueueFlags
	QueueCount uint32
}

type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	SupportedTransforms     SurfaceTransformFlags
	CurrentTransform        SurfaceTransformFlags
	SupportedCompositeAlpha CompositeAlphaFlags
	SupportedUsageFlags     ImageUsageFlags
}

type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

type MemoryType struct {
	PropertyFlags MemoryPropertyFlags
	HeapIndex     uint32
}

type MemoryHeap struct {
	Size  DeviceSize
	Flags uint32
}

type MemoryProperties struct {
	MemoryTypes []MemoryType
	MemoryHeaps []MemoryHeap
}

type MemoryRequirements struct {
	Size           DeviceSize
	Alignment      DeviceSize
	MemoryTypeBits uint32
}

type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
}

type InstanceCreateInfo struct {
	ApplicationInfo       ApplicationInfo
	EnabledLayerNames     []string
	EnabledExtensionNames []string
}

// DebugReportFunc receives validation messages. Returning true aborts the
// call that triggered the message.
type DebugReportFunc func(flags DebugReportFlags, layerPrefix string, code int32, message string) bool

type DebugReportCallbackCreateInfo struct {
	Flags    DebugReportFlags
	Callback DebugReportFunc
}

type DeviceQueueCreateInfo struct {
	QueueFamilyIndex uint32
	QueuePriorities  []float32
}

type DeviceCreateInfo struct {
	QueueCreateInfos      []DeviceQueueCreateInfo
	EnabledLayerNames     []string
	EnabledExtensionNames []string
}

type SwapchainCreateInfo struct {
	Surface            Surface
	MinImageCount      uint32
	ImageFormat        Format
	ImageColorSpace    ColorSpace
	ImageExtent        Extent2D
	ImageArrayLayers   uint32
	ImageUsage         ImageUsageFlags
	ImageSharingMode   SharingMode
	QueueFamilyIndices []uint32
	PreTransform       SurfaceTransformFlags
	CompositeAlpha     CompositeAlphaFlags
	PresentMode        PresentMode
	Clipped            bool
	OldSwapchain       Swapchain
}

type ImageViewCreateInfo struct {
	Image  Image
	Format Format
}

type ShaderModuleCreateInfo struct {
	Code []byte
}

type AttachmentDescription struct {
	Format         Format
	Samples        SampleCountFlags
	LoadOp         AttachmentLoadOp
	StoreOp        AttachmentStoreOp
	StencilLoadOp  AttachmentLoadOp
	StencilStoreOp AttachmentStoreOp
	InitialLayout  ImageLayout
	FinalLayout    ImageLayout
}

type AttachmentReference struct {
	Attachment uint32
	Layout     ImageLayout
}

type SubpassDescription struct {
	PipelineBindPoint PipelineBindPoint
	ColorAttachments  []AttachmentReference
}

type SubpassDependency struct {
	SrcSubpass    uint32
	DstSubpass    uint32
	SrcStageMask  PipelineStageFlags
	DstStageMask  PipelineStageFlags
	SrcAccessMask AccessFlags
	DstAccessMask AccessFlags
}

type RenderPassCreateInfo struct {
	Attachments  []AttachmentDescription
	Subpasses    []SubpassDescription
	Dependencies []SubpassDependency
}

type PipelineLayoutCreateInfo struct {
	SetLayoutCount         uint32
	PushConstantRangeCount uint32
}

type PipelineShaderStageCreateInfo struct {
	Stage  ShaderStageFlags
	Module ShaderModule
	Name   string
}

type VertexInputBindingDescription struct {
	Binding   uint32
	Stride    uint32
	InputRate VertexInputRate
}

type VertexInputAttributeDescription struct {
	Location uint32
	Binding  uint32
	Format   Format
	Offset   uint32
}

type PipelineVertexInputStateCreateInfo struct {
	VertexBindingDescriptions   []VertexInputBindingDescription
	VertexAttributeDescriptions []VertexInputAttributeDescription
}

type PipelineInputAssemblyStateCreateInfo struct {
	Topology               PrimitiveTopology
	PrimitiveRestartEnable bool
}

type PipelineViewportStateCreateInfo struct {
	Viewports []Viewport
	Scissors  []Rect2D
}

type PipelineRasterizationStateCreateInfo struct {
	DepthClampEnable        bool
	RasterizerDiscardEnable bool
	PolygonMode             PolygonMode
	CullMode                CullModeFlags
	FrontFace               FrontFace
	DepthBiasEnable         bool
	LineWidth               float32
}

type PipelineMultisampleStateCreateInfo struct {
	RasterizationSamples SampleCountFlags
	SampleShadingEnable  bool
	MinSampleShading     float32
}

type PipelineColorBlendAttachmentState struct {
	BlendEnable    bool
	ColorWriteMask ColorComponentFlags
}

type PipelineColorBlendStateCreateInfo struct {
	LogicOpEnable  bool
	Attachments    []PipelineColorBlendAttachmentState
	BlendConstants [4]float32
}

// GraphicsPipelineCreateInfo carries no depth/stencil or dynamic state.
type GraphicsPipelineCreateInfo struct {
	Stages             []PipelineShaderStageCreateInfo
	VertexInputState   PipelineVertexInputStateCreateInfo
	InputAssemblyState PipelineInputAssemblyStateCreateInfo
	ViewportState      PipelineViewportStateCreateInfo
	RasterizationState PipelineRasterizationStateCreateInfo
	MultisampleState   PipelineMultisampleStateCreateInfo
	ColorBlendState    PipelineColorBlendStateCreateInfo
	Layout             PipelineLayout
	RenderPass         RenderPass
	Subpass            uint32
}

type FramebufferCreateInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Width       uint32
	Height      uint32
	Layers      uint32
}

type CommandPoolCreateInfo struct {
	Flags            CommandPoolCreateFlags
	QueueFamilyIndex uint32
}

type CommandBufferAllocateInfo struct {
	CommandPool        CommandPool
	Level              CommandBufferLevel
	CommandBufferCount uint32
}

type ClearColorValue [4]float32

type RenderPassBeginInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	RenderArea  Rect2D
	ClearValues []ClearColorValue
}

type BufferCreateInfo struct {
	Size        DeviceSize
	Usage       BufferUsageFlags
	SharingMode SharingMode
}

type MemoryAllocateInfo struct {
	AllocationSize  DeviceSize
	MemoryTypeIndex uint32
}

type BufferCopy struct {
	SrcOffset DeviceSize
	DstOffset DeviceSize
	Size      DeviceSize
}

type SubmitInfo struct {
	WaitSemaphores   []Semaphore
	WaitDstStageMask []PipelineStageFlags
	CommandBuffers   []CommandBuffer
	SignalSemaphores []Semaphore
}

type PresentInfo struct {
	WaitSemaphores []Semaphore
	Swapchains     []Swapchain
	ImageIndices   []uint32
}
