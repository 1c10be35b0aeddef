package gpufake

import (
	"fmt"
	"sort"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// Object kinds counted by the driver.
const (
	KindInstance            = "instance"
	KindDebugReportCallback = "debug report callback"
	KindSurface             = "surface"
	KindDevice              = "device"
	KindSwapchain           = "swapchain"
	KindImageView           = "image view"
	KindShaderModule        = "shader module"
	KindRenderPass          = "render pass"
	KindPipelineLayout      = "pipeline layout"
	KindPipeline            = "pipeline"
	KindFramebuffer         = "framebuffer"
	KindCommandPool         = "command pool"
	KindCommandBuffer       = "command buffer"
	KindSemaphore           = "semaphore"
	KindBuffer              = "buffer"
	KindDeviceMemory        = "device memory"
)

const objectFootprint = 64

type object struct {
	kind  string
	block []byte
	alloc gpu.AllocationCallbacks
}

type injectedFailure struct {
	call int
	res  gpu.Result
}

// Command is one recorded command buffer entry.
type Command struct {
	Op          string
	RenderPass  gpu.RenderPassBeginInfo
	Pipeline    gpu.Pipeline
	Buffers     []gpu.Buffer
	Offsets     []gpu.DeviceSize
	Draw        [4]uint32
	CopySrc     gpu.Buffer
	CopyDst     gpu.Buffer
	CopyRegions []gpu.BufferCopy
}

type commandBuffer struct {
	pool     gpu.CommandPool
	flags    gpu.CommandBufferUsageFlags
	commands []Command
}

type swapchainState struct {
	info   gpu.SwapchainCreateInfo
	images []gpu.Image
	next   uint32
}

type SubmitRecord struct {
	Queue gpu.Queue
	Info  gpu.SubmitInfo
}

type PresentRecord struct {
	Queue gpu.Queue
	Info  gpu.PresentInfo
}

// Driver implements gpu.API in memory. It is not safe for concurrent use.
type Driver struct {
	cfg  Config
	next uint64

	objects  map[uint64]object
	created  map[string]int
	calls    map[string]int
	failures map[string][]injectedFailure

	physical       map[gpu.PhysicalDevice]int
	physicalOrder  []gpu.PhysicalDevice
	deviceFor      map[gpu.Device]int
	queues         map[[2]uint32]gpu.Queue
	swapchains     map[gpu.Swapchain]*swapchainState
	commandBuffers map[gpu.CommandBuffer]*commandBuffer
	bufferSizes    map[gpu.Buffer]gpu.DeviceSize
	bufferMemory   map[gpu.Buffer]gpu.DeviceMemory
	memory         map[gpu.DeviceMemory][]byte
	mapped         map[gpu.DeviceMemory]bool
	debugCallbacks map[gpu.DebugReportCallback]gpu.DebugReportFunc
	pending        map[gpu.Semaphore]bool

	// AcquireResults is consumed one entry per AcquireNextImage call. Once
	// empty, acquisitions succeed.
	AcquireResults []gpu.Result

	// Misuse lists every invalid call observed, such as destroying a dead
	// handle or signaling a semaphore that is still pending.
	Misuse []string

	InstanceInfos   []gpu.InstanceCreateInfo
	DeviceInfos     []gpu.DeviceCreateInfo
	SwapchainInfos  []gpu.SwapchainCreateInfo
	RenderPassInfos []gpu.RenderPassCreateInfo
	PipelineInfos   []gpu.GraphicsPipelineCreateInfo
	CommandPools    []gpu.CommandPoolCreateInfo
	Submits         []SubmitRecord
	Presents        []PresentRecord
	QueueWaits      map[gpu.Queue]int
	DeviceWaits     int
}

func New(cfg Config) *Driver {
	d := &Driver{
		cfg:            cfg,
		objects:        make(map[uint64]object),
		created:        make(map[string]int),
		calls:          make(map[string]int),
		failures:       make(map[string][]injectedFailure),
		physical:       make(map[gpu.PhysicalDevice]int),
		deviceFor:      make(map[gpu.Device]int),
		queues:         make(map[[2]uint32]gpu.Queue),
		swapchains:     make(map[gpu.Swapchain]*swapchainState),
		commandBuffers: make(map[gpu.CommandBuffer]*commandBuffer),
		bufferSizes:    make(map[gpu.Buffer]gpu.DeviceSize),
		bufferMemory:   make(map[gpu.Buffer]gpu.DeviceMemory),
		memory:         make(map[gpu.DeviceMemory][]byte),
		mapped:         make(map[gpu.DeviceMemory]bool),
		debugCallbacks: make(map[gpu.DebugReportCallback]gpu.DebugReportFunc),
		pending:        make(map[gpu.Semaphore]bool),
		QueueWaits:     make(map[gpu.Queue]int),
	}
	for i := range cfg.Devices {
		h := gpu.PhysicalDevice(d.handle())
		d.physical[h] = i
		d.physicalOrder = append(d.physicalOrder, h)
	}
	return d
}

// FailAt makes the call-th invocation (1-based) of op return res. op is the
// name of a gpu.API method, such as "CreateShaderModule".
func (d *Driver) FailAt(op string, call int, res gpu.Result) {
	d.failures[op] = append(d.failures[op], injectedFailure{call: call, res: res})
}

// Calls reports how many times op has been invoked.
func (d *Driver) Calls(op string) int {
	return d.calls[op]
}

// Created reports how many objects of kind were ever created.
func (d *Driver) Created(kind string) int {
	return d.created[kind]
}

// Live reports the number of objects of kind not destroyed yet.
func (d *Driver) Live(kind string) int {
	n := 0
	for _, o := range d.objects {
		if o.kind == kind {
			n++
		}
	}
	return n
}

// LiveObjects describes every object not destroyed yet, sorted.
func (d *Driver) LiveObjects() []string {
	var out []string
	for h, o := range d.objects {
		out = append(out, fmt.Sprintf("%s %d", o.kind, h))
	}
	sort.Strings(out)
	return out
}

// IsLive reports whether handle refers to a live object of kind.
func (d *Driver) IsLive(kind string, handle uint64) bool {
	o, ok := d.objects[handle]
	return ok && o.kind == kind
}

// Commands returns what was recorded into buffer.
func (d *Driver) Commands(buffer gpu.CommandBuffer) []Command {
	if cb, ok := d.commandBuffers[buffer]; ok {
		return cb.commands
	}
	return nil
}

// CommandBufferFlags returns the usage flags buffer was begun with.
func (d *Driver) CommandBufferFlags(buffer gpu.CommandBuffer) gpu.CommandBufferUsageFlags {
	if cb, ok := d.commandBuffers[buffer]; ok {
		return cb.flags
	}
	return 0
}

// BufferContents returns the bytes of the memory bound to buffer.
func (d *Driver) BufferContents(buffer gpu.Buffer) []byte {
	mem, ok := d.bufferMemory[buffer]
	if !ok {
		return nil
	}
	size := d.bufferSizes[buffer]
	data := d.memory[mem]
	if gpu.DeviceSize(len(data)) < size {
		return data
	}
	return data[:size]
}

// SwapchainImages returns the images of a live swap chain.
func (d *Driver) SwapchainImages(swapchain gpu.Swapchain) []gpu.Image {
	if sc, ok := d.swapchains[swapchain]; ok {
		return sc.images
	}
	return nil
}

// SetCapabilities replaces the surface capabilities of device index i.
func (d *Driver) SetCapabilities(i int, caps gpu.SurfaceCapabilities) {
	d.cfg.Devices[i].Capabilities = caps
}

// Report sends a message through every registered debug report callback.
func (d *Driver) Report(flags gpu.DebugReportFlags, prefix string, code int32, message string) {
	for _, fn := range d.debugCallbacks {
		fn(flags, prefix, code, message)
	}
}

// CreateSurfaceHandle registers a surface as a window system would.
func (d *Driver) CreateSurfaceHandle(alloc gpu.AllocationCallbacks) (gpu.Surface, gpu.Result) {
	h, res := d.create("CreateSurface", KindSurface, alloc)
	return gpu.Surface(h), res
}

func (d *Driver) handle() uint64 {
	d.next++
	return d.next
}

// call counts an invocation of op and returns the failure injected for it,
// if any.
func (d *Driver) call(op string) gpu.Result {
	d.calls[op]++
	for _, f := range d.failures[op] {
		if f.call == d.calls[op] {
			return f.res
		}
	}
	return gpu.Success
}

func (d *Driver) create(op, kind string, alloc gpu.AllocationCallbacks) (uint64, gpu.Result) {
	if res := d.call(op); res != gpu.Success {
		return 0, res
	}
	var block []byte
	if alloc != nil {
		block = alloc.Allocation(objectFootprint, 8, gpu.SystemAllocationScopeObject)
		if block == nil {
			return 0, gpu.ErrorOutOfHostMemory
		}
	}
	h := d.handle()
	d.objects[h] = object{kind: kind, block: block, alloc: alloc}
	d.created[kind]++
	return h, gpu.Success
}

func (d *Driver) destroy(op, kind string, h uint64) {
	d.calls[op]++
	if h == 0 {
		return
	}
	o, ok := d.objects[h]
	if !ok || o.kind != kind {
		d.misuse("%s on dead or foreign handle %d", op, h)
		return
	}
	if o.alloc != nil {
		o.alloc.Free(o.block)
	}
	delete(d.objects, h)
}

func (d *Driver) misuse(format string, args ...any) {
	d.Misuse = append(d.Misuse, fmt.Sprintf(format, args...))
}

// signal marks a semaphore as pending. A semaphore must be waited on before
// it is signaled again.
func (d *Driver) signal(op string, s gpu.Semaphore) {
	if d.pending[s] {
		d.misuse("%s signaling pending semaphore %d", op, s)
	}
	d.pending[s] = true
}

func (d *Driver) wait(op string, s gpu.Semaphore) {
	if !d.pending[s] {
		d.misuse("%s waiting on unsignaled semaphore %d", op, s)
	}
	delete(d.pending, s)
}

// Pending reports whether a signal operation on s has not been waited on.
func (d *Driver) Pending(s gpu.Semaphore) bool {
	return d.pending[s]
}

func (d *Driver) requireLive(op, kind string, h uint64) bool {
	if !d.IsLive(kind, h) {
		d.misuse("%s with dead %s %d", op, kind, h)
		return false
	}
	return true
}

func (d *Driver) device(physical gpu.PhysicalDevice) (PhysicalDeviceConfig, bool) {
	i, ok := d.physical[physical]
	if !ok {
		return PhysicalDeviceConfig{}, false
	}
	return d.cfg.Devices[i], true
}

var _ gpu.API = (*Driver)(nil)
