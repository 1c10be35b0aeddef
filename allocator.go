package dekoi

import (
	"sync/atomic"
	"unsafe"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// Allocator provides host memory to the renderer. A nil block reports
// exhaustion. Any state an implementation needs travels with its receiver.
//
// The renderer reserves its own host arrays through the allocator and hands
// it to the gpu.API as allocation callbacks. The vkgo driver does not
// forward those callbacks to the Vulkan loader, so on that path driver-side
// allocations are not counted.
type Allocator interface {
	Allocate(size uintptr) []byte
	AllocateAligned(size, alignment uintptr) []byte
	Reallocate(block []byte, size uintptr) []byte
	ReallocateAligned(block []byte, size, alignment uintptr) []byte
	Free(block []byte)
	FreeAligned(block []byte)
}

type AllocatorStats struct {
	Allocations int64
	Frees       int64
	LiveBytes   int64
}

// Live is the number of blocks handed out and not yet freed.
func (s AllocatorStats) Live() int64 {
	return s.Allocations - s.Frees
}

// HostAllocator is the default Allocator. It serves blocks from the Go heap
// and keeps counters of what is outstanding.
type HostAllocator struct {
	allocations atomic.Int64
	frees       atomic.Int64
	liveBytes   atomic.Int64
}

func NewHostAllocator() *HostAllocator {
	return &HostAllocator{}
}

func (a *HostAllocator) Stats() AllocatorStats {
	return AllocatorStats{
		Allocations: a.allocations.Load(),
		Frees:       a.frees.Load(),
		LiveBytes:   a.liveBytes.Load(),
	}
}

func (a *HostAllocator) Allocate(size uintptr) []byte {
	return a.AllocateAligned(size, 1)
}

func (a *HostAllocator) AllocateAligned(size, alignment uintptr) []byte {
	block := alignedBlock(size, alignment)
	a.allocations.Add(1)
	a.liveBytes.Add(int64(size))
	return block
}

func (a *HostAllocator) Reallocate(block []byte, size uintptr) []byte {
	return a.ReallocateAligned(block, size, 1)
}

func (a *HostAllocator) ReallocateAligned(block []byte, size, alignment uintptr) []byte {
	if block == nil {
		return a.AllocateAligned(size, alignment)
	}
	grown := alignedBlock(size, alignment)
	copy(grown, block)
	a.liveBytes.Add(int64(size) - int64(len(block)))
	return grown
}

func (a *HostAllocator) Free(block []byte) {
	if block == nil {
		return
	}
	a.frees.Add(1)
	a.liveBytes.Add(-int64(len(block)))
}

func (a *HostAllocator) FreeAligned(block []byte) {
	a.Free(block)
}

func alignedBlock(size, alignment uintptr) []byte {
	if size == 0 {
		return make([]byte, 0)
	}
	if alignment <= 1 {
		return make([]byte, size)
	}
	buf := make([]byte, size+alignment-1)
	offset := uintptr(0)
	if rem := uintptr(unsafe.Pointer(&buf[0])) % alignment; rem != 0 {
		offset = alignment - rem
	}
	return buf[offset : offset+size : offset+size]
}

// allocationCallbacks presents an Allocator in the shape the GPU API
// expects for its own host allocations. The API always states an
// alignment, so only the aligned entry points are used.
type allocationCallbacks struct {
	allocator Allocator
}

var _ gpu.AllocationCallbacks = (*allocationCallbacks)(nil)

func newAllocationCallbacks(allocator Allocator) *allocationCallbacks {
	return &allocationCallbacks{allocator: allocator}
}

func (c *allocationCallbacks) Allocation(size, alignment uintptr, _ gpu.SystemAllocationScope) []byte {
	return c.allocator.AllocateAligned(size, max(alignment, 1))
}

func (c *allocationCallbacks) Reallocation(original []byte, size, alignment uintptr, _ gpu.SystemAllocationScope) []byte {
	return c.allocator.ReallocateAligned(original, size, max(alignment, 1))
}

func (c *allocationCallbacks) Free(memory []byte) {
	if memory == nil {
		return
	}
	c.allocator.FreeAligned(memory)
}

// reservation is the host memory charged for one array the renderer keeps.
type reservation struct {
	block []byte
}

// makeHostSlice returns a slice of n elements whose footprint has been
// reserved through allocator. Release the reservation with the slice.
func makeHostSlice[T any](allocator Allocator, n int) ([]T, reservation, error) {
	if n == 0 {
		return nil, reservation{}, nil
	}
	var zero T
	size := unsafe.Sizeof(zero) * uintptr(n)
	block := allocator.Allocate(size)
	if block == nil {
		return nil, reservation{}, newError(StatusAllocation,
			"failed to allocate %d bytes for an array of %d %T", size, n, zero)
	}
	return make([]T, n), reservation{block: block}, nil
}

func (r *reservation) release(allocator Allocator) {
	if r.block == nil {
		return
	}
	allocator.Free(r.block)
	r.block = nil
}
