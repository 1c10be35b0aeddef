package dekoi

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/internal/gpufake"
)

type fixture struct {
	driver    *gpufake.Driver
	window    *gpufake.WindowSystem
	allocator *HostAllocator
	info      RendererCreateInfo
}

var triangleVertices = []byte{
	0, 0, 0, 0, 0, 0, 0, 191,
	0, 0, 0, 63, 0, 0, 0, 63,
	0, 0, 0, 191, 0, 0, 0, 63,
}

func testShaders() []ShaderCreateInfo {
	return []ShaderCreateInfo{
		{Stage: gpu.ShaderStageVertex, Code: make([]byte, 16), EntryPoint: "vs_main"},
		{Stage: gpu.ShaderStageFragment, Code: make([]byte, 8), EntryPoint: "fs_main"},
	}
}

// newFixture sets up a windowed renderer configuration over the default
// fake device.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	driver := gpufake.New(gpufake.DefaultConfig())
	f := &fixture{
		driver:    driver,
		window:    gpufake.NewWindowSystem(driver),
		allocator: NewHostAllocator(),
	}
	f.info = RendererCreateInfo{
		API:                driver,
		ApplicationName:    "test",
		ApplicationVersion: Version{Major: 1},
		SurfaceExtent:      gpu.Extent2D{Width: 640, Height: 480},
		Shaders:            testShaders(),
		VertexBuffers:      []VertexBufferCreateInfo{{Data: triangleVertices}},
		VertexBindings: []gpu.VertexInputBindingDescription{
			{Binding: 0, Stride: 8, InputRate: gpu.VertexInputRateVertex},
		},
		VertexAttributes: []gpu.VertexInputAttributeDescription{
			{Location: 0, Binding: 0, Format: gpu.FormatR32G32Sfloat},
		},
		VertexCount:   3,
		InstanceCount: 1,
		ClearColor:    [4]float32{0.1, 0.2, 0.3, 1},
		Logger:        DiscardLogger(),
		Allocator:     f.allocator,
		WindowSystem:  f.window,
	}
	return f
}

func (f *fixture) headless() *fixture {
	f.info.WindowSystem = nil
	return f
}

func (f *fixture) create(t *testing.T) *Renderer {
	t.Helper()
	r, err := CreateRenderer(&f.info)
	require.NoError(t, err)
	require.NotNil(t, r)
	t.Cleanup(r.Destroy)
	return r
}

// assertNoLeaks checks that every GPU object and every host block has been
// handed back.
func (f *fixture) assertNoLeaks(t *testing.T) {
	t.Helper()
	assert.Empty(t, f.driver.LiveObjects())
	assert.Empty(t, f.driver.Misuse)
	stats := f.allocator.Stats()
	assert.Zero(t, stats.Live(), "live host blocks")
	assert.Zero(t, stats.LiveBytes, "live host bytes")
	assert.Zero(t, f.window.Outstanding(), "extension lists not handed back")
}

type logRecord struct {
	level   LogLevel
	file    string
	message string
}

type recordingLogger struct {
	records []logRecord
}

func (l *recordingLogger) Log(level LogLevel, file string, line int, format string, args ...any) {
	l.records = append(l.records, logRecord{level: level, file: file, message: fmt.Sprintf(format, args...)})
}

func (l *recordingLogger) find(level LogLevel, substr string) bool {
	for _, r := range l.records {
		if r.level == level && strings.Contains(r.message, substr) {
			return true
		}
	}
	return false
}

// limitedAllocator fails the n-th allocation and every one after it.
type limitedAllocator struct {
	*HostAllocator
	n     int
	calls int
}

func (a *limitedAllocator) AllocateAligned(size, alignment uintptr) []byte {
	a.calls++
	if a.calls >= a.n {
		return nil
	}
	return a.HostAllocator.AllocateAligned(size, alignment)
}

func (a *limitedAllocator) Allocate(size uintptr) []byte {
	return a.AllocateAligned(size, 1)
}

func (a *limitedAllocator) ReallocateAligned(block []byte, size, alignment uintptr) []byte {
	if block == nil {
		return a.AllocateAligned(size, alignment)
	}
	return a.HostAllocator.ReallocateAligned(block, size, alignment)
}

func (a *limitedAllocator) Reallocate(block []byte, size uintptr) []byte {
	return a.ReallocateAligned(block, size, 1)
}
