package main

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/naga"

	dekoi "github.com/christophercrouzet/dekoi-sub000"
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

//go:embed triangle.wgsl
var triangleWGSL string

type vertex struct {
	position mgl32.Vec2
	color    mgl32.Vec3
}

// vertexStride is the packed size of a vertex: two then three float32s.
const vertexStride = 5 * 4

var triangle = []vertex{
	{position: mgl32.Vec2{0, -0.5}, color: mgl32.Vec3{1, 0, 0}},
	{position: mgl32.Vec2{0.5, 0.5}, color: mgl32.Vec3{0, 1, 0}},
	{position: mgl32.Vec2{-0.5, 0.5}, color: mgl32.Vec3{0, 0, 1}},
}

func packVertices(vertices []vertex) []byte {
	data := make([]byte, 0, len(vertices)*vertexStride)
	put := func(f float32) {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	for _, v := range vertices {
		put(v.position.X())
		put(v.position.Y())
		put(v.color.X())
		put(v.color.Y())
		put(v.color.Z())
	}
	return data
}

// compileShaders turns the embedded WGSL module into one SPIR-V blob shared
// by both stages.
func compileShaders() ([]dekoi.ShaderCreateInfo, error) {
	spirv, err := naga.Compile(triangleWGSL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile triangle.wgsl")
	}
	return []dekoi.ShaderCreateInfo{
		{Stage: gpu.ShaderStageVertex, Code: spirv, EntryPoint: "vs_main"},
		{Stage: gpu.ShaderStageFragment, Code: spirv, EntryPoint: "fs_main"},
	}, nil
}

// sceneInfo completes info with the triangle geometry and shaders.
func sceneInfo(info *dekoi.RendererCreateInfo) error {
	shaders, err := compileShaders()
	if err != nil {
		return err
	}
	info.Shaders = shaders
	info.VertexBuffers = []dekoi.VertexBufferCreateInfo{{Data: packVertices(triangle)}}
	info.VertexBindings = []gpu.VertexInputBindingDescription{
		{Binding: 0, Stride: vertexStride, InputRate: gpu.VertexInputRateVertex},
	}
	info.VertexAttributes = []gpu.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: gpu.FormatR32G32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: gpu.FormatR32G32B32Sfloat, Offset: 2 * 4},
	}
	info.VertexCount = uint32(len(triangle))
	return nil
}
