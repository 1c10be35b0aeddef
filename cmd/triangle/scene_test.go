package main

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dekoi "github.com/christophercrouzet/dekoi-sub000"
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func TestPackVertices(t *testing.T) {
	data := packVertices(triangle)
	require.Len(t, data, len(triangle)*vertexStride)

	// Second vertex, green channel.
	word := binary.LittleEndian.Uint32(data[vertexStride+3*4:])
	assert.Equal(t, float32(1), math.Float32frombits(word))
}

func TestCompileShaders(t *testing.T) {
	shaders, err := compileShaders()
	require.NoError(t, err)
	require.Len(t, shaders, 2)

	code := shaders[0].Code
	require.NotEmpty(t, code)
	assert.Zero(t, len(code)%4)
	assert.Equal(t, uint32(0x07230203), binary.LittleEndian.Uint32(code))
	assert.Equal(t, gpu.ShaderStageFragment, shaders[1].Stage)
	assert.Equal(t, "fs_main", shaders[1].EntryPoint)
}

func TestSceneInfo(t *testing.T) {
	cfg := dekoi.DefaultConfig()
	info := cfg.RendererCreateInfo()
	require.NoError(t, sceneInfo(&info))

	assert.Equal(t, uint32(3), info.VertexCount)
	assert.Len(t, info.VertexBuffers, 1)
	assert.Equal(t, uint32(vertexStride), info.VertexBindings[0].Stride)
	assert.Equal(t, gpu.FormatR32G32B32Sfloat, info.VertexAttributes[1].Format)
}
