package dekoi

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
	"github.com/christophercrouzet/dekoi-sub000/internal/gpufake"
)

func TestValidateShaders(t *testing.T) {
	valid := ShaderCreateInfo{Stage: gpu.ShaderStageVertex, Code: make([]byte, 4), EntryPoint: "main"}
	tests := []struct {
		name   string
		mutate func(*ShaderCreateInfo)
	}{
		{"no stage", func(s *ShaderCreateInfo) { s.Stage = 0 }},
		{"combined stages", func(s *ShaderCreateInfo) { s.Stage = gpu.ShaderStageVertex | gpu.ShaderStageFragment }},
		{"empty code", func(s *ShaderCreateInfo) { s.Code = nil }},
		{"unaligned code", func(s *ShaderCreateInfo) { s.Code = make([]byte, 6) }},
		{"no entry point", func(s *ShaderCreateInfo) { s.EntryPoint = "" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			info := valid
			test.mutate(&info)
			err := validateShaders([]ShaderCreateInfo{valid, info})
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}

	assert.NoError(t, validateShaders([]ShaderCreateInfo{valid}))
	assert.ErrorIs(t, validateShaders(nil), ErrInvalidValue)
}

func TestCreateShadersFailureMidBatch(t *testing.T) {
	const count = 4
	for k := 0; k < count; k++ {
		t.Run(fmt.Sprintf("fail at %d", k), func(t *testing.T) {
			f := newFixture(t).headless()
			f.info.Shaders = nil
			for i := 0; i < count; i++ {
				f.info.Shaders = append(f.info.Shaders, ShaderCreateInfo{
					Stage:      gpu.ShaderStageVertex,
					Code:       make([]byte, 4*(i+1)),
					EntryPoint: "main",
				})
			}
			f.driver.FailAt("CreateShaderModule", k+1, gpu.ErrorOutOfDeviceMemory)

			r, err := CreateRenderer(&f.info)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.Equal(t, StatusError, StatusOf(err))

			assert.Equal(t, k, f.driver.Created(gpufake.KindShaderModule))
			assert.Equal(t, k, f.driver.Calls("DestroyShaderModule"))
			f.assertNoLeaks(t)
		})
	}
}

func TestShaderStagesKeepEntryPoints(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	require.Len(t, f.driver.PipelineInfos, 1)
	stages := f.driver.PipelineInfos[0].Stages
	require.Len(t, stages, 2)
	assert.Equal(t, gpu.ShaderStageVertex, stages[0].Stage)
	assert.Equal(t, "vs_main", stages[0].Name)
	assert.Equal(t, gpu.ShaderStageFragment, stages[1].Stage)
	assert.Equal(t, "fs_main", stages[1].Name)
	for _, stage := range stages {
		assert.True(t, f.driver.IsLive(gpufake.KindShaderModule, uint64(stage.Module)))
	}
}
