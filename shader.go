package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// shaderWordSize is the granularity shader bytecode comes in.
const shaderWordSize = 4

// ShaderCreateInfo describes one shader stage. Code is the compiled
// bytecode; its length must be a non-zero multiple of 4.
type ShaderCreateInfo struct {
	Stage      gpu.ShaderStageFlags
	Code       []byte
	EntryPoint string
}

type shader struct {
	module     gpu.ShaderModule
	stage      gpu.ShaderStageFlags
	entryPoint string
}

func validShaderStage(stage gpu.ShaderStageFlags) bool {
	switch stage {
	case gpu.ShaderStageVertex,
		gpu.ShaderStageTessellationControl,
		gpu.ShaderStageTessellationEvaluation,
		gpu.ShaderStageGeometry,
		gpu.ShaderStageFragment,
		gpu.ShaderStageCompute:
		return true
	}
	return false
}

func validateShaders(infos []ShaderCreateInfo) error {
	if len(infos) == 0 {
		return newError(StatusInvalidValue, "at least one shader is required")
	}
	for i, info := range infos {
		if !validShaderStage(info.Stage) {
			return newError(StatusInvalidValue, "shader %d has an invalid stage %#x", i, uint32(info.Stage))
		}
		if len(info.Code) == 0 || len(info.Code)%shaderWordSize != 0 {
			return newError(StatusInvalidValue,
				"shader %d has a bytecode size of %d bytes, expected a non-zero multiple of %d",
				i, len(info.Code), shaderWordSize)
		}
		if info.EntryPoint == "" {
			return newError(StatusInvalidValue, "shader %d has no entry point", i)
		}
	}
	return nil
}

// createShaders creates one module per descriptor. A failure destroys the
// modules of the batch created so far.
func (r *Renderer) createShaders(infos []ShaderCreateInfo) error {
	shaders, reserved, err := makeHostSlice[shader](r.allocator, len(infos))
	if err != nil {
		return err
	}
	for i, info := range infos {
		module, res := r.api.CreateShaderModule(r.device, &gpu.ShaderModuleCreateInfo{
			Code: info.Code,
		}, r.callbacks)
		if res != gpu.Success {
			r.destroyShaderModules(shaders[:i])
			reserved.release(r.allocator)
			return resultError(res, "failed to create shader module %d", i)
		}
		shaders[i] = shader{
			module:     module,
			stage:      info.Stage,
			entryPoint: info.EntryPoint,
		}
	}
	r.shaders = shaders
	r.shadersReserved = reserved
	return nil
}

func (r *Renderer) destroyShaderModules(shaders []shader) {
	for _, s := range shaders {
		r.api.DestroyShaderModule(r.device, s.module, r.callbacks)
	}
}

func (r *Renderer) destroyShaders() {
	r.destroyShaderModules(r.shaders)
	r.shaders = nil
	r.shadersReserved.release(r.allocator)
}

func (r *Renderer) shaderStages() []gpu.PipelineShaderStageCreateInfo {
	stages := make([]gpu.PipelineShaderStageCreateInfo, len(r.shaders))
	for i, s := range r.shaders {
		stages[i] = gpu.PipelineShaderStageCreateInfo{
			Stage:  s.stage,
			Module: s.module,
			Name:   s.entryPoint,
		}
	}
	return stages
}
