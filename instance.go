package dekoi

import (
	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

const debugReportFlags = gpu.DebugReportError |
	gpu.DebugReportWarning |
	gpu.DebugReportPerformanceWarning |
	gpu.DebugReportInformation

// createInstance negotiates layers and extensions and creates the instance,
// plus the debug report callback when diagnostics are enabled.
func (r *Renderer) createInstance(name string, version Version, debug bool) error {
	layers := validationLayers(debug)
	if len(layers) > 0 {
		available, err := instanceLayers(r.api)
		if err != nil {
			return err
		}
		set := nameSet{kind: "instance layers", required: layers, actual: available}
		if err := set.check(); err != nil {
			return err
		}
	}

	windowNames, err := windowExtensions(r.windowSystem)
	if err != nil {
		return err
	}
	if r.windowSystem != nil {
		defer r.windowSystem.DestroyInstanceExtensionNames(windowNames)
	}

	count := len(windowNames)
	if debug {
		count++
	}
	extensions, reserved, err := makeHostSlice[string](r.allocator, count)
	if err != nil {
		return err
	}
	defer reserved.release(r.allocator)
	copy(extensions, windowNames)
	if debug {
		extensions[len(windowNames)] = gpu.DebugReportExtensionName
	}

	if len(extensions) > 0 {
		available, err := instanceExtensions(r.api)
		if err != nil {
			return err
		}
		set := nameSet{kind: "instance extensions", required: extensions, actual: available}
		if err := set.check(); err != nil {
			return err
		}
	}

	handle, res := r.api.CreateInstance(&gpu.InstanceCreateInfo{
		ApplicationInfo:       applicationInfo(name, version),
		EnabledLayerNames:     layers,
		EnabledExtensionNames: extensions,
	}, r.callbacks)
	if res != gpu.Success {
		return resultError(res, "failed to create the instance")
	}

	if debug {
		callback, res := r.api.CreateDebugReportCallback(handle, &gpu.DebugReportCallbackCreateInfo{
			Flags:    debugReportFlags,
			Callback: r.debugReport,
		}, r.callbacks)
		if res != gpu.Success {
			r.api.DestroyInstance(handle, r.callbacks)
			return resultError(res, "failed to create the debug report callback")
		}
		r.debugCallback = callback
	}

	r.instance = handle
	r.layers = layers
	logf(r.logger, LogLevelDebug, "instance created with layers %v and extensions %v", layers, extensions)
	return nil
}

func (r *Renderer) destroyInstance() {
	if r.debugCallback != 0 {
		r.api.DestroyDebugReportCallback(r.instance, r.debugCallback, r.callbacks)
		r.debugCallback = 0
	}
	if r.instance != 0 {
		r.api.DestroyInstance(r.instance, r.callbacks)
		r.instance = 0
	}
	r.layers = nil
}

// debugReport routes validation messages to the logger.
func (r *Renderer) debugReport(flags gpu.DebugReportFlags, layerPrefix string, code int32, message string) bool {
	level := LogLevelDebug
	switch {
	case flags&gpu.DebugReportError != 0:
		level = LogLevelError
	case flags&(gpu.DebugReportWarning|gpu.DebugReportPerformanceWarning) != 0:
		level = LogLevelWarning
	case flags&gpu.DebugReportInformation != 0:
		level = LogLevelInfo
	}
	logf(r.logger, level, "[%s] code %d: %s", layerPrefix, code, message)
	return false
}
