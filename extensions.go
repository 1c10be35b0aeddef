package dekoi

import (
	"slices"
	"strings"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// nameSet checks a list of required layer or extension names against what
// the implementation reports.
type nameSet struct {
	kind     string
	required []string
	actual   []string
}

// missing returns every required name absent from actual, in order.
func (s *nameSet) missing() []string {
	var out []string
	for _, req := range s.required {
		if !slices.Contains(s.actual, req) {
			out = append(out, req)
		}
	}
	return out
}

// check fails with ErrError listing the missing names.
func (s *nameSet) check() error {
	if missing := s.missing(); len(missing) > 0 {
		return newError(StatusError, "missing %s: %s", s.kind, strings.Join(missing, ", "))
	}
	return nil
}

func instanceLayers(api gpu.API) ([]string, error) {
	names, res := api.EnumerateInstanceLayerProperties()
	if res != gpu.Success && res != gpu.Incomplete {
		return nil, resultError(res, "failed to enumerate the instance layers")
	}
	return names, nil
}

func instanceExtensions(api gpu.API) ([]string, error) {
	names, res := api.EnumerateInstanceExtensionProperties()
	if res != gpu.Success && res != gpu.Incomplete {
		return nil, resultError(res, "failed to enumerate the instance extensions")
	}
	return names, nil
}

func deviceExtensions(api gpu.API, physical gpu.PhysicalDevice) ([]string, error) {
	names, res := api.EnumerateDeviceExtensionProperties(physical)
	if res != gpu.Success && res != gpu.Incomplete {
		return nil, resultError(res, "failed to enumerate the device extensions")
	}
	return names, nil
}

// validationLayers is the layer list enabled when diagnostics are on.
func validationLayers(debug bool) []string {
	if !debug {
		return nil
	}
	return []string{gpu.KhronosValidationLayerName}
}

// requiredDeviceExtensions is the device extension list; presenting needs
// the swap chain extension.
func requiredDeviceExtensions(presenting bool) []string {
	if !presenting {
		return nil
	}
	return []string{gpu.SwapchainExtensionName}
}
