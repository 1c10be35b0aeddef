package gpu

import "fmt"

// Result is a native API result code. Values match VkResult.
type Result int32

const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	EventSet                  Result = 3
	EventReset                Result = 4
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
	ErrorTooManyObjects       Result = -10
	ErrorFormatNotSupported   Result = -11
	ErrorFragmentedPool       Result = -12
	ErrorSurfaceLost          Result = -1000000000
	ErrorNativeWindowInUse    Result = -1000000001
	Suboptimal                Result = 1000001003
	ErrorOutOfDate            Result = -1000001004
	ErrorIncompatibleDisplay  Result = -1000003001
	ErrorValidationFailed     Result = -1000011001
)

var resultNames = map[Result]string{
	Success:                   "success",
	NotReady:                  "not ready",
	Timeout:                   "timeout",
	EventSet:                  "event set",
	EventReset:                "event reset",
	Incomplete:                "incomplete",
	ErrorOutOfHostMemory:      "out of host memory",
	ErrorOutOfDeviceMemory:    "out of device memory",
	ErrorInitializationFailed: "initialization failed",
	ErrorDeviceLost:           "device lost",
	ErrorMemoryMapFailed:      "memory map failed",
	ErrorLayerNotPresent:      "layer not present",
	ErrorExtensionNotPresent:  "extension not present",
	ErrorFeatureNotPresent:    "feature not present",
	ErrorIncompatibleDriver:   "incompatible driver",
	ErrorTooManyObjects:       "too many objects",
	ErrorFormatNotSupported:   "format not supported",
	ErrorFragmentedPool:       "fragmented pool",
	ErrorSurfaceLost:          "surface lost",
	ErrorNativeWindowInUse:    "native window in use",
	Suboptimal:                "suboptimal",
	ErrorOutOfDate:            "out of date",
	ErrorIncompatibleDisplay:  "incompatible display",
	ErrorValidationFailed:     "validation failed",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", int32(r))
}

// Error makes a non-success Result usable as an error value.
func (r Result) Error() string {
	return "gpu: " + r.String()
}

// IsError reports whether r is a negative (failure) code.
func (r Result) IsError() bool {
	return r < 0
}

// Err returns nil for Success and r otherwise.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	return r
}
