package dekoi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// Version is a semantic version as reported to the GPU API.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// versionBits is the width of each field in a packed version.
var versionBits = [3]int{10, 10, 12}

// ParseVersion reads "major[.minor[.patch]]".
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) > 3 {
		return Version{}, newError(StatusInvalidValue, "invalid version %q", s)
	}
	var fields [3]uint32
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, versionBits[i])
		if err != nil {
			return Version{}, newError(StatusInvalidValue, "invalid version %q", s)
		}
		fields[i] = uint32(n)
	}
	return Version{Major: fields[0], Minor: fields[1], Patch: fields[2]}, nil
}

func (v Version) packed() uint32 {
	return gpu.MakeVersion(v.Major, v.Minor, v.Patch)
}

const engineName = "dekoi"

var (
	engineVersion = Version{Major: 0, Minor: 1, Patch: 0}
	apiVersion    = Version{Major: 1, Minor: 0, Patch: 0}
)

func applicationInfo(name string, version Version) gpu.ApplicationInfo {
	return gpu.ApplicationInfo{
		ApplicationName:    name,
		ApplicationVersion: version.packed(),
		EngineName:         engineName,
		EngineVersion:      engineVersion.packed(),
		APIVersion:         apiVersion.packed(),
	}
}
