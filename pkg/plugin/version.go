package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// MinCompatibleVersion is the oldest plugin protocol version the host accepts.
const MinCompatibleVersion = "1.0.0"

// Version is a parsed MAJOR.MINOR.PATCH protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string in "MAJOR.MINOR.PATCH" format.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", s)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version component %q in %s", p, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v precedes o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// CheckCompatible returns an error unless a plugin speaking pluginVersion can
// serve this host. The major version must match and the version must not be
// older than MinCompatibleVersion; newer minor and patch versions are fine.
func CheckCompatible(pluginVersion string) error {
	pv, err := ParseVersion(pluginVersion)
	if err != nil {
		return fmt.Errorf("failed to parse plugin protocol version: %w", err)
	}
	current, _ := ParseVersion(ProtocolVersion)
	minimum, _ := ParseVersion(MinCompatibleVersion)

	if pv.Major != current.Major {
		return fmt.Errorf("incompatible plugin protocol %s, swatch requires %d.x.x", pv, current.Major)
	}
	if pv.Less(minimum) {
		return fmt.Errorf("plugin protocol %s is too old, minimum required is %s", pv, MinCompatibleVersion)
	}
	return nil
}
