package ocsf

import (
	"fmt"
	"strings"
)

// Version is an OCSF schema version such as "1.1.0".
type Version string

const (
	V1_0_0 Version = "1.0.0"
	V1_1_0 Version = "1.1.0"
	V1_2_0 Version = "1.2.0"
	V1_3_0 Version = "1.3.0"
	V1_4_0 Version = "1.4.0"
	V1_5_0 Version = "1.5.0"
	V1_6_0 Version = "1.6.0"
	V1_7_0 Version = "1.7.0"
)

// SupportedVersions lists the versions the service knows about, oldest first.
var SupportedVersions = []Version{V1_0_0, V1_1_0, V1_2_0, V1_3_0, V1_4_0, V1_5_0, V1_6_0, V1_7_0}

// DefaultVersion is used when a caller does not name a version.
func DefaultVersion() Version {
	return V1_1_0
}

// LatestVersion returns the newest stable version.
func LatestVersion() Version {
	return V1_7_0
}

// ParseVersion accepts "1.1.0", "v1.1.0" or "v1_1_0".
func ParseVersion(s string) (Version, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(s), "v")
	normalized = strings.ReplaceAll(normalized, "_", ".")
	for _, v := range SupportedVersions {
		if string(v) == normalized {
			return v, nil
		}
	}
	return "", fmt.Errorf("unsupported OCSF version %q", s)
}

// URLSafeName returns the version in "v1_1_0" form.
func (v Version) URLSafeName() string {
	return "v" + strings.ReplaceAll(string(v), ".", "_")
}

func (v Version) String() string {
	return string(v)
}
