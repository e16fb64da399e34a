package version

import (
	"github.com/earthboundkid/versioninfo/v2"
)

// GetVersion returns the short build version, e.g. "v1.2.0" or "devel-abc1234"
func GetVersion() string {
	return versioninfo.Short()
}

// GetFullVersion returns the version with the commit and its time when known
func GetFullVersion() string {
	v := versioninfo.Short()
	if versioninfo.Revision == "unknown" || versioninfo.Revision == "" {
		return v
	}

	full := v + " (commit: " + versioninfo.Revision
	if !versioninfo.LastCommit.IsZero() {
		full += ", " + versioninfo.LastCommit.UTC().Format("2006-01-02")
	}
	if versioninfo.DirtyBuild {
		full += ", dirty"
	}
	return full + ")"
}
