// Package version identifies the montage build that is running, for the -v
// flag of the commands and the logs.
package version

import "runtime/debug"

// Version is empty unless the release build stamps it:
//
//	go build -ldflags "-X github.com/montage-editor/montage/version.Version=v1.2.0" ./cmd/montage-play
var Version string

// Hash is the abbreviated VCS revision the binary was built from, marked
// -dirty if the tree had local changes, or empty outside a checkout.
var Hash = func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}
	if len(revision) < 7 {
		return ""
	}
	if modified {
		return revision[:7] + "-dirty"
	}
	return revision[:7]
}()

// VersionOrHash prefers the stamped version, then the revision, and reports
// "dev" for a plain go run.
var VersionOrHash = func() string {
	switch {
	case Version != "":
		return Version
	case Hash != "":
		return Hash
	default:
		return "dev"
	}
}()
