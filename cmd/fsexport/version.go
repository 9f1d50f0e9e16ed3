package main

import "runtime/debug"

var version = buildVersion()

// buildVersion reports the module version when installed with go install,
// otherwise the short VCS revision, or "dev".
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	revision := settings["vcs.revision"]
	if revision == "" {
		return "dev"
	}
	revision = revision[:min(len(revision), 7)]

	if settings["vcs.modified"] == "true" {
		revision += "-dirty"
	}
	return revision
}
