package cli

import (
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant = "dev"
	develBuildVersionConstant  = "(devel)"
	versionTemplateConstant    = "gitguard version: {{.Version}}\n"
)

// resolveVersion reports the module version embedded by the go toolchain.
func resolveVersion() string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	version := strings.TrimSpace(buildInfo.Main.Version)
	if len(version) == 0 || version == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return version
}
