package version

import (
	"runtime"
	"runtime/debug"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// UserAgent identifies outbound HTTP requests.
func UserAgent() string {
	return "voxlate/" + Version
}

type Info struct {
	Version   string
	GoVersion string
	Revision  string
	Modified  bool
}

func Read() Info {
	info := Info{Version: Version, GoVersion: runtime.Version()}
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Revision = setting.Value
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		}
	}
	return info
}
