// Package version carries build metadata, overridable with -ldflags "-X".
package version

var (
	AppName   = "bernbot"
	Version   = "dev"
	BuildDate = "unknown"
)

// String returns "name version (date)".
func String() string {
	return AppName + " " + Version + " (" + BuildDate + ")"
}
