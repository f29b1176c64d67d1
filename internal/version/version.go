package version

// Set at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = "none"
)

func String() string {
	if Commit == "" || Commit == "none" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
