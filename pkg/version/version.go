package version

// Set by -ldflags "-X" at build time.
var (
	Version   = "v0.0.0-dev"
	GitCommit = "unknown"
)
