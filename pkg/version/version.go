// Package version holds build information set at link time with -ldflags.
package version

// Version is the release version of imgfetch.
var Version = "development"

// GitCommit is the commit imgfetch was built from.
var GitCommit = "unknown"
