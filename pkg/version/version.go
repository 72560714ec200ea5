// Package version holds the build version, overridden at release time via
// -ldflags "-X github.com/sensiurl/sensiurl/pkg/version.Version=...".
package version

// Version is the current sensiurl version.
var Version = "dev"
