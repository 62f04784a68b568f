// Package version carries the build-time version stamp.
package version

// Version is set at build time via
// -ldflags "-X github.com/kubinv/kubinv/pkg/version.Version=v1.2.3".
var Version = "dev"
