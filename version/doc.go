// Package version reports the build of the running binary.
//
// Release builds stamp the variables with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/eurekaclient/version.Version=1.4.0" ./cmd/eureka-agent
//
// Unstamped builds fall back to the VCS settings the Go toolchain records.
package version
