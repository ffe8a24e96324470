package config

import (
	"os"
	"sync"
)

var (
	inContainerOnce   sync.Once
	inContainerResult bool
)

// IsRunningInContainer reports whether the process runs inside Docker or a
// Kubernetes pod. The result is cached after the first call.
func IsRunningInContainer() bool {
	inContainerOnce.Do(func() {
		inContainerResult = detectContainer(os.Stat, os.Getenv)
	})
	return inContainerResult
}

func detectContainer(stat func(string) (os.FileInfo, error), getenv func(string) string) bool {
	if _, err := stat("/.dockerenv"); err == nil {
		return true
	}
	return getenv("KUBERNETES_SERVICE_HOST") != ""
}

// ResolveBindAddr returns the address the server should listen on.
// A loopback bind inside a container is unreachable from the published port,
// so "localhost" and "127.0.0.1" become "0.0.0.0" there.
func ResolveBindAddr(addr string) string {
	return resolveBindAddr(addr, IsRunningInContainer())
}

func resolveBindAddr(addr string, inContainer bool) string {
	if inContainer && (addr == "localhost" || addr == "127.0.0.1") {
		return "0.0.0.0"
	}
	return addr
}
