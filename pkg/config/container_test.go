package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBindAddr(t *testing.T) {
	tests := []struct {
		name        string
		addr        string
		inContainer bool
		want        string
	}{
		{"loopback on host", "127.0.0.1", false, "127.0.0.1"},
		{"localhost on host", "localhost", false, "localhost"},
		{"loopback in container", "127.0.0.1", true, "0.0.0.0"},
		{"localhost in container", "localhost", true, "0.0.0.0"},
		{"explicit address in container", "10.1.2.3", true, "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveBindAddr(tt.addr, tt.inContainer))
		})
	}
}

func TestDetectContainer(t *testing.T) {
	missing := func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }
	present := func(string) (os.FileInfo, error) { return nil, nil }
	noEnv := func(string) string { return "" }
	kube := func(key string) string {
		if key == "KUBERNETES_SERVICE_HOST" {
			return "10.0.0.1"
		}
		return ""
	}

	assert.False(t, detectContainer(missing, noEnv))
	assert.True(t, detectContainer(present, noEnv))
	assert.True(t, detectContainer(missing, kube))
}
