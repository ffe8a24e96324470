//go:build !debug

package ui

import (
	"io/fs"
	"strings"
	"testing"
)

func TestDistFS_IndexEmbedded(t *testing.T) {
	dist, err := DistFS()
	if err != nil {
		t.Fatalf("DistFS() error = %v", err)
	}

	index, err := fs.ReadFile(dist, "index.html")
	if err != nil {
		t.Fatalf("Failed to read index.html from embedded filesystem: %v", err)
	}

	content := string(index)
	if !strings.Contains(content, "<!DOCTYPE html>") {
		t.Error("index.html does not start with a doctype")
	}
	if !strings.Contains(content, "/assets/app.js") {
		t.Error("index.html does not load the app bundle")
	}
}

func TestDistFS_AssetsEmbedded(t *testing.T) {
	dist, err := DistFS()
	if err != nil {
		t.Fatalf("DistFS() error = %v", err)
	}

	for _, name := range []string{"assets/app.js", "assets/app.css"} {
		data, err := fs.ReadFile(dist, name)
		if err != nil {
			t.Errorf("Failed to read %s: %v", name, err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}
