//go:build !debug

package ui

import (
	"embed"
	"io/fs"
)

//go:embed dist
var distFS embed.FS

// DistFS returns the frontend build rooted at dist/ (production: baked into binary).
func DistFS() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}
