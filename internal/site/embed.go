package site

import (
	"embed"
	"io/fs"
)

//go:embed static
var staticFS embed.FS

// FS returns the embedded site rooted at the static directory, so index.html
// resolves at the web root.
func FS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}
