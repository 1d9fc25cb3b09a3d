// Package web embeds the fallback gallery client served when no built
// client application is present on disk.
package web

import "embed"

// StaticFS holds the embedded client entry document.
//
//go:embed static/index.html
var StaticFS embed.FS

// IndexPath is the location of the entry document inside StaticFS.
const IndexPath = "static/index.html"
