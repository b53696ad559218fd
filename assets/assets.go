// Package assets embeds the static files of the web viewer.
//
// index.html is generated from index.html.tpl, style.css and script.js by
// cmd/minify and committed alongside its sources.
package assets

import (
	_ "embed"
)

// Index is the minified viewer page.
//
//go:embed index.html
var Index []byte

// Favicon is the viewer icon.
//
//go:embed favicon.svg
var Favicon []byte
