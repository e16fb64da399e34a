// Package web holds the embedded templates and static assets served by the
// HTTP handlers.
package web

import "embed"

// Templates contains layouts/, pages/ and partials/
//
//go:embed templates
var Templates embed.FS

// Static contains the files served under /static/
//
//go:embed static
var Static embed.FS
