// Package static embeds the web client assets.
package static

import "embed"

//go:embed index.html
var FS embed.FS
