// Package appfs embeds the static files shipped with the binary.
package appfs

import "embed"

//go:embed templates assets
var FS embed.FS
