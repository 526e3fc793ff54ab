// Package stdlib embeds the std modules that every clink program may import,
// like std.bool and std.io.
package stdlib

import (
	"embed"

	"github.com/jcorbin/goclink/internal/module"
)

//go:embed std/*.clink
var files embed.FS

// Loader loads the embedded std modules; it is meant to be the last of a
// module.Multi, so that project modules may shadow it.
var Loader module.Loader = module.FS{FS: files}
