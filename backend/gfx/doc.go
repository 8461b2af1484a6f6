/*
Package gfx draws debugging overlays onto sample images and writes images to
files.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package gfx

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.dataset'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.dataset")
}
