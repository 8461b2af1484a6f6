/*
Package raster holds rendered text as monochrome pixel grids and defines the
contract for rasterizers producing them.

A Rasterizer renders a string of presentation forms right-to-left and is able
to measure the advance width of any string. From prefix measurements the
column boundaries between labeled units are derived; these are the starting
point for glyph segmentation.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package raster

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.raster'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.raster")
}
