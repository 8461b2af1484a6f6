/*
Package segment finds per-character bounding boxes in rendered cursive text.

Joined letters of Arabic-script text form a single connected blob of ink,
without any gap between neighbouring characters. Column boundaries measured
from prefix widths are only a first guess, as glyphs overhang their nominal
columns. The segmenter starts with a character's nominal column slice and
erodes the four edges of the box inward. A pixel on an edge either anchors the
edge (it belongs to the character) or is foreign ink of a neighbour, which is
skipped. Ownership is decided by comparing a pixel's connected component in
the whole image with its component restricted to the current box.

All caches live for a single call only; segmentation of different samples may
run concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package segment

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.segment'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.segment")
}
