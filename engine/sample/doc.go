/*
Package sample assembles labeled OCR samples.

An Assembler turns a word into a Record: it splits the word into labeled units,
renders it, derives column boundaries from prefix widths and segments the
rendering into one bounding box per unit. Records get their identifier from a
Counter, which may be shared between assemblers running concurrently.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sample

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.sample'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.sample")
}
