/*
Package dataset persists OCR samples.

A dataset is a directory holding one image per sample, optionally a copy of
every image with the character boxes drawn, and a JSON file listing all
samples. The JSON file is an array which is written incrementally, sample by
sample, and closed when the dataset is complete.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dataset

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.dataset'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.dataset")
}
