/*
Package persian shapes Persian (Farsi) text into positional presentation forms
and splits it into labeled units.

Arabic-script letters change their glyph depending on whether they connect to
their neighbours. Every letter of the alphabet has an isolated form; most have
a final form (connecting to the logically preceding letter), many have an
initial and a medial form as well. A Table holds these forms and resolves
every letter of a string to the form matching its neighbours.

For dataset labeling a string is split into Spans, one per grapheme cluster,
with a small set of exception ligatures (e.g. lam-alef) kept together as a
single unit.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package persian

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.script'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.script")
}
