/*
Package words provides the texts to render for a dataset.

Texts are either drawn from a dictionary of real words or generated
randomly over an alphabet, where every letter has the same weight. The
latter produces samples for rare letter combinations, which a dictionary
will seldom contain.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package words

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ocrgen.input'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.input")
}
