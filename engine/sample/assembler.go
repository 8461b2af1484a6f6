package sample

import (
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
	"github.com/npillmayer/ocrgen/engine/script/persian"
	"github.com/npillmayer/ocrgen/engine/segment"
	"golang.org/x/text/unicode/norm"
)

// Assembler creates sample records from words. An assembler is not safe for
// concurrent use, as rasterizers usually are not; create one per goroutine.
// Assemblers may share a Counter.
type Assembler struct {
	Table         *persian.Table
	Ligatures     *persian.Ligatures
	Rasterizer    raster.Rasterizer
	Counter       *Counter
	RejectUnknown bool
	Segmentation  segment.Options
	Loosening     segment.Loosening
	Masks         bool // compute a binary mask per box
}

// NewAssembler creates an assembler with the default letter table, the default
// ligatures and default segmentation options.
func NewAssembler(rasterizer raster.Rasterizer, counter *Counter) *Assembler {
	return &Assembler{
		Table:         persian.Default(),
		Ligatures:     persian.NewLigatures(persian.DefaultLigatures...),
		Rasterizer:    rasterizer,
		Counter:       counter,
		RejectUnknown: true,
		Segmentation:  segment.DefaultOptions(),
	}
}

// Assemble creates a sample record for text. Text is NFC normalized first,
// and the record carries the normalized text. A failed assembly does not
// consume an identifier.
func (a *Assembler) Assemble(text string) (*Record, error) {
	if a.Rasterizer == nil || a.Counter == nil || a.Table == nil {
		return nil, core.Error(core.EINTERNAL, "assembler is not fully configured")
	}
	text = norm.NFC.String(text)
	spans, err := a.Table.SplitIntoCharacters(text, a.Ligatures, a.RejectUnknown)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, core.Error(core.EINVALID, "cannot create a sample from empty text")
	}
	parts := persian.Labels(spans)
	rendering, err := a.Rasterizer.Render(persian.Shaped(spans))
	if err != nil {
		return nil, err
	}
	bounds, err := raster.Boundaries(a.Rasterizer, rendering, parts)
	if err != nil {
		return nil, err
	}
	visual, err := segment.Segments(rendering.Raster, bounds, a.Segmentation)
	if err != nil {
		return nil, err
	}
	// segments come left to right; parts are in logical, right-to-left order
	n := len(visual)
	boxes := make([]segment.Box, n)
	var masks []segment.Mask
	if a.Masks {
		masks = make([]segment.Mask, n)
	}
	for i, s := range visual {
		boxes[n-1-i] = s.Box
		if masks != nil {
			masks[n-1-i] = s.Mask(rendering.Raster)
		}
	}
	if !a.Loosening.IsZero() {
		boxes = segment.LooseBoxes(boxes, rendering.Raster.H, a.Loosening)
	}
	sources := make([]string, len(spans))
	for i, sp := range spans {
		sources[i] = sp.Source
	}
	rec := &Record{
		ID:      a.Counter.Next(),
		Text:    text,
		Image:   rendering.Image,
		Raster:  rendering.Raster,
		Parts:   parts,
		Sources: sources,
		Boxes:   boxes,
		Masks:   masks,
	}
	tracer().Debugf("sample %d: %q with %d parts", rec.ID, text, len(parts))
	return rec, nil
}
