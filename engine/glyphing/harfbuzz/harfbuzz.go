/*
Package harfbuzz uses HarfBuzz to convert text to sequences of glyphs, and
renders those glyphs from their outlines.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package harfbuzz

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/ocrgen/engine/glyphing"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// tracer traces with key 'ocrgen.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.glyphs")
}

// --- Type conversion -------------------------------------------------------

// Lang4HB returns a language tag as a HarfBuzz language.
func Lang4HB(l language.Tag) hblang.Language {
	return hblang.NewLanguage(l.String())
}

// Script4HB returns a script as a HarfBuzz script.
func Script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	h := binary.BigEndian.Uint32(b)
	return hblang.Script(h)
}

// Direction4HB translates a direction to a HarfBuzz direction.
func Direction4HB(d glyphing.Direction) hb.Direction {
	switch d {
	case glyphing.LeftToRight:
		return hb.LeftToRight
	case glyphing.RightToLeft:
		return hb.RightToLeft
	case glyphing.TopToBottom:
		return hb.TopToBottom
	case glyphing.BottomToTop:
		return hb.BottomToTop
	}
	return hb.LeftToRight
}

// Feature4HB makes a typecast from an OpenType feature tag to a HarfBuzz truetype tag.
func Feature4HB(t glyphing.Tag) hbtt.Tag {
	return hbtt.Tag(t)
}

// FeatureRange4HB converts a feature range struct to a HarbBuzz Feature switch.
func FeatureRange4HB(frng glyphing.FeatureRange) hb.Feature {
	f := hb.Feature{
		Tag:   Feature4HB(frng.Feature),
		Start: frng.Start,
		End:   frng.End,
	}
	if frng.On {
		if frng.Arg > 0 {
			f.Value = uint32(frng.Arg)
		} else {
			f.Value = 1
		}
	}
	return f
}

// ParseFeatures parses feature switches in HarfBuzz syntax, e.g. "-liga" or
// "kern[3:5]=0", into feature ranges.
func ParseFeatures(switches []string) ([]glyphing.FeatureRange, error) {
	ranges := make([]glyphing.FeatureRange, 0, len(switches))
	for _, sw := range switches {
		f, err := hb.ParseFeature(sw)
		if err != nil {
			return nil, core.WrapError(err, core.EINVALID, "invalid OpenType feature %q", sw)
		}
		ranges = append(ranges, glyphing.FeatureRange{
			Feature: glyphing.Tag(f.Tag),
			Arg:     int(f.Value),
			On:      f.Value != 0,
			Start:   f.Start,
			End:     f.End,
		})
	}
	return ranges, nil
}

// --- Shape -----------------------------------------------------------------

// Shaper shapes text with the glyphs of one font. A shaper is not safe for
// concurrent use.
type Shaper struct {
	font   *font.ScalableFont
	hbFont *hb.Font
}

var _ glyphing.Shaper = &Shaper{}

// NewShaper prepares a HarfBuzz font for f.
func NewShaper(f *font.ScalableFont) (*Shaper, error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "shaper needs a font")
	}
	face, err := hbtt.Parse(bytes.NewReader(f.Binary), true)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "HarfBuzz cannot parse font %s", f.Fontname)
	}
	return &Shaper{font: f, hbFont: hb.NewFont(face)}, nil
}

// Shape calls the HarfBuzz shaper.
//
// Shape shapes a string, turning its Unicode characters to positioned glyphs.
// It will select a shape plan based on params and the properties of the
// input text. Glyphs are returned in visual order, left to right, with
// distances in pixels of params.Font.
//
// If `params.Features` is not empty, it will be used to control the
// features applied during shaping. If two features have the same tag but
// overlapping ranges the value of the feature with the higher index takes
// precedence.
func (s *Shaper) Shape(text string, params glyphing.Params) (glyphing.GlyphSequence, error) {
	if params.Font == nil {
		return glyphing.GlyphSequence{}, core.Error(core.EINVALID, "shaping needs a typecase")
	}
	if params.Font.ScalableFontParent() != s.font {
		return glyphing.GlyphSequence{}, core.Error(core.EINVALID,
			"typecase is not derived from shaper font %s", s.font.Fontname)
	}
	var props hb.SegmentProperties
	convertParams(&props, params)
	features := make([]hb.Feature, 0, len(params.Features))
	for _, feat := range params.Features {
		features = append(features, FeatureRange4HB(feat))
	}
	buf := hb.NewBuffer()
	buf.Props = props
	runes := []rune(text)
	buf.AddRunes(runes, 0, len(runes))
	buf.Shape(s.hbFont, features)
	//
	// HarfBuzz positions are in font units
	upem := float64(s.font.SFNT.UnitsPerEm())
	scale := params.Font.PixelSize() / upem
	px := func(v float64) fixed.Int26_6 {
		return fixed.Int26_6(math.Round(v * scale * 64))
	}
	seq := glyphing.GlyphSequence{
		Glyphs: make([]glyphing.ShapedGlyph, len(buf.Info)),
	}
	for i, ginfo := range buf.Info {
		gpos := buf.Pos[i]
		g := &seq.Glyphs[i]
		g.ClusterID = ginfo.Cluster
		g.GID = uint16(ginfo.Glyph)
		g.XAdvance = px(float64(gpos.XAdvance))
		g.YAdvance = px(float64(gpos.YAdvance))
		g.XOffset = px(float64(gpos.XOffset))
		g.YOffset = px(float64(gpos.YOffset))
		if g.ClusterID >= 0 && g.ClusterID < len(runes) {
			g.CodePoint = runes[g.ClusterID]
		}
		seq.W += g.XAdvance
	}
	tracer().Debugf("shaped %q into %d glyphs, advance %s", text, len(seq.Glyphs), seq.W)
	return seq, nil
}

// convertParams is a helper function to convert glyphing parameters to
// HarfBuzz's format.
func convertParams(hbProps *hb.SegmentProperties, params glyphing.Params) {
	if params.Language != language.Und {
		hbProps.Language = Lang4HB(params.Language)
	}
	var none language.Script
	if params.Script != none {
		hbProps.Script = Script4HB(params.Script)
	}
	hbProps.Direction = Direction4HB(params.Direction)
}
