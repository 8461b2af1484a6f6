/*
Package glyphing defines the interface to text shapers, which turn text into
positioned glyphs of a font.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glyphing

import (
	"fmt"

	"github.com/npillmayer/ocrgen/core/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
)

// Direction is the direction to typeset text in.
type Direction int

// Direction to typeset text in.
const (
	LeftToRight Direction = iota
	RightToLeft
	TopToBottom
	BottomToTop
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LeftToRight"
	case RightToLeft:
		return "RightToLeft"
	case TopToBottom:
		return "TopToBottom"
	case BottomToTop:
		return "BottomToTop"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Tag is a 4-letter OpenType tag, e.g. for features.
type Tag uint32

// MakeTag creates a tag from a string of four ASCII letters. Shorter strings
// are padded with spaces.
func MakeTag(s string) Tag {
	b := []byte(s + "    ")[:4]
	return Tag(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// A ShapedGlyph is a glyph positioned by the shaper. Distances are in pixels.
type ShapedGlyph struct {
	ClusterID int           // position of code-point(s) for this glyph in original string
	GID       uint16        // glyph index within font
	XAdvance  fixed.Int26_6 // advance after glyph has been set
	YAdvance  fixed.Int26_6 //
	XOffset   fixed.Int26_6 // position of anchor dot for glyph, positive is right
	YOffset   fixed.Int26_6 // positive is up
	CodePoint rune          // code-point of first rune to produce this glyph
}

func (g ShapedGlyph) String() string {
	return fmt.Sprintf("(GID=%d, advance=%s)", g.GID, g.XAdvance)
}

// A Shaper creates a sequence of glyphs from a sequence of Unicode
// code-points. Glyphs are taken from a font, given in a specific pixel size.
type Shaper interface {
	Shape(text string, params Params) (GlyphSequence, error)
}

// Params collects shaping parameters.
type Params struct {
	Font      *font.TypeCase  // use a font at a given pixel size
	Direction Direction       // writing direction
	Script    language.Script // 4-letter ISO 15924 script identifier
	Language  language.Tag    // BCP 47 language tag
	Features  []FeatureRange  // OpenType features to apply
}

// PersianParams returns shaping parameters for Persian text set with tc.
func PersianParams(tc *font.TypeCase) Params {
	return Params{
		Font:      tc,
		Direction: RightToLeft,
		Script:    language.MustParseScript("Arab"),
		Language:  language.Persian,
	}
}

// FeatureRange tells a shaper to turn a certain OpenType feature on or off for a
// run of code-points.
type FeatureRange struct {
	Feature    Tag  // 4-letter feature tag
	Arg        int  // optional argument for this feature
	On         bool // turn it on or off?
	Start, End int  // position of code-points to apply feature for
}

// GlyphSequence contains a sequence of shaped glyphs, in visual order.
type GlyphSequence struct {
	Glyphs []ShapedGlyph // resulting sequence of glyphs
	W      fixed.Int26_6 // total advance
}

// Advance returns the advance width of the sequence in whole pixels.
func (seq GlyphSequence) Advance() int {
	return seq.W.Ceil()
}
