/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

* A "typecase" is a scaled font, i.e. a font in a certain size for
a certain script and language. The name is reminiscend on the wooden
boxes of typesetters in the aera of metal type.
An example is "Vazirmatn regular 64px".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Sizes of typecases are given in pixels, as samples are rendered for image
recognition and not for print. Internally, faces are created at 72 dpi,
where one point equals one pixel.

Fonts for Persian text are expected to contain the Arabic presentation
forms (U+FB50…U+FDFF, U+FE70…U+FEFF).

----------------------------------------------------------------------

BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE. */
package font

import (
	"os"
	"sync"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'ocrgen.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("ocrgen.fonts")
}

// ScalableFont is a font file loaded into memory.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
}

// TypeCase is a font at a given pixel size.
type TypeCase struct {
	scalableFontParent *ScalableFont
	font               font.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// LoadOpenTypeFont reads an OpenType or TrueType font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses the binary data of a font.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	tracer().Debugf("parsed font %q", f.Fontname)
	return
}

// HasGlyph reports whether the font maps r to a glyph other than .notdef.
func (sf *ScalableFont) HasGlyph(r rune) bool {
	var buf sfnt.Buffer
	gid, err := sf.SFNT.GlyphIndex(&buf, r)
	return err == nil && gid != 0
}

// PrepareCase creates a typecase of size pixels. A size out of range is
// an error.
func (sf *ScalableFont) PrepareCase(size float64) (*TypeCase, error) {
	if size < 5.0 || size > 500.0 {
		return nil, core.Error(core.EINVALID, "font size must be 5px ≤ size ≤ 500px, is %g", size)
	}
	// Faces are not safe for concurrent use, so every typecase gets its own.
	f, err := opentype.NewFace(sf.SFNT, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot create face for %s", sf.Fontname)
	}
	tracer().Debugf("prepared typecase %s at %.1fpx", sf.Fontname, size)
	return &TypeCase{scalableFontParent: sf, font: f, size: size}, nil
}

// ScalableFontParent returns the font a typecase is derived from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// PixelSize returns the size of the typecase in pixels.
func (tc *TypeCase) PixelSize() float64 {
	return tc.size
}

// Face returns the Go font face of the typecase. Faces may not be used
// concurrently.
func (tc *TypeCase) Face() font.Face {
	return tc.font
}

// Clone creates an independent typecase of the same font and size, to be
// used by another goroutine.
func (tc *TypeCase) Clone() (*TypeCase, error) {
	return tc.scalableFontParent.PrepareCase(tc.size)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else failes. It is
// always present. Currently we use Go Sans, which does not contain Arabic
// letters.
func FallbackFont() *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackFont = loadFallbackFont()
	})
	return fallbackFont
}

var fallbackFontLoading sync.Once

// fallbackFont is a font that is used if everything else failes.
var fallbackFont *ScalableFont

func loadFallbackFont() *ScalableFont {
	var err error
	gofont := &ScalableFont{
		Fontname: "Go Sans",
		Filepath: "internal",
		Binary:   goregular.TTF,
	}
	gofont.SFNT, err = sfnt.Parse(gofont.Binary)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	return gofont
}
