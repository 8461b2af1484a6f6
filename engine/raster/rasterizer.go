package raster

import (
	"image"
	"strings"
	"unicode"

	"github.com/npillmayer/ocrgen/core"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Rendering is the result of rasterizing a run of text.
type Rendering struct {
	Image   *image.Gray // anti-aliased rendering, ink bright on black
	Raster  *Raster     // binarized rendering
	Left    int         // column where the run starts
	Advance int         // advance width of the run in pixels
}

// Measurer measures the advance width of text in pixels.
type Measurer interface {
	Measure(text string) (int, error)
}

// Rasterizer renders a string of presentation forms, right-to-left.
// Implementations need not be safe for concurrent use.
type Rasterizer interface {
	Measurer
	Render(text string) (Rendering, error)
}

// Boundaries computes the column boundaries of units, given in logical order,
// within rendering. Text runs right-to-left, so the logical prefix of k units
// ends at column Left+Advance-w(k), where w(k) is the prefix's advance.
//
// The result has len(units)+1 entries in visual order, left to right:
// visual slice j covers columns [b[j], b[j+1]] and holds unit n-1-j.
func Boundaries(m Measurer, r Rendering, units []string) ([]int, error) {
	n := len(units)
	w := make([]int, n+1)
	w[n] = r.Advance
	var prefix strings.Builder
	for k := 1; k < n; k++ {
		prefix.WriteString(units[k-1])
		adv, err := m.Measure(prefix.String())
		if err != nil {
			return nil, err
		}
		// kerning may make prefixes shrink; boundaries must not cross
		if adv < w[k-1] {
			adv = w[k-1]
		}
		if adv > r.Advance {
			adv = r.Advance
		}
		w[k] = adv
	}
	b := make([]int, n+1)
	for j := 0; j <= n; j++ {
		b[j] = r.Left + r.Advance - w[n-j]
	}
	tracer().Debugf("prefix widths %v give boundaries %v", w, b)
	return b, nil
}

// Visual reverses text from logical to visual order for right-to-left
// display. Combining marks stay attached to their base character.
func Visual(text string) string {
	var clusters []string
	var cur strings.Builder
	for _, r := range text {
		if cur.Len() > 0 && !unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
			clusters = append(clusters, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		clusters = append(clusters, cur.String())
	}
	var out strings.Builder
	for i := len(clusters) - 1; i >= 0; i-- {
		out.WriteString(clusters[i])
	}
	return out.String()
}

// --- Face rasterizer -------------------------------------------------------

// FaceRasterizer renders presentation forms with a Go font face, one glyph
// after the other. As input is already shaped, no OpenType layout is needed.
type FaceRasterizer struct {
	face      font.Face
	Padding   int   // blank pixels around the text
	Threshold uint8 // gray value above which a pixel counts as ink
}

// NewFaceRasterizer creates a rasterizer for a font face. A face is not safe
// for concurrent use, and neither is the rasterizer.
func NewFaceRasterizer(face font.Face, padding int) *FaceRasterizer {
	if padding < 0 {
		padding = 0
	}
	return &FaceRasterizer{face: face, Padding: padding, Threshold: 0x40}
}

// Measure returns the advance width of text in pixels.
func (fr *FaceRasterizer) Measure(text string) (int, error) {
	if fr.face == nil {
		return 0, core.Error(core.EINVALID, "rasterizer has no font face")
	}
	d := font.Drawer{Face: fr.face}
	return d.MeasureString(Visual(text)).Ceil(), nil
}

// Render draws text right-to-left onto a new image, surrounded by padding.
func (fr *FaceRasterizer) Render(text string) (Rendering, error) {
	adv, err := fr.Measure(text)
	if err != nil {
		return Rendering{}, err
	}
	if adv <= 0 {
		return Rendering{}, core.Error(core.EINVALID, "text %q has no extent", text)
	}
	metrics := fr.face.Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	w := adv + 2*fr.Padding
	h := ascent + descent + 2*fr.Padding
	img := image.NewGray(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.White,
		Face: fr.face,
		Dot:  fixed.P(fr.Padding, fr.Padding+ascent),
	}
	d.DrawString(Visual(text))
	tracer().Debugf("rendered %q onto %d×%d pixels", text, w, h)
	return Rendering{
		Image:   img,
		Raster:  FromGray(img, fr.Threshold),
		Left:    fr.Padding,
		Advance: adv,
	}, nil
}

var _ Rasterizer = &FaceRasterizer{}
