package harfbuzz

import (
	"image"
	"image/draw"

	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/core/font"
	"github.com/npillmayer/ocrgen/engine/glyphing"
	"github.com/npillmayer/ocrgen/engine/raster"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// Rasterizer renders text shaped by HarfBuzz, drawing glyph outlines. Other
// than raster.FaceRasterizer it applies the font's OpenType layout, e.g.
// kerning and mark positioning.
//
// A rasterizer is not safe for concurrent use.
type Rasterizer struct {
	shaper    *Shaper
	params    glyphing.Params
	buf       sfnt.Buffer
	Padding   int   // blank pixels around the text
	Threshold uint8 // gray value above which a pixel counts as ink
}

var _ raster.Rasterizer = &Rasterizer{}

// NewRasterizer creates a rasterizer for Persian text, set with typecase tc.
func NewRasterizer(tc *font.TypeCase, padding int) (*Rasterizer, error) {
	if tc == nil {
		return nil, core.Error(core.EINVALID, "rasterizer needs a typecase")
	}
	shaper, err := NewShaper(tc.ScalableFontParent())
	if err != nil {
		return nil, err
	}
	if padding < 0 {
		padding = 0
	}
	return &Rasterizer{
		shaper:    shaper,
		params:    glyphing.PersianParams(tc),
		Padding:   padding,
		Threshold: 0x40,
	}, nil
}

// SetFeatures switches OpenType features on or off for all subsequent
// shaping.
func (r *Rasterizer) SetFeatures(features []glyphing.FeatureRange) {
	r.params.Features = features
}

// Measure returns the advance width of text in pixels.
func (r *Rasterizer) Measure(text string) (int, error) {
	seq, err := r.shaper.Shape(text, r.params)
	if err != nil {
		return 0, err
	}
	return seq.Advance(), nil
}

// Render shapes text right-to-left and draws it onto a new image,
// surrounded by padding.
func (r *Rasterizer) Render(text string) (raster.Rendering, error) {
	seq, err := r.shaper.Shape(text, r.params)
	if err != nil {
		return raster.Rendering{}, err
	}
	adv := seq.Advance()
	if adv <= 0 {
		return raster.Rendering{}, core.Error(core.EINVALID, "text %q has no extent", text)
	}
	metrics := r.params.Font.Face().Metrics()
	ascent, descent := metrics.Ascent.Ceil(), metrics.Descent.Ceil()
	w := adv + 2*r.Padding
	h := ascent + descent + 2*r.Padding
	img := image.NewGray(image.Rect(0, 0, w, h))
	rast := vector.NewRasterizer(w, h)
	rast.DrawOp = draw.Over
	sf := r.shaper.font.SFNT
	ppem := fixed.Int26_6(r.params.Font.PixelSize() * 64)
	penX := fixed.I(r.Padding)
	baseline := fixed.I(r.Padding + ascent)
	for _, g := range seq.Glyphs {
		segs, err := sf.LoadGlyph(&r.buf, sfnt.GlyphIndex(g.GID), ppem, nil)
		if err != nil {
			tracer().Errorf("cannot load glyph %d: %v", g.GID, err)
			penX += g.XAdvance
			continue
		}
		// outline y-coordinates point down, HarfBuzz offsets point up
		dx := float32(penX+g.XOffset) / 64
		dy := float32(baseline-g.YOffset) / 64
		pt := func(p fixed.Point26_6) (float32, float32) {
			return dx + float32(p.X)/64, dy + float32(p.Y)/64
		}
		open := false
		for _, seg := range segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open {
					rast.ClosePath()
				}
				rast.MoveTo(pt(seg.Args[0]))
				open = true
			case sfnt.SegmentOpLineTo:
				rast.LineTo(pt(seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				rast.QuadTo(x1, y1, x2, y2)
			case sfnt.SegmentOpCubeTo:
				x1, y1 := pt(seg.Args[0])
				x2, y2 := pt(seg.Args[1])
				x3, y3 := pt(seg.Args[2])
				rast.CubeTo(x1, y1, x2, y2, x3, y3)
			}
		}
		if open {
			rast.ClosePath()
		}
		penX += g.XAdvance
	}
	rast.Draw(img, img.Bounds(), image.White, image.Point{})
	tracer().Debugf("rendered %q onto %d×%d pixels", text, w, h)
	return raster.Rendering{
		Image:   img,
		Raster:  raster.FromGray(img, r.Threshold),
		Left:    r.Padding,
		Advance: adv,
	}, nil
}
