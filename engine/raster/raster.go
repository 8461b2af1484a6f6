package raster

import (
	"fmt"
	"image"
)

// Raster is an immutable grid of W×H pixels, row-major. Background pixels are
// 0, ink pixels have any other value.
type Raster struct {
	W, H int
	Pix  []uint8
}

// New creates an empty raster.
func New(w, h int) *Raster {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Raster{W: w, H: h, Pix: make([]uint8, w*h)}
}

// FromGray binarizes a gray image: every pixel brighter than threshold becomes ink.
func FromGray(img *image.Gray, threshold uint8) *Raster {
	b := img.Bounds()
	r := New(b.Dx(), b.Dy())
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			if img.GrayAt(b.Min.X+x, b.Min.Y+y).Y > threshold {
				r.Pix[y*r.W+x] = 0xff
			}
		}
	}
	return r
}

// FromStrings creates a raster from rows of text, where every character other
// than '.' and ' ' is ink. Rows shorter than the longest one are padded.
func FromStrings(rows ...string) *Raster {
	w := 0
	for _, row := range rows {
		if len(row) > w {
			w = len(row)
		}
	}
	r := New(w, len(rows))
	for y, row := range rows {
		for x := 0; x < len(row); x++ {
			if row[x] != '.' && row[x] != ' ' {
				r.Pix[y*w+x] = 0xff
			}
		}
	}
	return r
}

// Inside is true if (x,y) is a valid pixel position.
func (r *Raster) Inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.W && y < r.H
}

// Ink is true if pixel (x,y) is set. Positions outside the raster are background.
func (r *Raster) Ink(x, y int) bool {
	if !r.Inside(x, y) {
		return false
	}
	return r.Pix[y*r.W+x] != 0
}

// Set marks pixel (x,y) as ink. It is meant for building a raster before it is
// handed out; positions outside are ignored.
func (r *Raster) Set(x, y int) {
	if r.Inside(x, y) {
		r.Pix[y*r.W+x] = 0xff
	}
}

// InkCount counts ink pixels in columns [x0,x1) over the full height.
func (r *Raster) InkCount(x0, x1 int) int {
	if x0 < 0 {
		x0 = 0
	}
	if x1 > r.W {
		x1 = r.W
	}
	n := 0
	for y := 0; y < r.H; y++ {
		row := r.Pix[y*r.W : (y+1)*r.W]
		for x := x0; x < x1; x++ {
			if row[x] != 0 {
				n++
			}
		}
	}
	return n
}

// Bounds returns the raster's dimensions as an image rectangle.
func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.W, r.H)
}

// Gray returns the raster as a gray image, ink white on black.
func (r *Raster) Gray() *image.Gray {
	img := image.NewGray(r.Bounds())
	copy(img.Pix, r.Pix)
	return img
}

// Paper returns the raster as it would be printed: black ink on white paper.
func (r *Raster) Paper() *image.Gray {
	return Paper(r.Gray())
}

func (r *Raster) String() string {
	return fmt.Sprintf("raster(%d×%d)", r.W, r.H)
}

// Paper turns a rendering (ink bright on dark background) into black on white.
func Paper(img *image.Gray) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		out.Pix[i] = 0xff - p
	}
	return out
}
