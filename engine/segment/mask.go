package segment

import (
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
)

// Mask is a binary mask of a character over the whole sample image. It is
// run-length encoded in column-major order: Counts alternate between runs of
// background and runs of ink, starting with background (which may be a run
// of length 0). Size is height, width.
type Mask struct {
	Size   [2]int `json:"size"`
	Counts []int  `json:"counts"`
}

// EncodeMask run-length encodes the pixels of a w×h image for which set is
// true.
func EncodeMask(w, h int, set func(x, y int) bool) Mask {
	m := Mask{Size: [2]int{h, w}}
	run, ink := 0, false
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if set(x, y) != ink {
				m.Counts = append(m.Counts, run)
				run, ink = 0, !ink
			}
			run++
		}
	}
	m.Counts = append(m.Counts, run)
	return m
}

// Mask returns the ink of r within the box of s, leaving out the pixels of
// foreign sub-blobs.
func (s Segment) Mask(r *raster.Raster) Mask {
	rejected := make(map[Pixel]bool, len(s.Rejected))
	for _, p := range s.Rejected {
		rejected[p] = true
	}
	return EncodeMask(r.W, r.H, func(x, y int) bool {
		p := Pixel{x, y}
		return s.Box.Contains(p) && r.Ink(x, y) && !rejected[p]
	})
}

// Pixels decodes the mask, in column-major order.
func (m Mask) Pixels() []Pixel {
	h := m.Size[0]
	if h <= 0 {
		return nil
	}
	var pp []Pixel
	i, ink := 0, false
	for _, n := range m.Counts {
		if ink {
			for k := i; k < i+n; k++ {
				pp = append(pp, Pixel{k / h, k % h})
			}
		}
		i += n
		ink = !ink
	}
	return pp
}

// Check tests that the mask covers a w×h image exactly.
func (m Mask) Check(w, h int) error {
	if m.Size != [2]int{h, w} {
		return core.Error(core.EINVALID, "mask of size %v does not fit image %dx%d", m.Size, w, h)
	}
	sum := 0
	for _, n := range m.Counts {
		if n < 0 {
			return core.Error(core.EINVALID, "mask has negative run length %d", n)
		}
		sum += n
	}
	if sum != w*h {
		return core.Error(core.EINVALID, "mask runs sum up to %d, image has %d pixels", sum, w*h)
	}
	return nil
}
