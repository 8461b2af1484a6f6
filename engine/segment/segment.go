package segment

import (
	"sort"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
)

// Boxes segments r into one box per character. bounds holds the nominal
// column boundaries in visual order, left to right: character slice i starts
// at column bounds[i] and ends at column bounds[i+1] (inclusive, clipped to the
// raster). Boxes are returned in the same order as the slices.
func Boxes(r *raster.Raster, bounds []int, opts Options) ([]Box, error) {
	segs, err := Segments(r, bounds, opts)
	if err != nil {
		return nil, err
	}
	boxes := make([]Box, len(segs))
	for i, s := range segs {
		boxes[i] = s.Box
	}
	return boxes, nil
}

// Segments is like Boxes, but reports the pixels claimed by each character
// as well.
//
// Errors wrap core.ErrEmptySegment if a nominal slice has too little ink,
// core.ErrDegenerateBox if tightening a box fails, and core.ErrMalformedRaster
// if ink cannot be found in the component labeling.
func Segments(r *raster.Raster, bounds []int, opts Options) ([]Segment, error) {
	if len(bounds) < 2 {
		return nil, nil
	}
	if r == nil || r.W == 0 || r.H == 0 {
		return nil, core.WrapError(core.ErrEmptySegment, core.EEMPTYSEGMENT, "raster is empty")
	}
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = r.W + r.H
	}
	cache, err := newComponentCache(r, opts.Connectivity)
	if err != nil {
		return nil, err
	}
	segs := make([]Segment, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		x0, x1 := bounds[i], bounds[i+1]
		if ink := r.InkCount(x0, x1); ink < opts.Policy.MinSliceInk {
			return nil, core.WrapError(core.ErrEmptySegment, core.EEMPTYSEGMENT,
				"columns [%d,%d) of character %d contain %d ink pixels", x0, x1, i, ink)
		}
		if x0 < 0 {
			x0 = 0
		}
		if x1 > r.W-1 {
			x1 = r.W - 1
		}
		c := &character{
			r:       r,
			cache:   cache,
			policy:  opts.Policy,
			box:     Box{x0, 0, x1, r.H - 1},
			good:    hashset.New(),
			bad:     hashset.New(),
			maxIter: maxIter,
		}
		if err := c.tighten(); err != nil {
			tracer().Debugf("character %d: %v", i, err)
			return nil, err
		}
		tracer().Debugf("character %d: columns [%d,%d] tightened to %v", i, bounds[i], bounds[i+1], c.box)
		segs = append(segs, Segment{
			Box:      c.box,
			Claimed:  sorted(c.good),
			Rejected: sorted(c.bad),
			Foreign:  c.foreign,
		})
	}
	return segs, nil
}

type edge int

const (
	leftEdge edge = iota
	rightEdge
	topEdge
	bottomEdge
)

func (e edge) String() string {
	return [...]string{"left", "right", "top", "bottom"}[e]
}

// character is the state of tightening the box of a single character.
type character struct {
	r       *raster.Raster
	cache   *componentCache
	policy  Policy
	box     Box
	good    *hashset.Set // pixels confirmed to belong to the character
	bad     *hashset.Set // pixels of foreign blobs
	foreign int
	maxIter int
}

// tighten moves the edges inward, one after the other, until each is
// anchored by a good pixel.
func (c *character) tighten() error {
	for _, e := range []edge{leftEdge, rightEdge, topEdge, bottomEdge} {
		for iter := 0; ; iter++ {
			if iter > c.maxIter {
				return core.WrapError(core.ErrDegenerateBox, core.EDEGENERATE,
					"%s edge of %v did not settle within %d moves", e, c.box, c.maxIter)
			}
			movable, err := c.canMove(e)
			if err != nil {
				return err
			}
			if !movable {
				break
			}
			c.move(e)
			if !c.box.Valid() {
				return core.WrapError(core.ErrDegenerateBox, core.EDEGENERATE,
					"%s edge crossed its opposite edge: %v", e, c.box)
			}
		}
	}
	return nil
}

func (c *character) move(e edge) {
	switch e {
	case leftEdge:
		c.box.X0++
	case rightEdge:
		c.box.X1--
	case topEdge:
		c.box.Y0++
	case bottomEdge:
		c.box.Y1--
	}
}

// line returns the pixels of the box's edge e.
func (c *character) line(e edge) []Pixel {
	b := c.box
	var pp []Pixel
	switch e {
	case leftEdge, rightEdge:
		x := b.X0
		if e == rightEdge {
			x = b.X1
		}
		pp = make([]Pixel, 0, b.Height())
		for y := b.Y0; y <= b.Y1; y++ {
			pp = append(pp, Pixel{x, y})
		}
	case topEdge, bottomEdge:
		y := b.Y0
		if e == bottomEdge {
			y = b.Y1
		}
		pp = make([]Pixel, 0, b.Width())
		for x := b.X0; x <= b.X1; x++ {
			pp = append(pp, Pixel{x, y})
		}
	}
	return pp
}

// canMove is the edge test. It is false if an ink pixel on the edge belongs
// to the character.
func (c *character) canMove(e edge) (bool, error) {
	seen := hashset.New()
	for _, p := range c.line(e) {
		if !c.r.Ink(p.X, p.Y) || seen.Contains(p) || c.bad.Contains(p) {
			continue
		}
		if c.good.Contains(p) {
			return false, nil
		}
		own, blob, err := classifyPixel(c.r, c.box, c.cache, p, c.policy)
		if err != nil {
			return false, err
		}
		if own == Good {
			c.good.Add(items(blob)...)
			return false, nil
		}
		tracer().Debugf("%s edge of %v: %d foreign pixels at %v", e, c.box, len(blob), p)
		c.foreign++
		seen.Add(items(blob)...)
		c.bad.Add(items(blob)...)
	}
	return true, nil
}

// sorted returns the pixels of set, sorted by row, then column.
func sorted(set *hashset.Set) []Pixel {
	vals := set.Values()
	pp := make([]Pixel, len(vals))
	for i, v := range vals {
		pp[i] = v.(Pixel)
	}
	sort.Slice(pp, func(i, j int) bool {
		if pp[i].Y != pp[j].Y {
			return pp[i].Y < pp[j].Y
		}
		return pp[i].X < pp[j].X
	})
	return pp
}

func items(pixels []Pixel) []interface{} {
	ii := make([]interface{}, len(pixels))
	for i, p := range pixels {
		ii[i] = p
	}
	return ii
}
