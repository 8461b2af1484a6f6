package segment

import (
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
)

// classifyPixel decides whether ink pixel p, found on an edge of window, is
// part of the character being boxed or part of a neighbour's stroke reaching
// into the window.
//
// Let whole be p's component in the whole raster, windowed its component with
// connectivity restricted to window, and seg = whole ∩ window. Then, in order:
//
//   - |whole|-|seg| < ForeignRemainder: good
//   - windowed too small, or windowed or seg too thin in either axis: foreign
//   - |seg|/(|seg|+|whole|) > AreaRatio or |seg| > MinSegPixels: good
//   - otherwise foreign
//
// The windowed sub-blob is returned in either case; callers record it as good
// or blacklist it.
func classifyPixel(r *raster.Raster, window Box, cache *componentCache, p Pixel,
	policy Policy) (Ownership, []Pixel, error) {
	//
	whole, ok := cache.whole.component(p)
	if !ok {
		return Foreign, nil, core.WrapError(core.ErrMalformedRaster, core.EMALFORMED,
			"ink pixel %v has no connected component", p)
	}
	windowed, ok, err := cache.windowed(r, window, p)
	if err != nil {
		return Foreign, nil, err
	}
	if !ok {
		return Foreign, nil, core.WrapError(core.ErrMalformedRaster, core.EMALFORMED,
			"ink pixel %v has no connected component within %v", p, window)
	}
	seg := make([]Pixel, 0, len(windowed))
	for _, q := range whole {
		if window.Contains(q) {
			seg = append(seg, q)
		}
	}
	ns, ni := len(seg), len(whole)
	if ni-ns < policy.ForeignRemainder {
		return Good, windowed, nil
	}
	segW, segH := extent(seg)
	subW, subH := extent(windowed)
	if len(windowed) < policy.MinBlobPixels ||
		subW < policy.MinExtent || subH < policy.MinExtent ||
		segW < policy.MinExtent || segH < policy.MinExtent {
		return Foreign, windowed, nil
	}
	if float64(ns)/float64(ns+ni) > policy.AreaRatio || ns > policy.MinSegPixels {
		return Good, windowed, nil
	}
	return Foreign, windowed, nil
}
