package segment

import (
	"github.com/katalvlaran/lvlath/gridgraph"
	"github.com/npillmayer/ocrgen/core"
	"github.com/npillmayer/ocrgen/engine/raster"
)

// labeling is a connected component labeling of the ink within a window of a
// raster. Pixel coordinates are raster coordinates.
type labeling struct {
	window Box
	labels []int32   // per window pixel, 0 for background, else component number
	comps  [][]Pixel // comps[n-1] holds the pixels of component n
}

// label finds the connected components of the ink inside window. The window
// is copied to a grid graph, ink cells being land.
func label(r *raster.Raster, window Box, conn Connectivity) (*labeling, error) {
	ww, wh := window.Width(), window.Height()
	if ww <= 0 || wh <= 0 {
		return &labeling{window: window}, nil
	}
	cells := make([][]int, wh)
	for y := range cells {
		cells[y] = make([]int, ww)
		for x := range cells[y] {
			if r.Ink(window.X0+x, window.Y0+y) {
				cells[y][x] = 1
			}
		}
	}
	gg, err := gridgraph.NewGridGraph(cells, gridgraph.GridOptions{
		LandThreshold: 1,
		Conn:          conn.grid(),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrMalformedRaster, core.EMALFORMED,
			"cannot label window %v: %v", window, err)
	}
	lab := &labeling{
		window: window,
		labels: make([]int32, ww*wh),
	}
	for n, comp := range gg.ConnectedComponents() {
		pixels := make([]Pixel, len(comp))
		for i, idx := range comp {
			x, y := gg.Coordinate(idx)
			pixels[i] = Pixel{window.X0 + x, window.Y0 + y}
			lab.labels[lab.index(pixels[i].X, pixels[i].Y)] = int32(n + 1)
		}
		lab.comps = append(lab.comps, pixels)
	}
	return lab, nil
}

func (lab *labeling) index(x, y int) int {
	return (y-lab.window.Y0)*lab.window.Width() + (x - lab.window.X0)
}

// component returns the pixels connected to p, or false if p is not labeled.
func (lab *labeling) component(p Pixel) ([]Pixel, bool) {
	if !lab.window.Contains(p) || len(lab.labels) == 0 {
		return nil, false
	}
	id := lab.labels[lab.index(p.X, p.Y)]
	if id == 0 || int(id) > len(lab.comps) {
		return nil, false
	}
	return lab.comps[id-1], true
}

// count returns the number of components.
func (lab *labeling) count() int {
	return len(lab.comps)
}

// componentCache holds the labeling of the whole raster plus labelings of
// windows already visited. It belongs to a single segmentation call.
type componentCache struct {
	conn    Connectivity
	whole   *labeling
	windows map[Box]*labeling
}

func newComponentCache(r *raster.Raster, conn Connectivity) (*componentCache, error) {
	whole, err := label(r, Box{0, 0, r.W - 1, r.H - 1}, conn)
	if err != nil {
		return nil, err
	}
	c := &componentCache{
		conn:    conn,
		whole:   whole,
		windows: make(map[Box]*labeling),
	}
	tracer().Debugf("raster %v has %d connected components", r, c.whole.count())
	return c, nil
}

// windowed returns the component containing p, with connectivity restricted
// to window. Labelings are computed once per distinct window.
func (c *componentCache) windowed(r *raster.Raster, window Box, p Pixel) ([]Pixel, bool, error) {
	lab, ok := c.windows[window]
	if !ok {
		var err error
		if lab, err = label(r, window, c.conn); err != nil {
			return nil, false, err
		}
		c.windows[window] = lab
	}
	pixels, ok := lab.component(p)
	return pixels, ok, nil
}

// extent returns width and height of the bounding box of pixels.
func extent(pixels []Pixel) (int, int) {
	if len(pixels) == 0 {
		return 0, 0
	}
	minx, miny := pixels[0].X, pixels[0].Y
	maxx, maxy := minx, miny
	for _, p := range pixels[1:] {
		if p.X < minx {
			minx = p.X
		} else if p.X > maxx {
			maxx = p.X
		}
		if p.Y < miny {
			miny = p.Y
		} else if p.Y > maxy {
			maxy = p.Y
		}
	}
	return maxx - minx + 1, maxy - miny + 1
}
