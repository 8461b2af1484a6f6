package segment

import (
	"fmt"
	"image"

	"github.com/katalvlaran/lvlath/gridgraph"
)

// Pixel is a pixel position in a raster.
type Pixel struct {
	X, Y int
}

// Box is a bounding box with inclusive pixel coordinates.
type Box struct {
	X0, Y0, X1, Y1 int
}

// Width is the number of columns covered by b.
func (b Box) Width() int {
	return b.X1 - b.X0 + 1
}

// Height is the number of rows covered by b.
func (b Box) Height() int {
	return b.Y1 - b.Y0 + 1
}

// Valid is true if no edge of b crosses its opposite edge.
func (b Box) Valid() bool {
	return b.X0 <= b.X1 && b.Y0 <= b.Y1
}

// Contains is true if p lies within b.
func (b Box) Contains(p Pixel) bool {
	return p.X >= b.X0 && p.X <= b.X1 && p.Y >= b.Y0 && p.Y <= b.Y1
}

// Array returns b as [x0,y0,x1,y1].
func (b Box) Array() [4]int {
	return [4]int{b.X0, b.Y0, b.X1, b.Y1}
}

// Rect converts b to an image rectangle, which has exclusive max coordinates.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1+1, b.Y1+1)
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.X0, b.Y0, b.X1, b.Y1)
}

// Connectivity selects which neighbours connect ink pixels.
type Connectivity int

const (
	// Conn4 connects pixels sharing an edge: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 connects diagonal neighbours as well.
	Conn8
)

func (c Connectivity) grid() gridgraph.Connectivity {
	if c == Conn8 {
		return gridgraph.Conn8
	}
	return gridgraph.Conn4
}

// Policy holds the thresholds of the pixel ownership test.
type Policy struct {
	ForeignRemainder int     // a blob with fewer pixels outside the window is owned
	MinBlobPixels    int     // smaller windowed sub-blobs are foreign
	MinExtent        int     // sub-blobs narrower or flatter than this are foreign
	AreaRatio        float64 // |seg|/(|seg|+|whole|) above this is owned
	MinSegPixels     int     // more in-window pixels than this is owned
	MinSliceInk      int     // a nominal column slice needs this much ink
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ForeignRemainder: 3,
		MinBlobPixels:    4,
		MinExtent:        4,
		AreaRatio:        0.1,
		MinSegPixels:     15,
		MinSliceInk:      4,
	}
}

// Options configures a segmentation run.
type Options struct {
	Connectivity  Connectivity
	Policy        Policy
	MaxIterations int // edge moves per character; 0 means width+height of the raster
}

// DefaultOptions returns 4-connectivity with the default policy.
func DefaultOptions() Options {
	return Options{
		Connectivity: Conn4,
		Policy:       DefaultPolicy(),
	}
}

// Ownership is the outcome of the pixel ownership test.
type Ownership int

const (
	Foreign Ownership = iota
	Good
)

func (o Ownership) String() string {
	if o == Good {
		return "good"
	}
	return "foreign"
}

// Segment is the result of segmenting one character.
type Segment struct {
	Box      Box
	Claimed  []Pixel // ink pixels confirmed to belong to the character
	Rejected []Pixel // ink pixels of foreign sub-blobs
	Foreign  int     // number of foreign sub-blobs skipped while tightening
}
