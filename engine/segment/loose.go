package segment

import (
	"strconv"
	"strings"

	"github.com/npillmayer/ocrgen/core"
)

// Loosening widens boxes vertically, either by a number of pixels or by a
// factor. The zero value leaves boxes unchanged.
type Loosening struct {
	Pixels int
	Factor float64
}

// IsZero is true for a loosening which has no effect.
func (l Loosening) IsZero() bool {
	return l.Pixels == 0 && (l.Factor == 0 || l.Factor == 1)
}

func (l Loosening) String() string {
	if l.Factor != 0 {
		return strconv.FormatFloat(l.Factor, 'g', -1, 64)
	}
	return strconv.Itoa(l.Pixels)
}

// ParseLoosening reads a loosening from a string: an integer is a margin in
// pixels, a number with a decimal point is a factor.
func ParseLoosening(s string) (Loosening, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Loosening{}, nil
	}
	if !strings.ContainsAny(s, ".eE") {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Loosening{}, core.Error(core.EINVALID, "invalid loosening margin %q", s)
		}
		return Loosening{Pixels: n}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return Loosening{}, core.Error(core.EINVALID, "invalid loosening factor %q", s)
	}
	return Loosening{Factor: f}, nil
}

// LooseBoxes widens the vertical extent of every box. A pixel margin moves
// y0 up and y1 down by the margin; a factor divides y0 and multiplies y1.
// Results are clipped to rows [0, height-1]. Horizontal extents stay as they are.
func LooseBoxes(boxes []Box, height int, l Loosening) []Box {
	out := make([]Box, len(boxes))
	for i, b := range boxes {
		y0, y1 := b.Y0, b.Y1
		if l.Factor > 0 {
			y0 = int(float64(y0) / l.Factor)
			y1 = int(float64(y1) * l.Factor)
		} else {
			y0 -= l.Pixels
			y1 += l.Pixels
		}
		out[i] = Box{X0: b.X0, Y0: clip(y0, 0, height-1), X1: b.X1, Y1: clip(y1, 0, height-1)}
	}
	return out
}

func clip(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
